// Command streamtest load-tests the engagement websocket stream: it opens
// many listeners and, optionally, drives claps on one article so every
// listener should observe them.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"knowhere/internal/middleware"

	"github.com/gorilla/websocket"
)

// Metrics tracks the test results
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	ClapsSent            int64
	EventsReceived       int64
	Errors               int64
}

var metrics Metrics

func main() {
	host := flag.String("host", "localhost:8080", "API server host")
	token := flag.String("token", "", "Bearer token; listeners connect anonymously without it")
	clients := flag.Int("clients", 50, "Number of concurrent listeners")
	duration := flag.Duration("duration", 30*time.Second, "Test duration")
	articleID := flag.String("clap-article", "", "Article id to clap once per -clap-every (requires -token)")
	clapEvery := flag.Duration("clap-every", time.Second, "Interval between claps")
	flag.Parse()

	log := middleware.Logger
	log.Info("Starting engagement stream load test",
		slog.String("target", *host),
		slog.Int("clients", *clients),
		slog.Duration("duration", *duration),
	)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stopChan := make(chan struct{})

	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go runListener(*host, *token, stopChan, &wg)
		time.Sleep(10 * time.Millisecond) // stagger connections
	}

	if *articleID != "" && *token != "" {
		wg.Add(1)
		go runClapper(*host, *token, *articleID, *clapEvery, stopChan, &wg)
	}

	select {
	case <-time.After(*duration):
		log.Info("Test duration reached")
	case <-interrupt:
		log.Info("Interrupted")
	}

	close(stopChan)
	wg.Wait()

	printMetrics(*clients)
}

func runListener(host, token string, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws/engagement"}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	c, resp, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()

	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	go func() {
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			var env struct {
				Channel string `json:"channel"`
			}
			if json.Unmarshal(msg, &env) == nil && env.Channel != "" {
				atomic.AddInt64(&metrics.EventsReceived, 1)
			}
		}
	}()

	<-stopChan
	_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func runClapper(host, token, articleID string, every time.Duration, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	client := &http.Client{Timeout: 5 * time.Second}
	clapURL := fmt.Sprintf("http://%s/api/articles/%s/clap", host, url.PathEscape(articleID))

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-stopChan:
			return
		case <-ticker.C:
			req, _ := http.NewRequest(http.MethodPost, clapURL, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := client.Do(req)
			if err != nil {
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			atomic.AddInt64(&metrics.ClapsSent, 1)
		}
	}
}

func printMetrics(clients int) {
	sent := atomic.LoadInt64(&metrics.ClapsSent)
	received := atomic.LoadInt64(&metrics.EventsReceived)
	connected := atomic.LoadInt64(&metrics.ConnectionsSuccess)

	middleware.Logger.Info("Test results",
		slog.Int("clients", clients),
		slog.Int64("connections_attempted", atomic.LoadInt64(&metrics.ConnectionsAttempted)),
		slog.Int64("connections_successful", connected),
		slog.Int64("connections_failed", atomic.LoadInt64(&metrics.ConnectionsFailed)),
		slog.Int64("claps_sent", sent),
		slog.Int64("events_received", received),
		slog.Int64("events_expected", sent*connected),
		slog.Int64("errors", atomic.LoadInt64(&metrics.Errors)),
	)
}
