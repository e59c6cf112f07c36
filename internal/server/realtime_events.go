package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"knowhere/internal/featureflags"
	"knowhere/internal/middleware"
	"knowhere/internal/models"
	"knowhere/internal/notifications"
)

// Event type constants prevent typos in event names.
const (
	EventArticlePublished = notifications.EventArticlePublished
	EventClap             = notifications.EventClap
	EventComment          = notifications.EventComment
)

// eventFor builds an engagement event about article caused by actorID.
func (s *Server) eventFor(eventType string, article *models.Article, actorID string) notifications.Event {
	return notifications.Event{
		Type:      eventType,
		ArticleID: article.ID,
		ActorID:   actorID,
		Payload:   articlePayload(article),
		TS:        time.Now().UTC(),
	}
}

func (s *Server) publishArticlePublished(ctx context.Context, article *models.Article) {
	s.publishEngagement(ctx, s.eventFor(EventArticlePublished, article, article.AuthorID))
}

// publishEngagement fans ev out through Redis, or straight to the local hub
// when Redis is not configured. Authors are not notified of their own actions.
// Failures are logged; the write that caused the event has already succeeded.
func (s *Server) publishEngagement(ctx context.Context, ev notifications.Event) {
	if !s.featureFlags.EnabledGlobally(featureflags.LiveEngagement) {
		return
	}

	authorID, _ := ev.Payload["author_id"].(string)
	if authorID == ev.ActorID {
		authorID = ""
	}

	if s.notifier != nil {
		if err := s.notifier.PublishEngagement(ctx, authorID, ev); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish engagement event",
				slog.String("type", ev.Type),
				slog.String("article_id", ev.ArticleID),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	body, err := json.Marshal(ev)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to marshal engagement event", slog.String("error", err.Error()))
		return
	}
	s.hub.Dispatch(ctx, notifications.EngagementChannel, string(body))
	if authorID != "" {
		s.hub.Dispatch(ctx, notifications.UserChannel(authorID), string(body))
	}
}
