package server

import (
	"log/slog"

	"knowhere/internal/featureflags"
	"knowhere/internal/middleware"
	"knowhere/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// EngagementStreamHandler handles GET /api/ws/engagement. Anyone may listen;
// signed-in readers additionally receive events about their own articles.
// @Summary Live engagement event stream (websocket)
// @Tags realtime
// @Success 101
// @Failure 404 {object} models.ErrorResponse
// @Failure 426 {object} models.ErrorResponse
// @Router /ws/engagement [get]
func (s *Server) EngagementStreamHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(middleware.LocalUserID).(string)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("engagement stream rejected",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !s.featureFlags.EnabledGlobally(featureflags.LiveEngagement) {
			return respondError(c, models.NewNotFoundError("Stream", "engagement"))
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return models.RespondWithError(c, fiber.StatusUpgradeRequired,
				models.NewValidationError("WebSocket upgrade required"))
		}
		return upgrade(c)
	}
}
