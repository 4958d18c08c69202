package server

import (
	"context"
	"log/slog"
	"strconv"

	"rizq/internal/cache"
	"rizq/internal/middleware"
	"rizq/internal/models"
	"rizq/internal/notifications"
	"rizq/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// IssueWSTicket handles POST /api/ws/ticket
// @Summary Issue a websocket ticket
// @Description Returns a single-use ticket valid for 60 seconds, passed as ?ticket= on the upgrade.
// @Tags realtime
// @Produce json
// @Success 200 {object} object{ticket=string,expires_in=int}
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	userID, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewTransientError(errTicketStoreUnavailable))
	}

	ticket := uuid.NewString()
	if err := s.redis.Set(c.UserContext(), cache.WSTicketKey(ticket),
		strconv.FormatUint(uint64(userID), 10), cache.WSTicketTTL).Err(); err != nil {
		middleware.RedisErrors.WithLabelValues("set").Inc()
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewTransientError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(cache.WSTicketTTL.Seconds()),
	})
}

// InboxWebsocket streams inbox snapshots and user events to one session.
// Authentication is handled by route middleware and userID is read from connection locals.
func (s *Server) InboxWebsocket() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		uid, ok := conn.Locals("userID").(uint)
		if !ok || uid == 0 {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			middleware.Logger.Warn("inbox websocket rejected",
				slog.Uint64("user_id", uint64(uid)),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			err := s.inbox.Watch(ctx, uid, func(snap *service.InboxSnapshot) error {
				payload, err := notifications.UserEvent{Type: notifications.EventInbox, Payload: snap}.Encode()
				if err != nil {
					return err
				}
				client.TrySend([]byte(payload))
				return nil
			})
			if err != nil {
				middleware.Logger.Warn("inbox watch stopped",
					slog.Uint64("user_id", uint64(uid)),
					slog.String("error", err.Error()),
				)
			}
		}()

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return models.RespondWithError(c, fiber.StatusUpgradeRequired,
				models.NewValidationError("WebSocket upgrade required"))
		}
		return upgrade(c)
	}
}
