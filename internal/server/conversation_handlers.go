package server

import (
	"rizq/internal/models"
	"rizq/internal/service"

	"github.com/gofiber/fiber/v2"
)

type sendMessageRequest struct {
	Content  string `json:"content"`
	ClientID string `json:"client_id"`
}

// ListConversations handles GET /api/conversations
// @Summary List conversations
// @Description One entry per counterparty with last message and unread count, most recent first.
// @Tags conversations
// @Produce json
// @Success 200 {array} models.ConversationSummary
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /conversations [get]
func (s *Server) ListConversations(c *fiber.Ctx) error {
	userID, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	convs, err := s.conversations.ListConversations(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(convs)
}

// GetThread handles GET /api/conversations/:userId/messages
// @Summary Fetch a message thread
// @Description Messages with one counterparty, oldest first. Unread messages addressed to the caller are marked read.
// @Tags conversations
// @Produce json
// @Param userId path int true "Counterparty user ID"
// @Success 200 {array} models.Message
// @Security BearerAuth
// @Router /conversations/{userId}/messages [get]
func (s *Server) GetThread(c *fiber.Ctx) error {
	userID, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	counterpartyID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	thread, err := s.conversations.FetchThread(c.UserContext(), userID, counterpartyID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(thread)
}

// SendMessage handles POST /api/conversations/:userId/messages
// @Summary Send a direct message
// @Description A repeated client_id returns the stored message with 200 instead of creating a duplicate.
// @Tags conversations
// @Accept json
// @Produce json
// @Param userId path int true "Recipient user ID"
// @Param request body sendMessageRequest true "Message"
// @Success 201 {object} models.Message
// @Success 200 {object} models.Message
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /conversations/{userId}/messages [post]
func (s *Server) SendMessage(c *fiber.Ctx) error {
	userID, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	recipientID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	if recipientID == userID {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Cannot send a message to yourself"))
	}
	var req sendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	msg, created, err := s.conversations.SendMessage(c.UserContext(), service.SendMessageInput{
		SenderID:    userID,
		RecipientID: recipientID,
		Content:     req.Content,
		ClientID:    req.ClientID,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(msg)
}

// MarkConversationRead handles POST /api/conversations/:userId/read
// @Summary Mark a conversation read
// @Tags conversations
// @Produce json
// @Param userId path int true "Counterparty user ID"
// @Success 200 {object} object{marked=int}
// @Security BearerAuth
// @Router /conversations/{userId}/read [post]
func (s *Server) MarkConversationRead(c *fiber.Ctx) error {
	userID, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	senderID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	marked, err := s.conversations.MarkAllRead(c.UserContext(), senderID, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"marked": marked})
}

// OpenConversation handles POST /api/conversations/:userId/open
// @Summary Ask the caller's clients to open a conversation
// @Description Emits an open_conversation event on the caller's inbox socket.
// @Tags conversations
// @Param userId path int true "Counterparty user ID"
// @Success 202
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /conversations/{userId}/open [post]
func (s *Server) OpenConversation(c *fiber.Ctx) error {
	userID, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	counterpartyID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	if err := s.conversations.RequestOpenConversation(c.UserContext(), userID, counterpartyID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

// MarkMessageRead handles POST /api/messages/:id/read
// @Summary Mark one message read
// @Tags conversations
// @Param id path int true "Message ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /messages/{id}/read [post]
func (s *Server) MarkMessageRead(c *fiber.Ctx) error {
	userID, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	messageID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.conversations.MarkRead(c.UserContext(), messageID, userID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnreadCount handles GET /api/messages/unread-count
// @Summary Unread message badge
// @Tags conversations
// @Produce json
// @Success 200 {object} object{count=int}
// @Security BearerAuth
// @Router /messages/unread-count [get]
func (s *Server) UnreadCount(c *fiber.Ctx) error {
	userID, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	count, err := s.conversations.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}
