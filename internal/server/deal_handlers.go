package server

import (
	"rizq/internal/models"
	"rizq/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createDealRequest struct {
	RecipientID       uint            `json:"recipient_id"`
	InitiatorItemType models.ItemType `json:"initiator_item_type"`
	InitiatorItemID   uint            `json:"initiator_item_id"`
	RecipientItemType models.ItemType `json:"recipient_item_type"`
	RecipientItemID   uint            `json:"recipient_item_id"`
	Message           string          `json:"message"`
}

type updateDealStatusRequest struct {
	Status models.DealStatus `json:"status"`
}

type replyRequest struct {
	Content string `json:"content"`
}

// CreateDeal handles POST /api/deals
// @Summary Propose a deal
// @Description Offer one of your gigs or demands in exchange for one of the recipient's.
// @Tags deals
// @Accept json
// @Produce json
// @Param request body createDealRequest true "Deal proposal"
// @Success 201 {object} models.Deal
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /deals [post]
func (s *Server) CreateDeal(c *fiber.Ctx) error {
	userID, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	var req createDealRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	deal, err := s.deals.CreateDeal(c.UserContext(), service.CreateDealInput{
		InitiatorID:       userID,
		RecipientID:       req.RecipientID,
		InitiatorItemType: req.InitiatorItemType,
		InitiatorItemID:   req.InitiatorItemID,
		RecipientItemType: req.RecipientItemType,
		RecipientItemID:   req.RecipientItemID,
		Message:           req.Message,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(deal)
}

// ListDeals handles GET /api/deals
// @Summary List my deals
// @Description Deals where the caller is initiator or recipient, newest first, with parties and items resolved.
// @Tags deals
// @Produce json
// @Success 200 {array} models.DealView
// @Security BearerAuth
// @Router /deals [get]
func (s *Server) ListDeals(c *fiber.Ctx) error {
	userID, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	views, err := s.deals.ListDeals(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(views)
}

// GetDeal handles GET /api/deals/:id
// @Summary Get a deal
// @Tags deals
// @Produce json
// @Param id path int true "Deal ID"
// @Success 200 {object} models.DealView
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /deals/{id} [get]
func (s *Server) GetDeal(c *fiber.Ctx) error {
	userID, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	dealID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	view, err := s.deals.GetDeal(c.UserContext(), dealID, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(view)
}

// UpdateDealStatus handles PATCH /api/deals/:id/status
// @Summary Change deal status
// @Description Only the recipient may accept or reject a pending deal; either party may complete an active one.
// @Tags deals
// @Accept json
// @Produce json
// @Param id path int true "Deal ID"
// @Param request body updateDealStatusRequest true "Target status"
// @Success 200 {object} models.Deal
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /deals/{id}/status [patch]
func (s *Server) UpdateDealStatus(c *fiber.Ctx) error {
	var req updateDealStatusRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	return s.applyDealStatus(c, req.Status)
}

// transitionDeal serves the accept/reject/complete shortcuts.
func (s *Server) transitionDeal(to models.DealStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return s.applyDealStatus(c, to)
	}
}

func (s *Server) applyDealStatus(c *fiber.Ctx, to models.DealStatus) error {
	userID, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	dealID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	deal, err := s.deals.UpdateStatus(c.UserContext(), dealID, to, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(deal)
}

// ReplyToDeal handles POST /api/deals/:id/reply
// @Summary Message the other party of a deal
// @Tags deals
// @Accept json
// @Produce json
// @Param id path int true "Deal ID"
// @Param request body replyRequest true "Reply"
// @Success 201 {object} models.Message
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /deals/{id}/reply [post]
func (s *Server) ReplyToDeal(c *fiber.Ctx) error {
	userID, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	dealID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req replyRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	msg, err := s.deals.ReplyToDeal(c.UserContext(), dealID, req.Content, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// ListMyItems handles GET /api/items/mine
// @Summary List my gigs and demands
// @Description Item picker source for proposing a deal.
// @Tags deals
// @Produce json
// @Success 200 {object} models.UserItems
// @Security BearerAuth
// @Router /items/mine [get]
func (s *Server) ListMyItems(c *fiber.Ctx) error {
	userID, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	items, err := s.deals.ListOwnItems(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(items)
}
