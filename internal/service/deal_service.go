package service

import (
	"context"
	"log/slog"

	"rizq/internal/featureflags"
	"rizq/internal/middleware"
	"rizq/internal/models"
	"rizq/internal/notifications"
	"rizq/internal/observability"
	"rizq/internal/repository"
	"rizq/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// FlagSymmetricDeals allows gig-for-gig and demand-for-demand deals.
const FlagSymmetricDeals = "symmetric_deals"

// DealService manages the negotiation lifecycle between two users over two items.
type DealService struct {
	deals         repository.DealRepository
	items         repository.ItemRepository
	profiles      *ProfileDirectory
	conversations *ConversationService
	flags         *featureflags.Manager
	events        publisher
	retry         RetryPolicy
}

// DealOptions tunes a DealService. Zero values select defaults.
type DealOptions struct {
	Flags *featureflags.Manager
	Retry RetryPolicy
	Feed  notifications.Feed
	Users UserNotifier
}

// CreateDealInput is the input for creating a deal.
type CreateDealInput struct {
	InitiatorID       uint
	RecipientID       uint
	InitiatorItemType models.ItemType
	InitiatorItemID   uint
	RecipientItemType models.ItemType
	RecipientItemID   uint
	Message           string
}

// DealStatusPayload is the user event sent when a deal changes status.
type DealStatusPayload struct {
	DealID  uint              `json:"deal_id"`
	From    models.DealStatus `json:"from"`
	To      models.DealStatus `json:"to"`
	ActorID uint              `json:"actor_id"`
}

// NewDealService returns a new DealService. conversations carries deal replies.
func NewDealService(
	deals repository.DealRepository,
	items repository.ItemRepository,
	profiles *ProfileDirectory,
	conversations *ConversationService,
	opts DealOptions,
) *DealService {
	if opts.Retry.MaxTries == 0 {
		opts.Retry = DefaultRetryPolicy()
	}
	return &DealService{
		deals:         deals,
		items:         items,
		profiles:      profiles,
		conversations: conversations,
		flags:         opts.Flags,
		events:        publisher{feed: opts.Feed, users: opts.Users},
		retry:         opts.Retry,
	}
}

func (s *DealService) validateCreate(in *CreateDealInput) error {
	if in.InitiatorID == in.RecipientID {
		return models.NewValidationError("Cannot create a deal with yourself")
	}
	if !in.InitiatorItemType.Valid() || !in.RecipientItemType.Valid() ||
		in.InitiatorItemID == 0 || in.RecipientItemID == 0 {
		return models.NewValidationError("Select an item to offer and an item to request")
	}
	msg, err := validation.DealPitch(in.Message)
	if err != nil {
		return models.NewValidationError(err.Error())
	}
	in.Message = msg
	if in.InitiatorItemType == in.RecipientItemType && !s.flags.Enabled(FlagSymmetricDeals, in.InitiatorID) {
		return models.NewValidationError("A deal pairs a gig with a demand")
	}
	return nil
}

// CreateDeal opens a pending deal offering the initiator's item against the
// recipient's item.
func (s *DealService) CreateDeal(ctx context.Context, in CreateDealInput) (_ *models.Deal, err error) {
	ctx, span := observability.StartSpan(ctx, "DealService.CreateDeal",
		attribute.Int64("deal.initiator_id", int64(in.InitiatorID)),
		attribute.Int64("deal.recipient_id", int64(in.RecipientID)))
	defer func() {
		observability.EndSpan(span, err)
		result := "ok"
		if err != nil {
			result = models.ErrorCode(err)
			if result == "" {
				result = models.CodeInternal
			}
		}
		observability.DealsCreated.WithLabelValues(result).Inc()
	}()

	if err := s.validateCreate(&in); err != nil {
		return nil, err
	}

	offered, err := s.loadItem(ctx, in.InitiatorItemType, in.InitiatorItemID)
	if err != nil {
		return nil, err
	}
	if offered.OwnerID != in.InitiatorID {
		return nil, models.NewForbiddenError("You can only offer your own items")
	}
	requested, err := s.loadItem(ctx, in.RecipientItemType, in.RecipientItemID)
	if err != nil {
		return nil, err
	}
	if requested.OwnerID != in.RecipientID {
		return nil, models.NewValidationError("The requested item does not belong to the recipient")
	}

	open, err := retry(ctx, s.retry, "deal.find_open", func(ctx context.Context) (*models.Deal, error) {
		return s.deals.FindOpenByItems(ctx, repository.ItemPairing{
			InitiatorItemType: in.InitiatorItemType,
			InitiatorItemID:   in.InitiatorItemID,
			RecipientItemType: in.RecipientItemType,
			RecipientItemID:   in.RecipientItemID,
		})
	})
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, models.NewDuplicateDealError(nil)
	}

	deal := &models.Deal{
		InitiatorID:       in.InitiatorID,
		RecipientID:       in.RecipientID,
		InitiatorItemType: in.InitiatorItemType,
		InitiatorItemID:   in.InitiatorItemID,
		RecipientItemType: in.RecipientItemType,
		RecipientItemID:   in.RecipientItemID,
		Status:            models.DealStatusPending,
		Message:           in.Message,
	}
	// The open-deal unique index is authoritative when two creates race.
	if err := s.deals.Create(ctx, deal); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("deal.id", int64(deal.ID)))

	s.events.change(ctx, notifications.DealEvent(notifications.EventInsert, deal))
	s.events.user(ctx, deal.RecipientID, notifications.EventDealCreated, deal)
	return deal, nil
}

func (s *DealService) loadItem(ctx context.Context, t models.ItemType, id uint) (models.ItemSummary, error) {
	if t == models.ItemTypeGig {
		gig, err := retry(ctx, s.retry, "item.get_gig", func(ctx context.Context) (*models.Gig, error) {
			return s.items.GetGig(ctx, id)
		})
		if err != nil {
			return models.ItemSummary{}, err
		}
		return gig.Summary(), nil
	}
	demand, err := retry(ctx, s.retry, "item.get_demand", func(ctx context.Context) (*models.Demand, error) {
		return s.items.GetDemand(ctx, id)
	})
	if err != nil {
		return models.ItemSummary{}, err
	}
	return demand.Summary(), nil
}

// ListOwnItems returns the gigs and demands userID can offer in a deal.
func (s *DealService) ListOwnItems(ctx context.Context, userID uint) (*models.UserItems, error) {
	return retry(ctx, s.retry, "item.list_by_owner", func(ctx context.Context) (*models.UserItems, error) {
		return s.items.ListByOwner(ctx, userID)
	})
}

// ListDeals returns every deal userID takes part in, newest first, joined with
// both profiles and both items. Unresolvable references become placeholders.
func (s *DealService) ListDeals(ctx context.Context, userID uint) ([]models.DealView, error) {
	deals, err := retry(ctx, s.retry, "deal.list_by_user", func(ctx context.Context) ([]models.Deal, error) {
		return s.deals.ListByUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return s.resolveViews(ctx, deals), nil
}

// GetDeal returns one deal to one of its participants.
func (s *DealService) GetDeal(ctx context.Context, dealID, userID uint) (*models.DealView, error) {
	deal, err := s.getDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal.PartyOf(userID) == models.PartyNone {
		return nil, models.NewForbiddenError("You are not a participant in this deal")
	}
	views := s.resolveViews(ctx, []models.Deal{*deal})
	return &views[0], nil
}

func (s *DealService) getDeal(ctx context.Context, dealID uint) (*models.Deal, error) {
	return retry(ctx, s.retry, "deal.get", func(ctx context.Context) (*models.Deal, error) {
		return s.deals.GetByID(ctx, dealID)
	})
}

// resolveViews batch-loads the profiles and items the deals reference.
func (s *DealService) resolveViews(ctx context.Context, deals []models.Deal) []models.DealView {
	if len(deals) == 0 {
		return []models.DealView{}
	}

	var profileIDs, gigIDs, demandIDs []uint
	seen := make(map[uint]bool)
	addItem := func(t models.ItemType, id uint) {
		if t == models.ItemTypeGig {
			gigIDs = append(gigIDs, id)
		} else {
			demandIDs = append(demandIDs, id)
		}
	}
	for i := range deals {
		for _, id := range []uint{deals[i].InitiatorID, deals[i].RecipientID} {
			if !seen[id] {
				seen[id] = true
				profileIDs = append(profileIDs, id)
			}
		}
		addItem(deals[i].InitiatorItemType, deals[i].InitiatorItemID)
		addItem(deals[i].RecipientItemType, deals[i].RecipientItemID)
	}

	var (
		profiles map[uint]models.ProfileSummary
		gigs     = map[uint]models.ItemSummary{}
		demands  = map[uint]models.ItemSummary{}
	)
	// Each lookup degrades on its own; none of them fails the group.
	var g errgroup.Group
	g.Go(func() error {
		profiles = s.profiles.ResolveMany(ctx, profileIDs)
		return nil
	})
	g.Go(func() error {
		found, err := retry(ctx, s.retry, "item.list_gigs", func(ctx context.Context) ([]models.Gig, error) {
			return s.items.ListGigsByIDs(ctx, gigIDs)
		})
		if err != nil {
			middleware.Logger.WarnContext(ctx, "gig batch lookup failed", slog.String("error", err.Error()))
		}
		for i := range found {
			gigs[found[i].ID] = found[i].Summary()
		}
		return nil
	})
	g.Go(func() error {
		found, err := retry(ctx, s.retry, "item.list_demands", func(ctx context.Context) ([]models.Demand, error) {
			return s.items.ListDemandsByIDs(ctx, demandIDs)
		})
		if err != nil {
			middleware.Logger.WarnContext(ctx, "demand batch lookup failed", slog.String("error", err.Error()))
		}
		for i := range found {
			demands[found[i].ID] = found[i].Summary()
		}
		return nil
	})
	_ = g.Wait()

	item := func(dealID uint, t models.ItemType, id uint) models.ItemSummary {
		source := gigs
		if t == models.ItemTypeDemand {
			source = demands
		}
		if summary, ok := source[id]; ok {
			return summary
		}
		degraded(ctx, "item", nil,
			slog.Uint64("deal_id", uint64(dealID)),
			slog.String("item_type", string(t)),
			slog.Uint64("item_id", uint64(id)),
		)
		return models.UnavailableItem(t, id)
	}

	views := make([]models.DealView, len(deals))
	for i, d := range deals {
		views[i] = models.DealView{
			Deal:          d,
			Initiator:     profiles[d.InitiatorID],
			Recipient:     profiles[d.RecipientID],
			InitiatorItem: item(d.ID, d.InitiatorItemType, d.InitiatorItemID),
			RecipientItem: item(d.ID, d.RecipientItemType, d.RecipientItemID),
		}
	}
	return views
}

// UpdateStatus moves a deal along the state machine on behalf of actingUserID.
func (s *DealService) UpdateStatus(ctx context.Context, dealID uint, to models.DealStatus, actingUserID uint) (_ *models.Deal, err error) {
	ctx, span := observability.StartSpan(ctx, "DealService.UpdateStatus",
		attribute.Int64("deal.id", int64(dealID)),
		attribute.String("deal.to", string(to)))
	defer func() { observability.EndSpan(span, err) }()

	if !to.Valid() {
		return nil, models.NewValidationError("Unknown deal status")
	}
	deal, err := s.getDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	from := deal.Status

	party := deal.PartyOf(actingUserID)
	if party == models.PartyNone {
		return nil, models.NewForbiddenError("You are not a participant in this deal")
	}
	if !models.CanTransition(from, to) {
		observability.DealTransitions.WithLabelValues(string(from), string(to), "invalid").Inc()
		return nil, models.NewInvalidTransitionError(from, to)
	}
	if !models.MayTransition(from, to, party) {
		observability.DealTransitions.WithLabelValues(string(from), string(to), "forbidden").Inc()
		return nil, models.NewForbiddenError("Only the recipient can accept or decline a deal")
	}

	swapped, err := retry(ctx, s.retry, "deal.update_status", func(ctx context.Context) (bool, error) {
		return s.deals.CompareAndSetStatus(ctx, dealID, from, to)
	})
	if err != nil {
		return nil, err
	}
	if !swapped {
		// Another transition committed first; report against the status it left.
		current, getErr := s.getDeal(ctx, dealID)
		if getErr == nil {
			from = current.Status
		}
		observability.DealTransitions.WithLabelValues(string(from), string(to), "conflict").Inc()
		return nil, models.NewInvalidTransitionError(from, to)
	}

	observability.DealTransitions.WithLabelValues(string(from), string(to), "ok").Inc()
	deal.Status = to
	s.events.change(ctx, notifications.DealEvent(notifications.EventUpdate, deal))
	if counterparty, ok := deal.Counterparty(actingUserID); ok {
		s.events.user(ctx, counterparty, notifications.EventDealStatusChanged, DealStatusPayload{
			DealID:  deal.ID,
			From:    from,
			To:      to,
			ActorID: actingUserID,
		})
	}
	return deal, nil
}

// ReplyToDeal sends content to the deal's counterparty of actingUserID. The
// deal itself is not changed.
func (s *DealService) ReplyToDeal(ctx context.Context, dealID uint, content string, actingUserID uint) (*models.Message, error) {
	deal, err := s.getDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	counterparty, ok := deal.Counterparty(actingUserID)
	if !ok {
		return nil, models.NewForbiddenError("You are not a participant in this deal")
	}
	msg, _, err := s.conversations.SendMessage(ctx, SendMessageInput{
		SenderID:    actingUserID,
		RecipientID: counterparty,
		Content:     content,
	})
	return msg, err
}
