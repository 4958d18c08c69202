package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var allStatuses = []DealStatus{DealStatusPending, DealStatusActive, DealStatusCompleted, DealStatusRejected}

func TestCanTransition_OnlyStateMachineEdges(t *testing.T) {
	allowed := map[[2]DealStatus]bool{
		{DealStatusPending, DealStatusActive}:   true,
		{DealStatusPending, DealStatusRejected}: true,
		{DealStatusActive, DealStatusCompleted}: true,
	}
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			require.Equal(t, allowed[[2]DealStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestMayTransition_Roles(t *testing.T) {
	tests := []struct {
		name  string
		from  DealStatus
		to    DealStatus
		party DealParty
		want  bool
	}{
		{"recipient accepts", DealStatusPending, DealStatusActive, PartyRecipient, true},
		{"initiator cannot accept", DealStatusPending, DealStatusActive, PartyInitiator, false},
		{"recipient rejects", DealStatusPending, DealStatusRejected, PartyRecipient, true},
		{"initiator cannot reject", DealStatusPending, DealStatusRejected, PartyInitiator, false},
		{"initiator completes", DealStatusActive, DealStatusCompleted, PartyInitiator, true},
		{"recipient completes", DealStatusActive, DealStatusCompleted, PartyRecipient, true},
		{"outsider completes", DealStatusActive, DealStatusCompleted, PartyNone, false},
		{"no edge", DealStatusCompleted, DealStatusActive, PartyRecipient, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, MayTransition(tt.from, tt.to, tt.party))
		})
	}
}

func TestDealStatus_TerminalAndOpen(t *testing.T) {
	require.True(t, DealStatusCompleted.Terminal())
	require.True(t, DealStatusRejected.Terminal())
	require.False(t, DealStatusPending.Terminal())
	require.True(t, DealStatusPending.Open())
	require.True(t, DealStatusActive.Open())
	require.False(t, DealStatusRejected.Open())
	require.False(t, DealStatus("archived").Valid())
}

func TestDeal_PartyAndCounterparty(t *testing.T) {
	d := &Deal{InitiatorID: 1, RecipientID: 2}

	require.Equal(t, PartyInitiator, d.PartyOf(1))
	require.Equal(t, PartyRecipient, d.PartyOf(2))
	require.Equal(t, PartyNone, d.PartyOf(3))

	other, ok := d.Counterparty(1)
	require.True(t, ok)
	require.Equal(t, uint(2), other)

	_, ok = d.Counterparty(3)
	require.False(t, ok)
}

func TestItemPlaceholders(t *testing.T) {
	require.Equal(t, "Unavailable Gig", UnavailableItem(ItemTypeGig, 4).Title)
	require.Equal(t, "Unavailable Demand", UnavailableItem(ItemTypeDemand, 4).Title)
	require.False(t, UnavailableItem(ItemTypeGig, 4).Available)
	require.Equal(t, ItemTypeDemand, ItemTypeGig.Complement())
}

func TestHTTPStatus_Mapping(t *testing.T) {
	require.Equal(t, 400, HTTPStatus(NewValidationError("x")))
	require.Equal(t, 403, HTTPStatus(NewForbiddenError("x")))
	require.Equal(t, 404, HTTPStatus(NewNotFoundError("Deal", 1)))
	require.Equal(t, 409, HTTPStatus(NewInvalidTransitionError(DealStatusActive, DealStatusActive)))
	require.Equal(t, 409, HTTPStatus(NewDuplicateDealError(nil)))
	require.Equal(t, 503, HTTPStatus(NewTransientError(errors.New("timeout"))))
	require.Equal(t, 500, HTTPStatus(errors.New("boom")))
}

func TestIsTransient_Wrapped(t *testing.T) {
	err := NewTransientError(errors.New("conn reset"))
	wrapped := errors.Join(errors.New("list deals"), err)
	require.True(t, IsTransient(wrapped))
	require.False(t, IsTransient(NewValidationError("bad")))
	require.False(t, IsTransient(nil))
}
