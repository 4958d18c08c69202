package models

import "time"

// DealStatus is the negotiation state of a Deal.
type DealStatus string

const (
	DealStatusPending   DealStatus = "pending"
	DealStatusActive    DealStatus = "active"
	DealStatusCompleted DealStatus = "completed"
	DealStatusRejected  DealStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s DealStatus) Valid() bool {
	switch s {
	case DealStatusPending, DealStatusActive, DealStatusCompleted, DealStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s DealStatus) Terminal() bool {
	return s == DealStatusCompleted || s == DealStatusRejected
}

// Open reports whether a deal in s blocks another deal over the same items.
func (s DealStatus) Open() bool {
	return s == DealStatusPending || s == DealStatusActive
}

// DealParty is the role a user plays in a deal.
type DealParty int

const (
	PartyNone DealParty = iota
	PartyInitiator
	PartyRecipient
)

// transitionRule lists who may move a deal along one edge.
type transitionRule struct {
	initiator bool
	recipient bool
}

var dealTransitions = map[DealStatus]map[DealStatus]transitionRule{
	DealStatusPending: {
		DealStatusActive:   {recipient: true},
		DealStatusRejected: {recipient: true},
	},
	DealStatusActive: {
		DealStatusCompleted: {initiator: true, recipient: true},
	},
}

// CanTransition reports whether from -> to is an edge of the deal state machine.
func CanTransition(from, to DealStatus) bool {
	_, ok := dealTransitions[from][to]
	return ok
}

// MayTransition reports whether party may take the from -> to edge.
func MayTransition(from, to DealStatus, party DealParty) bool {
	rule, ok := dealTransitions[from][to]
	if !ok {
		return false
	}
	switch party {
	case PartyInitiator:
		return rule.initiator
	case PartyRecipient:
		return rule.recipient
	}
	return false
}

// Deal pairs an initiator's item against a recipient's item.
type Deal struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	InitiatorID       uint       `gorm:"not null;index" json:"initiator_id"`
	RecipientID       uint       `gorm:"not null;index" json:"recipient_id"`
	InitiatorItemType ItemType   `gorm:"size:10;not null" json:"initiator_item_type"`
	InitiatorItemID   uint       `gorm:"not null" json:"initiator_item_id"`
	RecipientItemType ItemType   `gorm:"size:10;not null" json:"recipient_item_type"`
	RecipientItemID   uint       `gorm:"not null" json:"recipient_item_id"`
	Status            DealStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Message           string     `gorm:"type:text" json:"message"`
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// PartyOf returns the role userID plays in d.
func (d *Deal) PartyOf(userID uint) DealParty {
	switch userID {
	case d.InitiatorID:
		return PartyInitiator
	case d.RecipientID:
		return PartyRecipient
	}
	return PartyNone
}

// Counterparty returns the other participant relative to userID.
func (d *Deal) Counterparty(userID uint) (uint, bool) {
	switch d.PartyOf(userID) {
	case PartyInitiator:
		return d.RecipientID, true
	case PartyRecipient:
		return d.InitiatorID, true
	}
	return 0, false
}

// DealView is a deal joined with both profiles and both items.
type DealView struct {
	Deal
	Initiator     ProfileSummary `json:"initiator"`
	Recipient     ProfileSummary `json:"recipient"`
	InitiatorItem ItemSummary    `json:"initiator_item"`
	RecipientItem ItemSummary    `json:"recipient_item"`
}
