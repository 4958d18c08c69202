package models

import "time"

// ItemType discriminates the two kinds of listing a deal can reference.
type ItemType string

const (
	// ItemTypeGig is a service offered, priced by its owner.
	ItemTypeGig ItemType = "gig"
	// ItemTypeDemand is a service wanted, with a budget.
	ItemTypeDemand ItemType = "demand"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	return t == ItemTypeGig || t == ItemTypeDemand
}

// Complement returns the other item type.
func (t ItemType) Complement() ItemType {
	if t == ItemTypeGig {
		return ItemTypeDemand
	}
	return ItemTypeGig
}

// Gig is a service offering.
type Gig struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Category     string    `gorm:"size:80;index" json:"category"`
	Price        float64   `gorm:"type:numeric(12,2);not null" json:"price"`
	DeliveryDays int       `json:"delivery_days"`
	ImageURL     string    `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Demand is a service request.
type Demand struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Category    string     `gorm:"size:80;index" json:"category"`
	Budget      float64    `gorm:"type:numeric(12,2);not null" json:"budget"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ItemSummary is the resolved view of one side of a deal. Amount is the gig
// price or the demand budget.
type ItemSummary struct {
	Type      ItemType `json:"type"`
	ID        uint     `json:"id"`
	Title     string   `json:"title"`
	Amount    float64  `json:"amount"`
	OwnerID   uint     `json:"owner_id"`
	Available bool     `json:"available"`
}

// Summary returns the deal-side view of g.
func (g *Gig) Summary() ItemSummary {
	return ItemSummary{Type: ItemTypeGig, ID: g.ID, Title: g.Title, Amount: g.Price, OwnerID: g.UserID, Available: true}
}

// Summary returns the deal-side view of d.
func (d *Demand) Summary() ItemSummary {
	return ItemSummary{Type: ItemTypeDemand, ID: d.ID, Title: d.Title, Amount: d.Budget, OwnerID: d.UserID, Available: true}
}

// UnavailableItem is the placeholder for a referenced item that no longer resolves.
func UnavailableItem(t ItemType, id uint) ItemSummary {
	title := "Unavailable Gig"
	if t == ItemTypeDemand {
		title = "Unavailable Demand"
	}
	return ItemSummary{Type: t, ID: id, Title: title}
}

// UserItems groups the listings owned by one user.
type UserItems struct {
	Gigs    []Gig    `json:"gigs"`
	Demands []Demand `json:"demands"`
}
