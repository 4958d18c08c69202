// Package models contains data structures for the marketplace domain.
package models

import "time"

// Profile is the public face of a marketplace user. Accounts and credentials
// live with the auth platform; this table only mirrors display data.
type Profile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	FullName    string    `gorm:"size:120" json:"full_name"`
	AvatarURL   string    `json:"avatar_url"`
	CompanyName string    `gorm:"size:120" json:"company_name"`
	Bio         string    `gorm:"type:text" json:"bio"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProfileSummary is the snapshot embedded in deals and conversations.
type ProfileSummary struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	AvatarURL   string `json:"avatar_url"`
	CompanyName string `json:"company_name,omitempty"`
	Unavailable bool   `json:"unavailable,omitempty"`
}

// Summary returns the display snapshot of p.
func (p *Profile) Summary() ProfileSummary {
	return ProfileSummary{
		ID:          p.ID,
		Username:    p.Username,
		FullName:    p.FullName,
		AvatarURL:   p.AvatarURL,
		CompanyName: p.CompanyName,
	}
}

// UnknownProfile is the placeholder used when a profile cannot be resolved.
func UnknownProfile(id uint) ProfileSummary {
	return ProfileSummary{
		ID:          id,
		Username:    "unknown",
		FullName:    "Unknown user",
		Unavailable: true,
	}
}
