// Package models contains data structures for the application's domain models.
package models

import "time"

// Profile is the public record of a user. ID is the identity provider's
// subject, so profiles are keyed by an opaque string rather than a serial.
type Profile struct {
	ID        string    `gorm:"primaryKey;type:varchar(255)" json:"id"`
	Username  string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	FullName  string    `gorm:"type:varchar(255)" json:"full_name"`
	AvatarURL string    `gorm:"type:text" json:"avatar_url"`
	Bio       string    `gorm:"type:text" json:"bio"`
	Location  string    `gorm:"type:varchar(255)" json:"location"`
	Website   string    `gorm:"type:text" json:"website"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// ProfileSummary is the subset of a profile embedded in listings.
type ProfileSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// Summary returns the listing view of p.
func (p *Profile) Summary() ProfileSummary {
	return ProfileSummary{ID: p.ID, Username: p.Username, FullName: p.FullName, AvatarURL: p.AvatarURL}
}
