package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public-facing record mirroring a verified person's
// community assignment. It is created exactly once, after the person's
// email verification has been reconciled.
type Profile struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Email       string    `json:"email" gorm:"not null"`
	CommunityID uuid.UUID `json:"community_id" gorm:"type:uuid;not null"`
	Country     string    `json:"country" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name used by GORM
func (Profile) TableName() string {
	return "profiles"
}

// NewProfile creates a profile for a verified person
func NewProfile(personID uuid.UUID, name, email string, communityID uuid.UUID, country string) *Profile {
	return &Profile{
		ID:          personID,
		Name:        name,
		Email:       email,
		CommunityID: communityID,
		Country:     country,
		CreatedAt:   time.Now(),
	}
}
