package person

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies what a person is allowed to do
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Person is the registered delegate record. It shares its ID with the
// account that authenticates it and is never deleted.
type Person struct {
	ID    uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name  string    `json:"name" gorm:"not null"`
	Email string    `json:"email" gorm:"uniqueIndex;not null"`
	Role  Role      `json:"role" gorm:"type:varchar(16);not null;default:'user'"`

	// Verified mirrors the account's email verification once the
	// reconciliation sequence has observed it.
	Verified bool `json:"verified" gorm:"not null;default:false"`
	// MemberCountApplied guards the one-time seat counter increment.
	MemberCountApplied bool `json:"member_count_applied" gorm:"not null;default:false"`

	CommunityID *uuid.UUID `json:"community_id,omitempty" gorm:"type:uuid"`
	Country     string     `json:"country,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name used by GORM
func (Person) TableName() string {
	return "people"
}

// NewPerson creates an unverified person bound to a community seat
func NewPerson(id uuid.UUID, name, email string, communityID uuid.UUID, country string) *Person {
	cid := communityID
	return &Person{
		ID:          id,
		Name:        name,
		Email:       email,
		Role:        RoleUser,
		CommunityID: &cid,
		Country:     country,
		CreatedAt:   time.Now(),
	}
}

// HasCommunity reports whether the person holds a community reference
func (p *Person) HasCommunity() bool {
	return p.CommunityID != nil && *p.CommunityID != uuid.Nil
}

// IsAdmin reports whether the person has the admin role
func (p *Person) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Validate checks if the person data is valid
func (p *Person) Validate() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Email == "" {
		return fmt.Errorf("email is required")
	}
	if p.Role != RoleUser && p.Role != RoleAdmin {
		return fmt.Errorf("invalid role: %s", p.Role)
	}
	if p.CommunityID != nil && p.Country == "" {
		return fmt.Errorf("country is required when a community is set")
	}
	return nil
}
