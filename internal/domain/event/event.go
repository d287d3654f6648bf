package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a conference calendar entry managed by administrators
type Event struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Title       string    `json:"title" gorm:"not null"`
	Date        time.Time `json:"date" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name used by GORM
func (Event) TableName() string {
	return "events"
}

// BeforeCreate sets a UUID before creating the record
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// NewEvent creates a new event with the given parameters
func NewEvent(title, description string, date time.Time) *Event {
	return &Event{
		ID:          uuid.New(),
		Title:       title,
		Date:        date,
		Description: description,
		CreatedAt:   time.Now(),
	}
}

// IsUpcoming reports whether the event date has not yet passed
func (e *Event) IsUpcoming() bool {
	return e.Date.After(time.Now().Add(-24 * time.Hour))
}

// Validate checks if the event data is valid
func (e *Event) Validate() error {
	if e.Title == "" {
		return fmt.Errorf("title is required")
	}
	if e.Description == "" {
		return fmt.Errorf("description is required")
	}
	if e.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return nil
}
