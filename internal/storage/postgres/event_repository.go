package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openmun/delegation-api/internal/domain/event"
	"github.com/openmun/delegation-api/internal/logger"
)

// PostgresEventRepository implements EventRepository using GORM
type PostgresEventRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresEventRepository creates a new PostgreSQL event repository
func NewPostgresEventRepository(db *gorm.DB) *PostgresEventRepository {
	return &PostgresEventRepository{
		db:  db,
		log: logger.Repository("event"),
	}
}

func (r *PostgresEventRepository) Create(e *event.Event) error {
	r.log.Debug("creating event", "title", e.Title, "date", e.Date)

	if err := e.Validate(); err != nil {
		return fmt.Errorf("event validation failed: %w", err)
	}

	if err := r.db.Create(e).Error; err != nil {
		r.log.Error("failed to create event", "title", e.Title, "error", err)
		return fmt.Errorf("failed to create event: %w", err)
	}

	r.log.Info("event created", "event_id", e.ID, "title", e.Title)
	return nil
}

func (r *PostgresEventRepository) GetByID(id string) (*event.Event, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID format: %w", err)
	}

	var e event.Event
	if err := r.db.First(&e, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event by ID: %w", err)
	}
	return &e, nil
}

func (r *PostgresEventRepository) GetAll() ([]*event.Event, error) {
	var events []*event.Event
	if err := r.db.Order("date ASC").Find(&events).Error; err != nil {
		r.log.Error("failed to get all events", "error", err)
		return nil, fmt.Errorf("failed to get all events: %w", err)
	}

	r.log.Debug("retrieved all events", "count", len(events))
	return events, nil
}

func (r *PostgresEventRepository) Delete(id string) error {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid event ID format: %w", err)
	}

	res := r.db.Delete(&event.Event{}, "id = ?", eventID)
	if res.Error != nil {
		r.log.Error("failed to delete event", "event_id", id, "error", res.Error)
		return fmt.Errorf("failed to delete event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	r.log.Info("event deleted", "event_id", id)
	return nil
}
