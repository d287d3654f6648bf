package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openmun/delegation-api/internal/domain/community"
	"github.com/openmun/delegation-api/internal/logger"
)

// PostgresCommunityRepository implements CommunityRepository using GORM
type PostgresCommunityRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresCommunityRepository creates a new PostgreSQL community repository
func NewPostgresCommunityRepository(db *gorm.DB) *PostgresCommunityRepository {
	return &PostgresCommunityRepository{
		db:  db,
		log: logger.Repository("community"),
	}
}

func (r *PostgresCommunityRepository) Create(c *community.Community) error {
	r.log.Debug("creating community", "name", c.Name, "capacity", c.SeatCapacity, "slots", len(c.Slots))

	if err := c.Validate(); err != nil {
		return fmt.Errorf("community validation failed: %w", err)
	}

	if err := r.db.Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		r.log.Error("failed to create community", "name", c.Name, "error", err)
		return fmt.Errorf("failed to create community: %w", err)
	}

	r.log.Info("community created", "community_id", c.ID, "name", c.Name)
	return nil
}

func (r *PostgresCommunityRepository) GetByID(id string) (*community.Community, error) {
	communityID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid community ID format: %w", err)
	}

	var c community.Community
	if err := r.db.Preload("Slots").First(&c, "id = ?", communityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		r.log.Error("failed to get community by ID", "community_id", id, "error", err)
		return nil, fmt.Errorf("failed to get community by ID: %w", err)
	}
	return &c, nil
}

func (r *PostgresCommunityRepository) GetAll() ([]*community.Community, error) {
	var communities []*community.Community
	if err := r.db.Preload("Slots").Order("name ASC").Find(&communities).Error; err != nil {
		r.log.Error("failed to get all communities", "error", err)
		return nil, fmt.Errorf("failed to get all communities: %w", err)
	}

	r.log.Debug("retrieved all communities", "count", len(communities))
	return communities, nil
}

// ClaimCountrySlot assigns a slot to a person only while it is still
// unassigned. The conditional UPDATE makes the claim atomic: of two
// concurrent signups for the same country exactly one sees a row change.
func (r *PostgresCommunityRepository) ClaimCountrySlot(communityID, country, assigneeID string) error {
	id, err := uuid.Parse(communityID)
	if err != nil {
		return fmt.Errorf("invalid community ID format: %w", err)
	}

	res := r.db.Model(&community.CountrySlot{}).
		Where("community_id = ? AND country = ? AND assignee_id = ''", id, country).
		Update("assignee_id", assigneeID)
	if res.Error != nil {
		r.log.Error("failed to claim country slot",
			"community_id", communityID, "country", country, "error", res.Error)
		return fmt.Errorf("failed to claim country slot: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Debug("country slot claim lost", "community_id", communityID, "country", country)
		return ErrSlotTaken
	}

	r.log.Info("country slot claimed",
		"community_id", communityID, "country", country, "assignee_id", assigneeID)
	return nil
}

// IncrementOccupiedSeats bumps the seat counter through a row-locked
// read-modify-write. Concurrent increments serialize on the row lock; the
// seat-capacity upper bound is not checked here.
func (r *PostgresCommunityRepository) IncrementOccupiedSeats(communityID string) error {
	id, err := uuid.Parse(communityID)
	if err != nil {
		return fmt.Errorf("invalid community ID format: %w", err)
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		var c community.Community
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&c, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock community row: %w", err)
		}

		return tx.Model(&community.Community{}).
			Where("id = ?", id).
			Update("occupied_seats", c.OccupiedSeats+1).Error
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.log.Error("failed to increment occupied seats", "community_id", communityID, "error", err)
		}
		return err
	}

	r.log.Debug("occupied seats incremented", "community_id", communityID)
	return nil
}

func (r *PostgresCommunityRepository) UpdateLogoURL(communityID, logoURL string) error {
	id, err := uuid.Parse(communityID)
	if err != nil {
		return fmt.Errorf("invalid community ID format: %w", err)
	}

	res := r.db.Model(&community.Community{}).
		Where("id = ?", id).
		Update("logo_url", logoURL)
	if res.Error != nil {
		return fmt.Errorf("failed to update logo URL: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	r.log.Info("community logo updated", "community_id", communityID)
	return nil
}
