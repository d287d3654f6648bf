package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openmun/delegation-api/internal/domain/profile"
	"github.com/openmun/delegation-api/internal/logger"
)

// PostgresProfileRepository implements ProfileRepository using GORM
type PostgresProfileRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresProfileRepository creates a new PostgreSQL profile repository
func NewPostgresProfileRepository(db *gorm.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{
		db:  db,
		log: logger.Repository("profile"),
	}
}

func (r *PostgresProfileRepository) Create(p *profile.Profile) error {
	r.log.Debug("creating profile", "profile_id", p.ID)

	if err := r.db.Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		r.log.Error("failed to create profile", "profile_id", p.ID, "error", err)
		return fmt.Errorf("failed to create profile: %w", err)
	}

	r.log.Info("profile created", "profile_id", p.ID, "community_id", p.CommunityID)
	return nil
}

func (r *PostgresProfileRepository) GetByID(id string) (*profile.Profile, error) {
	profileID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid profile ID format: %w", err)
	}

	var p profile.Profile
	if err := r.db.First(&p, "id = ?", profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile by ID: %w", err)
	}
	return &p, nil
}

func (r *PostgresProfileRepository) Exists(id string) (bool, error) {
	profileID, err := uuid.Parse(id)
	if err != nil {
		return false, fmt.Errorf("invalid profile ID format: %w", err)
	}

	var count int64
	if err := r.db.Model(&profile.Profile{}).
		Where("id = ?", profileID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check profile existence: %w", err)
	}
	return count > 0, nil
}
