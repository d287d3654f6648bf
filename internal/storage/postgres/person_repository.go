package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openmun/delegation-api/internal/domain/person"
	"github.com/openmun/delegation-api/internal/logger"
)

// PostgresPersonRepository implements PersonRepository using GORM
type PostgresPersonRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresPersonRepository creates a new PostgreSQL person repository
func NewPostgresPersonRepository(db *gorm.DB) *PostgresPersonRepository {
	return &PostgresPersonRepository{
		db:  db,
		log: logger.Repository("person"),
	}
}

func (r *PostgresPersonRepository) Create(p *person.Person) error {
	r.log.Debug("creating person", "person_id", p.ID, "email", p.Email)

	if err := p.Validate(); err != nil {
		return fmt.Errorf("person validation failed: %w", err)
	}

	if err := r.db.Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		r.log.Error("failed to create person", "person_id", p.ID, "error", err)
		return fmt.Errorf("failed to create person: %w", err)
	}

	r.log.Info("person created", "person_id", p.ID)
	return nil
}

func (r *PostgresPersonRepository) GetByID(id string) (*person.Person, error) {
	personID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid person ID format: %w", err)
	}

	var p person.Person
	if err := r.db.First(&p, "id = ?", personID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		r.log.Error("failed to get person by ID", "person_id", id, "error", err)
		return nil, fmt.Errorf("failed to get person by ID: %w", err)
	}
	return &p, nil
}

func (r *PostgresPersonRepository) GetByEmail(email string) (*person.Person, error) {
	if email == "" {
		return nil, fmt.Errorf("email cannot be empty")
	}

	var p person.Person
	if err := r.db.Where("email = ?", email).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get person by email: %w", err)
	}
	return &p, nil
}

func (r *PostgresPersonRepository) MarkVerified(id string) error {
	return r.setFlag(id, "verified")
}

func (r *PostgresPersonRepository) MarkMemberCountApplied(id string) error {
	return r.setFlag(id, "member_count_applied")
}

func (r *PostgresPersonRepository) setFlag(id, column string) error {
	personID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid person ID format: %w", err)
	}

	res := r.db.Model(&person.Person{}).
		Where("id = ?", personID).
		Update(column, true)
	if res.Error != nil {
		r.log.Error("failed to set person flag", "person_id", id, "flag", column, "error", res.Error)
		return fmt.Errorf("failed to set %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	r.log.Debug("person flag set", "person_id", id, "flag", column)
	return nil
}

func (r *PostgresPersonRepository) GetCommunityMembers(communityID string) ([]*person.Person, error) {
	id, err := uuid.Parse(communityID)
	if err != nil {
		return nil, fmt.Errorf("invalid community ID format: %w", err)
	}

	var members []*person.Person
	if err := r.db.Where("community_id = ?", id).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		r.log.Error("failed to get community members", "community_id", communityID, "error", err)
		return nil, fmt.Errorf("failed to get community members: %w", err)
	}

	r.log.Debug("retrieved community members", "community_id", communityID, "count", len(members))
	return members, nil
}

func (r *PostgresPersonRepository) CountMembersApplied(communityID string) (int64, error) {
	id, err := uuid.Parse(communityID)
	if err != nil {
		return 0, fmt.Errorf("invalid community ID format: %w", err)
	}

	var count int64
	if err := r.db.Model(&person.Person{}).
		Where("community_id = ? AND member_count_applied = true", id).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}
