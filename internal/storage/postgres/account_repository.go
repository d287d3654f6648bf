package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openmun/delegation-api/internal/domain/account"
	"github.com/openmun/delegation-api/internal/logger"
)

// PostgresAccountRepository implements AccountRepository using GORM
type PostgresAccountRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresAccountRepository creates a new PostgreSQL account repository
func NewPostgresAccountRepository(db *gorm.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{
		db:  db,
		log: logger.Repository("account"),
	}
}

func (r *PostgresAccountRepository) Create(acc *account.Account) error {
	r.log.Debug("creating account", "account_id", acc.ID, "email", acc.Email)

	if err := acc.Validate(); err != nil {
		return fmt.Errorf("account validation failed: %w", err)
	}

	if err := r.db.Create(acc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			r.log.Debug("account email already registered", "email", acc.Email)
			return ErrDuplicate
		}
		r.log.Error("failed to create account", "email", acc.Email, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	r.log.Info("account created", "account_id", acc.ID)
	return nil
}

func (r *PostgresAccountRepository) GetByID(id string) (*account.Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid account ID format: %w", err)
	}

	var acc account.Account
	if err := r.db.First(&acc, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		r.log.Error("failed to get account by ID", "account_id", id, "error", err)
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}
	return &acc, nil
}

func (r *PostgresAccountRepository) GetByEmail(email string) (*account.Account, error) {
	if email == "" {
		return nil, fmt.Errorf("email cannot be empty")
	}

	var acc account.Account
	if err := r.db.Where("email = ?", email).First(&acc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		r.log.Error("failed to get account by email", "error", err)
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &acc, nil
}

func (r *PostgresAccountRepository) MarkEmailVerified(id string) error {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid account ID format: %w", err)
	}

	res := r.db.Model(&account.Account{}).
		Where("id = ?", accountID).
		Update("email_verified", true)
	if res.Error != nil {
		r.log.Error("failed to mark account verified", "account_id", id, "error", res.Error)
		return fmt.Errorf("failed to mark account verified: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	r.log.Debug("account marked verified", "account_id", id)
	return nil
}

func (r *PostgresAccountRepository) UpdatePassword(id, passwordHash string) error {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid account ID format: %w", err)
	}
	if passwordHash == "" {
		return fmt.Errorf("password hash cannot be empty")
	}

	res := r.db.Model(&account.Account{}).
		Where("id = ?", accountID).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return fmt.Errorf("failed to update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	r.log.Info("account password updated", "account_id", id)
	return nil
}
