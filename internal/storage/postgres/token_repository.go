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

// PostgresTokenRepository implements TokenRepository using GORM
type PostgresTokenRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresTokenRepository creates a new PostgreSQL token repository
func NewPostgresTokenRepository(db *gorm.DB) *PostgresTokenRepository {
	return &PostgresTokenRepository{
		db:  db,
		log: logger.Repository("token"),
	}
}

func (r *PostgresTokenRepository) Create(t *account.Token) error {
	if t.Token == "" {
		return fmt.Errorf("token value cannot be empty")
	}

	if err := r.db.Create(t).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		r.log.Error("failed to create token", "account_id", t.AccountID, "kind", t.Kind, "error", err)
		return fmt.Errorf("failed to create token: %w", err)
	}

	r.log.Debug("token created", "account_id", t.AccountID, "kind", t.Kind)
	return nil
}

// Consume fetches and deletes a token in one transaction so a token can
// only ever be redeemed once.
func (r *PostgresTokenRepository) Consume(token string, kind account.TokenKind) (*account.Token, error) {
	var t account.Token

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token = ? AND kind = ?", token, kind).First(&t).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load token: %w", err)
		}
		return tx.Delete(&account.Token{}, "token = ?", token).Error
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.log.Error("failed to consume token", "kind", kind, "error", err)
		}
		return nil, err
	}

	r.log.Debug("token consumed", "account_id", t.AccountID, "kind", t.Kind)
	return &t, nil
}

func (r *PostgresTokenRepository) DeleteForAccount(accountID string, kind account.TokenKind) error {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return fmt.Errorf("invalid account ID format: %w", err)
	}

	if err := r.db.Delete(&account.Token{}, "account_id = ? AND kind = ?", id, kind).Error; err != nil {
		return fmt.Errorf("failed to delete tokens: %w", err)
	}
	return nil
}
