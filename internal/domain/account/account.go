package account

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Account is the identity-provider record backing a person. It carries the
// credentials and the authoritative email verification state; everything
// delegate-facing lives on the Person with the same ID.
type Account struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash  string    `json:"-" gorm:"not null"`
	EmailVerified bool      `json:"email_verified" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name used by GORM
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates an unverified account with the given credentials
func NewAccount(id uuid.UUID, email, passwordHash string) *Account {
	return &Account{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
}

// Validate checks if the account data is valid
func (a *Account) Validate() error {
	if a.ID == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	if a.Email == "" {
		return fmt.Errorf("email is required")
	}
	if a.PasswordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	return nil
}

// TokenKind distinguishes the two one-time token flows
type TokenKind string

const (
	TokenKindVerification TokenKind = "verification"
	TokenKindReset        TokenKind = "reset"
)

// Token is a one-time email verification or password reset token
type Token struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	AccountID uuid.UUID `json:"account_id" gorm:"type:uuid;not null;index"`
	Kind      TokenKind `json:"kind" gorm:"type:varchar(16);not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name used by GORM
func (Token) TableName() string {
	return "tokens"
}

// NewToken creates a one-time token for the given account
func NewToken(accountID uuid.UUID, kind TokenKind, ttl time.Duration) *Token {
	return &Token{
		Token:     GenerateToken(),
		AccountID: accountID,
		Kind:      kind,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}
}

// Expired reports whether the token's validity window has passed
func (t *Token) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}

// GenerateToken returns a random URL-safe token string
func GenerateToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a UUID
		return uuid.NewString()
	}
	return hex.EncodeToString(buf)
}
