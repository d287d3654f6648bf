package postgres

import (
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/openmun/delegation-api/internal/config"
	"github.com/openmun/delegation-api/internal/logger"
)

// Container implements RepositoryContainer over a shared gorm connection
type Container struct {
	db            *gorm.DB
	log           *log.Logger
	accountRepo   AccountRepository
	tokenRepo     TokenRepository
	personRepo    PersonRepository
	communityRepo CommunityRepository
	profileRepo   ProfileRepository
	eventRepo     EventRepository
}

// NewContainer connects to the database, runs migrations, and initializes
// all repositories
func NewContainer(cfg *config.Config) (*Container, error) {
	log := logger.Repository("postgres_container")
	log.Info("Initializing PostgreSQL repository container...")

	db, err := Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	container := NewContainerWithDB(db)

	if err := container.Health(); err != nil {
		return nil, fmt.Errorf("container health check failed: %w", err)
	}

	log.Info("PostgreSQL repository container initialized successfully")
	return container, nil
}

// NewContainerWithDB creates a container around an existing connection or
// transaction handle
func NewContainerWithDB(db *gorm.DB) *Container {
	return &Container{
		db:            db,
		log:           logger.Repository("postgres_container"),
		accountRepo:   NewPostgresAccountRepository(db),
		tokenRepo:     NewPostgresTokenRepository(db),
		personRepo:    NewPostgresPersonRepository(db),
		communityRepo: NewPostgresCommunityRepository(db),
		profileRepo:   NewPostgresProfileRepository(db),
		eventRepo:     NewPostgresEventRepository(db),
	}
}

// Accounts returns the account repository
func (c *Container) Accounts() AccountRepository {
	return c.accountRepo
}

// Tokens returns the token repository
func (c *Container) Tokens() TokenRepository {
	return c.tokenRepo
}

// People returns the person repository
func (c *Container) People() PersonRepository {
	return c.personRepo
}

// Communities returns the community repository
func (c *Container) Communities() CommunityRepository {
	return c.communityRepo
}

// Profiles returns the profile repository
func (c *Container) Profiles() ProfileRepository {
	return c.profileRepo
}

// Events returns the event repository
func (c *Container) Events() EventRepository {
	return c.eventRepo
}

// WithinTransaction runs fn against a container bound to one database
// transaction; fn returning an error rolls everything back.
func (c *Container) WithinTransaction(fn func(RepositoryContainer) error) error {
	return c.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewContainerWithDB(tx))
	})
}

// Health performs a health check on the underlying connection
func (c *Container) Health() error {
	if err := HealthCheck(c.db); err != nil {
		c.log.Error("Database health check failed", "error", err)
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// GetDB exposes the underlying connection for integration tests
func (c *Container) GetDB() *gorm.DB {
	return c.db
}
