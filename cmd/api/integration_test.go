//go:build integration
// +build integration

package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmun/delegation-api/internal/config"
	"github.com/openmun/delegation-api/internal/domain/community"
	"github.com/openmun/delegation-api/internal/storage/postgres"
)

// Integration tests that require a real PostgreSQL database
// Run with: go test -tags=integration

func loadTestConfig() *config.Config {
	cfg := config.Load()
	if testDB := os.Getenv("TEST_DB_NAME"); testDB != "" {
		cfg.DB.Name = testDB
	}
	return cfg
}

func TestDatabaseConnection(t *testing.T) {
	db, err := postgres.Connect(loadTestConfig())
	assert.NoError(t, err, "Should be able to connect to test database")

	if err == nil {
		sqlDB, err := db.DB()
		assert.NoError(t, err)

		err = sqlDB.Ping()
		assert.NoError(t, err, "Should be able to ping the database")

		sqlDB.Close()
	}
}

func TestDatabaseMigration(t *testing.T) {
	db, err := postgres.Connect(loadTestConfig())
	assert.NoError(t, err, "Should be able to connect to test database")

	if err == nil {
		err = postgres.AutoMigrate(db)
		assert.NoError(t, err, "Should be able to run migrations")

		sqlDB, _ := db.DB()
		sqlDB.Close()
	}
}

func TestCountrySlotClaimIsAtomic(t *testing.T) {
	db, err := postgres.Connect(loadTestConfig())
	require.NoError(t, err, "Should be able to connect to test database")
	require.NoError(t, postgres.AutoMigrate(db))
	defer func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}()

	store := postgres.NewContainerWithDB(db)

	comm := community.NewCommunity("Integration Test Committee", 3, []string{"France", "Spain"})
	require.NoError(t, store.Communities().Create(comm))
	defer db.Exec("DELETE FROM communities WHERE id = ?", comm.ID)
	defer db.Exec("DELETE FROM country_slots WHERE community_id = ?", comm.ID)

	require.NoError(t, store.Communities().ClaimCountrySlot(comm.ID.String(), "France", "delegate-1"))

	err = store.Communities().ClaimCountrySlot(comm.ID.String(), "France", "delegate-2")
	assert.ErrorIs(t, err, postgres.ErrSlotTaken, "A second claim on the same country must lose")

	reloaded, err := store.Communities().GetByID(comm.ID.String())
	require.NoError(t, err)
	slot, ok := reloaded.SlotFor("France")
	require.True(t, ok)
	assert.Equal(t, "delegate-1", slot.AssigneeID, "The first claimant keeps the slot")
}
