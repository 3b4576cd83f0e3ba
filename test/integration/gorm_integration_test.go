package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"

	"fidesia-be/internal/repository/specification"
	"fidesia-be/internal/repository/unitofwork"
	"fidesia-be/pkg/database"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.ExchangeRepository())
	assert.NotNil(t, uow.PassageRepository())
	assert.NotNil(t, uow.ActivityRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Users in database: %d", count)
	})

	t.Run("Check Exchange Repository", func(t *testing.T) {
		count, err := uow.ExchangeRepository().Count(context.Background(),
			specification.BySessionID{SessionID: uuid.NewString()})
		assert.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("Check Passage Repository", func(t *testing.T) {
		count, err := uow.PassageRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Corpus passages in database: %d", count)
	})
}
