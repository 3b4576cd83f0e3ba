package integration

import (
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"fidesia-be/internal/bootstrap"
	"fidesia-be/internal/config"
	"fidesia-be/internal/server"
	"fidesia-be/pkg/database"
)

// envelope mirrors the serverutils response shape for decoding.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func decodeEnvelope[T any](t *testing.T, body io.Reader) envelope[T] {
	t.Helper()
	var result envelope[T]
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return result
}

// newTestApp boots the full application against the real database.
// Tests are skipped when DB_CONNECTION_STRING is not set.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	// Load .env from root (2 levels up) because tests run in package dir
	if err := godotenv.Load("../../.env"); err != nil {
		t.Logf("Warning: Could not load ../../.env: %v", err)
	}
	if os.Getenv("DB_CONNECTION_STRING") == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	// Reference data lives at the repository root
	if os.Getenv("SAINTS_DATA_PATH") == "" {
		os.Setenv("SAINTS_DATA_PATH", "../../data/saints.json")
	}
	if os.Getenv("CORPUS_INVENTORY_PATH") == "" {
		os.Setenv("CORPUS_INVENTORY_PATH", "../../data/inventaire.json")
	}
	if os.Getenv("JWT_SECRET") == "" {
		os.Setenv("JWT_SECRET", "integration-test-secret")
	}

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	container := bootstrap.NewContainer(db, cfg)
	srv := server.New(cfg, container)
	return srv.GetApp(), db
}
