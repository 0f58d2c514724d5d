package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "dayrise_user"),
		getEnv("DB_PASSWORD", "secret"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "dayrise_db"),
	)
}

// setupTestDB connects through pgx and applies the schema.
func setupTestDB(t *testing.T) *sqlx.DB {
	db, err := sqlx.Connect("pgx", testDSN())
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}
	require.NoError(t, Migrate(context.Background(), db), "Failed to apply schema")
	return db
}

// setupPQ connects through lib/pq, the driver the user repository is tested on.
func setupPQ(t *testing.T) *sql.DB {
	db, err := sql.Open("postgres", testDSN())
	if err != nil {
		t.Skipf("Skipping integration tests: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("Skipping integration tests: database unreachable: %v", err)
	}
	require.NoError(t, Migrate(context.Background(), sqlx.NewDb(db, "postgres")))
	return db
}

func cleanup(t *testing.T, db *sqlx.DB) {
	_, err := db.Exec("TRUNCATE TABLE routine_logs, routines, users CASCADE")
	require.NoError(t, err, "Failed to clean up database")
}
