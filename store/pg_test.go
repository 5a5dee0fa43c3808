package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgStore(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	databaseUrl := lookUpDatabaseUrl()
	if databaseUrl == "" {
		t.Skip("PROCDOC_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, databaseUrl)
	if err != nil {
		t.Fatalf("failed to establish database connection: %v", err)
	}

	defer conn.Close(ctx)

	databaseSchema := fmt.Sprintf("test_store_%s", strings.Replace(time.Now().Format("20060102150405.000"), ".", "", 1))
	if _, err := conn.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", databaseSchema)); err != nil {
		t.Fatalf("failed to create database schema: %v", err)
	}

	s, err := NewPgStore(ctx, fmt.Sprintf("%s?search_path=%s", databaseUrl, databaseSchema))
	require.NoError(t, err)

	defer s.Close()

	testStore(t, s)

	t.Run("unchanged document is not updated", func(t *testing.T) {
		assert := assert.New(t)

		d := mustCreateDocument(t, "Unchanged")
		require.NoError(t, s.Save(ctx, "unchanged", d))

		var savedAt1 time.Time
		require.NoError(t, s.pgPool.QueryRow(ctx, "SELECT saved_at FROM procdoc_document WHERE name = 'unchanged'").Scan(&savedAt1))

		require.NoError(t, s.Save(ctx, "unchanged", d))

		var savedAt2 time.Time
		require.NoError(t, s.pgPool.QueryRow(ctx, "SELECT saved_at FROM procdoc_document WHERE name = 'unchanged'").Scan(&savedAt2))

		assert.Equal(savedAt1, savedAt2)
	})

	t.Run("migration is idempotent", func(t *testing.T) {
		assert.NoError(t, s.migrateDatabase(ctx))
	})
}
