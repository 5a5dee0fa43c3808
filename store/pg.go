package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/gclaussn/go-procdoc/model"
	"github.com/go-logr/logr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed ddl
var resources embed.FS

// NewPgStore creates a store, which keeps documents in the PostgreSQL table procdoc_document.
// The table is created, if it does not exist.
func NewPgStore(ctx context.Context, databaseUrl string, customizers ...func(*Options)) (*PgStore, error) {
	if databaseUrl == "" {
		return nil, errors.New("database URL is empty")
	}

	options := newOptions(customizers)

	pgPoolConfig, err := pgxpool.ParseConfig(databaseUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %v", err)
	}

	if _, ok := pgPoolConfig.ConnConfig.RuntimeParams["application_name"]; !ok {
		pgPoolConfig.ConnConfig.RuntimeParams["application_name"] = "procdoc"
	}

	pgPoolCtx, pgPoolCancel := context.WithTimeout(ctx, options.Timeout)
	defer pgPoolCancel()

	pgPool, err := pgxpool.NewWithConfig(pgPoolCtx, pgPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %v", err)
	}

	s := PgStore{pgPool: pgPool, logger: options.Logger}
	if err := s.migrateDatabase(pgPoolCtx); err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	return &s, nil
}

type PgStore struct {
	pgPool *pgxpool.Pool
	logger logr.Logger
}

// Save stores a document. If the stored document has the same digest, the row is not updated.
func (s *PgStore) Save(ctx context.Context, name string, d *model.Document) error {
	if err := checkName(name); err != nil {
		return err
	}

	data, err := model.Marshal(d)
	if err != nil {
		return err
	}
	digest, err := model.Digest(d)
	if err != nil {
		return err
	}

	tag, err := s.pgPool.Exec(ctx, `
INSERT INTO procdoc_document (
	name,
	content,
	digest,
	saved_at
) VALUES (
	$1,
	$2,
	$3,
	$4
)
ON CONFLICT (name) DO UPDATE SET
	content = EXCLUDED.content,
	digest = EXCLUDED.digest,
	saved_at = EXCLUDED.saved_at
WHERE
	procdoc_document.digest <> EXCLUDED.digest
`,
		name,
		string(data),
		digest,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save document %s: %v", name, err)
	}

	d.MarkSaved()

	s.logger.V(1).Info("saved document", "name", name, "digest", digest, "changed", tag.RowsAffected() != 0)
	return nil
}

func (s *PgStore) Load(ctx context.Context, name string) (*model.Document, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	row := s.pgPool.QueryRow(ctx, "SELECT content FROM procdoc_document WHERE name = $1", name)

	var content []byte
	if err := row.Scan(&content); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("failed to load document", name)
		}
		return nil, fmt.Errorf("failed to select document %s: %v", name, err)
	}

	return decode(name, content, s.logger)
}

func (s *PgStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pgPool.Query(ctx, "SELECT name FROM procdoc_document ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %v", err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %v", err)
	}
	return names, nil
}

func (s *PgStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	tag, err := s.pgPool.Exec(ctx, "DELETE FROM procdoc_document WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %v", name, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("failed to delete document", name)
	}

	s.logger.V(1).Info("deleted document", "name", name)
	return nil
}

func (s *PgStore) Close() error {
	s.pgPool.Close()
	return nil
}

func (s *PgStore) migrateDatabase(ctx context.Context) error {
	ddl, err := resources.ReadDir("ddl")
	if err != nil {
		return fmt.Errorf("failed to list resources under ddl: %v", err)
	}

	for _, entry := range ddl {
		if entry.IsDir() {
			continue
		}

		name := "ddl/" + entry.Name()
		b, err := resources.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read resource %s: %v", name, err)
		}

		if _, err := s.pgPool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("failed to execute %s: %v", name, err)
		}
	}

	return nil
}
