package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps catalog documents as JSONB rows. Filters are
// evaluated in-process by the compiled matcher; the table is a plain
// document collection, not a query engine.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens a PostgreSQL connection using the pgx stdlib
// driver and verifies connectivity.
func OpenPostgres(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewPostgresStore creates a catalog store over an open database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the programs table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS programs (
            id  BIGSERIAL PRIMARY KEY,
            doc JSONB NOT NULL
        )
    `)
	return err
}

// Insert stores documents, used by the seed command.
func (s *PostgresStore) Insert(ctx context.Context, docs []Document) error {
	for _, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal program: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO programs (doc) VALUES ($1)`, data); err != nil {
			return fmt.Errorf("insert program: %w", err)
		}
	}
	return nil
}

// Find returns the documents satisfying the filter.
func (s *PostgresStore) Find(ctx context.Context, filter *Filter) ([]Document, error) {
	matcher, err := filter.Compile()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM programs`)
	if err != nil {
		return nil, fmt.Errorf("query programs: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode program: %w", err)
		}
		ok, err := matcher.Matches(doc)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, doc)
		}
	}
	return out, rows.Err()
}

// HealthPing reports store connectivity.
func (s *PostgresStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
