package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/glovera/consult/internal/chat"
)

// PostgresStore persists session documents as rows with a JSONB
// message array, via the pgx stdlib driver.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens a PostgreSQL connection and verifies connectivity.
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

// NewPostgresStore creates a session store over an open database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the sessions table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS sessions (
            id         TEXT PRIMARY KEY,
            owner_id   TEXT NOT NULL,
            title      TEXT NOT NULL,
            messages   JSONB NOT NULL DEFAULT '[]',
            profile    JSONB NOT NULL DEFAULT '{}',
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL,
            status     TEXT NOT NULL
        )
    `)
	return err
}

// Insert stores a new session document.
func (s *PostgresStore) Insert(ctx context.Context, sess *Session) error {
	messages, err := json.Marshal(sess.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}
	prof, err := json.Marshal(sess.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO sessions (id, owner_id, title, messages, profile, created_at, updated_at, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `, sess.ID, sess.OwnerID, sess.Title, messages, prof, sess.CreatedAt, sess.UpdatedAt, string(sess.Status))
	return err
}

// FindByID retrieves a session; unknown ids yield a NotFoundError.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, owner_id, title, messages, profile, created_at, updated_at, status
        FROM sessions WHERE id=$1
    `, id)
	sess, err := scanSession(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, err
	}
	return sess, nil
}

// AppendMessages pushes messages onto the JSONB history and bumps
// updated_at. Last write wins on concurrent updates.
func (s *PostgresStore) AppendMessages(ctx context.Context, id string, messages []chat.Message) error {
	patch, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
        UPDATE sessions
        SET messages = messages || $2::jsonb, updated_at = $3
        WHERE id = $1
    `, id, patch, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// SetStatus updates a session's lifecycle status.
func (s *PostgresStore) SetStatus(ctx context.Context, id string, status Status) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE sessions SET status = $2, updated_at = $3 WHERE id = $1
    `, id, string(status), time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// ListByOwner returns all sessions owned by ownerID.
func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, owner_id, title, messages, profile, created_at, updated_at, status
        FROM sessions WHERE owner_id=$1 ORDER BY created_at
    `, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// ListIdleActive returns active sessions not updated since the cutoff.
func (s *PostgresStore) ListIdleActive(ctx context.Context, cutoff time.Time) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, owner_id, title, messages, profile, created_at, updated_at, status
        FROM sessions WHERE status='active' AND updated_at < $1
    `, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// HealthPing reports store connectivity.
func (s *PostgresStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*Session, error) {
	var sess Session
	var messages, prof []byte
	var status string
	err := row.Scan(&sess.ID, &sess.OwnerID, &sess.Title, &messages, &prof, &sess.CreatedAt, &sess.UpdatedAt, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{}
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(messages, &sess.Messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	if len(prof) > 0 {
		if err := json.Unmarshal(prof, &sess.Profile); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
	}
	sess.Status = Status(status)
	return &sess, nil
}

func scanSessions(rows *sql.Rows) ([]*Session, error) {
	var out []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &NotFoundError{ID: id}
	}
	return nil
}
