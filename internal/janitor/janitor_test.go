package janitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/glovera/consult/internal/session"
)

type recordingArchiver struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (a *recordingArchiver) Archive(_ context.Context, sess *session.Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.ids = append(a.ids, sess.ID)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedSessions(t *testing.T, store session.Store) (idle, fresh *session.Session) {
	t.Helper()
	ctx := context.Background()

	idle = session.New("alice", "t", nil, nil)
	idle.UpdatedAt = time.Now().UTC().Add(-48 * time.Hour)
	fresh = session.New("bob", "t", nil, nil)

	for _, sess := range []*session.Session{idle, fresh} {
		if err := store.Insert(ctx, sess); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	return idle, fresh
}

func TestSweepClosesAndArchivesIdleSessions(t *testing.T) {
	store := session.NewMemoryStore()
	idle, fresh := seedSessions(t, store)
	archiver := &recordingArchiver{}

	j := New(store, archiver, 24*time.Hour, discardLogger())
	j.Sweep(context.Background())

	got, err := store.FindByID(context.Background(), idle.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Status != session.StatusClosed {
		t.Error("idle session not closed")
	}

	still, err := store.FindByID(context.Background(), fresh.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if still.Status != session.StatusActive {
		t.Error("fresh session should stay active")
	}

	if len(archiver.ids) != 1 || archiver.ids[0] != idle.ID {
		t.Errorf("archived = %v, want just %s", archiver.ids, idle.ID)
	}
}

func TestSweepArchiveFailureStillCloses(t *testing.T) {
	store := session.NewMemoryStore()
	idle, _ := seedSessions(t, store)
	archiver := &recordingArchiver{err: errors.New("bucket gone")}

	j := New(store, archiver, 24*time.Hour, discardLogger())
	j.Sweep(context.Background())

	got, err := store.FindByID(context.Background(), idle.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Status != session.StatusClosed {
		t.Error("archive failure must not block closure")
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	store := session.NewMemoryStore()
	seedSessions(t, store)
	archiver := &recordingArchiver{}

	j := New(store, archiver, 24*time.Hour, discardLogger())
	j.Sweep(context.Background())
	j.Sweep(context.Background())

	if len(archiver.ids) != 1 {
		t.Errorf("archived %d times, want 1 (closed sessions are not re-swept)", len(archiver.ids))
	}
}
