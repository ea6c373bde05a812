package session

import (
	"context"
	"testing"
	"time"

	"github.com/glovera/consult/internal/chat"
	"github.com/glovera/consult/internal/llm"
	"github.com/glovera/consult/internal/profile"
)

func newTestSession(owner string) *Session {
	return New(owner, "Study Abroad Consultation", []chat.Message{
		{Role: llm.RoleSystem, Content: chat.SystemPrompt, Timestamp: time.Now().UTC()},
		{Role: llm.RoleAssistant, Content: chat.InitialGreeting, Timestamp: time.Now().UTC()},
	}, profile.Profile{"budget_range": "20000-50000"})
}

func TestNewSession(t *testing.T) {
	sess := newTestSession("user-1")

	if sess.ID == "" || sess.ID[:5] != "conv_" {
		t.Errorf("ID = %q, want conv_ prefix", sess.ID)
	}
	if sess.Status != StatusActive {
		t.Errorf("status = %s, want active", sess.Status)
	}
	if sess.CreatedAt.IsZero() || sess.UpdatedAt.IsZero() {
		t.Error("timestamps must be set")
	}

	other := newTestSession("user-1")
	if other.ID == sess.ID {
		t.Error("session ids must be unique")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sess := newTestSession("user-1")

	if err := store.Insert(ctx, sess); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := store.FindByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.OwnerID != "user-1" || len(got.Messages) != 2 {
		t.Errorf("got %+v", got)
	}
	if got.Profile["budget_range"] != "20000-50000" {
		t.Error("profile not persisted")
	}

	// The returned session is a copy.
	got.Messages = append(got.Messages, chat.Message{Role: llm.RoleUser, Content: "hi"})
	got.Profile["budget_range"] = "0-1"
	again, err := store.FindByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(again.Messages) != 2 {
		t.Error("mutating a returned session leaked into the store")
	}
	if again.Profile["budget_range"] != "20000-50000" {
		t.Error("mutating a returned profile leaked into the store")
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.FindByID(ctx, "conv_missing"); !IsNotFound(err) {
		t.Errorf("FindByID err = %v, want NotFoundError", err)
	}
	if err := store.AppendMessages(ctx, "conv_missing", nil); !IsNotFound(err) {
		t.Errorf("AppendMessages err = %v, want NotFoundError", err)
	}
	if err := store.SetStatus(ctx, "conv_missing", StatusClosed); !IsNotFound(err) {
		t.Errorf("SetStatus err = %v, want NotFoundError", err)
	}
}

func TestMemoryStoreAppendMessages(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sess := newTestSession("user-1")
	if err := store.Insert(ctx, sess); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	err := store.AppendMessages(ctx, sess.ID, []chat.Message{
		{Role: llm.RoleUser, Content: "hello", Timestamp: time.Now().UTC()},
		{Role: llm.RoleAssistant, Content: "hi there", Timestamp: time.Now().UTC()},
	})
	if err != nil {
		t.Fatalf("AppendMessages: %v", err)
	}

	got, err := store.FindByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(got.Messages) != 4 {
		t.Errorf("messages = %d, want 4", len(got.Messages))
	}
	if !got.UpdatedAt.After(sess.UpdatedAt) && !got.UpdatedAt.Equal(sess.UpdatedAt) {
		t.Error("UpdatedAt should advance on append")
	}
}

func TestMemoryStoreListByOwner(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, owner := range []string{"alice", "alice", "bob"} {
		if err := store.Insert(ctx, newTestSession(owner)); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	sessions, err := store.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("sessions = %d, want 2", len(sessions))
	}

	none, err := store.ListByOwner(ctx, "carol")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("sessions = %d, want 0", len(none))
	}
}

func TestMemoryStoreListIdleActive(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	idle := newTestSession("alice")
	idle.UpdatedAt = time.Now().UTC().Add(-48 * time.Hour)
	fresh := newTestSession("bob")
	closed := newTestSession("carol")
	closed.UpdatedAt = time.Now().UTC().Add(-48 * time.Hour)
	closed.Status = StatusClosed

	for _, sess := range []*Session{idle, fresh, closed} {
		if err := store.Insert(ctx, sess); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	got, err := store.ListIdleActive(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("ListIdleActive: %v", err)
	}
	if len(got) != 1 || got[0].ID != idle.ID {
		t.Errorf("idle sessions = %v, want just %s", got, idle.ID)
	}
}

func TestSetStatusCloses(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sess := newTestSession("user-1")
	if err := store.Insert(ctx, sess); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := store.SetStatus(ctx, sess.ID, StatusClosed); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, err := store.FindByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Status != StatusClosed {
		t.Errorf("status = %s, want closed", got.Status)
	}
}
