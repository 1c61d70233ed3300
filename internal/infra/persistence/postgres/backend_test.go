package postgres

import (
	"context"
	"database/sql"
	"errors"
	"mealtrack/internal/infra/persistence/memory"
	"mealtrack/internal/persistence"
	"mealtrack/pkg/domain"
	"os"
	"strings"
	"testing"
)

func TestNewEnsuresStateTable(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	b, err := New(context.Background(), "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = b.Close() }()
	if len(conn.execs) == 0 || !strings.Contains(conn.execs[0], "CREATE TABLE IF NOT EXISTS state") {
		t.Fatalf("expected state table DDL, got %v", conn.execs)
	}
	if _, err := b.Read(context.Background()); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStorePersistsThroughBackend(t *testing.T) {
	ctx := context.Background()
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	b, err := New(ctx, "ignored")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	store := memory.NewStore(memory.WithPersister(persistence.New(b)))
	g := &domain.FoodGroup{Base: domain.Base{ID: domain.NewID(), Name: "Legumes"}}
	if err := store.FoodGroups().SaveItem(ctx, g); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(conn.state[bucket]) == 0 {
		t.Fatalf("expected document row to be written")
	}
	snap, err := persistence.New(b).Load(ctx)
	if err != nil || len(snap.FoodGroups) != 1 || snap.FoodGroups[0].Name != "Legumes" {
		t.Fatalf("unexpected reload %+v %v", snap, err)
	}
}

func TestWriteFailuresPropagate(t *testing.T) {
	ctx := context.Background()
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	b, err := New(ctx, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	conn.failCommit = true
	if err := b.Write(ctx, []byte("x")); err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected commit failure, got %v", err)
	}
	conn.failCommit = false
	conn.failExec = true
	if err := b.Write(ctx, []byte("x")); err == nil || !strings.Contains(err.Error(), "upsert") {
		t.Fatalf("expected upsert failure, got %v", err)
	}
}

func TestNewPingFailure(t *testing.T) {
	db, conn := newStubDB()
	conn.failPing = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := New(context.Background(), ""); err == nil {
		t.Fatalf("expected ping failure")
	}
}

func TestLivePostgres(t *testing.T) {
	dsn := os.Getenv("MEALTRACK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skipf("MEALTRACK_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	b, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = b.Close() }()
	if err := b.Write(ctx, []byte("<HealthTracker/>")); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := b.Read(ctx)
	if err != nil || string(got) != "<HealthTracker/>" {
		t.Fatalf("unexpected read %q %v", got, err)
	}
}
