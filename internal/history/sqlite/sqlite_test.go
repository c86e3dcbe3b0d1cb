package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/gridops/gridctl/internal/history"
)

func TestSQLiteSinkFile(t *testing.T) {
	dbPath := t.TempDir() + "/history.db"
	sink, err := New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	}()

	ctx := context.Background()
	e := history.Event{
		Type:       history.EventStart,
		OccurredAt: time.Now().UTC(),
		Record:     history.Record{Identity: "btc_long", PID: 12345, Mode: "background"},
	}
	if err := sink.Send(ctx, e); err != nil {
		t.Fatalf("Send start: %v", err)
	}

	e.Type = history.EventStop
	e.OccurredAt = time.Now().UTC()
	if err := sink.Send(ctx, e); err != nil {
		t.Fatalf("Send stop: %v", err)
	}

	var count int
	row := sink.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM instance_history WHERE identity = ?", "btc_long")
	if err := row.Scan(&count); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestSQLiteSinkInMemory(t *testing.T) {
	sink, err := New(":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = sink.Close() }()

	e := history.Event{
		Type:       history.EventStartFailed,
		OccurredAt: time.Now().UTC(),
		Record:     history.Record{Identity: "eth_short", PID: 0, Mode: "session", Error: "exited during settle window"},
	}
	if err := sink.Send(context.Background(), e); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestSQLiteSinkEmptyDSN(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestSQLiteSinkPrefixedDSN(t *testing.T) {
	sink, err := New("sqlite://:memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = sink.Close()
}
