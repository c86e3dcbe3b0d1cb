package factory

import (
	"context"
	"testing"
	"time"

	"github.com/gridops/gridctl/internal/history"
)

func TestNewSinkFromDSNSQLite(t *testing.T) {
	for _, dsn := range []string{":memory:", "sqlite://:memory:", t.TempDir() + "/h.db"} {
		sink, err := NewSinkFromDSN(dsn)
		if err != nil {
			t.Fatalf("NewSinkFromDSN(%q): %v", dsn, err)
		}
		e := history.Event{
			Type:       history.EventStart,
			OccurredAt: time.Now().UTC(),
			Record:     history.Record{Identity: "x", PID: 1, Mode: "background"},
		}
		if err := sink.Send(context.Background(), e); err != nil {
			t.Fatalf("Send via %q: %v", dsn, err)
		}
		if c, ok := sink.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}
}

func TestNewSinkFromDSNErrors(t *testing.T) {
	for _, dsn := range []string{"", "   ", "mysql://host/db"} {
		if _, err := NewSinkFromDSN(dsn); err == nil {
			t.Fatalf("expected error for DSN %q", dsn)
		}
	}
}
