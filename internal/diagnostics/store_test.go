package diagnostics

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/banshee-data/scan-registration/internal/emit"
)

func TestStoreRecordsSweep(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "diagnostics.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	out := emit.Output{SweepID: "sweep-1", Timestamp: time.Unix(0, 0)}
	if err := store.RecordSweep(out); err != nil {
		t.Fatalf("RecordSweep failed: %v", err)
	}

	row := store.db.QueryRow(`SELECT sweep_id FROM sweep_diagnostics WHERE sweep_id = ?`, "sweep-1")
	var got string
	if err := row.Scan(&got); err != nil {
		t.Fatalf("querying recorded sweep: %v", err)
	}
	if got != "sweep-1" {
		t.Errorf("sweep_id = %q, want %q", got, "sweep-1")
	}
}
