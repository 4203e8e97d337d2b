package indexdb

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestRecordAndQueryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	idx.RecordConversion("/w/a.vmax", started, 150*time.Millisecond, 2, 999, nil)
	idx.RecordConversion("/w/b.vmax", started, 10*time.Millisecond, 0, 0, errors.New("bad palette"))
	idx.RecordRender("/w/a.bsz", started, 3*time.Second, "done")

	// Close drains the writer, so rows are durable before reopening.
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	idx, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer idx.Close()

	convs, err := idx.RecentConversions(10)
	if err != nil {
		t.Fatalf("query conversions: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("conversions = %d want 2", len(convs))
	}
	// Newest first.
	if convs[0].Path != "/w/b.vmax" || convs[0].Error != "bad palette" {
		t.Fatalf("row = %+v", convs[0])
	}
	if convs[1].Voxels != 999 || convs[1].Error != "" {
		t.Fatalf("row = %+v", convs[1])
	}

	renders, err := idx.RecentRenders(10)
	if err != nil {
		t.Fatalf("query renders: %v", err)
	}
	if len(renders) != 1 || renders[0].Outcome != "done" || renders[0].DurMillis != 3000 {
		t.Fatalf("renders = %+v", renders)
	}
}

func TestRecordAfterCloseIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Must not panic on the closed channel.
	idx.RecordRender("/w/a.bsz", time.Now(), time.Second, "done")
	if err := idx.Close(); err != nil {
		t.Fatalf("double close: %v", err)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
