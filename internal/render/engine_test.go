package render

import (
	"io"
	"log"
	"testing"
	"time"
)

func TestExecEngineCompletion(t *testing.T) {
	e := &ExecEngine{Bin: "true", Log: log.New(io.Discard, "", 0)}
	job, err := e.Render("/w/a.bsz")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	select {
	case err, ok := <-job.Done():
		if ok && err != nil {
			t.Fatalf("job error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("job never completed")
	}
}

func TestExecEngineFailureDeliversError(t *testing.T) {
	e := &ExecEngine{Bin: "false", Log: log.New(io.Discard, "", 0)}
	job, err := e.Render("/w/a.bsz")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	select {
	case err := <-job.Done():
		if err == nil {
			t.Fatalf("expected exit error from failing binary")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("job never completed")
	}
}

func TestExecEngineCancelStopsProcess(t *testing.T) {
	// The scene-path argument doubles as the sleep duration here.
	e := &ExecEngine{Bin: "sleep", Log: log.New(io.Discard, "", 0)}
	job, err := e.Render("30")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	job.Cancel()
	select {
	case err := <-job.Done():
		if err == nil {
			t.Fatalf("expected error after cancel")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("cancel did not stop the process")
	}
}

func TestExecEngineMissingBinary(t *testing.T) {
	e := &ExecEngine{Bin: "/nonexistent/renderer", Log: log.New(io.Discard, "", 0)}
	if _, err := e.Render("/w/a.bsz"); err == nil {
		t.Fatalf("expected start error for missing binary")
	}
}
