// Package indexdb keeps a local history of conversions and renders in a
// SQLite file. Writes go through a buffered channel to a single writer
// goroutine so the scheduler never blocks on the database.
package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqConversion reqKind = iota + 1
	reqRender
)

type req struct {
	kind       reqKind
	conversion ConversionRow
	render     RenderRow
}

type ConversionRow struct {
	Path      string
	StartedAt string
	DurMillis int64
	Models    int
	Voxels    int
	Error     string
}

type RenderRow struct {
	Path      string
	StartedAt string
	DurMillis int64
	Outcome   string
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// One row per finished conversion or render; a small buffer is plenty.
		ch: make(chan req, 256),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL,
			started_at TEXT NOT NULL,
			dur_ms INTEGER NOT NULL,
			models INTEGER NOT NULL,
			voxels INTEGER NOT NULL,
			error TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_path ON conversions(path, started_at);`,
		`CREATE TABLE IF NOT EXISTS renders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL,
			started_at TEXT NOT NULL,
			dur_ms INTEGER NOT NULL,
			outcome TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_renders_path ON renders(path, started_at);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordConversion implements sched.Recorder. It never blocks: if the writer
// falls behind the row is dropped, the index is advisory.
func (s *SQLiteIndex) RecordConversion(path string, started time.Time, dur time.Duration, models, voxels int, convErr error) {
	if s == nil || s.closed.Load() {
		return
	}
	r := ConversionRow{
		Path:      path,
		StartedAt: started.UTC().Format(time.RFC3339Nano),
		DurMillis: dur.Milliseconds(),
		Models:    models,
		Voxels:    voxels,
	}
	if convErr != nil {
		r.Error = convErr.Error()
	}
	select {
	case s.ch <- req{kind: reqConversion, conversion: r}:
	default:
	}
}

// RecordRender implements sched.Recorder.
func (s *SQLiteIndex) RecordRender(path string, started time.Time, dur time.Duration, outcome string) {
	if s == nil || s.closed.Load() {
		return
	}
	r := RenderRow{
		Path:      path,
		StartedAt: started.UTC().Format(time.RFC3339Nano),
		DurMillis: dur.Milliseconds(),
		Outcome:   outcome,
	}
	select {
	case s.ch <- req{kind: reqRender, render: r}:
	default:
	}
}

func (s *SQLiteIndex) loop() {
	insertConversion, _ := s.db.Prepare(`INSERT INTO conversions(path,started_at,dur_ms,models,voxels,error) VALUES(?,?,?,?,?,?)`)
	insertRender, _ := s.db.Prepare(`INSERT INTO renders(path,started_at,dur_ms,outcome) VALUES(?,?,?,?)`)
	defer func() {
		if insertConversion != nil {
			_ = insertConversion.Close()
		}
		if insertRender != nil {
			_ = insertRender.Close()
		}
	}()

	for r := range s.ch {
		switch r.kind {
		case reqConversion:
			if insertConversion == nil {
				continue
			}
			c := r.conversion
			var errCol any
			if c.Error != "" {
				errCol = c.Error
			}
			_, _ = insertConversion.Exec(c.Path, c.StartedAt, c.DurMillis, c.Models, c.Voxels, errCol)
		case reqRender:
			if insertRender == nil {
				continue
			}
			rr := r.render
			_, _ = insertRender.Exec(rr.Path, rr.StartedAt, rr.DurMillis, rr.Outcome)
		}
	}
}

// RecentConversions returns the newest rows first, up to limit.
func (s *SQLiteIndex) RecentConversions(limit int) ([]ConversionRow, error) {
	rows, err := s.db.Query(`SELECT path,started_at,dur_ms,models,voxels,COALESCE(error,'') FROM conversions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ConversionRow
	for rows.Next() {
		var r ConversionRow
		if err := rows.Scan(&r.Path, &r.StartedAt, &r.DurMillis, &r.Models, &r.Voxels, &r.Error); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentRenders returns the newest rows first, up to limit.
func (s *SQLiteIndex) RecentRenders(limit int) ([]RenderRow, error) {
	rows, err := s.db.Query(`SELECT path,started_at,dur_ms,outcome FROM renders ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RenderRow
	for rows.Next() {
		var r RenderRow
		if err := rows.Scan(&r.Path, &r.StartedAt, &r.DurMillis, &r.Outcome); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
