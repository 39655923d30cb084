// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/openkpis/sheetsync/pkg/types"
)

// Store manages the catalog SQLite database. It is loaded from the index
// artifacts written by Indexer.
type Store struct {
	db         *sql.DB
	indexesDir string
	maxResults int
}

// NewStore opens or creates the catalog database at cfg.DBPath and creates
// the schema if it does not exist.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		indexesDir: cfg.IndexesDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			section TEXT NOT NULL,
			id TEXT NOT NULL,
			title TEXT,
			description TEXT,
			slug TEXT,
			tags TEXT,
			category TEXT,
			industry TEXT,
			featured TEXT,
			added TEXT,
			UNIQUE(section, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_section ON records(section)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			section TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS ingest_runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			indexed INTEGER,
			updated INTEGER,
			skipped INTEGER,
			failed INTEGER
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds per-section counts from a catalog load.
type IngestSummary struct {
	RunID   string
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of index artifacts processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest loads every {section}.json artifact in the indexes directory. A
// section whose artifact has not changed since the last load is skipped; a
// changed one has its records fully replaced.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	if w == nil {
		w = io.Discard
	}
	summary := IngestSummary{RunID: uuid.NewString()}
	started := time.Now().UTC()

	entries, err := os.ReadDir(s.indexesDir)
	if err != nil {
		return summary, fmt.Errorf("reading indexes directory %s: %w", s.indexesDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		section := strings.TrimSuffix(name, ".json")
		path := filepath.Join(s.indexesDir, name)

		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", section, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE section = ?`, section,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", section)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", section, err)
			summary.Failed++
			continue
		}

		var records []types.IndexRecord
		if err := json.Unmarshal(data, &records); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", section, err)
			summary.Failed++
			continue
		}

		if err := s.loadSection(ctx, section, records, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", section, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d records)\n", section, len(records))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "loaded  %s (%d records)\n", section, len(records))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nloaded: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO ingest_runs (id, started_at, indexed, updated, skipped, failed) VALUES (?, ?, ?, ?, ?, ?)`,
		summary.RunID, started.Format(time.RFC3339Nano),
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed,
	)
	if err != nil {
		return summary, fmt.Errorf("recording ingest run: %w", err)
	}

	return summary, nil
}

// encodeColumns JSON-encodes each value for a TEXT column.
func encodeColumns(values ...any) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[i] = string(b)
	}
	return out, nil
}

func (s *Store) loadSection(ctx context.Context, section string, records []types.IndexRecord, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE section = ?`, section); err != nil {
		return fmt.Errorf("deleting old records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO records (section, id, title, description, slug, tags, category, industry, featured, added)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		cols, err := encodeColumns(tags, r.Category, r.Industry, r.Featured, r.Added)
		if err != nil {
			return fmt.Errorf("encoding record %s: %w", r.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			section, r.ID, r.Title, r.Description, r.Slug,
			cols[0], cols[1], cols[2], cols[3], cols[4],
		)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", r.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (section, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(section) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		section, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}
