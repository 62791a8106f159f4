package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"bugdle/internal/dataset"

	_ "modernc.org/sqlite"
)

const problemsSchema = `
CREATE TABLE problems (
	id INTEGER PRIMARY KEY,
	slug TEXT,
	category TEXT,
	subtype TEXT,
	level TEXT,
	language TEXT,
	question TEXT,
	buggy_code TEXT,
	solution TEXT,
	bug_explanation TEXT,
	hint TEXT,
	raw_json TEXT NOT NULL
);
CREATE INDEX idx_problems_slug ON problems(slug);
CREATE INDEX idx_problems_category ON problems(category);
`

const insertProblem = `
INSERT INTO problems (id, slug, category, subtype, level, language, question,
	buggy_code, solution, bug_explanation, hint, raw_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// WriteSQLite writes records into a fresh SQLite database at path with one
// row per record in a problems table. The hint column is filled from
// hintField; raw_json holds the full record. The database is built next to
// path and renamed over it, so a failed write leaves any old file intact.
func WriteSQLite(ctx context.Context, path string, records []dataset.Record, hintField string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp database: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := fillSQLite(ctx, tmpName, records, hintField); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// fillSQLite creates the schema in the empty database file at path and
// inserts records in one transaction.
func fillSQLite(ctx context.Context, path string, records []dataset.Record, hintField string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, problemsSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	stmt, err := tx.PrepareContext(ctx, insertProblem)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
		_, err = stmt.ExecContext(ctx, i+1,
			nullable(rec, dataset.FieldSlug),
			nullable(rec, dataset.FieldCategory),
			nullable(rec, dataset.FieldSubtype),
			nullable(rec, dataset.FieldLevel),
			nullable(rec, dataset.FieldLanguage),
			nullable(rec, dataset.FieldQuestion),
			nullable(rec, dataset.FieldBuggyCode),
			nullable(rec, dataset.FieldSolution),
			nullable(rec, dataset.FieldBugExplanation),
			nullable(rec, hintField),
			string(raw))
		if err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func nullable(rec dataset.Record, field string) sql.NullString {
	if field == "" {
		return sql.NullString{}
	}
	if _, ok := rec[field]; !ok {
		return sql.NullString{}
	}
	return sql.NullString{String: rec.String(field), Valid: true}
}
