package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/san-kum/rxnsim/internal/dsl"
	"github.com/san-kum/rxnsim/internal/sim"
)

// SQLiteStore keeps runs, with their sample times, in a "runs" table and
// the sampled values in a "samples" table.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		source     TEXT NOT NULL DEFAULT '',
		timestamp  TEXT NOT NULL,
		dt         REAL NOT NULL,
		duration   REAL NOT NULL,
		steps      INTEGER NOT NULL DEFAULT 0,
		tracked    TEXT NOT NULL DEFAULT '[]',
		metrics    TEXT NOT NULL DEFAULT '{}',
		simulation TEXT NOT NULL DEFAULT '',
		times      TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS samples (
		run_id   TEXT NOT NULL,
		series   INTEGER NOT NULL,
		step     INTEGER NOT NULL,
		time     REAL NOT NULL,
		value    REAL NOT NULL,
		PRIMARY KEY (run_id, series, step)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(meta RunMetadata, result *sim.Result, src dsl.Source) (string, error) {
	meta = complete(meta, result)

	tracked, err := json.Marshal(meta.Tracked)
	if err != nil {
		return "", err
	}
	metrics, err := json.Marshal(meta.Metrics)
	if err != nil {
		return "", err
	}
	times, err := json.Marshal(result.Times)
	if err != nil {
		return "", err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, source, timestamp, dt, duration, steps, tracked, metrics, simulation, times)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Source, meta.Timestamp.Format(time.RFC3339Nano), meta.Dt, meta.Duration,
		meta.Steps, string(tracked), string(metrics), src.String(), string(times),
	)
	if err != nil {
		return "", err
	}

	stmt, err := tx.Prepare(`INSERT INTO samples (run_id, series, step, time, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, series := range result.Series {
		for step, v := range series.Values {
			if _, err := stmt.Exec(meta.ID, i, step, result.Times[step], v); err != nil {
				return "", err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return meta.ID, nil
}

const runColumns = `id, source, timestamp, dt, duration, steps, tracked, metrics`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunMetadata, error) {
	var (
		meta             RunMetadata
		ts               string
		tracked, metrics string
	)
	if err := row.Scan(&meta.ID, &meta.Source, &ts, &meta.Dt, &meta.Duration, &meta.Steps, &tracked, &metrics); err != nil {
		return nil, err
	}

	var err error
	if meta.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
		return nil, fmt.Errorf("run %s: timestamp: %w", meta.ID, err)
	}
	if err := json.Unmarshal([]byte(tracked), &meta.Tracked); err != nil {
		return nil, fmt.Errorf("run %s: tracked: %w", meta.ID, err)
	}
	if err := json.Unmarshal([]byte(metrics), &meta.Metrics); err != nil {
		return nil, fmt.Errorf("run %s: metrics: %w", meta.ID, err)
	}
	return &meta, nil
}

func (s *SQLiteStore) List() ([]RunMetadata, error) {
	rows, err := s.db.Query(`SELECT ` + runColumns + ` FROM runs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *meta)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortNewestFirst(runs)
	return runs, nil
}

func (s *SQLiteStore) Load(id string) (*RunMetadata, error) {
	meta, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return meta, err
}

func (s *SQLiteStore) LoadResult(id string) (*sim.Result, error) {
	meta, err := s.Load(id)
	if err != nil {
		return nil, err
	}

	result := &sim.Result{
		Series:     make([]sim.Series, len(meta.Tracked)),
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
	}
	if result.Metrics == nil {
		result.Metrics = make(map[string]float64)
	}

	var times string
	if err := s.db.QueryRow(`SELECT times FROM runs WHERE id = ?`, id).Scan(&times); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(times), &result.Times); err != nil {
		return nil, fmt.Errorf("run %s: times: %w", id, err)
	}
	for i, name := range meta.Tracked {
		result.Series[i] = sim.Series{Name: name, Values: make([]float64, 0, min(meta.Steps+1, 1<<16))}
	}

	rows, err := s.db.Query(
		`SELECT series, value FROM samples WHERE run_id = ? ORDER BY series, step`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			series int
			v      float64
		)
		if err := rows.Scan(&series, &v); err != nil {
			return nil, err
		}
		if series < 0 || series >= len(result.Series) {
			return nil, fmt.Errorf("run %s: sample for unknown series %d", id, series)
		}
		result.Series[series].Values = append(result.Series[series].Values, v)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) LoadSource(id string) (dsl.Source, error) {
	var text string
	err := s.db.QueryRow(`SELECT simulation FROM runs WHERE id = ?`, id).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return dsl.Source{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return dsl.Source{}, err
	}
	return dsl.ReadSource(strings.NewReader(text))
}
