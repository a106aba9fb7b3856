package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	_ "modernc.org/sqlite"
)

const historySchema = `CREATE TABLE IF NOT EXISTS diagnostics (
	step     INTEGER PRIMARY KEY,
	norm     REAL,
	delta    REAL,
	residual REAL,
	mass     REAL NOT NULL,
	volume   REAL NOT NULL
)`

// Sample is one diagnostics row. Residual is NaN when the residual check did
// not run at that step. SQLite has no NaN, so non-finite values are stored as
// NULL and read back as NaN.
type Sample struct {
	Step     int
	Norm     float64
	Delta    float64
	Residual float64
	Mass     float64
	Volume   float64
}

// History is the per-run diagnostics database.
type History struct {
	db *sql.DB
}

func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &History{db: db}, nil
}

// Record stores a sample, replacing any earlier row for the same step so a
// resumed run overwrites what it recomputes.
func (h *History) Record(ctx context.Context, s Sample) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO diagnostics (step, norm, delta, residual, mass, volume)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.Step, nullable(s.Norm), nullable(s.Delta), nullable(s.Residual), s.Mass, s.Volume)
	return err
}

// Samples returns all rows ordered by step.
func (h *History) Samples(ctx context.Context) ([]Sample, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT step, norm, delta, residual, mass, volume FROM diagnostics ORDER BY step`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var s Sample
		var norm, delta, residual sql.NullFloat64
		if err := rows.Scan(&s.Step, &norm, &delta, &residual, &s.Mass, &s.Volume); err != nil {
			return nil, err
		}
		s.Norm = orNaN(norm)
		s.Delta = orNaN(delta)
		s.Residual = orNaN(residual)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (h *History) Close() error { return h.db.Close() }

func nullable(x float64) any {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return x
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
