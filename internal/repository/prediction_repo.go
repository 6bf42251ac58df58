package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"foodsense"

	"github.com/google/uuid"
)

type PredictionSQLite struct {
	db *sql.DB
}

func NewPredictionSQLite(db *sql.DB) *PredictionSQLite { return &PredictionSQLite{db: db} }

var _ PredictionRepo = (*PredictionSQLite)(nil)

const (
	insertPredictionSQL = `
		INSERT INTO predictions (id, label, confidence, sensors, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	selectLatestPredictionSQL = `
		SELECT id, label, confidence, sensors, created_at
		FROM predictions ORDER BY created_at DESC LIMIT 1
	`
)

// SQLite TIMESTAMP format.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// Append inserts a new prediction record. A missing ID or timestamp is
// filled in here so callers can pass partially built records.
func (r *PredictionSQLite) Append(ctx context.Context, rec foodsense.PredictionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	} else {
		rec.CreatedAt = rec.CreatedAt.UTC()
	}

	sensors, err := json.Marshal(rec.SensorData)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, insertPredictionSQL,
		rec.ID,
		string(rec.Label),
		rec.Confidence,
		string(sensors),
		rec.CreatedAt.Format(sqliteTimeLayout),
	)
	return err
}

// Latest fetches the newest record. Returns a zero record (empty ID) when
// the table is empty.
func (r *PredictionSQLite) Latest(ctx context.Context) (foodsense.PredictionRecord, error) {
	row := r.db.QueryRowContext(ctx, selectLatestPredictionSQL)
	rec, err := scanPrediction(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return foodsense.PredictionRecord{}, nil
		}
		return foodsense.PredictionRecord{}, err
	}
	return rec, nil
}

// List returns records filtered by [from, to] (inclusive) and/or label,
// ordered ascending by time.
func (r *PredictionSQLite) List(ctx context.Context, from, to time.Time, label string) ([]foodsense.PredictionRecord, error) {
	var (
		conds []string
		args  []any
	)

	// created_at is stored as a sqliteTimeLayout string, so the bounds must
	// be bound in the same rendering or the lexical comparison drops exact
	// boundary matches.
	if !from.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimeLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimeLayout))
	}
	if label = strings.ToUpper(strings.TrimSpace(label)); label != "" {
		conds = append(conds, "label = ?")
		args = append(args, label)
	}

	q := `SELECT id, label, confidence, sensors, created_at FROM predictions`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]foodsense.PredictionRecord, 0, 64)
	for rows.Next() {
		rec, err := scanPrediction(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// scanPrediction maps one row into a record, decoding the sensors JSON.
func scanPrediction(scan func(dest ...any) error) (foodsense.PredictionRecord, error) {
	var (
		rec     foodsense.PredictionRecord
		label   string
		sensors string
	)
	if err := scan(&rec.ID, &label, &rec.Confidence, &sensors, &rec.CreatedAt); err != nil {
		return foodsense.PredictionRecord{}, err
	}
	rec.Label = foodsense.Label(label)
	rec.CreatedAt = rec.CreatedAt.UTC()
	if sensors != "" {
		var vals []float64
		if err := json.Unmarshal([]byte(sensors), &vals); err == nil {
			rec.SensorData = vals
		}
	}
	return rec, nil
}
