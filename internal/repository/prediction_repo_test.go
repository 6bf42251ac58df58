package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"foodsense"
	"foodsense/internal/repository/db"

	"github.com/DATA-DOG/go-sqlmock"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestPredictionAppend_FillsDefaults(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPredictionSQLite(db)

	// generated id and timestamp are unknown; match the rest exactly
	mock.ExpectExec(regexp.QuoteMeta(insertPredictionSQL)).
		WithArgs(sqlmock.AnyArg(), "FRESH", 0.9, "[0.04,0.05]", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(ctx(t), foodsense.PredictionRecord{
		Label:      foodsense.LabelFresh,
		Confidence: 0.9,
		SensorData: []float64{0.04, 0.05},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestPredictionAppend_DBError(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPredictionSQLite(db)

	mock.ExpectExec("INSERT INTO predictions").
		WillReturnError(errors.New("down"))

	err := repo.Append(ctx(t), foodsense.PredictionRecord{Label: foodsense.LabelError})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestPredictionLatest(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPredictionSQLite(db)

	created := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "label", "confidence", "sensors", "created_at"}).
		AddRow("abc", "DEGRADED", 0.8, "[0.06,0.07]", created)

	mock.ExpectQuery(regexp.QuoteMeta(selectLatestPredictionSQL)).
		WillReturnRows(rows)

	got, err := repo.Latest(ctx(t))
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.ID != "abc" || got.Label != foodsense.LabelDegraded || got.Confidence != 0.8 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if len(got.SensorData) != 2 || got.SensorData[0] != 0.06 {
		t.Fatalf("sensors not decoded: %v", got.SensorData)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at mismatch: %v", got.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestPredictionLatest_EmptyTable(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPredictionSQLite(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectLatestPredictionSQL)).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.Latest(ctx(t))
	if err != nil {
		t.Fatalf("empty table must not be an error, got %v", err)
	}
	if got.ID != "" {
		t.Fatalf("expected zero record, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestPredictionList_NoFilters(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPredictionSQLite(db)

	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "label", "confidence", "sensors", "created_at"}).
		AddRow("1", "FRESH", 0.9, "[0.04]", now).
		AddRow("2", "ERROR", 0.7, "", now.Add(time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, label, confidence, sensors, created_at FROM predictions ORDER BY created_at ASC`)).
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Fatalf("unexpected results: %+v", got)
	}
	// empty sensors column stays nil
	if got[1].SensorData != nil {
		t.Fatalf("expected nil sensors, got %v", got[1].SensorData)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestPredictionList_WithFilters(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPredictionSQLite(db)

	from := time.Date(2026, 8, 20, 11, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	query := `SELECT id, label, confidence, sensors, created_at FROM predictions WHERE created_at >= ? AND created_at <= ? AND label = ? ORDER BY created_at ASC`
	rows := sqlmock.NewRows([]string{"id", "label", "confidence", "sensors", "created_at"}).
		AddRow("2", "DEGRADED", 0.8, "[0.06]", from)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(from.UTC().Format(sqliteTimeLayout), to.UTC().Format(sqliteTimeLayout), "DEGRADED").
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), from, to, " degraded ")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("unexpected results: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

// Against the real driver: created_at round-trips through its string
// rendering, so a filter bound exactly at a record's timestamp must still
// include it.
func TestPredictionList_BoundaryInclusive(t *testing.T) {
	t.Parallel()

	sqldb, err := db.InitDB(filepath.Join(t.TempDir(), "predictions.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })

	repo := NewPredictionSQLite(sqldb)
	at := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	err = repo.Append(ctx(t), foodsense.PredictionRecord{
		Label:      foodsense.LabelFresh,
		Confidence: 0.9,
		SensorData: []float64{0.04},
		CreatedAt:  at,
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	cases := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{name: "from at the record's timestamp", from: at, want: 1},
		{name: "to at the record's timestamp", to: at, want: 1},
		{name: "exact window", from: at, to: at, want: 1},
		{name: "from past the record", from: at.Add(time.Second), want: 0},
		{name: "to before the record", to: at.Add(-time.Second), want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.List(ctx(t), tc.from, tc.to, "")
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("records: want %d, got %d", tc.want, len(got))
			}
		})
	}
}

func TestPredictionList_ScanError(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPredictionSQLite(db)

	rows := sqlmock.NewRows([]string{"id", "label", "confidence", "sensors", "created_at"}).
		// created_at wrong type to force scan error
		AddRow("x", "FRESH", 0.9, "[]", "not-a-time")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, label, confidence, sensors, created_at FROM predictions ORDER BY created_at ASC`)).
		WillReturnRows(rows)

	if _, err := repo.List(ctx(t), time.Time{}, time.Time{}, ""); err == nil {
		t.Fatalf("expected scan error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
