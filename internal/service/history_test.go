package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"foodsense"
)

func TestHistoryService_Latest(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("X", -3*3600)
	repo := &predictionRepoStub{
		latestResp: foodsense.PredictionRecord{
			ID:        "abc",
			Label:     foodsense.LabelFresh,
			CreatedAt: time.Date(2026, 8, 24, 3, 4, 5, 0, loc),
		},
	}
	svc := NewHistoryService(repo)

	rec, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt must be normalized to UTC, got %v", rec.CreatedAt.Location())
	}

	repo.latestErr = errors.New("db down")
	if _, err := svc.Latest(context.Background()); err == nil {
		t.Fatal("repository error must propagate")
	}
}

func TestHistoryService_List(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	t.Run("rejects inverted range", func(t *testing.T) {
		t.Parallel()
		svc := NewHistoryService(&predictionRepoStub{})
		_, err := svc.List(context.Background(), HistoryFilter{From: day.Add(time.Hour), To: day})
		if !errors.Is(err, errInvalidTimeRange) {
			t.Fatalf("want errInvalidTimeRange, got %v", err)
		}
	})

	t.Run("normalizes label and times", func(t *testing.T) {
		t.Parallel()
		repo := &predictionRepoStub{}
		svc := NewHistoryService(repo)

		loc := time.FixedZone("X", 2*3600)
		_, err := svc.List(context.Background(), HistoryFilter{
			From:  day.In(loc),
			To:    day.Add(24 * time.Hour).In(loc),
			Label: "  fresh ",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.lastLabel != "FRESH" {
			t.Errorf("label: want FRESH, got %q", repo.lastLabel)
		}
		if repo.lastFrom.Location() != time.UTC || repo.lastTo.Location() != time.UTC {
			t.Errorf("times must be UTC, got %v / %v", repo.lastFrom.Location(), repo.lastTo.Location())
		}
	})

	t.Run("open bounds pass through", func(t *testing.T) {
		t.Parallel()
		repo := &predictionRepoStub{listResp: []foodsense.PredictionRecord{{ID: "a"}}}
		svc := NewHistoryService(repo)

		recs, err := svc.List(context.Background(), HistoryFilter{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(recs) != 1 {
			t.Errorf("records: want 1, got %d", len(recs))
		}
		if !repo.lastFrom.IsZero() || !repo.lastTo.IsZero() {
			t.Errorf("zero bounds must stay zero")
		}
	})
}
