package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"foodsense"
	"foodsense/internal/repository"
)

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// HistoryService reads stored classifications.
type HistoryService struct {
	predictions repository.PredictionRepo
}

func NewHistoryService(predictions repository.PredictionRepo) *HistoryService {
	return &HistoryService{predictions: predictions}
}

// Latest returns the newest record; a zero record (empty ID) means nothing
// has been classified yet.
func (s *HistoryService) Latest(ctx context.Context) (foodsense.PredictionRecord, error) {
	rec, err := s.predictions.Latest(ctx)
	if err != nil {
		return foodsense.PredictionRecord{}, err
	}
	rec.CreatedAt = toUTC(rec.CreatedAt)
	return rec, nil
}

// List returns records matching the filter, ordered ascending by time.
func (s *HistoryService) List(ctx context.Context, f HistoryFilter) ([]foodsense.PredictionRecord, error) {
	from := toUTC(f.From)
	to := toUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	label := strings.TrimSpace(strings.ToUpper(f.Label))
	return s.predictions.List(ctx, from, to, label)
}

// toUTC normalizes non-zero times to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
