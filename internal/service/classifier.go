package service

import (
	"context"
	"errors"
	"time"

	"foodsense"
	"foodsense/internal/repository"

	"github.com/google/uuid"
)

// Mean thresholds for the fallback classifier. Gas concentrations push the
// normalized channel mean up as food degrades; the bands and confidences
// mirror the values the trained model converges to on the reference data.
const (
	freshMeanMax    = 0.05
	degradedMeanMax = 0.08

	freshConfidence    = 0.9
	degradedConfidence = 0.8
	errorConfidence    = 0.7
)

var errEmptyReading = errors.New("empty sensor vector")

// ClassifierService assigns a quality label to each incoming reading and
// appends the result to the prediction log.
type ClassifierService struct {
	predictions repository.PredictionRepo
	notifier    Notifier
}

func NewClassifierService(predictions repository.PredictionRepo, notifier Notifier) *ClassifierService {
	return &ClassifierService{predictions: predictions, notifier: notifier}
}

// Classify labels the vector by its mean, stores the record and publishes
// it. Publish failures are the notifier's problem; storage failures are
// returned.
func (s *ClassifierService) Classify(ctx context.Context, sensors []float64) (foodsense.PredictionRecord, error) {
	if len(sensors) == 0 {
		return foodsense.PredictionRecord{}, errEmptyReading
	}

	label, confidence := classifyMean(mean(sensors))

	rec := foodsense.PredictionRecord{
		ID:         uuid.NewString(),
		Label:      label,
		Confidence: confidence,
		SensorData: append([]float64(nil), sensors...),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.predictions.Append(ctx, rec); err != nil {
		return foodsense.PredictionRecord{}, err
	}
	if s.notifier != nil {
		s.notifier.Publish(rec)
	}
	return rec, nil
}

func mean(vs []float64) float64 {
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// classifyMean maps the normalized channel mean into a label band.
func classifyMean(m float64) (foodsense.Label, float64) {
	switch {
	case m < freshMeanMax:
		return foodsense.LabelFresh, freshConfidence
	case m < degradedMeanMax:
		return foodsense.LabelDegraded, degradedConfidence
	default:
		return foodsense.LabelError, errorConfidence
	}
}
