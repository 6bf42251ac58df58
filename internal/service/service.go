package service

import (
	"context"
	"time"

	"foodsense"
	"foodsense/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Classifier turns one normalized sensor vector into a stored prediction.
type Classifier interface {
	Classify(ctx context.Context, sensors []float64) (foodsense.PredictionRecord, error)
}

// PredictionLog exposes read access to stored classifications.
type PredictionLog interface {
	Latest(ctx context.Context) (foodsense.PredictionRecord, error)
	List(ctx context.Context, f HistoryFilter) ([]foodsense.PredictionRecord, error)
}

// HistoryFilter narrows List by time range and label.
type HistoryFilter struct {
	From  time.Time // inclusive; zero means no lower bound
	To    time.Time // inclusive; zero means no upper bound
	Label string    // "", "FRESH", "DEGRADED", "ERROR", "UNKNOWN"
}

// Service aggregates all sub-services.
type Service struct {
	Classifier
	PredictionLog
	Authorization
}

// NewService wires the repository layer into concrete services. notifier
// may be nil; classifications are then stored but not published.
func NewService(repos *repository.Repository, notifier Notifier, signingKey string) *Service {
	return &Service{
		Classifier:    NewClassifierService(repos.Predictions, notifier),
		PredictionLog: NewHistoryService(repos.Predictions),
		Authorization: NewAuthService(repos.Auth, signingKey),
	}
}
