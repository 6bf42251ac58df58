package repository

import (
	"context"
	"database/sql"
	"time"

	"foodsense"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*foodsense.User, error)
}

// PredictionRepo is the append-only classification log plus latest-value
// access for the dashboard endpoint.
type PredictionRepo interface {
	Append(ctx context.Context, rec foodsense.PredictionRecord) error
	Latest(ctx context.Context) (foodsense.PredictionRecord, error)
	List(ctx context.Context, from, to time.Time, label string) ([]foodsense.PredictionRecord, error)
}

type Repository struct {
	Predictions PredictionRepo
	Auth        Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Predictions: NewPredictionSQLite(db),
		Auth:        NewUserRepository(db),
	}
}
