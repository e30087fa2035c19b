package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// StateStore handles persistent application state.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}

// Flight is one persisted flight. Snapshot holds the encoded optimizer
// state (see Encode).
type Flight struct {
	ID        string    `json:"id"`
	Rules     string    `json:"rules"`
	Score     float64   `json:"score"`
	Distance  float64   `json:"distance"`
	Points    int       `json:"points"`
	Snapshot  []byte    `json:"-"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FlightStore handles resume-flight persistence.
type FlightStore interface {
	SaveFlight(ctx context.Context, f *Flight) error
	GetFlight(ctx context.Context, id string) (*Flight, error)
	ListFlights(ctx context.Context, limit int) ([]Flight, error)
	DeleteFlight(ctx context.Context, id string) error
}

// Source is a persisted thermal source, keyed by flight and H3 cell.
type Source struct {
	Cell      string  `json:"cell"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	GroundAlt float64 `json:"ground_alt"`
	SeenAt    float64 `json:"seen_at"`
}

// SourceStore handles thermal sources of a flight.
type SourceStore interface {
	SaveSources(ctx context.Context, flightID string, sources []Source) error
	GetSources(ctx context.Context, flightID string) ([]Source, error)
}
