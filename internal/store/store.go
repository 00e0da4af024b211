// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/ashureev/adaptutor/internal/domain"
)

// Repository defines the interface for persisting session records.
type Repository interface {
	// GetSession retrieves a session record by its identifier.
	// Returns (nil, nil) when no record exists.
	GetSession(ctx context.Context, sessionID string) (*domain.SessionState, error)

	// UpsertSession creates or replaces a session record.
	UpsertSession(ctx context.Context, state *domain.SessionState) error

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
