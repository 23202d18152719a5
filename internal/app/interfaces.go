package app

import (
	"context"

	"shopswipe/internal/state"
)

// Store is the persistence the app needs. state.SQLiteStore satisfies it.
type Store interface {
	StartSession(ctx context.Context, session state.Session) (string, error)
	RecordCartEvent(ctx context.Context, event state.CartEvent) error
	SaveCart(ctx context.Context, lines []state.CartLine) error
	LoadCart(ctx context.Context) ([]state.CartLine, error)
	SaveSettings(ctx context.Context, values map[string]string) error
	LoadSettings(ctx context.Context) (map[string]string, error)
	Close() error
}
