package state

import (
	"context"
	"time"
)

type Store interface {
	EnsureSchema(ctx context.Context) error
	StartSession(ctx context.Context, session Session) (string, error)
	RecordCartEvent(ctx context.Context, event CartEvent) error
	SaveCart(ctx context.Context, lines []CartLine) error
	LoadCart(ctx context.Context) ([]CartLine, error)
	SaveSettings(ctx context.Context, values map[string]string) error
	LoadSettings(ctx context.Context) (map[string]string, error)
	CountCartEvents(ctx context.Context, sessionID string) (int, error)
	GetSummary(ctx context.Context) (Summary, error)
	Close() error
}

type Session struct {
	ID          string
	CatalogName string
	StartTS     time.Time
}

// CartEvent is one audited cart operation. Accepted is false for rejected
// operations such as an add past the stock ceiling.
type CartEvent struct {
	SessionID string
	Op        string
	ProductID int
	Quantity  int
	Accepted  bool
	TS        time.Time
}

type CartLine struct {
	ProductID int
	Quantity  int
}

type Summary struct {
	Sessions  int
	Events    int
	Rejected  int
	CartLines int
}
