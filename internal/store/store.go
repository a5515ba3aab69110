// Package store defines the durable archive for the wagering engine:
// events, accepted stakes, settlement receipts, and withdrawals.
// Implementations include PostgreSQL (source of truth), Redis
// (read-through cache), and in-memory (for testing).
//
// The archive feeds history queries; the in-memory ledgers stay
// authoritative for live balances. The engine writes the archive before
// committing a book mutation, so an archive failure aborts the whole
// operation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/kplaydefi/k-game/internal/model"
)

// ErrNotFound is wrapped by lookups that match no record.
var ErrNotFound = errors.New("store: not found")

// Store is the archive interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer.
type Store interface {
	// --- Event operations ---

	// InsertEvent persists a newly created event.
	InsertEvent(ctx context.Context, event *model.Event) error

	// UpdateEventStatus records a lifecycle transition.
	UpdateEventStatus(ctx context.Context, id string, status model.EventStatus, result model.Outcome, closedAt time.Time) error

	// GetEvent retrieves an event by its ID.
	GetEvent(ctx context.Context, id string) (*model.Event, error)

	// ListEvents returns all events in creation order.
	ListEvents(ctx context.Context) ([]model.Event, error)

	// --- Immutable stake records ---

	// InsertStakeEntry appends an accepted stake.
	InsertStakeEntry(ctx context.Context, entry *model.StakeEntry) error

	// StakeEntriesByEvent returns all stakes for an event, oldest first.
	StakeEntriesByEvent(ctx context.Context, eventID string) ([]model.StakeEntry, error)

	// StakeEntriesByParticipant returns a participant's stakes across
	// all events, oldest first.
	StakeEntriesByParticipant(ctx context.Context, participant string) ([]model.StakeEntry, error)

	// --- Settlement ---

	// InsertSettlementReceipt persists the full outcome of a
	// resolution or cancellation.
	InsertSettlementReceipt(ctx context.Context, receipt *model.SettlementReceipt) error

	// GetSettlementReceipt retrieves the receipt for an event.
	GetSettlementReceipt(ctx context.Context, eventID string) (*model.SettlementReceipt, error)

	// --- Withdrawals ---

	// InsertWithdrawal appends a completed withdrawal.
	InsertWithdrawal(ctx context.Context, w *model.Withdrawal) error

	// WithdrawalsByParticipant returns a participant's withdrawals,
	// oldest first.
	WithdrawalsByParticipant(ctx context.Context, participant string) ([]model.Withdrawal, error)
}
