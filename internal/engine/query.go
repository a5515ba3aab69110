package engine

import (
	"context"

	"github.com/kplaydefi/k-game/internal/access"
	"github.com/kplaydefi/k-game/internal/model"
	"github.com/kplaydefi/k-game/internal/store"
)

// PoolTotals is the stake snapshot for one event.
type PoolTotals struct {
	PoolA         uint64 `json:"pool_a"`
	PoolB         uint64 `json:"pool_b"`
	ParticipantsA int    `json:"participants_a"`
	ParticipantsB int    `json:"participants_b"`
}

// ParticipantStake is one participant's cumulative stake on each
// outcome of an event.
type ParticipantStake struct {
	StakeA uint64 `json:"stake_a"`
	StakeB uint64 `json:"stake_b"`
}

// Event returns the event with the given ID. An unknown ID yields a
// zero-valued event with StatusNone rather than an error, so callers
// can probe existence cheaply.
func (e *Engine) Event(id string) model.Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	event, ok := e.events[id]
	if !ok {
		return model.Event{ID: id, Status: model.StatusNone}
	}
	return *event
}

// EventIDByIndex returns the ID of the i-th created event.
func (e *Engine) EventIDByIndex(i int) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if i < 0 || i >= len(e.order) {
		return "", false
	}
	return e.order[i], true
}

// EventCount returns the number of events ever created.
func (e *Engine) EventCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.order)
}

// Events returns all events in creation order.
func (e *Engine) Events() []model.Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.Event, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, *e.events[id])
	}
	return out
}

// Pools returns outcome totals and participant counts for an event.
func (e *Engine) Pools(eventID string) (PoolTotals, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	books, ok := e.books[eventID]
	if !ok {
		return PoolTotals{}, ErrUnknownEvent
	}
	return PoolTotals{
		PoolA:         books.Pool(model.OutcomeA),
		PoolB:         books.Pool(model.OutcomeB),
		ParticipantsA: books.Side(model.OutcomeA).Len(),
		ParticipantsB: books.Side(model.OutcomeB).Len(),
	}, nil
}

// StakeOf returns a participant's cumulative stake on each outcome.
func (e *Engine) StakeOf(eventID, participant string) (ParticipantStake, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	books, ok := e.books[eventID]
	if !ok {
		return ParticipantStake{}, ErrUnknownEvent
	}
	return ParticipantStake{
		StakeA: books.Side(model.OutcomeA).Amount(participant),
		StakeB: books.Side(model.OutcomeB).Amount(participant),
	}, nil
}

// BalanceOf returns a participant's withdrawable balance for an event.
func (e *Engine) BalanceOf(eventID, participant string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	books, ok := e.books[eventID]
	if !ok {
		return 0, ErrUnknownEvent
	}
	return books.Balances.Amount(participant), nil
}

// ParticipantAt returns the i-th participant of one outcome in stake
// order, with their cumulative amount.
func (e *Engine) ParticipantAt(eventID string, outcome model.Outcome, i int) (string, uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	books, ok := e.books[eventID]
	if !ok {
		return "", 0, ErrUnknownEvent
	}
	if !outcome.Valid() {
		return "", 0, ErrInvalidOutcome
	}
	side := books.Side(outcome)
	p, ok := side.KeyAt(i)
	if !ok {
		return "", 0, ErrUnknownEvent
	}
	return p, side.Amount(p), nil
}

// ParticipantAmount pairs an account with a ledger amount, in the
// ledger's insertion order.
type ParticipantAmount struct {
	Account string `json:"account"`
	Amount  uint64 `json:"amount"`
}

// Participants returns one outcome's participants with their cumulative
// stakes, in stake order.
func (e *Engine) Participants(eventID string, outcome model.Outcome) ([]ParticipantAmount, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	books, ok := e.books[eventID]
	if !ok {
		return nil, ErrUnknownEvent
	}
	if !outcome.Valid() {
		return nil, ErrInvalidOutcome
	}
	side := books.Side(outcome)
	out := make([]ParticipantAmount, 0, side.Len())
	for _, p := range side.Keys() {
		out = append(out, ParticipantAmount{Account: p, Amount: side.Amount(p)})
	}
	return out, nil
}

// Proxies returns the attributed proxies of an event with their
// volumes, in attribution order.
func (e *Engine) Proxies(eventID string) ([]ParticipantAmount, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	books, ok := e.books[eventID]
	if !ok {
		return nil, ErrUnknownEvent
	}
	out := make([]ParticipantAmount, 0, books.Proxies.Len())
	for _, id := range books.Proxies.Keys() {
		out = append(out, ParticipantAmount{Account: id, Amount: books.Proxies.Amount(id)})
	}
	return out, nil
}

// ProxyAt returns the i-th attributed proxy of an event with its
// attributed volume.
func (e *Engine) ProxyAt(eventID string, i int) (string, uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	books, ok := e.books[eventID]
	if !ok {
		return "", 0, ErrUnknownEvent
	}
	id, ok := books.Proxies.KeyAt(i)
	if !ok {
		return "", 0, ErrUnknownEvent
	}
	return id, books.Proxies.Amount(id), nil
}

// ProxyCount returns the number of proxies with attributed volume in an
// event.
func (e *Engine) ProxyCount(eventID string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	books, ok := e.books[eventID]
	if !ok {
		return 0, ErrUnknownEvent
	}
	return books.Proxies.Len(), nil
}

// Receipt returns the settlement receipt for a closed event from the
// archive.
func (e *Engine) Receipt(ctx context.Context, eventID string) (*model.SettlementReceipt, error) {
	return e.store.GetSettlementReceipt(ctx, eventID)
}

// Store exposes the archive for history queries.
func (e *Engine) Store() store.Store {
	return e.store
}

// --- Role and configuration setters ---

func (e *Engine) SetOwner(caller, newOwner string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.access.SetOwner(caller, newOwner)
}

func (e *Engine) GrantAdmin(caller, account string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.access.GrantAdmin(caller, account)
}

func (e *Engine) RevokeAdmin(caller, account string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.access.RevokeAdmin(caller, account)
}

func (e *Engine) SetAllowProxyCreation(caller string, allow bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.access.SetAllowProxyCreation(caller, allow)
}

// SetPlatformAddress changes where the platform fee is paid. Owner
// only.
func (e *Engine) SetPlatformAddress(caller, address string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.access.IsOwner(caller) {
		return access.ErrNotOwner
	}
	if address == "" {
		return access.ErrEmptyAccount
	}
	e.platformAddress = address
	return nil
}

// IsAdmin reports whether an account currently holds the admin role.
func (e *Engine) IsAdmin(account string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.access.IsAdmin(account)
}
