package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kplaydefi/k-game/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu          sync.RWMutex
	events      map[string]*model.Event
	order       []string // event ids in creation order
	stakes      []model.StakeEntry
	receipts    map[string]*model.SettlementReceipt
	withdrawals []model.Withdrawal
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:   make(map[string]*model.Event),
		receipts: make(map[string]*model.SettlementReceipt),
	}
}

func (s *MemoryStore) InsertEvent(_ context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[e.ID]; ok {
		return fmt.Errorf("event %s already exists", e.ID)
	}

	// Store a copy to avoid external mutation.
	copy := *e
	s.events[e.ID] = &copy
	s.order = append(s.order, e.ID)
	return nil
}

func (s *MemoryStore) UpdateEventStatus(_ context.Context, id string, status model.EventStatus, result model.Outcome, closedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	e.Status = status
	e.Result = result
	e.ClosedAt = &closedAt
	return nil
}

func (s *MemoryStore) GetEvent(_ context.Context, id string) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	copy := *e
	return &copy, nil
}

func (s *MemoryStore) ListEvents(_ context.Context) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]model.Event, 0, len(s.order))
	for _, id := range s.order {
		events = append(events, *s.events[id])
	}
	return events, nil
}

func (s *MemoryStore) InsertStakeEntry(_ context.Context, entry *model.StakeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stakes = append(s.stakes, *entry)
	return nil
}

func (s *MemoryStore) StakeEntriesByEvent(_ context.Context, eventID string) ([]model.StakeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.StakeEntry
	for _, e := range s.stakes {
		if e.EventID == eventID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (s *MemoryStore) StakeEntriesByParticipant(_ context.Context, participant string) ([]model.StakeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.StakeEntry
	for _, e := range s.stakes {
		if e.Participant == participant {
			result = append(result, e)
		}
	}
	return result, nil
}

func (s *MemoryStore) InsertSettlementReceipt(_ context.Context, r *model.SettlementReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.receipts[r.EventID]; ok {
		return fmt.Errorf("receipt for event %s already exists", r.EventID)
	}
	copy := *r
	copy.Payouts = append([]model.PayoutLine(nil), r.Payouts...)
	copy.ProxyFees = append([]model.ProxyFeeLine(nil), r.ProxyFees...)
	s.receipts[r.EventID] = &copy
	return nil
}

func (s *MemoryStore) GetSettlementReceipt(_ context.Context, eventID string) (*model.SettlementReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.receipts[eventID]
	if !ok {
		return nil, fmt.Errorf("receipt for event %s: %w", eventID, ErrNotFound)
	}
	copy := *r
	copy.Payouts = append([]model.PayoutLine(nil), r.Payouts...)
	copy.ProxyFees = append([]model.ProxyFeeLine(nil), r.ProxyFees...)
	return &copy, nil
}

func (s *MemoryStore) InsertWithdrawal(_ context.Context, w *model.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.withdrawals = append(s.withdrawals, *w)
	return nil
}

func (s *MemoryStore) WithdrawalsByParticipant(_ context.Context, participant string) ([]model.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Withdrawal
	for _, w := range s.withdrawals {
		if w.Participant == participant {
			result = append(result, w)
		}
	}
	return result, nil
}
