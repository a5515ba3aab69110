package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kplaydefi/k-game/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Writes go to the primary store and invalidate the cache; reads
// check Redis first then fall back to the primary. Events and receipts
// are immutable once closed, so they cache well.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) InsertEvent(ctx context.Context, e *model.Event) error {
	if err := s.primary.InsertEvent(ctx, e); err != nil {
		return err
	}
	s.cacheEvent(ctx, e)
	return nil
}

func (s *CachedStore) UpdateEventStatus(ctx context.Context, id string, status model.EventStatus, result model.Outcome, closedAt time.Time) error {
	if err := s.primary.UpdateEventStatus(ctx, id, status, result, closedAt); err != nil {
		return err
	}
	// Invalidate; next read re-populates.
	s.rdb.Del(ctx, eventKey(id))
	return nil
}

func (s *CachedStore) InsertStakeEntry(ctx context.Context, entry *model.StakeEntry) error {
	return s.primary.InsertStakeEntry(ctx, entry)
}

func (s *CachedStore) InsertSettlementReceipt(ctx context.Context, r *model.SettlementReceipt) error {
	if err := s.primary.InsertSettlementReceipt(ctx, r); err != nil {
		return err
	}
	s.cacheReceipt(ctx, r)
	return nil
}

func (s *CachedStore) InsertWithdrawal(ctx context.Context, w *model.Withdrawal) error {
	return s.primary.InsertWithdrawal(ctx, w)
}

// --- Read-through (check cache first) ---

func (s *CachedStore) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	data, err := s.rdb.Get(ctx, eventKey(id)).Bytes()
	if err == nil {
		var e model.Event
		if json.Unmarshal(data, &e) == nil {
			return &e, nil
		}
	}

	e, err := s.primary.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheEvent(ctx, e)
	return e, nil
}

func (s *CachedStore) GetSettlementReceipt(ctx context.Context, eventID string) (*model.SettlementReceipt, error) {
	data, err := s.rdb.Get(ctx, receiptKey(eventID)).Bytes()
	if err == nil {
		var r model.SettlementReceipt
		if json.Unmarshal(data, &r) == nil {
			return &r, nil
		}
	}

	r, err := s.primary.GetSettlementReceipt(ctx, eventID)
	if err != nil {
		return nil, err
	}

	s.cacheReceipt(ctx, r)
	return r, nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.primary.ListEvents(ctx)
}

func (s *CachedStore) StakeEntriesByEvent(ctx context.Context, eventID string) ([]model.StakeEntry, error) {
	return s.primary.StakeEntriesByEvent(ctx, eventID)
}

func (s *CachedStore) StakeEntriesByParticipant(ctx context.Context, participant string) ([]model.StakeEntry, error) {
	return s.primary.StakeEntriesByParticipant(ctx, participant)
}

func (s *CachedStore) WithdrawalsByParticipant(ctx context.Context, participant string) ([]model.Withdrawal, error) {
	return s.primary.WithdrawalsByParticipant(ctx, participant)
}

// --- Cache helpers ---

func (s *CachedStore) cacheEvent(ctx context.Context, e *model.Event) {
	if data, err := json.Marshal(e); err == nil {
		s.rdb.Set(ctx, eventKey(e.ID), data, s.ttl)
	}
}

func (s *CachedStore) cacheReceipt(ctx context.Context, r *model.SettlementReceipt) {
	if data, err := json.Marshal(r); err == nil {
		s.rdb.Set(ctx, receiptKey(r.EventID), data, s.ttl)
	}
}

func eventKey(id string) string   { return fmt.Sprintf("event:%s", id) }
func receiptKey(id string) string { return fmt.Sprintf("receipt:%s", id) }
