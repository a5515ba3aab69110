// Package ledger holds the authoritative in-memory books for events:
// per-outcome stake ledgers, proxy attribution, and withdrawable
// balances. The books expose a narrow mutation surface and are written
// only by the engine; everything else reads through the engine's query
// methods.
package ledger

import (
	"github.com/kplaydefi/k-game/internal/fixed"
	"github.com/kplaydefi/k-game/internal/model"
)

// Ledger is an insertion-ordered, accumulate-only ledger from key to
// amount. A key enters the ordered set the instant its cumulative
// amount becomes non-zero; amounts only ever increase.
type Ledger struct {
	keys    []string
	amounts map[string]uint64
	total   uint64
}

func NewLedger() *Ledger {
	return &Ledger{amounts: make(map[string]uint64)}
}

// CheckAdd reports whether Add(key, amount) would succeed, without
// mutating. Callers use it to validate before side effects that cannot
// be rolled back.
func (l *Ledger) CheckAdd(key string, amount uint64) error {
	if _, err := fixed.Add(l.amounts[key], amount); err != nil {
		return err
	}
	_, err := fixed.Add(l.total, amount)
	return err
}

// Add accumulates amount under key. The zero-balance check before the
// write keeps unique-key tracking O(1) per call.
func (l *Ledger) Add(key string, amount uint64) error {
	cur := l.amounts[key]
	next, err := fixed.Add(cur, amount)
	if err != nil {
		return err
	}
	total, err := fixed.Add(l.total, amount)
	if err != nil {
		return err
	}
	if cur == 0 && next != 0 {
		l.keys = append(l.keys, key)
	}
	l.amounts[key] = next
	l.total = total
	return nil
}

// Amount returns the cumulative amount for key, zero if absent.
func (l *Ledger) Amount(key string) uint64 {
	return l.amounts[key]
}

// Total returns the running sum of all amounts.
func (l *Ledger) Total() uint64 {
	return l.total
}

// Len returns the number of unique keys.
func (l *Ledger) Len() int {
	return len(l.keys)
}

// KeyAt returns the i-th key in insertion order.
func (l *Ledger) KeyAt(i int) (string, bool) {
	if i < 0 || i >= len(l.keys) {
		return "", false
	}
	return l.keys[i], true
}

// Keys returns the keys in insertion order. The slice is a copy.
func (l *Ledger) Keys() []string {
	out := make([]string, len(l.keys))
	copy(out, l.keys)
	return out
}

// Balances tracks withdrawable credit per participant for one event.
// Credits are additive; withdrawal zeroes the entry.
type Balances struct {
	amounts map[string]uint64
}

func NewBalances() *Balances {
	return &Balances{amounts: make(map[string]uint64)}
}

// CheckCredit reports whether Credit(key, amount) would succeed.
func (b *Balances) CheckCredit(key string, amount uint64) error {
	_, err := fixed.Add(b.amounts[key], amount)
	return err
}

// Credit adds amount to key's withdrawable balance.
func (b *Balances) Credit(key string, amount uint64) error {
	next, err := fixed.Add(b.amounts[key], amount)
	if err != nil {
		return err
	}
	b.amounts[key] = next
	return nil
}

// Zero clears key's balance and returns the prior amount.
func (b *Balances) Zero(key string) uint64 {
	prior := b.amounts[key]
	if prior != 0 {
		b.amounts[key] = 0
	}
	return prior
}

// Amount returns key's withdrawable balance, zero if absent.
func (b *Balances) Amount(key string) uint64 {
	return b.amounts[key]
}

// Books aggregates all ledgers for one event. Created at event creation
// and retained indefinitely; settled events stay queryable.
type Books struct {
	sides    map[model.Outcome]*Ledger
	Proxies  *Ledger
	Balances *Balances
}

func NewBooks() *Books {
	return &Books{
		sides: map[model.Outcome]*Ledger{
			model.OutcomeA: NewLedger(),
			model.OutcomeB: NewLedger(),
		},
		Proxies:  NewLedger(),
		Balances: NewBalances(),
	}
}

// Side returns the stake ledger for one outcome. Panics on an invalid
// outcome; callers validate before reaching the books.
func (b *Books) Side(o model.Outcome) *Ledger {
	s, ok := b.sides[o]
	if !ok {
		panic("ledger: invalid outcome " + string(o))
	}
	return s
}

// Pool returns the total staked on one outcome.
func (b *Books) Pool(o model.Outcome) uint64 {
	return b.Side(o).Total()
}
