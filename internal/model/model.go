// Package model defines the core domain types shared across the wagering
// engine. Monetary amounts are uint64 values scaled by fixed.Scale; the
// HTTP layer converts to shopspring/decimal at the boundary.
package model

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus is the lifecycle state of an event. Resolved and Cancelled
// are terminal: no transition ever leaves them.
type EventStatus string

const (
	StatusNone      EventStatus = "none"
	StatusOpen      EventStatus = "open"
	StatusResolved  EventStatus = "resolved"
	StatusCancelled EventStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s EventStatus) Terminal() bool {
	return s == StatusResolved || s == StatusCancelled
}

// Outcome identifies one side of a binary event.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeA    Outcome = "A"
	OutcomeB    Outcome = "B"
)

// Valid reports whether o is a stakeable outcome.
func (o Outcome) Valid() bool {
	return o == OutcomeA || o == OutcomeB
}

// Opposite returns the other side of the market.
func (o Outcome) Opposite() Outcome {
	switch o {
	case OutcomeA:
		return OutcomeB
	case OutcomeB:
		return OutcomeA
	}
	return OutcomeNone
}

// EventID derives the deterministic identifier for an event from its
// creator and name. The creator acts as a namespace, so identical names
// under different creators never collide.
func EventID(creator, name string) string {
	ns := uuid.NewSHA1(uuid.NameSpaceOID, []byte(creator))
	return uuid.NewSHA1(ns, []byte(name)).String()
}

// Event is a single time-boxed two-outcome betting market. Created once,
// mutated only by settlement (status/result), never deleted.
type Event struct {
	ID        string      `json:"id" db:"id"`
	Index     uint64      `json:"index" db:"idx"` // creation order, 0-based
	Name      string      `json:"name" db:"name"`
	Creator   string      `json:"creator" db:"creator"`
	StartTime time.Time   `json:"start_time" db:"start_time"`
	EndTime   time.Time   `json:"end_time" db:"end_time"`
	MinStake  uint64      `json:"min_stake" db:"min_stake"` // scaled
	MaxStake  uint64      `json:"max_stake" db:"max_stake"` // scaled
	FeeRate   uint64      `json:"fee_rate" db:"fee_rate"`   // scaled fraction of the losing pool
	Status    EventStatus `json:"status" db:"status"`
	Result    Outcome     `json:"result" db:"result"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	ClosedAt  *time.Time  `json:"closed_at,omitempty" db:"closed_at"` // set on resolve or cancel
}

// StakeEntry is an immutable record of one accepted stake.
// Once created, these are never modified or deleted.
type StakeEntry struct {
	ID          string    `json:"id" db:"id"`
	EventID     string    `json:"event_id" db:"event_id"`
	Participant string    `json:"participant" db:"participant"`
	Outcome     Outcome   `json:"outcome" db:"outcome"`
	Amount      uint64    `json:"amount" db:"amount"` // scaled, as actually received
	ProxyID     string    `json:"proxy_id,omitempty" db:"proxy_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// PayoutLine records one winner's credit inside a settlement receipt.
type PayoutLine struct {
	Participant string `json:"participant" db:"participant"`
	Stake       uint64 `json:"stake" db:"stake"`
	Payout      uint64 `json:"payout" db:"payout"`
}

// ProxyFeeLine records one proxy's fee share inside a settlement receipt.
type ProxyFeeLine struct {
	ProxyID    string `json:"proxy_id" db:"proxy_id"`
	Address    string `json:"address" db:"address"`
	Attributed uint64 `json:"attributed" db:"attributed"`
	Fee        uint64 `json:"fee" db:"fee"`
}

// SettlementReceipt is the durable record of one resolution or
// cancellation: pools, fee split, and every credit issued.
type SettlementReceipt struct {
	EventID       string         `json:"event_id" db:"event_id"`
	Result        Outcome        `json:"result" db:"result"` // empty on cancellation
	Cancelled     bool           `json:"cancelled" db:"cancelled"`
	WinPool       uint64         `json:"win_pool" db:"win_pool"`
	LosePool      uint64         `json:"lose_pool" db:"lose_pool"`
	Fee           uint64         `json:"fee" db:"fee"`
	PlatformFee   uint64         `json:"platform_fee" db:"platform_fee"`
	TotalProxyFee uint64         `json:"total_proxy_fee" db:"total_proxy_fee"`
	Dust          uint64         `json:"dust" db:"dust"` // lost to truncation, not swept
	Payouts       []PayoutLine   `json:"payouts"`
	ProxyFees     []ProxyFeeLine `json:"proxy_fees,omitempty"`
	SettledAt     time.Time      `json:"settled_at" db:"settled_at"`
}

// Withdrawal is an immutable record of one completed withdrawal.
type Withdrawal struct {
	ID          string    `json:"id" db:"id"`
	EventID     string    `json:"event_id" db:"event_id"`
	Participant string    `json:"participant" db:"participant"`
	Amount      uint64    `json:"amount" db:"amount"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Proxy describes a referring intermediary registered in the directory.
type Proxy struct {
	ID       string `json:"id"`
	Address  string `json:"address"`   // payout destination
	FeeShare uint64 `json:"fee_share"` // scaled fraction of the attributed fee
}
