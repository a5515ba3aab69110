// Package engine implements the settlement core: event lifecycle,
// stake acceptance, proportional payout with proxy fee split,
// cancellation refunds, and withdrawal. It is the sole writer of the
// ledger books.
//
// All monetary values are uint64 scaled by fixed.Scale. Money never
// travels as float64.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kplaydefi/k-game/internal/access"
	"github.com/kplaydefi/k-game/internal/bank"
	"github.com/kplaydefi/k-game/internal/fixed"
	"github.com/kplaydefi/k-game/internal/ledger"
	"github.com/kplaydefi/k-game/internal/model"
	"github.com/kplaydefi/k-game/internal/referral"
	"github.com/kplaydefi/k-game/internal/store"
)

var (
	ErrUnauthorized     = errors.New("engine: caller not authorized")
	ErrUnknownEvent     = errors.New("engine: unknown event")
	ErrEventExists      = errors.New("engine: event already exists")
	ErrEmptyName        = errors.New("engine: event name is empty")
	ErrInvalidTimeRange = errors.New("engine: invalid time range")
	ErrInvalidBounds    = errors.New("engine: max stake must exceed min stake")
	ErrInvalidFeeRate   = errors.New("engine: fee rate must not exceed 1")
	ErrNotOpen          = errors.New("engine: event is not open")
	ErrNotStarted       = errors.New("engine: event has not started")
	ErrEnded            = errors.New("engine: event has ended")
	ErrNotEnded         = errors.New("engine: event has not ended")
	ErrInvalidOutcome   = errors.New("engine: invalid outcome")
	ErrAmountOutOfRange = errors.New("engine: amount outside stake bounds")
	ErrOneSidedMarket   = errors.New("engine: both pools must be non-empty to resolve")
	ErrZeroBalance      = errors.New("engine: no withdrawable balance")
	ErrNothingReceived  = errors.New("engine: transfer delivered no value")
	ErrProxyMismatch    = errors.New("engine: participant bound to a different proxy")
)

// Config carries the engine's operator wiring.
type Config struct {
	// Owner is the account that controls roles and configuration.
	Owner string
	// PlatformAddress receives the platform's share of settlement fees.
	PlatformAddress string
	// AllowProxyCreation lets registered proxies create events.
	AllowProxyCreation bool
	// Clock overrides the time source. Defaults to time.Now.
	Clock func() time.Time
}

// Engine executes all mutating operations under one mutex, so every
// operation runs to completion without interleaving (single-instance).
// An operation either fully commits its book mutations or commits none:
// validation and external transfers happen before the first book write.
type Engine struct {
	mu sync.Mutex

	store     store.Store
	bank      bank.ValueTransfer
	directory referral.Directory
	access    *access.Controller

	platformAddress string

	events map[string]*model.Event
	books  map[string]*ledger.Books
	order  []string // event ids in creation order

	now func() time.Time
}

// New creates an engine with empty books.
func New(st store.Store, vt bank.ValueTransfer, dir referral.Directory, cfg Config) *Engine {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Engine{
		store:           st,
		bank:            vt,
		directory:       dir,
		access:          access.New(cfg.Owner, cfg.AllowProxyCreation),
		platformAddress: cfg.PlatformAddress,
		events:          make(map[string]*model.Event),
		books:           make(map[string]*ledger.Books),
		now:             now,
	}
}

// CreateEvent opens a new event. Admins may always create; registered
// proxies may create when proxy creation is enabled. The event ID is
// derived from the caller and name, so the same name under a different
// creator yields a distinct event.
func (e *Engine) CreateEvent(ctx context.Context, caller, name string, start, end time.Time, minStake, maxStake, feeRate uint64) (*model.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.canCreate(caller) {
		return nil, ErrUnauthorized
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	now := e.now()
	if start.Before(now) {
		return nil, fmt.Errorf("%w: start %s is in the past", ErrInvalidTimeRange, start.Format(time.RFC3339))
	}
	if !end.After(start) || !end.After(now) {
		return nil, fmt.Errorf("%w: end %s must follow start", ErrInvalidTimeRange, end.Format(time.RFC3339))
	}
	if maxStake <= minStake {
		return nil, ErrInvalidBounds
	}
	if feeRate > fixed.Scale {
		return nil, ErrInvalidFeeRate
	}

	id := model.EventID(caller, name)
	if _, ok := e.events[id]; ok {
		return nil, ErrEventExists
	}

	event := &model.Event{
		ID:        id,
		Index:     uint64(len(e.order)),
		Name:      name,
		Creator:   caller,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		MinStake:  minStake,
		MaxStake:  maxStake,
		FeeRate:   feeRate,
		Status:    model.StatusOpen,
		CreatedAt: now.UTC(),
	}

	if err := e.store.InsertEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("archive event: %w", err)
	}

	copy := *event
	e.events[id] = &copy
	e.books[id] = ledger.NewBooks()
	e.order = append(e.order, id)

	slog.Info("event created",
		"id", id,
		"name", name,
		"creator", caller,
		"start", event.StartTime,
		"end", event.EndTime,
	)

	out := *event
	return &out, nil
}

func (e *Engine) canCreate(caller string) bool {
	if e.access.IsAdmin(caller) {
		return true
	}
	return e.access.AllowProxyCreation() && e.directory.IsRegisteredProxy(caller)
}

// PlaceStake escrows value from the participant and records it on one
// outcome. Repeated stakes accumulate. The amount credited is the value
// actually received by the escrow, which may be less than requested
// when the transfer mechanism withholds a cut.
func (e *Engine) PlaceStake(ctx context.Context, participant, eventID string, outcome model.Outcome, amount uint64, proxyID string) (*model.StakeEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	event, ok := e.events[eventID]
	if !ok {
		return nil, ErrUnknownEvent
	}
	if event.Status != model.StatusOpen {
		return nil, ErrNotOpen
	}
	now := e.now()
	if now.Before(event.StartTime) {
		return nil, ErrNotStarted
	}
	// The stake window is [start, end): at the end instant resolution is
	// already permitted, so staking must no longer be.
	if !now.Before(event.EndTime) {
		return nil, ErrEnded
	}
	if !outcome.Valid() {
		return nil, ErrInvalidOutcome
	}
	if amount < event.MinStake || amount > event.MaxStake {
		return nil, fmt.Errorf("%w: amount %d not in [%d, %d]", ErrAmountOutOfRange, amount, event.MinStake, event.MaxStake)
	}
	if participant == "" {
		return nil, bank.ErrEmptyAccount
	}

	// Resolve the proxy binding before any side effect. An explicit
	// proxy in the request binds the participant on first use and must
	// match any existing binding afterwards.
	var proxy model.Proxy
	var attributed bool
	if proxyID != "" {
		ok, err := e.directory.BindOrVerify(participant, proxyID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrProxyMismatch
		}
	}
	if p, ok := e.directory.BoundProxy(participant); ok {
		proxy, attributed = p, true
	}

	books := e.books[eventID]
	side := books.Side(outcome)

	// The received amount never exceeds the requested one, so checking
	// the requested amount bounds every later book write.
	if err := side.CheckAdd(participant, amount); err != nil {
		return nil, err
	}
	if attributed {
		if err := books.Proxies.CheckAdd(proxy.ID, amount); err != nil {
			return nil, err
		}
	}

	received, err := e.bank.DepositFrom(ctx, participant, amount)
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}
	if received == 0 {
		return nil, ErrNothingReceived
	}

	entry := &model.StakeEntry{
		ID:          uuid.New().String(),
		EventID:     eventID,
		Participant: participant,
		Outcome:     outcome,
		Amount:      received,
		CreatedAt:   now.UTC(),
	}
	if attributed {
		entry.ProxyID = proxy.ID
	}

	if err := e.store.InsertStakeEntry(ctx, entry); err != nil {
		// The deposit already landed in escrow; send it back so the
		// failed operation leaves no trace.
		if payErr := e.bank.PayOut(ctx, participant, received); payErr != nil {
			slog.Error("stake archive failed and refund failed, value stranded in escrow",
				"event", eventID, "participant", participant, "amount", received, "err", payErr)
		}
		return nil, fmt.Errorf("archive stake: %w", err)
	}

	// Commit. The CheckAdd calls above guarantee these cannot fail.
	if err := side.Add(participant, received); err != nil {
		return nil, err
	}
	if attributed {
		if err := books.Proxies.Add(proxy.ID, received); err != nil {
			return nil, err
		}
	}

	slog.Info("stake placed",
		"event", eventID,
		"participant", participant,
		"outcome", outcome,
		"requested", amount,
		"received", received,
		"proxy", entry.ProxyID,
	)

	out := *entry
	return &out, nil
}

// Withdraw pays out a participant's withdrawable balance for one event
// and returns the amount. The balance is zeroed before the outbound
// transfer and restored if the transfer fails.
func (e *Engine) Withdraw(ctx context.Context, participant, eventID string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	books, ok := e.books[eventID]
	if !ok {
		return 0, ErrUnknownEvent
	}
	amount := books.Balances.Zero(participant)
	if amount == 0 {
		return 0, ErrZeroBalance
	}

	if err := e.bank.PayOut(ctx, participant, amount); err != nil {
		if cErr := books.Balances.Credit(participant, amount); cErr != nil {
			slog.Error("balance restore failed after payout failure",
				"event", eventID, "participant", participant, "amount", amount, "err", cErr)
		}
		return 0, fmt.Errorf("payout: %w", err)
	}

	w := &model.Withdrawal{
		ID:          uuid.New().String(),
		EventID:     eventID,
		Participant: participant,
		Amount:      amount,
		CreatedAt:   e.now().UTC(),
	}
	if err := e.store.InsertWithdrawal(ctx, w); err != nil {
		// The transfer already completed; the withdrawal stands even
		// if the history record is lost.
		slog.Error("withdrawal archive failed",
			"event", eventID, "participant", participant, "amount", amount, "err", err)
	}

	slog.Info("withdrawal",
		"event", eventID,
		"participant", participant,
		"amount", amount,
	)
	return amount, nil
}
