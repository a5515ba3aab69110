// Package wager provides the HTTP handlers for event management,
// staking, settlement, and withdrawal.
//
// Amounts cross the wire as shopspring/decimal and are converted to the
// engine's scaled representation at this boundary. Money never travels
// as float64.
package wager

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kplaydefi/k-game/internal/access"
	"github.com/kplaydefi/k-game/internal/bank"
	"github.com/kplaydefi/k-game/internal/engine"
	"github.com/kplaydefi/k-game/internal/fixed"
	"github.com/kplaydefi/k-game/internal/metrics"
	"github.com/kplaydefi/k-game/internal/model"
	"github.com/kplaydefi/k-game/internal/store"
)

// callerHeader carries the acting account on mutating requests.
const callerHeader = "X-Account"

// Service exposes the engine over HTTP.
type Service struct {
	engine *engine.Engine
	wsHub  *WSHub // optional, nil disables broadcasts
}

// NewService creates a new wager service.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(eng *engine.Engine, hub *WSHub) *Service {
	return &Service{engine: eng, wsHub: hub}
}

// Register mounts all handlers on the router under /api/v1 semantics.
func (s *Service) Register(r chi.Router) {
	r.Get("/events", s.ListEvents)
	r.Post("/events", s.CreateEvent)
	r.Get("/events/count", s.GetEventCount)
	r.Get("/events/index/{index}", s.GetEventByIndex)
	r.Get("/events/{eventID}", s.GetEvent)
	r.Get("/events/{eventID}/pools", s.GetPools)
	r.Get("/events/{eventID}/participants/{outcome}", s.GetParticipants)
	r.Get("/events/{eventID}/proxies", s.GetProxies)
	r.Get("/events/{eventID}/stakes/{participant}", s.GetParticipantStake)
	r.Get("/events/{eventID}/balance/{participant}", s.GetBalance)
	r.Get("/events/{eventID}/settlement", s.GetSettlement)
	r.Get("/events/{eventID}/history", s.GetEventHistory)
	r.Post("/events/{eventID}/stakes", s.PlaceStake)
	r.Post("/events/{eventID}/resolve", s.Resolve)
	r.Post("/events/{eventID}/cancel", s.Cancel)
	r.Post("/events/{eventID}/withdraw", s.Withdraw)

	r.Get("/participants/{participant}/stakes", s.GetParticipantHistory)
	r.Get("/participants/{participant}/withdrawals", s.GetWithdrawals)

	r.Post("/admin/owner", s.SetOwner)
	r.Post("/admin/admins", s.GrantAdmin)
	r.Delete("/admin/admins/{account}", s.RevokeAdmin)
	r.Post("/admin/platform-address", s.SetPlatformAddress)
	r.Post("/admin/proxy-creation", s.SetProxyCreation)
}

// --- Request/Response types ---

// CreateEventRequest is the JSON body for event creation. The caller is
// taken from the X-Account header.
type CreateEventRequest struct {
	Name      string          `json:"name"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	MinStake  decimal.Decimal `json:"min_stake"`
	MaxStake  decimal.Decimal `json:"max_stake"`
	FeeRate   decimal.Decimal `json:"fee_rate"` // fraction of the losing pool, e.g. 0.05
}

// EventResponse is the wire form of an event.
type EventResponse struct {
	ID        string            `json:"id"`
	Index     uint64            `json:"index"`
	Name      string            `json:"name"`
	Creator   string            `json:"creator"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	MinStake  decimal.Decimal   `json:"min_stake"`
	MaxStake  decimal.Decimal   `json:"max_stake"`
	FeeRate   decimal.Decimal   `json:"fee_rate"`
	Status    model.EventStatus `json:"status"`
	Result    model.Outcome     `json:"result,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	ClosedAt  *time.Time        `json:"closed_at,omitempty"`
}

// StakeRequest is the JSON body for POST /events/{id}/stakes.
type StakeRequest struct {
	Participant string          `json:"participant"`
	Outcome     model.Outcome   `json:"outcome"`
	Amount      decimal.Decimal `json:"amount"`
	ProxyID     string          `json:"proxy_id,omitempty"`
}

// StakeResponse is returned from a successful stake.
type StakeResponse struct {
	StakeID     string          `json:"stake_id"`
	EventID     string          `json:"event_id"`
	Participant string          `json:"participant"`
	Outcome     model.Outcome   `json:"outcome"`
	Amount      decimal.Decimal `json:"amount"` // as actually received
	ProxyID     string          `json:"proxy_id,omitempty"`
}

// ResolveRequest is the JSON body for POST /events/{id}/resolve.
type ResolveRequest struct {
	Result model.Outcome `json:"result"`
}

// WithdrawRequest is the JSON body for POST /events/{id}/withdraw.
type WithdrawRequest struct {
	Participant string `json:"participant"`
}

// PoolsResponse exposes outcome totals and participant counts.
type PoolsResponse struct {
	PoolA         decimal.Decimal `json:"pool_a"`
	PoolB         decimal.Decimal `json:"pool_b"`
	ParticipantsA int             `json:"participants_a"`
	ParticipantsB int             `json:"participants_b"`
}

// SettlementResponse is the wire form of a settlement receipt.
type SettlementResponse struct {
	EventID       string          `json:"event_id"`
	Result        model.Outcome   `json:"result,omitempty"`
	Cancelled     bool            `json:"cancelled"`
	WinPool       decimal.Decimal `json:"win_pool"`
	LosePool      decimal.Decimal `json:"lose_pool"`
	Fee           decimal.Decimal `json:"fee"`
	PlatformFee   decimal.Decimal `json:"platform_fee"`
	TotalProxyFee decimal.Decimal `json:"total_proxy_fee"`
	Dust          decimal.Decimal `json:"dust"`
	Payouts       []PayoutLine    `json:"payouts"`
	ProxyFees     []ProxyFeeLine  `json:"proxy_fees,omitempty"`
	SettledAt     time.Time       `json:"settled_at"`
}

// PayoutLine is the wire form of one winner's credit.
type PayoutLine struct {
	Participant string          `json:"participant"`
	Stake       decimal.Decimal `json:"stake"`
	Payout      decimal.Decimal `json:"payout"`
}

// ProxyFeeLine is the wire form of one proxy's fee share.
type ProxyFeeLine struct {
	ProxyID    string          `json:"proxy_id"`
	Address    string          `json:"address"`
	Attributed decimal.Decimal `json:"attributed"`
	Fee        decimal.Decimal `json:"fee"`
}

func toEventResponse(e model.Event) EventResponse {
	return EventResponse{
		ID:        e.ID,
		Index:     e.Index,
		Name:      e.Name,
		Creator:   e.Creator,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		MinStake:  fixed.ToDecimal(e.MinStake),
		MaxStake:  fixed.ToDecimal(e.MaxStake),
		FeeRate:   fixed.ToDecimal(e.FeeRate),
		Status:    e.Status,
		Result:    e.Result,
		CreatedAt: e.CreatedAt,
		ClosedAt:  e.ClosedAt,
	}
}

func toSettlementResponse(rc model.SettlementReceipt) SettlementResponse {
	out := SettlementResponse{
		EventID:       rc.EventID,
		Result:        rc.Result,
		Cancelled:     rc.Cancelled,
		WinPool:       fixed.ToDecimal(rc.WinPool),
		LosePool:      fixed.ToDecimal(rc.LosePool),
		Fee:           fixed.ToDecimal(rc.Fee),
		PlatformFee:   fixed.ToDecimal(rc.PlatformFee),
		TotalProxyFee: fixed.ToDecimal(rc.TotalProxyFee),
		Dust:          fixed.ToDecimal(rc.Dust),
		SettledAt:     rc.SettledAt,
		Payouts:       make([]PayoutLine, 0, len(rc.Payouts)),
	}
	for _, p := range rc.Payouts {
		out.Payouts = append(out.Payouts, PayoutLine{
			Participant: p.Participant,
			Stake:       fixed.ToDecimal(p.Stake),
			Payout:      fixed.ToDecimal(p.Payout),
		})
	}
	for _, f := range rc.ProxyFees {
		out.ProxyFees = append(out.ProxyFees, ProxyFeeLine{
			ProxyID:    f.ProxyID,
			Address:    f.Address,
			Attributed: fixed.ToDecimal(f.Attributed),
			Fee:        fixed.ToDecimal(f.Fee),
		})
	}
	return out
}

// --- Event handlers ---

// CreateEvent handles POST /api/v1/events
func (s *Service) CreateEvent(w http.ResponseWriter, r *http.Request) {
	caller := r.Header.Get(callerHeader)
	if caller == "" {
		writeError(w, "X-Account header is required", http.StatusBadRequest)
		return
	}
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	minStake, err := fixed.FromDecimal(req.MinStake)
	if err != nil {
		writeError(w, "invalid min_stake: "+err.Error(), http.StatusBadRequest)
		return
	}
	maxStake, err := fixed.FromDecimal(req.MaxStake)
	if err != nil {
		writeError(w, "invalid max_stake: "+err.Error(), http.StatusBadRequest)
		return
	}
	feeRate, err := fixed.FromDecimal(req.FeeRate)
	if err != nil {
		writeError(w, "invalid fee_rate: "+err.Error(), http.StatusBadRequest)
		return
	}

	event, err := s.engine.CreateEvent(r.Context(), caller, req.Name,
		req.StartTime, req.EndTime, minStake, maxStake, feeRate)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	metrics.OpenEvents.Inc()
	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:    "event_created",
			EventID: event.ID,
			Name:    event.Name,
		})
	}

	writeJSON(w, http.StatusCreated, toEventResponse(*event))
}

// ListEvents handles GET /api/v1/events
func (s *Service) ListEvents(w http.ResponseWriter, _ *http.Request) {
	events := s.engine.Events()
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetEvent handles GET /api/v1/events/{eventID}
// An unknown ID yields a zero-valued event with status "none".
func (s *Service) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	writeJSON(w, http.StatusOK, toEventResponse(s.engine.Event(eventID)))
}

// GetEventCount handles GET /api/v1/events/count
func (s *Service) GetEventCount(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"count": s.engine.EventCount()})
}

// GetEventByIndex handles GET /api/v1/events/index/{index}
func (s *Service) GetEventByIndex(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, "invalid index", http.StatusBadRequest)
		return
	}
	id, ok := s.engine.EventIDByIndex(idx)
	if !ok {
		writeError(w, "index out of range", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// GetParticipants handles GET /api/v1/events/{eventID}/participants/{outcome}
// Participants are listed in stake order.
func (s *Service) GetParticipants(w http.ResponseWriter, r *http.Request) {
	outcome := model.Outcome(chi.URLParam(r, "outcome"))
	participants, err := s.engine.Participants(chi.URLParam(r, "eventID"), outcome)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	out := make([]accountAmount, 0, len(participants))
	for _, p := range participants {
		out = append(out, accountAmount{Account: p.Account, Amount: fixed.ToDecimal(p.Amount)})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetProxies handles GET /api/v1/events/{eventID}/proxies
func (s *Service) GetProxies(w http.ResponseWriter, r *http.Request) {
	proxies, err := s.engine.Proxies(chi.URLParam(r, "eventID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	out := make([]accountAmount, 0, len(proxies))
	for _, p := range proxies {
		out = append(out, accountAmount{Account: p.Account, Amount: fixed.ToDecimal(p.Amount)})
	}
	writeJSON(w, http.StatusOK, out)
}

// accountAmount is the wire form of an ordered ledger line.
type accountAmount struct {
	Account string          `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

// GetPools handles GET /api/v1/events/{eventID}/pools
func (s *Service) GetPools(w http.ResponseWriter, r *http.Request) {
	pools, err := s.engine.Pools(chi.URLParam(r, "eventID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PoolsResponse{
		PoolA:         fixed.ToDecimal(pools.PoolA),
		PoolB:         fixed.ToDecimal(pools.PoolB),
		ParticipantsA: pools.ParticipantsA,
		ParticipantsB: pools.ParticipantsB,
	})
}

// GetParticipantStake handles GET /api/v1/events/{eventID}/stakes/{participant}
func (s *Service) GetParticipantStake(w http.ResponseWriter, r *http.Request) {
	st, err := s.engine.StakeOf(chi.URLParam(r, "eventID"), chi.URLParam(r, "participant"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{
		"stake_a": fixed.ToDecimal(st.StakeA),
		"stake_b": fixed.ToDecimal(st.StakeB),
	})
}

// GetBalance handles GET /api/v1/events/{eventID}/balance/{participant}
func (s *Service) GetBalance(w http.ResponseWriter, r *http.Request) {
	bal, err := s.engine.BalanceOf(chi.URLParam(r, "eventID"), chi.URLParam(r, "participant"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{
		"balance": fixed.ToDecimal(bal),
	})
}

// --- Staking ---

// PlaceStake handles POST /api/v1/events/{eventID}/stakes
func (s *Service) PlaceStake(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	var req StakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Participant == "" {
		writeError(w, "participant is required", http.StatusBadRequest)
		return
	}
	amount, err := fixed.FromDecimal(req.Amount)
	if err != nil {
		writeError(w, "invalid amount: "+err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := s.engine.PlaceStake(r.Context(), req.Participant, eventID, req.Outcome, amount, req.ProxyID)
	if err != nil {
		metrics.StakeRejections.Inc()
		writeEngineError(w, err)
		return
	}

	metrics.StakesTotal.WithLabelValues(string(entry.Outcome)).Inc()
	metrics.StakeVolume.WithLabelValues(eventID, string(entry.Outcome)).
		Add(fixed.ToDecimal(entry.Amount).InexactFloat64())
	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:    "stake_placed",
			EventID: eventID,
			Outcome: string(entry.Outcome),
			Amount:  fixed.ToDecimal(entry.Amount).String(),
		})
	}

	writeJSON(w, http.StatusOK, StakeResponse{
		StakeID:     entry.ID,
		EventID:     entry.EventID,
		Participant: entry.Participant,
		Outcome:     entry.Outcome,
		Amount:      fixed.ToDecimal(entry.Amount),
		ProxyID:     entry.ProxyID,
	})
}

// --- Settlement ---

// Resolve handles POST /api/v1/events/{eventID}/resolve
func (s *Service) Resolve(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	caller := r.Header.Get(callerHeader)
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	receipt, err := s.engine.Resolve(r.Context(), caller, eventID, req.Result)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	metrics.SettlementsTotal.WithLabelValues("resolved").Inc()
	metrics.OpenEvents.Dec()
	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:    "event_resolved",
			EventID: eventID,
			Result:  string(receipt.Result),
		})
	}

	writeJSON(w, http.StatusOK, toSettlementResponse(*receipt))
}

// Cancel handles POST /api/v1/events/{eventID}/cancel
func (s *Service) Cancel(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	caller := r.Header.Get(callerHeader)

	receipt, err := s.engine.Cancel(r.Context(), caller, eventID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	metrics.SettlementsTotal.WithLabelValues("cancelled").Inc()
	metrics.OpenEvents.Dec()
	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:    "event_cancelled",
			EventID: eventID,
		})
	}

	writeJSON(w, http.StatusOK, toSettlementResponse(*receipt))
}

// GetSettlement handles GET /api/v1/events/{eventID}/settlement
func (s *Service) GetSettlement(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.engine.Receipt(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(*receipt))
}

// --- Withdrawal ---

// Withdraw handles POST /api/v1/events/{eventID}/withdraw
func (s *Service) Withdraw(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Participant == "" {
		writeError(w, "participant is required", http.StatusBadRequest)
		return
	}

	amount, err := s.engine.Withdraw(r.Context(), req.Participant, eventID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	metrics.WithdrawalsTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{
		"amount": fixed.ToDecimal(amount),
	})
}

// --- History ---

// GetEventHistory handles GET /api/v1/events/{eventID}/history
// Returns the immutable stake records for an event.
func (s *Service) GetEventHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.engine.Store().StakeEntriesByEvent(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		writeError(w, "failed to load event history", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []model.StakeEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetParticipantHistory handles GET /api/v1/participants/{participant}/stakes
func (s *Service) GetParticipantHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.engine.Store().StakeEntriesByParticipant(r.Context(), chi.URLParam(r, "participant"))
	if err != nil {
		writeError(w, "failed to load stake history", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []model.StakeEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetWithdrawals handles GET /api/v1/participants/{participant}/withdrawals
func (s *Service) GetWithdrawals(w http.ResponseWriter, r *http.Request) {
	ws, err := s.engine.Store().WithdrawalsByParticipant(r.Context(), chi.URLParam(r, "participant"))
	if err != nil {
		writeError(w, "failed to load withdrawals", http.StatusInternalServerError)
		return
	}
	if ws == nil {
		ws = []model.Withdrawal{}
	}
	writeJSON(w, http.StatusOK, ws)
}

// --- Role and configuration ---

func (s *Service) SetOwner(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Owner string `json:"owner"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.engine.SetOwner(r.Header.Get(callerHeader), req.Owner); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"owner": req.Owner})
}

func (s *Service) GrantAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Account string `json:"account"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.engine.GrantAdmin(r.Header.Get(callerHeader), req.Account); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"admin": req.Account})
}

func (s *Service) RevokeAdmin(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if err := s.engine.RevokeAdmin(r.Header.Get(callerHeader), account); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) SetPlatformAddress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.engine.SetPlatformAddress(r.Header.Get(callerHeader), req.Address); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"address": req.Address})
}

func (s *Service) SetProxyCreation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Allow bool `json:"allow"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.engine.SetAllowProxyCreation(r.Header.Get(callerHeader), req.Allow); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"allow": req.Allow})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeEngineError maps engine errors onto HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, engine.ErrUnauthorized),
		errors.Is(err, access.ErrNotOwner),
		errors.Is(err, access.ErrNotAdmin):
		status = http.StatusForbidden
	case errors.Is(err, engine.ErrUnknownEvent),
		errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrEventExists),
		errors.Is(err, engine.ErrNotOpen),
		errors.Is(err, engine.ErrNotStarted),
		errors.Is(err, engine.ErrEnded),
		errors.Is(err, engine.ErrNotEnded),
		errors.Is(err, engine.ErrOneSidedMarket),
		errors.Is(err, engine.ErrZeroBalance),
		errors.Is(err, bank.ErrInsufficientFunds):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrEmptyName),
		errors.Is(err, engine.ErrInvalidTimeRange),
		errors.Is(err, engine.ErrInvalidBounds),
		errors.Is(err, engine.ErrInvalidFeeRate),
		errors.Is(err, engine.ErrInvalidOutcome),
		errors.Is(err, engine.ErrAmountOutOfRange),
		errors.Is(err, engine.ErrProxyMismatch),
		errors.Is(err, access.ErrEmptyAccount),
		errors.Is(err, bank.ErrEmptyAccount):
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
	}
	writeError(w, err.Error(), status)
}
