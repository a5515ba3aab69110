package wager_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kplaydefi/k-game/internal/bank"
	"github.com/kplaydefi/k-game/internal/engine"
	"github.com/kplaydefi/k-game/internal/model"
	"github.com/kplaydefi/k-game/internal/referral"
	"github.com/kplaydefi/k-game/internal/store"
	"github.com/kplaydefi/k-game/internal/wager"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

type testEnv struct {
	router chi.Router
	bank   *bank.EscrowBank
	dir    *referral.MemoryDirectory
	now    time.Time
}

// newTestEnv creates a test Service with in-memory collaborators and a
// chi router. The clock is frozen and advanced through env.now.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		bank: bank.NewEscrowBank(),
		dir:  referral.NewMemoryDirectory(),
		now:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	eng := engine.New(store.NewMemoryStore(), env.bank, env.dir, engine.Config{
		Owner:           "owner",
		PlatformAddress: "platform",
		Clock:           func() time.Time { return env.now },
	})
	svc := wager.NewService(eng, nil)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		svc.Register(r)
	})
	env.router = r

	for _, acct := range []string{"alice", "bob"} {
		if err := env.bank.Mint(acct, 1_000*100_000_000); err != nil {
			t.Fatalf("mint: %v", err)
		}
	}
	return env
}

func (env *testEnv) do(t *testing.T, method, path, account string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if account != "" {
		req.Header.Set("X-Account", account)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// createEvent posts a standard event (min 1, max 100, fee 5%) and
// advances the clock into its stake window.
func (env *testEnv) createEvent(t *testing.T, name string) string {
	t.Helper()
	w := env.do(t, "POST", "/api/v1/events", "owner", wager.CreateEventRequest{
		Name:      name,
		StartTime: env.now.Add(time.Minute),
		EndTime:   env.now.Add(time.Hour),
		MinStake:  d(1),
		MaxStake:  d(100),
		FeeRate:   d(0.05),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create event: %d: %s", w.Code, w.Body.String())
	}
	var resp wager.EventResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	env.now = env.now.Add(2 * time.Minute)
	return resp.ID
}

func (env *testEnv) stake(t *testing.T, eventID, participant string, outcome model.Outcome, amount float64) {
	t.Helper()
	w := env.do(t, "POST", "/api/v1/events/"+eventID+"/stakes", "", wager.StakeRequest{
		Participant: participant,
		Outcome:     outcome,
		Amount:      d(amount),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("stake: %d: %s", w.Code, w.Body.String())
	}
}

// --- Event creation ---

func TestCreateEvent_RequiresAccountHeader(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "POST", "/api/v1/events", "", wager.CreateEventRequest{
		Name:      "derby",
		StartTime: env.now.Add(time.Minute),
		EndTime:   env.now.Add(time.Hour),
		MinStake:  d(1),
		MaxStake:  d(100),
		FeeRate:   d(0.05),
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCreateEvent_NonAdminForbidden(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "POST", "/api/v1/events", "alice", wager.CreateEventRequest{
		Name:      "derby",
		StartTime: env.now.Add(time.Minute),
		EndTime:   env.now.Add(time.Hour),
		MinStake:  d(1),
		MaxStake:  d(100),
		FeeRate:   d(0.05),
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateEvent_ReturnsDecimalBounds(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "POST", "/api/v1/events", "owner", wager.CreateEventRequest{
		Name:      "derby",
		StartTime: env.now.Add(time.Minute),
		EndTime:   env.now.Add(time.Hour),
		MinStake:  d(1),
		MaxStake:  d(100),
		FeeRate:   d(0.05),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp wager.EventResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.ID == "" {
		t.Error("expected non-empty event id")
	}
	if resp.Status != model.StatusOpen {
		t.Errorf("status = %s, want open", resp.Status)
	}
	if !resp.FeeRate.Equal(d(0.05)) {
		t.Errorf("fee rate = %s, want 0.05", resp.FeeRate)
	}
	if !resp.MaxStake.Equal(d(100)) {
		t.Errorf("max stake = %s, want 100", resp.MaxStake)
	}
}

func TestGetEvent_UnknownReturnsStatusNone(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "GET", "/api/v1/events/no-such-id", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp wager.EventResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != model.StatusNone {
		t.Errorf("status = %s, want none", resp.Status)
	}
}

// --- Staking ---

func TestPlaceStake_RejectsSubUnitPrecision(t *testing.T) {
	env := newTestEnv(t)
	id := env.createEvent(t, "derby")

	amount, _ := decimal.NewFromString("1.000000001") // 9 fractional digits
	w := env.do(t, "POST", "/api/v1/events/"+id+"/stakes", "", wager.StakeRequest{
		Participant: "alice",
		Outcome:     model.OutcomeA,
		Amount:      amount,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPlaceStake_RejectsInsufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	id := env.createEvent(t, "derby")

	w := env.do(t, "POST", "/api/v1/events/"+id+"/stakes", "", wager.StakeRequest{
		Participant: "pauper",
		Outcome:     model.OutcomeA,
		Amount:      d(10),
	})
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPoolsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	id := env.createEvent(t, "derby")
	env.stake(t, id, "alice", model.OutcomeA, 60)
	env.stake(t, id, "bob", model.OutcomeB, 40)

	w := env.do(t, "GET", "/api/v1/events/"+id+"/pools", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp wager.PoolsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.PoolA.Equal(d(60)) || !resp.PoolB.Equal(d(40)) {
		t.Errorf("pools = %s/%s, want 60/40", resp.PoolA, resp.PoolB)
	}
	if resp.ParticipantsA != 1 || resp.ParticipantsB != 1 {
		t.Errorf("participants = %d/%d, want 1/1", resp.ParticipantsA, resp.ParticipantsB)
	}
}

func TestEnumerationEndpoints(t *testing.T) {
	env := newTestEnv(t)
	id := env.createEvent(t, "derby")
	env.stake(t, id, "alice", model.OutcomeA, 60)
	env.stake(t, id, "bob", model.OutcomeB, 40)

	w := env.do(t, "GET", "/api/v1/events/count", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("count: %d", w.Code)
	}
	var countResp map[string]int
	json.Unmarshal(w.Body.Bytes(), &countResp)
	if countResp["count"] != 1 {
		t.Errorf("count = %d, want 1", countResp["count"])
	}

	w = env.do(t, "GET", "/api/v1/events/index/0", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("by index: %d", w.Code)
	}
	var idxResp map[string]string
	json.Unmarshal(w.Body.Bytes(), &idxResp)
	if idxResp["id"] != id {
		t.Errorf("index 0 = %s, want %s", idxResp["id"], id)
	}
	w = env.do(t, "GET", "/api/v1/events/index/1", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("out-of-range index: expected 404, got %d", w.Code)
	}

	w = env.do(t, "GET", "/api/v1/events/"+id+"/participants/A", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("participants: %d: %s", w.Code, w.Body.String())
	}
	var lines []struct {
		Account string          `json:"account"`
		Amount  decimal.Decimal `json:"amount"`
	}
	json.Unmarshal(w.Body.Bytes(), &lines)
	if len(lines) != 1 || lines[0].Account != "alice" || !lines[0].Amount.Equal(d(60)) {
		t.Errorf("participants A = %+v, want [alice 60]", lines)
	}

	w = env.do(t, "GET", "/api/v1/events/"+id+"/proxies", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("proxies: %d", w.Code)
	}
	json.Unmarshal(w.Body.Bytes(), &lines)
	if len(lines) != 0 {
		t.Errorf("expected no proxy attribution, got %+v", lines)
	}
}

// --- Settlement flow ---

func TestResolveAndWithdrawFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.createEvent(t, "derby")
	env.stake(t, id, "alice", model.OutcomeA, 60)
	env.stake(t, id, "bob", model.OutcomeB, 40)

	// Resolution needs the event to be past its end time.
	w := env.do(t, "POST", "/api/v1/events/"+id+"/resolve", "owner", wager.ResolveRequest{Result: model.OutcomeA})
	if w.Code != http.StatusConflict {
		t.Fatalf("resolve before end: expected 409, got %d", w.Code)
	}
	env.now = env.now.Add(2 * time.Hour)

	w = env.do(t, "POST", "/api/v1/events/"+id+"/resolve", "alice", wager.ResolveRequest{Result: model.OutcomeA})
	if w.Code != http.StatusForbidden {
		t.Fatalf("resolve by non-admin: expected 403, got %d", w.Code)
	}

	w = env.do(t, "POST", "/api/v1/events/"+id+"/resolve", "owner", wager.ResolveRequest{Result: model.OutcomeA})
	if w.Code != http.StatusOK {
		t.Fatalf("resolve: %d: %s", w.Code, w.Body.String())
	}
	var receipt wager.SettlementResponse
	json.Unmarshal(w.Body.Bytes(), &receipt)
	if !receipt.PlatformFee.Equal(d(2)) {
		t.Errorf("platform fee = %s, want 2", receipt.PlatformFee)
	}
	if !receipt.WinPool.Equal(d(60)) || !receipt.LosePool.Equal(d(40)) {
		t.Errorf("pools = %s/%s, want 60/40", receipt.WinPool, receipt.LosePool)
	}
	if len(receipt.Payouts) != 1 || !receipt.Payouts[0].Payout.Equal(d(98)) {
		t.Errorf("payouts = %+v, want one line of 98", receipt.Payouts)
	}

	w = env.do(t, "GET", "/api/v1/events/"+id+"/balance/alice", "", nil)
	var balResp map[string]decimal.Decimal
	json.Unmarshal(w.Body.Bytes(), &balResp)
	if !balResp["balance"].Equal(d(98)) {
		t.Errorf("alice balance = %s, want 98", balResp["balance"])
	}

	w = env.do(t, "POST", "/api/v1/events/"+id+"/withdraw", "", wager.WithdrawRequest{Participant: "alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("withdraw: %d: %s", w.Code, w.Body.String())
	}
	var wResp map[string]decimal.Decimal
	json.Unmarshal(w.Body.Bytes(), &wResp)
	if !wResp["amount"].Equal(d(98)) {
		t.Errorf("withdrew %s, want 98", wResp["amount"])
	}

	// Zero balance withdrawal conflicts.
	w = env.do(t, "POST", "/api/v1/events/"+id+"/withdraw", "", wager.WithdrawRequest{Participant: "bob"})
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for zero balance, got %d", w.Code)
	}

	// The receipt stays queryable from the archive.
	w = env.do(t, "GET", "/api/v1/events/"+id+"/settlement", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("settlement: %d", w.Code)
	}
	json.Unmarshal(w.Body.Bytes(), &receipt)
	if receipt.Result != model.OutcomeA || receipt.Cancelled {
		t.Errorf("receipt = %s/%v, want A/resolved", receipt.Result, receipt.Cancelled)
	}
	if !receipt.Fee.Equal(d(2)) {
		t.Errorf("archived fee = %s, want 2", receipt.Fee)
	}
}

func TestCancelFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.createEvent(t, "derby")
	env.stake(t, id, "alice", model.OutcomeA, 25)

	w := env.do(t, "POST", "/api/v1/events/"+id+"/cancel", "owner", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, "GET", "/api/v1/events/"+id+"/balance/alice", "", nil)
	var balResp map[string]decimal.Decimal
	json.Unmarshal(w.Body.Bytes(), &balResp)
	if !balResp["balance"].Equal(d(25)) {
		t.Errorf("refund = %s, want exactly 25", balResp["balance"])
	}

	w = env.do(t, "GET", "/api/v1/events/"+id, "", nil)
	var resp wager.EventResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != model.StatusCancelled {
		t.Errorf("status = %s, want cancelled", resp.Status)
	}
}

// --- History ---

func TestHistoryEndpoints(t *testing.T) {
	env := newTestEnv(t)
	id := env.createEvent(t, "derby")
	env.stake(t, id, "alice", model.OutcomeA, 10)
	env.stake(t, id, "alice", model.OutcomeA, 20)

	w := env.do(t, "GET", "/api/v1/events/"+id+"/history", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("event history: %d", w.Code)
	}
	var entries []model.StakeEntry
	json.Unmarshal(w.Body.Bytes(), &entries)
	if len(entries) != 2 {
		t.Errorf("expected 2 stake records, got %d", len(entries))
	}

	w = env.do(t, "GET", "/api/v1/participants/alice/stakes", "", nil)
	json.Unmarshal(w.Body.Bytes(), &entries)
	if len(entries) != 2 {
		t.Errorf("expected 2 participant records, got %d", len(entries))
	}

	w = env.do(t, "GET", "/api/v1/participants/alice/withdrawals", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("withdrawals: %d", w.Code)
	}
	var ws []model.Withdrawal
	json.Unmarshal(w.Body.Bytes(), &ws)
	if len(ws) != 0 {
		t.Errorf("expected no withdrawals yet, got %d", len(ws))
	}
}

// --- Administration ---

func TestAdminEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, "POST", "/api/v1/admin/admins", "alice", map[string]string{"account": "ops"})
	if w.Code != http.StatusForbidden {
		t.Errorf("grant by non-owner: expected 403, got %d", w.Code)
	}

	w = env.do(t, "POST", "/api/v1/admin/admins", "owner", map[string]string{"account": "ops"})
	if w.Code != http.StatusOK {
		t.Fatalf("grant: %d: %s", w.Code, w.Body.String())
	}

	// The new admin can create events immediately.
	w = env.do(t, "POST", "/api/v1/events", "ops", wager.CreateEventRequest{
		Name:      "cup",
		StartTime: env.now.Add(time.Minute),
		EndTime:   env.now.Add(time.Hour),
		MinStake:  d(1),
		MaxStake:  d(100),
		FeeRate:   d(0.05),
	})
	if w.Code != http.StatusCreated {
		t.Errorf("create by new admin: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, "DELETE", "/api/v1/admin/admins/ops", "owner", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("revoke: expected 204, got %d", w.Code)
	}

	w = env.do(t, "POST", "/api/v1/admin/owner", "owner", map[string]string{"owner": "successor"})
	if w.Code != http.StatusOK {
		t.Fatalf("set owner: %d", w.Code)
	}
	w = env.do(t, "POST", "/api/v1/admin/platform-address", "owner", map[string]string{"address": "treasury-2"})
	if w.Code != http.StatusForbidden {
		t.Errorf("old owner should have lost control, got %d", w.Code)
	}
	w = env.do(t, "POST", "/api/v1/admin/platform-address", "successor", map[string]string{"address": "treasury-2"})
	if w.Code != http.StatusOK {
		t.Errorf("new owner rejected: %d: %s", w.Code, w.Body.String())
	}
}
