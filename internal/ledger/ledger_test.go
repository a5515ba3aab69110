package ledger

import (
	"math"
	"testing"

	"github.com/kplaydefi/k-game/internal/model"
)

func TestLedger_AccumulatesWithoutDuplicateKeys(t *testing.T) {
	l := NewLedger()
	for i := 0; i < 5; i++ {
		if err := l.Add("alice", 10); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 unique key, got %d", l.Len())
	}
	if l.Amount("alice") != 50 {
		t.Errorf("expected cumulative 50, got %d", l.Amount("alice"))
	}
	if l.Total() != 50 {
		t.Errorf("expected total 50, got %d", l.Total())
	}
}

func TestLedger_InsertionOrder(t *testing.T) {
	l := NewLedger()
	for _, k := range []string{"c", "a", "b", "a", "c"} {
		if err := l.Add(k, 1); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	want := []string{"c", "a", "b"}
	got := l.Keys()
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if k, ok := l.KeyAt(1); !ok || k != "a" {
		t.Errorf("KeyAt(1) = %q, %v", k, ok)
	}
	if _, ok := l.KeyAt(3); ok {
		t.Error("KeyAt(3) should be out of range")
	}
}

func TestLedger_ZeroAmountDoesNotRegisterKey(t *testing.T) {
	l := NewLedger()
	if err := l.Add("alice", 0); err != nil {
		t.Fatalf("add: %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("zero add registered a key: %d", l.Len())
	}
}

func TestLedger_CheckAddDetectsOverflowWithoutMutating(t *testing.T) {
	l := NewLedger()
	if err := l.Add("alice", math.MaxUint64); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := l.CheckAdd("bob", 1); err == nil {
		t.Error("expected total overflow from CheckAdd")
	}
	if l.Amount("bob") != 0 || l.Len() != 1 {
		t.Error("CheckAdd mutated the ledger")
	}
	if err := l.Add("bob", 1); err == nil {
		t.Error("expected total overflow from Add")
	}
	if l.Total() != math.MaxUint64 {
		t.Errorf("failed Add changed total: %d", l.Total())
	}
}

func TestBalances_CreditAndZero(t *testing.T) {
	b := NewBalances()
	if err := b.Credit("alice", 60); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := b.Credit("alice", 38); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if b.Amount("alice") != 98 {
		t.Errorf("expected 98, got %d", b.Amount("alice"))
	}
	if got := b.Zero("alice"); got != 98 {
		t.Errorf("Zero returned %d, want 98", got)
	}
	if b.Amount("alice") != 0 {
		t.Errorf("balance not zeroed: %d", b.Amount("alice"))
	}
	if got := b.Zero("bob"); got != 0 {
		t.Errorf("Zero on absent key returned %d", got)
	}
}

func TestBooks_SidesAreIndependent(t *testing.T) {
	b := NewBooks()
	if err := b.Side(model.OutcomeA).Add("alice", 60); err != nil {
		t.Fatalf("add A: %v", err)
	}
	if err := b.Side(model.OutcomeB).Add("alice", 40); err != nil {
		t.Fatalf("add B: %v", err)
	}
	if b.Pool(model.OutcomeA) != 60 || b.Pool(model.OutcomeB) != 40 {
		t.Errorf("pools = %d/%d, want 60/40", b.Pool(model.OutcomeA), b.Pool(model.OutcomeB))
	}
	// The same participant may appear in both outcome sets.
	if b.Side(model.OutcomeA).Len() != 1 || b.Side(model.OutcomeB).Len() != 1 {
		t.Error("participant missing from one side")
	}
}
