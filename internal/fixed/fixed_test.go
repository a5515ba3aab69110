package fixed

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMul_TruncatesTowardZero(t *testing.T) {
	// 1.00000001 * 0.5 = 0.500000005 → truncates to 0.50000000
	got, err := Mul(Scale+1, Scale/2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Scale/2 {
		t.Errorf("expected %d, got %d", Scale/2, got)
	}
}

func TestMul_LargeOperandsNoIntermediateOverflow(t *testing.T) {
	// a*b overflows uint64 but a*b/Scale does not.
	a := uint64(1_000_000) * Scale // 1e6 units
	rate := Scale / 20             // 5%
	got, err := Mul(a, rate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := uint64(50_000) * Scale
	if got != want {
		t.Errorf("expected %d, got %d", want, got)
	}
}

func TestMul_Overflow(t *testing.T) {
	if _, err := Mul(math.MaxUint64, 2*Scale); err != ErrOverflow {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestDiv_TruncatesTowardZero(t *testing.T) {
	// 1 / 3 = 0.33333333... → 0.33333333
	got, err := Div(Scale, 3*Scale)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 33_333_333 {
		t.Errorf("expected 33333333, got %d", got)
	}
}

func TestDiv_ByZero(t *testing.T) {
	if _, err := Div(Scale, 0); err != ErrDivByZero {
		t.Errorf("expected ErrDivByZero, got %v", err)
	}
}

func TestAddSub_Checked(t *testing.T) {
	if _, err := Add(math.MaxUint64, 1); err != ErrOverflow {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
	if _, err := Sub(1, 2); err != ErrUnderflow {
		t.Errorf("expected ErrUnderflow, got %v", err)
	}
	sum, err := Add(40, 2)
	if err != nil || sum != 42 {
		t.Errorf("expected 42, got %d (%v)", sum, err)
	}
	diff, err := Sub(44, 2)
	if err != nil || diff != 42 {
		t.Errorf("expected 42, got %d (%v)", diff, err)
	}
}

func TestMulDiv_RoundTripLosesAtMostDust(t *testing.T) {
	winPool := uint64(60) * Scale
	net := uint64(38) * Scale

	// share = stake/winPool; credit = share*net. Truncation loses less
	// than one unit per division step.
	stakes := []uint64{60 * Scale, 7 * Scale, 1, 999_999_999}
	for _, s := range stakes {
		share, err := Div(s, winPool)
		if err != nil {
			t.Fatalf("div: %v", err)
		}
		credit, err := Mul(share, net)
		if err != nil {
			t.Fatalf("mul: %v", err)
		}
		exact := exactMulDiv(s, net, winPool)
		if credit > exact {
			t.Errorf("stake %d: credit %d exceeds exact %d", s, credit, exact)
		}
		// Truncating the share to 8 decimals loses under one smallest
		// unit of share, amplified by at most net/Scale when multiplied.
		if bound := net/Scale + 1; exact-credit > bound {
			t.Errorf("stake %d: dust %d exceeds bound %d", s, exact-credit, bound)
		}
	}
}

// exactMulDiv computes a*b/c without a Scale step, as a reference.
func exactMulDiv(a, b, c uint64) uint64 {
	return (a/c)*b + (a%c)*b/c
}

func TestFromDecimal(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"0", 0, false},
		{"1", Scale, false},
		{"0.05", Scale / 20, false},
		{"60.00000001", 60*Scale + 1, false},
		{"0.000000001", 0, true}, // 9 fractional digits
		{"-1", 0, true},
	}
	for _, tc := range tests {
		d, _ := decimal.NewFromString(tc.in)
		got, err := FromDecimal(d)
		if tc.wantErr {
			if err == nil {
				t.Errorf("FromDecimal(%s): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("FromDecimal(%s): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("FromDecimal(%s) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestToDecimal_RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, Scale, 98 * Scale, math.MaxUint64} {
		back, err := FromDecimal(ToDecimal(v))
		if err != nil {
			t.Fatalf("round trip %d: %v", v, err)
		}
		if back != v {
			t.Errorf("round trip %d: got %d", v, back)
		}
	}
}
