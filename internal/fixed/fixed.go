// Package fixed implements the fixed-point arithmetic every monetary
// computation in the engine goes through.
//
// Amounts are unsigned integers scaled by Scale (10^8, so 1.00000000
// units == Scale). Multiplication and division of fractions truncate
// toward zero; each division may therefore lose up to Scale-1 units of
// precision ("dust"). That loss is part of the observable contract and
// must be reproduced bit-for-bit, so intermediates use math/big rather
// than a rounding decimal type.
//
// All monetary values cross the process boundary as shopspring/decimal,
// never float64. FromDecimal/ToDecimal convert at that edge.
package fixed

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// Scale is the fixed-point base: amounts carry 8 decimal places.
const Scale uint64 = 100_000_000

// Decimals is the number of decimal places encoded by Scale.
const Decimals int32 = 8

var (
	// ErrOverflow is returned when an add or multiply exceeds uint64.
	ErrOverflow = errors.New("fixed: arithmetic overflow")

	// ErrUnderflow is returned when a subtract would go below zero.
	ErrUnderflow = errors.New("fixed: arithmetic underflow")

	// ErrDivByZero is returned when the divisor is zero.
	ErrDivByZero = errors.New("fixed: division by zero")

	// ErrPrecision is returned when a decimal has more fractional
	// digits than Scale can represent, or is negative.
	ErrPrecision = errors.New("fixed: value not representable at fixed-point scale")

	bigScale  = new(big.Int).SetUint64(Scale)
	maxUint64 = new(big.Int).SetUint64(^uint64(0))
)

// Mul returns a*b/Scale truncated toward zero.
// Used for applying a fixed-point fraction b to an amount a.
func Mul(a, b uint64) (uint64, error) {
	prod := new(big.Int).Mul(
		new(big.Int).SetUint64(a),
		new(big.Int).SetUint64(b),
	)
	prod.Quo(prod, bigScale)
	if prod.Cmp(maxUint64) > 0 {
		return 0, ErrOverflow
	}
	return prod.Uint64(), nil
}

// Div returns a*Scale/b truncated toward zero.
// Used for expressing a as a fixed-point fraction of b.
func Div(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrDivByZero
	}
	num := new(big.Int).Mul(new(big.Int).SetUint64(a), bigScale)
	num.Quo(num, new(big.Int).SetUint64(b))
	if num.Cmp(maxUint64) > 0 {
		return 0, ErrOverflow
	}
	return num.Uint64(), nil
}

// Add returns a+b, failing fast on overflow.
func Add(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a-b, failing fast on underflow.
func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// FromDecimal converts a non-negative decimal into scaled units.
// Values with more than 8 fractional digits are rejected rather than
// silently rounded.
func FromDecimal(d decimal.Decimal) (uint64, error) {
	if d.IsNegative() {
		return 0, ErrPrecision
	}
	scaled := d.Shift(Decimals)
	if !scaled.IsInteger() {
		return 0, ErrPrecision
	}
	bi := scaled.BigInt()
	if bi.Cmp(maxUint64) > 0 {
		return 0, ErrOverflow
	}
	return bi.Uint64(), nil
}

// ToDecimal converts scaled units back into a decimal.
func ToDecimal(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0).Shift(-Decimals)
}
