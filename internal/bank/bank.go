// Package bank defines the value-transfer collaborator: the engine
// escrows stakes through it and pays winners, proxies, and the platform
// out of it. Amounts are uint64 values scaled by fixed.Scale.
package bank

import (
	"context"
	"errors"

	"github.com/kplaydefi/k-game/internal/fixed"
)

var (
	ErrInsufficientFunds = errors.New("bank: insufficient funds")
	ErrEmptyAccount      = errors.New("bank: empty account")
)

// ValueTransfer moves value between external accounts and the engine's
// escrow. Implementations may sit in front of transfer mechanisms that
// report success ambiguously, so DepositFrom returns the amount
// actually received as observed by balance delta rather than trusting
// the mechanism's own report. Any PayOut failure is a hard failure of
// the operation that requested it.
type ValueTransfer interface {
	DepositFrom(ctx context.Context, payer string, amount uint64) (uint64, error)
	PayOut(ctx context.Context, destination string, amount uint64) error
}

// EscrowBank is an in-process ValueTransfer holding account balances
// and a single escrow pot. It is written only under the engine's lock.
type EscrowBank struct {
	accounts map[string]uint64
	escrow   uint64

	// Haircut is withheld from every deposit before it reaches escrow,
	// simulating transfer mechanisms that deliver less than requested.
	Haircut uint64
}

func NewEscrowBank() *EscrowBank {
	return &EscrowBank{accounts: make(map[string]uint64)}
}

// Mint credits an external account, for seeding.
func (b *EscrowBank) Mint(account string, amount uint64) error {
	next, err := fixed.Add(b.accounts[account], amount)
	if err != nil {
		return err
	}
	b.accounts[account] = next
	return nil
}

// Balance returns an external account's balance.
func (b *EscrowBank) Balance(account string) uint64 {
	return b.accounts[account]
}

// Escrow returns the amount currently held in escrow.
func (b *EscrowBank) Escrow() uint64 {
	return b.escrow
}

// DepositFrom moves amount from payer into escrow and returns the
// escrow balance delta.
func (b *EscrowBank) DepositFrom(_ context.Context, payer string, amount uint64) (uint64, error) {
	if payer == "" {
		return 0, ErrEmptyAccount
	}
	have := b.accounts[payer]
	if have < amount {
		return 0, ErrInsufficientFunds
	}
	received := amount
	if received > b.Haircut {
		received -= b.Haircut
	} else {
		received = 0
	}
	before := b.escrow
	after, err := fixed.Add(before, received)
	if err != nil {
		return 0, err
	}
	b.accounts[payer] = have - amount
	b.escrow = after
	return after - before, nil
}

// PayOut moves amount from escrow to destination.
func (b *EscrowBank) PayOut(_ context.Context, destination string, amount uint64) error {
	if destination == "" {
		return ErrEmptyAccount
	}
	if b.escrow < amount {
		return ErrInsufficientFunds
	}
	next, err := fixed.Add(b.accounts[destination], amount)
	if err != nil {
		return err
	}
	b.escrow -= amount
	b.accounts[destination] = next
	return nil
}
