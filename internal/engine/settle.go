package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kplaydefi/k-game/internal/fixed"
	"github.com/kplaydefi/k-game/internal/model"
)

// Resolve settles an open event with the reported outcome. Winners are
// credited their stake plus a proportional share of the losing pool net
// of the fee; the fee is split between attributed proxies and the
// platform. Winner credits land in the balance book for later
// withdrawal, while proxy and platform fees are paid out immediately.
//
// The fee is assessed once, on the losing pool only. Each winner's
// payout carries their stake as an additive term, so truncation can
// never eat into principal. Residual truncation dust stays in escrow
// unswept; the receipt records how much.
func (e *Engine) Resolve(ctx context.Context, caller, eventID string, result model.Outcome) (*model.SettlementReceipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.access.IsAdmin(caller) {
		return nil, ErrUnauthorized
	}
	event, ok := e.events[eventID]
	if !ok {
		return nil, ErrUnknownEvent
	}
	if event.Status != model.StatusOpen {
		return nil, ErrNotOpen
	}
	if e.now().Before(event.EndTime) {
		return nil, ErrNotEnded
	}
	if !result.Valid() {
		return nil, ErrInvalidOutcome
	}

	books := e.books[eventID]
	winPool := books.Pool(result)
	losePool := books.Pool(result.Opposite())
	if winPool == 0 || losePool == 0 {
		return nil, ErrOneSidedMarket
	}

	// Stage the whole settlement before any side effect.
	receipt, err := e.stageSettlement(event, result, winPool, losePool)
	if err != nil {
		return nil, err
	}

	// Fees leave escrow now; winner credits stay behind as balances.
	// Every transfer is recorded so a failure in any later step can pull
	// the fees back into escrow and abort with nothing moved.
	transfers := make([]feeTransfer, 0, len(receipt.ProxyFees)+1)
	for _, line := range receipt.ProxyFees {
		if line.Fee == 0 {
			continue
		}
		transfers = append(transfers, feeTransfer{dest: line.Address, amount: line.Fee})
	}
	if receipt.PlatformFee > 0 {
		transfers = append(transfers, feeTransfer{dest: e.platformAddress, amount: receipt.PlatformFee})
	}
	var sent []feeTransfer
	for _, t := range transfers {
		if err := e.bank.PayOut(ctx, t.dest, t.amount); err != nil {
			e.reclaimFees(ctx, eventID, sent)
			return nil, fmt.Errorf("fee payout to %s: %w", t.dest, err)
		}
		sent = append(sent, t)
	}

	if err := e.store.InsertSettlementReceipt(ctx, receipt); err != nil {
		e.reclaimFees(ctx, eventID, sent)
		return nil, fmt.Errorf("archive receipt: %w", err)
	}
	if err := e.store.UpdateEventStatus(ctx, eventID, model.StatusResolved, result, receipt.SettledAt); err != nil {
		e.reclaimFees(ctx, eventID, sent)
		return nil, fmt.Errorf("archive status: %w", err)
	}

	// Commit.
	for _, line := range receipt.Payouts {
		if err := books.Balances.Credit(line.Participant, line.Payout); err != nil {
			return nil, err
		}
	}
	event.Status = model.StatusResolved
	event.Result = result
	closed := receipt.SettledAt
	event.ClosedAt = &closed

	slog.Info("event resolved",
		"event", eventID,
		"result", result,
		"win_pool", winPool,
		"lose_pool", losePool,
		"fee", receipt.Fee,
		"platform_fee", receipt.PlatformFee,
		"proxy_fee", receipt.TotalProxyFee,
		"winners", len(receipt.Payouts),
		"dust", receipt.Dust,
	)

	out := *receipt
	return &out, nil
}

// feeTransfer is one escrow outflow issued during a resolution.
type feeTransfer struct {
	dest   string
	amount uint64
}

// reclaimFees pulls already-sent fee transfers back into escrow after a
// later resolution step fails. The event stays open and escrow stays
// whole, so a retried resolution pays the fees exactly once.
func (e *Engine) reclaimFees(ctx context.Context, eventID string, sent []feeTransfer) {
	for _, t := range sent {
		received, err := e.bank.DepositFrom(ctx, t.dest, t.amount)
		if err != nil || received != t.amount {
			slog.Error("fee reclaim failed, value stranded outside escrow",
				"event", eventID, "dest", t.dest, "amount", t.amount, "reclaimed", received, "err", err)
		}
	}
}

// stageSettlement computes every credit and fee without touching any
// book. Overflow anywhere rejects the resolution with books unchanged.
func (e *Engine) stageSettlement(event *model.Event, result model.Outcome, winPool, losePool uint64) (*model.SettlementReceipt, error) {
	books := e.books[event.ID]

	fee, err := fixed.Mul(losePool, event.FeeRate)
	if err != nil {
		return nil, err
	}
	net := losePool - fee // feeRate <= 1 keeps fee <= losePool

	receipt := &model.SettlementReceipt{
		EventID:   event.ID,
		Result:    result,
		WinPool:   winPool,
		LosePool:  losePool,
		Fee:       fee,
		SettledAt: e.now().UTC(),
	}

	winners := books.Side(result)
	var distributed uint64
	for _, p := range winners.Keys() {
		stake := winners.Amount(p)
		share, err := fixed.Div(stake, winPool)
		if err != nil {
			return nil, err
		}
		gain, err := fixed.Mul(share, net)
		if err != nil {
			return nil, err
		}
		payout, err := fixed.Add(stake, gain)
		if err != nil {
			return nil, err
		}
		if err := books.Balances.CheckCredit(p, payout); err != nil {
			return nil, err
		}
		if distributed, err = fixed.Add(distributed, gain); err != nil {
			return nil, err
		}
		receipt.Payouts = append(receipt.Payouts, model.PayoutLine{
			Participant: p,
			Stake:       stake,
			Payout:      payout,
		})
	}
	receipt.Dust = net - distributed // distributed <= net by truncation

	totalPool, err := fixed.Add(winPool, losePool)
	if err != nil {
		return nil, err
	}
	var totalProxyFee uint64
	for _, id := range books.Proxies.Keys() {
		attributed := books.Proxies.Amount(id)
		proxy, err := e.directory.ProxyByID(id)
		if err != nil {
			return nil, fmt.Errorf("proxy %s: %w", id, err)
		}
		ratio, err := fixed.Div(attributed, totalPool)
		if err != nil {
			return nil, err
		}
		cut, err := fixed.Mul(ratio, fee)
		if err != nil {
			return nil, err
		}
		proxyFee, err := fixed.Mul(cut, proxy.FeeShare)
		if err != nil {
			return nil, err
		}
		if totalProxyFee, err = fixed.Add(totalProxyFee, proxyFee); err != nil {
			return nil, err
		}
		receipt.ProxyFees = append(receipt.ProxyFees, model.ProxyFeeLine{
			ProxyID:    id,
			Address:    proxy.Address,
			Attributed: attributed,
			Fee:        proxyFee,
		})
	}
	if totalProxyFee > fee {
		// Cannot happen with fee-share rates <= 1, but a misconfigured
		// directory must not mint value.
		return nil, ErrInvalidFeeRate
	}
	receipt.TotalProxyFee = totalProxyFee
	receipt.PlatformFee = fee - totalProxyFee
	return receipt, nil
}

// Cancel voids an open event and refunds every stake in full. A
// participant staked on both outcomes receives one combined credit
// covering both sides.
func (e *Engine) Cancel(ctx context.Context, caller, eventID string) (*model.SettlementReceipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.access.IsAdmin(caller) {
		return nil, ErrUnauthorized
	}
	event, ok := e.events[eventID]
	if !ok {
		return nil, ErrUnknownEvent
	}
	if event.Status != model.StatusOpen {
		return nil, ErrNotOpen
	}

	books := e.books[eventID]
	receipt := &model.SettlementReceipt{
		EventID:   eventID,
		Cancelled: true,
		SettledAt: e.now().UTC(),
	}
	// A both-outcome participant gets one combined credit, so the
	// precheck covers the sum, not each side in isolation.
	totals := make(map[string]uint64)
	var order []string
	for _, o := range []model.Outcome{model.OutcomeA, model.OutcomeB} {
		side := books.Side(o)
		for _, p := range side.Keys() {
			stake := side.Amount(p)
			combined, err := fixed.Add(totals[p], stake)
			if err != nil {
				return nil, err
			}
			if _, seen := totals[p]; !seen {
				order = append(order, p)
			}
			totals[p] = combined
			receipt.Payouts = append(receipt.Payouts, model.PayoutLine{
				Participant: p,
				Stake:       stake,
				Payout:      stake,
			})
		}
	}
	for _, p := range order {
		if err := books.Balances.CheckCredit(p, totals[p]); err != nil {
			return nil, err
		}
	}

	if err := e.store.InsertSettlementReceipt(ctx, receipt); err != nil {
		return nil, fmt.Errorf("archive receipt: %w", err)
	}
	if err := e.store.UpdateEventStatus(ctx, eventID, model.StatusCancelled, model.OutcomeNone, receipt.SettledAt); err != nil {
		return nil, fmt.Errorf("archive status: %w", err)
	}

	for _, p := range order {
		if err := books.Balances.Credit(p, totals[p]); err != nil {
			return nil, err
		}
	}
	event.Status = model.StatusCancelled
	event.Result = model.OutcomeNone
	closed := receipt.SettledAt
	event.ClosedAt = &closed

	slog.Info("event cancelled",
		"event", eventID,
		"refunds", len(receipt.Payouts),
	)

	out := *receipt
	return &out, nil
}
