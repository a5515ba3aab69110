package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kplaydefi/k-game/internal/fixed"
	"github.com/kplaydefi/k-game/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All monetary values are stored as NUMERIC for exact decimal precision;
// they round-trip through fixed's scaled representation losslessly.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func amountString(v uint64) string {
	return fixed.ToDecimal(v).String()
}

func parseAmount(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return fixed.FromDecimal(d)
}

func (s *PostgresStore) InsertEvent(ctx context.Context, e *model.Event) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO events (id, idx, name, creator, start_time, end_time, min_stake, max_stake, fee_rate, status, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::NUMERIC, $8::NUMERIC, $9::NUMERIC, $10, $11, $12)`,
		e.ID, e.Index, e.Name, e.Creator, e.StartTime, e.EndTime,
		amountString(e.MinStake), amountString(e.MaxStake), amountString(e.FeeRate),
		e.Status, e.Result, e.CreatedAt,
	)
	return err
}

func (s *PostgresStore) UpdateEventStatus(ctx context.Context, id string, status model.EventStatus, result model.Outcome, closedAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE events SET status = $2, result = $3, closed_at = $4 WHERE id = $1`,
		id, status, result, closedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return nil
}

const eventColumns = `id, idx, name, creator, start_time, end_time,
		        min_stake::TEXT, max_stake::TEXT, fee_rate::TEXT,
		        status, result, created_at, closed_at`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	var minS, maxS, feeS string
	err := row.Scan(&e.ID, &e.Index, &e.Name, &e.Creator, &e.StartTime, &e.EndTime,
		&minS, &maxS, &feeS,
		&e.Status, &e.Result, &e.CreatedAt, &e.ClosedAt)
	if err != nil {
		return nil, err
	}
	if e.MinStake, err = parseAmount(minS); err != nil {
		return nil, err
	}
	if e.MaxStake, err = parseAmount(maxS); err != nil {
		return nil, err
	}
	if e.FeeRate, err = parseAmount(feeS); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *PostgresStore) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	return e, nil
}

func (s *PostgresStore) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY idx`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (s *PostgresStore) InsertStakeEntry(ctx context.Context, e *model.StakeEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO stake_entries (id, event_id, participant, outcome, amount, proxy_id, created_at)
		 VALUES ($1, $2, $3, $4, $5::NUMERIC, $6, $7)`,
		e.ID, e.EventID, e.Participant, e.Outcome,
		amountString(e.Amount), e.ProxyID, e.CreatedAt,
	)
	return err
}

func (s *PostgresStore) StakeEntriesByEvent(ctx context.Context, eventID string) ([]model.StakeEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, event_id, participant, outcome, amount::TEXT, proxy_id, created_at
		 FROM stake_entries WHERE event_id = $1 ORDER BY created_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStakeEntries(rows)
}

func (s *PostgresStore) StakeEntriesByParticipant(ctx context.Context, participant string) ([]model.StakeEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, event_id, participant, outcome, amount::TEXT, proxy_id, created_at
		 FROM stake_entries WHERE participant = $1 ORDER BY created_at`, participant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStakeEntries(rows)
}

func scanStakeEntries(rows pgx.Rows) ([]model.StakeEntry, error) {
	var entries []model.StakeEntry
	for rows.Next() {
		var e model.StakeEntry
		var amountS string

		if err := rows.Scan(&e.ID, &e.EventID, &e.Participant, &e.Outcome,
			&amountS, &e.ProxyID, &e.CreatedAt); err != nil {
			return nil, err
		}
		var err error
		if e.Amount, err = parseAmount(amountS); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) InsertSettlementReceipt(ctx context.Context, r *model.SettlementReceipt) error {
	payouts, err := json.Marshal(r.Payouts)
	if err != nil {
		return err
	}
	proxyFees, err := json.Marshal(r.ProxyFees)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO settlement_receipts
		 (event_id, result, cancelled, win_pool, lose_pool, fee, platform_fee, total_proxy_fee, dust, payouts, proxy_fees, settled_at)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5::NUMERIC, $6::NUMERIC, $7::NUMERIC, $8::NUMERIC, $9::NUMERIC, $10::JSONB, $11::JSONB, $12)`,
		r.EventID, r.Result, r.Cancelled,
		amountString(r.WinPool), amountString(r.LosePool), amountString(r.Fee),
		amountString(r.PlatformFee), amountString(r.TotalProxyFee), amountString(r.Dust),
		payouts, proxyFees, r.SettledAt,
	)
	return err
}

func (s *PostgresStore) GetSettlementReceipt(ctx context.Context, eventID string) (*model.SettlementReceipt, error) {
	var r model.SettlementReceipt
	var winS, loseS, feeS, platS, proxS, dustS string
	var payouts, proxyFees []byte

	err := s.pool.QueryRow(ctx,
		`SELECT event_id, result, cancelled,
		        win_pool::TEXT, lose_pool::TEXT, fee::TEXT,
		        platform_fee::TEXT, total_proxy_fee::TEXT, dust::TEXT,
		        payouts, proxy_fees, settled_at
		 FROM settlement_receipts WHERE event_id = $1`, eventID).
		Scan(&r.EventID, &r.Result, &r.Cancelled,
			&winS, &loseS, &feeS, &platS, &proxS, &dustS,
			&payouts, &proxyFees, &r.SettledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("receipt for event %s: %w", eventID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get receipt for event %s: %w", eventID, err)
	}

	for _, p := range []struct {
		dst *uint64
		src string
	}{
		{&r.WinPool, winS}, {&r.LosePool, loseS}, {&r.Fee, feeS},
		{&r.PlatformFee, platS}, {&r.TotalProxyFee, proxS}, {&r.Dust, dustS},
	} {
		if *p.dst, err = parseAmount(p.src); err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal(payouts, &r.Payouts); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(proxyFees, &r.ProxyFees); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresStore) InsertWithdrawal(ctx context.Context, w *model.Withdrawal) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO withdrawals (id, event_id, participant, amount, created_at)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5)`,
		w.ID, w.EventID, w.Participant, amountString(w.Amount), w.CreatedAt,
	)
	return err
}

func (s *PostgresStore) WithdrawalsByParticipant(ctx context.Context, participant string) ([]model.Withdrawal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, event_id, participant, amount::TEXT, created_at
		 FROM withdrawals WHERE participant = $1 ORDER BY created_at`, participant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Withdrawal
	for rows.Next() {
		var w model.Withdrawal
		var amountS string
		if err := rows.Scan(&w.ID, &w.EventID, &w.Participant, &amountS, &w.CreatedAt); err != nil {
			return nil, err
		}
		if w.Amount, err = parseAmount(amountS); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}
