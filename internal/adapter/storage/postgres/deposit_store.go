package postgres

import (
	"context"
	"errors"
	"fmt"

	"pooled-multisender/internal/core/domain"
	"pooled-multisender/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"lukechampine.com/uint128"
)

// DepositStore implements ports.BalanceStore on the deposits table. Balances
// are NUMERIC(39,0) and travel as text to keep all 128 bits.
type DepositStore struct {
	pool Pool
}

// NewDepositStore creates a new DepositStore.
func NewDepositStore(pool Pool) *DepositStore {
	return &DepositStore{pool: pool}
}

const (
	selectDepositQuery = `SELECT balance::text FROM deposits WHERE account_id = $1`

	// Serializes updates of one account, including the first insert.
	lockAccountQuery = `SELECT pg_advisory_xact_lock(hashtext($1))`

	selectDepositForUpdateQuery = `SELECT balance::text FROM deposits WHERE account_id = $1 FOR UPDATE`

	upsertDepositQuery = `INSERT INTO deposits (account_id, balance, created_at, updated_at)
		VALUES ($1, $2::text::numeric, NOW(), NOW())
		ON CONFLICT (account_id) DO UPDATE SET balance = EXCLUDED.balance, updated_at = NOW()`
)

// Get reads the balance of account. A missing row reads as zero.
func (s *DepositStore) Get(ctx context.Context, account string) (domain.Amount, bool, error) {
	return scanBalance(s.pool.QueryRow(ctx, selectDepositQuery, account))
}

// Update applies fn inside a transaction holding the account's advisory lock
// and row lock. An error from fn rolls back and is returned as is.
func (s *DepositStore) Update(ctx context.Context, account string, fn ports.UpdateFunc) (domain.Amount, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uint128.Zero, fmt.Errorf("begin tx: %w", err)
	}

	next, err := updateInTx(ctx, tx, account, fn)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return uint128.Zero, fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return uint128.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return uint128.Zero, fmt.Errorf("commit tx: %w", err)
	}
	return next, nil
}

func updateInTx(ctx context.Context, tx pgx.Tx, account string, fn ports.UpdateFunc) (domain.Amount, error) {
	if _, err := tx.Exec(ctx, lockAccountQuery, account); err != nil {
		return uint128.Zero, fmt.Errorf("lock deposit: %w", err)
	}

	current, exists, err := scanBalance(tx.QueryRow(ctx, selectDepositForUpdateQuery, account))
	if err != nil {
		return uint128.Zero, err
	}

	next, err := fn(current, exists)
	if err != nil {
		return uint128.Zero, err
	}

	if _, err := tx.Exec(ctx, upsertDepositQuery, account, next.String()); err != nil {
		return uint128.Zero, fmt.Errorf("upsert deposit: %w", err)
	}
	return next, nil
}

func scanBalance(row pgx.Row) (domain.Amount, bool, error) {
	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uint128.Zero, false, nil
		}
		return uint128.Zero, false, fmt.Errorf("get deposit: %w", err)
	}
	balance, err := domain.ParseAmount(raw)
	if err != nil {
		return uint128.Zero, false, fmt.Errorf("stored deposit: %w", err)
	}
	return balance, true, nil
}
