package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/split-ledger/internal/database"
	"gitlab.com/yelinaung/split-ledger/internal/ledger"
	"gitlab.com/yelinaung/split-ledger/internal/money"
)

// LedgerEntryRepository persists the append-only ledger entry log. Rows
// are never updated or deleted; ListOrdered is the replay source for
// rebuilding ledger state.
type LedgerEntryRepository struct {
	db database.PGXDB
}

// NewLedgerEntryRepository creates a new LedgerEntryRepository.
func NewLedgerEntryRepository(db database.PGXDB) *LedgerEntryRepository {
	return &LedgerEntryRepository{db: db}
}

// Append persists a single ledger entry.
func (r *LedgerEntryRepository) Append(ctx context.Context, entry ledger.Entry) error {
	var expenseID any
	if entry.ExpenseID != uuid.Nil {
		expenseID = entry.ExpenseID
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO ledger_entries (id, kind, expense_id, from_user_id, to_user_id, amount, occurred_at, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, string(entry.Kind), expenseID, entry.FromUserID, entry.ToUserID,
		entry.Amount.Decimal(), entry.OccurredAt, entry.Note)
	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

// AppendAll persists entries in order. Run it inside a transaction when
// the batch must be all-or-nothing (an expense's share entries, say).
func (r *LedgerEntryRepository) AppendAll(ctx context.Context, entries []ledger.Entry) error {
	for _, e := range entries {
		if err := r.Append(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// ListOrdered returns the full log in insertion order (by sequence
// number, not occurred_at: replay must follow the order entries were
// recorded in).
func (r *LedgerEntryRepository) ListOrdered(ctx context.Context) ([]ledger.Entry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, kind, expense_id, from_user_id, to_user_id, amount, occurred_at, note
		FROM ledger_entries
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByUserAsOf returns the user's entries recorded at or before t, in
// insertion order.
func (r *LedgerEntryRepository) ListByUserAsOf(ctx context.Context, userID int64, t time.Time) ([]ledger.Entry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, kind, expense_id, from_user_id, to_user_id, amount, occurred_at, note
		FROM ledger_entries
		WHERE (from_user_id = $1 OR to_user_id = $1) AND occurred_at <= $2
		ORDER BY seq
	`, userID, t)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries for user: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
},
) ([]ledger.Entry, error) {
	var entries []ledger.Entry
	for rows.Next() {
		var (
			e         ledger.Entry
			kind      string
			expenseID *uuid.UUID
			amount    decimal.Decimal
		)
		if err := rows.Scan(&e.ID, &kind, &expenseID, &e.FromUserID, &e.ToUserID,
			&amount, &e.OccurredAt, &e.Note); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		e.Kind = ledger.Kind(kind)
		if expenseID != nil {
			e.ExpenseID = *expenseID
		}
		m, err := money.FromDecimal(amount)
		if err != nil {
			return nil, fmt.Errorf("ledger entry %s has malformed amount: %w", e.ID, err)
		}
		e.Amount = m
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}
	return entries, nil
}
