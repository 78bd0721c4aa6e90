package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gitlab.com/yelinaung/split-ledger/internal/database"
	"gitlab.com/yelinaung/split-ledger/internal/models"
)

// ExpenseRepository handles expense and expense-share database operations.
type ExpenseRepository struct {
	db database.PGXDB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db database.PGXDB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create adds a new expense together with its computed share rows. The
// caller owns the transaction boundary; pass a pgx.Tx as db when the
// shares and ledger entries must commit atomically.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense, shares []models.ExpenseShare) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO expenses (id, payer_id, amount, currency, split_method, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, expense.ID, expense.PayerID, expense.Amount, expense.Currency,
		expense.SplitMethod, expense.Description,
	).Scan(&expense.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	for _, share := range shares {
		_, err := r.db.Exec(ctx, `
			INSERT INTO expense_shares (expense_id, user_id, amount_owed)
			VALUES ($1, $2, $3)
		`, share.ExpenseID, share.UserID, share.AmountOwed)
		if err != nil {
			return fmt.Errorf("failed to create expense share: %w", err)
		}
	}
	return nil
}

// GetByID retrieves an expense by ID.
func (r *ExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	var exp models.Expense
	err := r.db.QueryRow(ctx, `
		SELECT id, payer_id, amount, currency, split_method, description, created_at
		FROM expenses WHERE id = $1
	`, id).Scan(&exp.ID, &exp.PayerID, &exp.Amount, &exp.Currency,
		&exp.SplitMethod, &exp.Description, &exp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return &exp, nil
}

// GetShares retrieves the share rows of an expense ordered by user ID.
func (r *ExpenseRepository) GetShares(ctx context.Context, expenseID uuid.UUID) ([]models.ExpenseShare, error) {
	rows, err := r.db.Query(ctx, `
		SELECT expense_id, user_id, amount_owed
		FROM expense_shares
		WHERE expense_id = $1
		ORDER BY user_id
	`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense shares: %w", err)
	}
	defer rows.Close()

	var shares []models.ExpenseShare
	for rows.Next() {
		var s models.ExpenseShare
		if err := rows.Scan(&s.ExpenseID, &s.UserID, &s.AmountOwed); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		shares = append(shares, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense shares: %w", err)
	}
	return shares, nil
}

// ListByParticipant retrieves the expenses a user participated in, newest
// first, up to limit.
func (r *ExpenseRepository) ListByParticipant(ctx context.Context, userID int64, limit int) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT e.id, e.payer_id, e.amount, e.currency, e.split_method, e.description, e.created_at
		FROM expenses e
		JOIN expense_shares s ON s.expense_id = e.id
		WHERE s.user_id = $1
		ORDER BY e.created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var exp models.Expense
		if err := rows.Scan(&exp.ID, &exp.PayerID, &exp.Amount, &exp.Currency,
			&exp.SplitMethod, &exp.Description, &exp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}
