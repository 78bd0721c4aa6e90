// Package service orchestrates the split/ledger core against the
// persistence layer: it computes shares, persists them atomically, and
// keeps the in-memory ledger in step with the stored entry log.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gitlab.com/yelinaung/split-ledger/internal/database"
	"gitlab.com/yelinaung/split-ledger/internal/ledger"
	"gitlab.com/yelinaung/split-ledger/internal/logger"
	"gitlab.com/yelinaung/split-ledger/internal/models"
	"gitlab.com/yelinaung/split-ledger/internal/money"
	"gitlab.com/yelinaung/split-ledger/internal/projection"
	"gitlab.com/yelinaung/split-ledger/internal/repository"
	"gitlab.com/yelinaung/split-ledger/internal/split"
)

var (
	ErrUnsupportedCurrency = errors.New("unsupported currency code")
	ErrDescriptionTooLong  = errors.New("description exceeds maximum length")
	ErrNoteTooLong         = errors.New("note exceeds maximum length")
)

// DB is the database handle the service needs: queryable and able to
// open transactions. Satisfied by *pgxpool.Pool, and by pgx.Tx in tests
// (nested transactions become savepoints).
type DB interface {
	database.PGXDB
	database.TxBeginner
}

// Service exposes the application operations: create expenses, settle
// debts, and answer balance queries.
type Service struct {
	db              DB
	users           *repository.UserRepository
	expenses        *repository.ExpenseRepository
	entries         *repository.LedgerEntryRepository
	ledger          *ledger.Ledger
	projector       *projection.Projector
	defaultCurrency string
}

// New builds a Service over db with an empty ledger. Call LoadLedger to
// replay persisted entries before serving queries.
func New(db DB, defaultCurrency string) *Service {
	l := ledger.New()
	return &Service{
		db:              db,
		users:           repository.NewUserRepository(db),
		expenses:        repository.NewExpenseRepository(db),
		entries:         repository.NewLedgerEntryRepository(db),
		ledger:          l,
		projector:       projection.New(l),
		defaultCurrency: defaultCurrency,
	}
}

// LoadLedger replays the persisted entry log into the in-memory ledger.
// The stored log is the source of truth; replaying it reproduces every
// pair balance exactly.
func (s *Service) LoadLedger(ctx context.Context) error {
	persisted, err := s.entries.ListOrdered(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ledger entries: %w", err)
	}
	l, err := ledger.Replay(persisted)
	if err != nil {
		return err
	}
	s.ledger = l
	s.projector = projection.New(l)
	logger.Log.Info().Int("entries", l.Len()).Msg("Ledger replayed from storage")
	return nil
}

// CreateExpenseRequest is a validated expense-creation command.
type CreateExpenseRequest struct {
	PayerID     int64
	Total       money.Money
	Currency    string
	Method      split.Method
	Description string
	Inputs      []split.ShareInput
}

// CreateExpense computes the split, persists the expense with its share
// rows and ledger entries in one transaction, and applies the entries to
// the in-memory ledger. A failed split leaves nothing persisted or
// appended.
func (s *Service) CreateExpense(ctx context.Context, req CreateExpenseRequest) (*models.Expense, []split.ShareResult, error) {
	if len(req.Description) > models.MaxDescriptionLength {
		return nil, nil, ErrDescriptionTooLong
	}
	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	if _, ok := models.SupportedCurrencies[currency]; !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, currency)
	}

	results, err := split.Compute(req.Total, req.Method, req.Inputs)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	expense := &models.Expense{
		ID:          uuid.New(),
		PayerID:     req.PayerID,
		Amount:      req.Total.Decimal(),
		Currency:    currency,
		SplitMethod: string(req.Method),
		Description: req.Description,
	}

	shares := make([]models.ExpenseShare, 0, len(results))
	newEntries := make([]ledger.Entry, 0, len(results))
	for _, res := range results {
		shares = append(shares, models.ExpenseShare{
			ExpenseID:  expense.ID,
			UserID:     res.UserID,
			AmountOwed: res.AmountOwed.Decimal(),
		})
		// The payer's own share and zero shares move no money between
		// users, so they produce no ledger entry.
		if res.UserID == req.PayerID || res.AmountOwed.IsZero() {
			continue
		}
		newEntries = append(newEntries, ledger.NewExpenseSettled(expense.ID, req.PayerID, res.UserID, res.AmountOwed, now))
	}

	participants := make([]int64, 0, len(results)+1)
	participants = append(participants, req.PayerID)
	for _, res := range results {
		if res.UserID != req.PayerID {
			participants = append(participants, res.UserID)
		}
	}

	err = s.inTx(ctx, func(db database.PGXDB) error {
		if err := repository.NewUserRepository(db).EnsureUsers(ctx, participants); err != nil {
			return err
		}
		if err := repository.NewExpenseRepository(db).Create(ctx, expense, shares); err != nil {
			return err
		}
		return repository.NewLedgerEntryRepository(db).AppendAll(ctx, newEntries)
	})
	if err != nil {
		return nil, nil, err
	}

	for _, e := range newEntries {
		if err := s.ledger.Append(e); err != nil {
			// Entries were validated before persisting; a failure here
			// means the in-memory state has diverged from storage.
			return nil, nil, fmt.Errorf("ledger apply failed after commit: %w", err)
		}
	}

	logger.Log.Info().
		Str("expense_id", expense.ID.String()).
		Str("payer", logger.HashUserID(req.PayerID)).
		Str("method", string(req.Method)).
		Str("total", req.Total.String()).
		Int("participants", len(results)).
		Msg("Expense recorded")

	return expense, results, nil
}

// Settle records a direct payment from fromUserID to toUserID and
// returns the updated net balance from the payer's perspective.
// Overpayment is allowed and flips the balance sign.
func (s *Service) Settle(ctx context.Context, fromUserID, toUserID int64, amount money.Money, note string) (money.Money, error) {
	if len(note) > models.MaxNoteLength {
		return money.Zero, ErrNoteTooLong
	}
	if !amount.IsPositive() {
		return money.Zero, ledger.ErrNonPositiveSettlementAmount
	}

	now := time.Now().UTC()
	entry := ledger.NewManualSettlement(fromUserID, toUserID, amount, now, note)

	err := s.inTx(ctx, func(db database.PGXDB) error {
		if err := repository.NewUserRepository(db).EnsureUsers(ctx, []int64{fromUserID, toUserID}); err != nil {
			return err
		}
		return repository.NewLedgerEntryRepository(db).Append(ctx, entry)
	})
	if err != nil {
		return money.Zero, err
	}

	if err := s.ledger.Append(entry); err != nil {
		return money.Zero, fmt.Errorf("ledger apply failed after commit: %w", err)
	}

	balance := s.ledger.NetBalance(fromUserID, toUserID)
	logger.Log.Info().
		Str("from", logger.HashUserID(fromUserID)).
		Str("to", logger.HashUserID(toUserID)).
		Str("amount", amount.String()).
		Str("note", logger.SanitizeNote(note)).
		Msg("Settlement recorded")
	return balance, nil
}

// NetBalance returns the signed net between two users: positive means b
// owes a. Unknown pairs are zero.
func (s *Service) NetBalance(a, b int64) money.Money {
	return s.ledger.NetBalance(a, b)
}

// OwedByMe lists who the user owes and how much.
func (s *Service) OwedByMe(userID int64) []projection.CounterpartAmount {
	return s.projector.OwedByMe(userID)
}

// OwedToMe lists who owes the user and how much.
func (s *Service) OwedToMe(userID int64) []projection.CounterpartAmount {
	return s.projector.OwedToMe(userID)
}

// MemberBalances returns the user's signed net against every counterpart
// with any shared history, settled pairs included.
func (s *Service) MemberBalances(userID int64) []projection.MemberBalance {
	return s.projector.MemberBalances(userID)
}

// MonthlySummary returns the user's gross expense activity for the
// trailing months window.
func (s *Service) MonthlySummary(userID int64, months int) []projection.MonthTotal {
	return s.projector.MonthlySummary(userID, months, time.Now().UTC())
}

// SuggestedRepayments returns an advisory transfer list that would settle
// all outstanding balances.
func (s *Service) SuggestedRepayments() []projection.Repayment {
	return s.projector.SuggestedRepayments()
}

// inTx runs fn inside a transaction.
func (s *Service) inTx(ctx context.Context, fn func(db database.PGXDB) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
