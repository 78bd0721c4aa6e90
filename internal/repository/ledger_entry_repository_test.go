package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/split-ledger/internal/database"
	"gitlab.com/yelinaung/split-ledger/internal/ledger"
	"gitlab.com/yelinaung/split-ledger/internal/models"
	"gitlab.com/yelinaung/split-ledger/internal/money"
)

func setupLedgerEntryTest(t *testing.T) (*LedgerEntryRepository, *ExpenseRepository, context.Context) {
	t.Helper()

	db := database.TestTx(t)
	ctx := context.Background()
	require.NoError(t, NewUserRepository(db).EnsureUsers(ctx, []int64{111, 222, 333}))

	return NewLedgerEntryRepository(db), NewExpenseRepository(db), ctx
}

func TestLedgerEntryRepository_AppendAndListOrdered(t *testing.T) {
	t.Parallel()

	entryRepo, expenseRepo, ctx := setupLedgerEntryTest(t)

	expense := newTestExpense(111, "30.00")
	require.NoError(t, expenseRepo.Create(ctx, expense, []models.ExpenseShare{
		{ExpenseID: expense.ID, UserID: 222, AmountOwed: decimal.RequireFromString("15.00")},
		{ExpenseID: expense.ID, UserID: 333, AmountOwed: decimal.RequireFromString("15.00")},
	}))

	at := time.Date(2026, time.August, 10, 12, 0, 0, 0, time.UTC)
	entries := []ledger.Entry{
		ledger.NewExpenseSettled(expense.ID, 111, 222, money.MustFromString("15.00"), at),
		ledger.NewExpenseSettled(expense.ID, 111, 333, money.MustFromString("15.00"), at),
		ledger.NewManualSettlement(222, 111, money.MustFromString("5.00"), at.Add(time.Hour), "partial repayment"),
	}
	require.NoError(t, entryRepo.AppendAll(ctx, entries))

	got, err := entryRepo.ListOrdered(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i, want := range entries {
		require.Equal(t, want.ID, got[i].ID)
		require.Equal(t, want.Kind, got[i].Kind)
		require.Equal(t, want.FromUserID, got[i].FromUserID)
		require.Equal(t, want.ToUserID, got[i].ToUserID)
		require.Zero(t, want.Amount.Cmp(got[i].Amount))
	}

	require.Equal(t, expense.ID, got[0].ExpenseID)
	require.Equal(t, uuid.Nil, got[2].ExpenseID)
	require.Equal(t, "partial repayment", got[2].Note)
}

func TestLedgerEntryRepository_ReplayRoundTrip(t *testing.T) {
	t.Parallel()

	entryRepo, expenseRepo, ctx := setupLedgerEntryTest(t)

	expense := newTestExpense(111, "50.00")
	require.NoError(t, expenseRepo.Create(ctx, expense, []models.ExpenseShare{
		{ExpenseID: expense.ID, UserID: 222, AmountOwed: decimal.RequireFromString("50.00")},
	}))

	at := time.Now().UTC()
	require.NoError(t, entryRepo.AppendAll(ctx, []ledger.Entry{
		ledger.NewExpenseSettled(expense.ID, 111, 222, money.MustFromString("50.00"), at),
		ledger.NewManualSettlement(222, 111, money.MustFromString("20.00"), at, ""),
	}))

	stored, err := entryRepo.ListOrdered(ctx)
	require.NoError(t, err)

	led, err := ledger.Replay(stored)
	require.NoError(t, err)

	require.Equal(t, "30.00", led.NetBalance(111, 222).String())
}

func TestLedgerEntryRepository_ListByUserAsOf(t *testing.T) {
	t.Parallel()

	entryRepo, _, ctx := setupLedgerEntryTest(t)

	early := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, entryRepo.AppendAll(ctx, []ledger.Entry{
		ledger.NewManualSettlement(111, 222, money.MustFromString("10.00"), early, ""),
		ledger.NewManualSettlement(222, 333, money.MustFromString("20.00"), early, ""),
		ledger.NewManualSettlement(111, 222, money.MustFromString("30.00"), late, ""),
	}))

	t.Run("filters by user", func(t *testing.T) {
		got, err := entryRepo.ListByUserAsOf(ctx, 333, late)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, int64(222), got[0].FromUserID)
	})

	t.Run("filters by time", func(t *testing.T) {
		got, err := entryRepo.ListByUserAsOf(ctx, 111, early)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "10.00", got[0].Amount.String())
	})

	t.Run("empty for uninvolved user", func(t *testing.T) {
		got, err := entryRepo.ListByUserAsOf(ctx, 999, late)
		require.NoError(t, err)
		require.Empty(t, got)
	})
}
