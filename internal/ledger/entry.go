package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"gitlab.com/yelinaung/split-ledger/internal/money"
)

// Kind discriminates the two ledger event types.
type Kind string

const (
	// KindExpenseSettled records one participant's share of an expense
	// fronted by the payer: the ower owes the payer the amount.
	KindExpenseSettled Kind = "expense_settled"
	// KindManualSettlement records a direct payment from one user to
	// another, reducing the payer's debt to the receiver.
	KindManualSettlement Kind = "manual_settlement"
)

// Entry is an immutable ledger event. Entries are never mutated or
// deleted once appended; a correction is a new entry with inverted
// effect (see Reverse).
//
// Field meaning depends on Kind:
//   - expense_settled: FromUserID is the ower, ToUserID is the payer.
//   - manual_settlement: FromUserID paid ToUserID.
type Entry struct {
	ID         uuid.UUID
	Kind       Kind
	ExpenseID  uuid.UUID // zero for manual settlements
	FromUserID int64
	ToUserID   int64
	Amount     money.Money // always positive
	OccurredAt time.Time
	Note       string
}

// NewExpenseSettled builds the entry for one computed expense share:
// owerID owes payerID amount for the given expense.
func NewExpenseSettled(expenseID uuid.UUID, payerID, owerID int64, amount money.Money, occurredAt time.Time) Entry {
	return Entry{
		ID:         uuid.New(),
		Kind:       KindExpenseSettled,
		ExpenseID:  expenseID,
		FromUserID: owerID,
		ToUserID:   payerID,
		Amount:     amount,
		OccurredAt: occurredAt,
	}
}

// NewManualSettlement builds the entry for a direct payment from
// fromUserID to toUserID.
func NewManualSettlement(fromUserID, toUserID int64, amount money.Money, occurredAt time.Time, note string) Entry {
	return Entry{
		ID:         uuid.New(),
		Kind:       KindManualSettlement,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Amount:     amount,
		OccurredAt: occurredAt,
		Note:       note,
	}
}

// Reverse returns a new entry that exactly undoes e's effect on the pair
// balance, preserving the original in the log. The reversal carries its
// own ID and timestamp.
func (e Entry) Reverse(occurredAt time.Time, note string) Entry {
	switch e.Kind {
	case KindExpenseSettled:
		// Undo "FromUserID owes ToUserID" with a settlement in the same
		// direction, which subtracts the amount from that debt.
		return NewManualSettlement(e.FromUserID, e.ToUserID, e.Amount, occurredAt, note)
	default:
		// Undo a payment by recording the inverse payment.
		return NewManualSettlement(e.ToUserID, e.FromUserID, e.Amount, occurredAt, note)
	}
}

func (e Entry) validate() error {
	if e.FromUserID == e.ToUserID {
		return fmt.Errorf("%w: user %d on both sides", ErrSamePairUsers, e.FromUserID)
	}
	switch e.Kind {
	case KindExpenseSettled:
		if !e.Amount.IsPositive() {
			return fmt.Errorf("%w: got %s", ErrNonPositiveAmount, e.Amount)
		}
	case KindManualSettlement:
		if !e.Amount.IsPositive() {
			return fmt.Errorf("%w: got %s", ErrNonPositiveSettlementAmount, e.Amount)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEntryKind, e.Kind)
	}
	return nil
}

// pairDelta maps the entry onto its canonical pair and the signed change
// to that pair's accumulator (the amount High owes Low).
func (e Entry) pairDelta() (PairKey, money.Money) {
	var debtor, creditor int64
	var amount money.Money
	switch e.Kind {
	case KindExpenseSettled:
		// The ower's debt to the payer grows.
		debtor, creditor, amount = e.FromUserID, e.ToUserID, e.Amount
	default:
		// A payment shrinks the payer's debt; overshoot flips the sign,
		// which is an overpayment owed back in the other direction.
		debtor, creditor, amount = e.FromUserID, e.ToUserID, e.Amount.Neg()
	}

	key := NewPairKey(debtor, creditor)
	if debtor == key.High {
		return key, amount
	}
	return key, amount.Neg()
}
