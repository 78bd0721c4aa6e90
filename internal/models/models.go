// Package models defines the domain entities for the split ledger.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency recorded on expenses when the request
// does not name one. Conversion between currencies is out of scope; the
// code is carried as an opaque label.
const DefaultCurrency = "SGD"

// MaxDescriptionLength is the maximum allowed length for expense
// descriptions.
const MaxDescriptionLength = 200

// MaxNoteLength is the maximum allowed length for settlement notes.
const MaxNoteLength = 200

// SupportedCurrencies lists all accepted currency codes.
var SupportedCurrencies = map[string]string{
	"SGD": "S$",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"MYR": "RM",
	"THB": "฿",
	"IDR": "Rp",
	"INR": "₹",
	"AUD": "A$",
	"HKD": "HK$",
}

// User represents a registered member.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expense represents a recorded shared expense. Amount is the decimal
// image of the fixed-point total for the NUMERIC column; all arithmetic
// happens in minor units.
type Expense struct {
	ID          uuid.UUID
	PayerID     int64
	Amount      decimal.Decimal
	Currency    string
	SplitMethod string
	Description string
	CreatedAt   time.Time
}

// ExpenseShare is one participant's computed share of an expense.
type ExpenseShare struct {
	ExpenseID  uuid.UUID
	UserID     int64
	AmountOwed decimal.Decimal
}

// Settlement represents a direct payment between two members recorded to
// clear (or overpay) a debt.
type Settlement struct {
	ID         uuid.UUID
	FromUserID int64
	ToUserID   int64
	Amount     decimal.Decimal
	Note       string
	CreatedAt  time.Time
}
