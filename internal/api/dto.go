package api

import (
	"fmt"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/split-ledger/internal/money"
	"gitlab.com/yelinaung/split-ledger/internal/projection"
	"gitlab.com/yelinaung/split-ledger/internal/split"
)

// createExpenseRequest is the wire shape for POST /expenses. Amounts
// travel as decimal strings; they are parsed strictly, so more than two
// fractional digits is a client error.
type createExpenseRequest struct {
	PayerID      int64             `json:"payer_id"`
	TotalAmount  string            `json:"total_amount"`
	Currency     string            `json:"currency,omitempty"`
	SplitMethod  string            `json:"split_method"`
	Description  string            `json:"description,omitempty"`
	Participants []participantItem `json:"participants"`
}

type participantItem struct {
	UserID      int64   `json:"user_id"`
	Percentage  *string `json:"percentage,omitempty"`
	ShareWeight *int64  `json:"share_weight,omitempty"`
	ExactAmount *string `json:"exact_amount,omitempty"`
	Adjustment  *string `json:"adjustment,omitempty"`
}

func (p participantItem) toInput() (split.ShareInput, error) {
	in := split.ShareInput{UserID: p.UserID, ShareWeight: p.ShareWeight}
	if p.Percentage != nil {
		d, err := decimal.NewFromString(*p.Percentage)
		if err != nil {
			return in, fmt.Errorf("invalid percentage for user %d", p.UserID)
		}
		in.Percentage = &d
	}
	if p.ExactAmount != nil {
		m, err := money.FromString(*p.ExactAmount)
		if err != nil {
			return in, fmt.Errorf("invalid exact amount for user %d", p.UserID)
		}
		in.ExactAmount = &m
	}
	if p.Adjustment != nil {
		m, err := money.FromString(*p.Adjustment)
		if err != nil {
			return in, fmt.Errorf("invalid adjustment for user %d", p.UserID)
		}
		in.Adjustment = &m
	}
	return in, nil
}

type shareItem struct {
	UserID     int64  `json:"user_id"`
	AmountOwed string `json:"amount_owed"`
}

type expenseResponse struct {
	ID          string      `json:"id"`
	PayerID     int64       `json:"payer_id"`
	TotalAmount string      `json:"total_amount"`
	Currency    string      `json:"currency"`
	SplitMethod string      `json:"split_method"`
	Description string      `json:"description,omitempty"`
	Shares      []shareItem `json:"shares"`
}

type settleRequest struct {
	FromUserID int64  `json:"from_user_id"`
	ToUserID   int64  `json:"to_user_id"`
	Amount     string `json:"amount"`
	Note       string `json:"note,omitempty"`
}

type settleResponse struct {
	FromUserID int64  `json:"from_user_id"`
	ToUserID   int64  `json:"to_user_id"`
	// NetBalance is from the payer's perspective: positive means the
	// receiver now owes the payer (overpayment flipped the debt).
	NetBalance string `json:"net_balance"`
}

type counterpartItem struct {
	UserID int64  `json:"user_id"`
	Amount string `json:"amount"`
}

func toCounterpartItems(in []projection.CounterpartAmount) []counterpartItem {
	out := make([]counterpartItem, 0, len(in))
	for _, c := range in {
		out = append(out, counterpartItem{UserID: c.CounterpartID, Amount: c.Amount.String()})
	}
	return out
}

type memberBalanceItem struct {
	UserID int64  `json:"user_id"`
	Net    string `json:"net"`
}

type monthTotalItem struct {
	Month string `json:"month"` // YYYY-MM
	Total string `json:"total"`
}

type repaymentItem struct {
	FromUserID int64  `json:"from_user_id"`
	ToUserID   int64  `json:"to_user_id"`
	Amount     string `json:"amount"`
}
