// Package projection derives user-facing read views from ledger state.
// Nothing here has storage of its own; every view is recomputed from the
// ledger's pair balances and entry log.
package projection

import (
	"sort"
	"time"

	"gitlab.com/yelinaung/split-ledger/internal/ledger"
	"gitlab.com/yelinaung/split-ledger/internal/money"
)

// Projector answers balance and activity queries over a ledger.
type Projector struct {
	ledger *ledger.Ledger
}

// New builds a projector over l.
func New(l *ledger.Ledger) *Projector {
	return &Projector{ledger: l}
}

// CounterpartAmount is a positive amount against one counterpart.
type CounterpartAmount struct {
	CounterpartID int64
	Amount        money.Money
}

// MemberBalance is the signed net against one counterpart: positive means
// the counterpart owes the user.
type MemberBalance struct {
	CounterpartID int64
	Net           money.Money
}

// MonthTotal is the gross expense volume touching a user in one calendar
// month (UTC).
type MonthTotal struct {
	Year  int
	Month time.Month
	Total money.Money
}

// OwedByMe lists every counterpart the user currently owes, with the
// outstanding amount, sorted by counterpart ID.
func (p *Projector) OwedByMe(userID int64) []CounterpartAmount {
	var out []CounterpartAmount
	for _, mb := range p.MemberBalances(userID) {
		if mb.Net.IsNegative() {
			out = append(out, CounterpartAmount{CounterpartID: mb.CounterpartID, Amount: mb.Net.Neg()})
		}
	}
	return out
}

// OwedToMe lists every counterpart that currently owes the user, sorted
// by counterpart ID.
func (p *Projector) OwedToMe(userID int64) []CounterpartAmount {
	var out []CounterpartAmount
	for _, mb := range p.MemberBalances(userID) {
		if mb.Net.IsPositive() {
			out = append(out, CounterpartAmount{CounterpartID: mb.CounterpartID, Amount: mb.Net})
		}
	}
	return out
}

// MemberBalances returns the signed net against every counterpart the
// user has ever transacted with, sorted by counterpart ID. Pairs that
// settled back to zero are included; a missing counterpart means the two
// users never interacted.
func (p *Projector) MemberBalances(userID int64) []MemberBalance {
	snapshot := p.ledger.Snapshot()
	var out []MemberBalance
	for key, bal := range snapshot {
		if !key.Contains(userID) {
			continue
		}
		// bal is what High owes Low; orient it toward the user.
		net := bal
		if key.High == userID {
			net = net.Neg()
		}
		out = append(out, MemberBalance{CounterpartID: key.Other(userID), Net: net})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CounterpartID < out[j].CounterpartID })
	return out
}

// MonthlySummary reports the gross expense volume the user participated
// in, per calendar month, for the trailing months window ending at now
// (inclusive). Volume counts every expense-share entry the user is on
// either side of: shares fronted for others plus the user's own owed
// shares. Settlements are debt movement, not activity, and are excluded.
func (p *Projector) MonthlySummary(userID int64, months int, now time.Time) []MonthTotal {
	if months <= 0 {
		return nil
	}

	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	totals := make(map[time.Time]money.Money)
	for _, e := range p.ledger.Entries() {
		if e.Kind != ledger.KindExpenseSettled {
			continue
		}
		if e.FromUserID != userID && e.ToUserID != userID {
			continue
		}
		at := e.OccurredAt.UTC()
		bucket := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
		if bucket.Before(start) || bucket.After(now) {
			continue
		}
		totals[bucket] = totals[bucket].Add(e.Amount)
	}

	out := make([]MonthTotal, 0, months)
	for m := 0; m < months; m++ {
		bucket := start.AddDate(0, m, 0)
		out = append(out, MonthTotal{Year: bucket.Year(), Month: bucket.Month(), Total: totals[bucket]})
	}
	return out
}

// Settle records a direct payment from fromUserID to toUserID and returns
// the updated net balance from the payer's perspective (positive: the
// receiver now owes the payer). The amount is not capped at the
// outstanding debt; overpayment flips the balance.
func (p *Projector) Settle(fromUserID, toUserID int64, amount money.Money, note string, now time.Time) (money.Money, error) {
	entry := ledger.NewManualSettlement(fromUserID, toUserID, amount, now, note)
	if err := p.ledger.Append(entry); err != nil {
		return money.Zero, err
	}
	return p.ledger.NetBalance(fromUserID, toUserID), nil
}

// Repayment is one suggested transfer that moves the group toward
// all-zero balances.
type Repayment struct {
	FromUserID int64
	ToUserID   int64
	Amount     money.Money
}

// SuggestedRepayments produces a small set of transfers that would settle
// every net position, by greedily matching the largest debtor with the
// largest creditor. Advisory only: nothing is appended to the ledger.
func (p *Projector) SuggestedRepayments() []Repayment {
	nets := make(map[int64]money.Money)
	for key, bal := range p.ledger.Snapshot() {
		// bal is what High owes Low.
		nets[key.Low] = nets[key.Low].Add(bal)
		nets[key.High] = nets[key.High].Sub(bal)
	}

	type position struct {
		userID int64
		amount money.Money // positive magnitude
	}
	var creditors, debtors []position
	for userID, net := range nets {
		switch {
		case net.IsPositive():
			creditors = append(creditors, position{userID: userID, amount: net})
		case net.IsNegative():
			debtors = append(debtors, position{userID: userID, amount: net.Neg()})
		}
	}

	byAmountDesc := func(ps []position) func(i, j int) bool {
		return func(i, j int) bool {
			if c := ps[i].amount.Cmp(ps[j].amount); c != 0 {
				return c > 0
			}
			return ps[i].userID < ps[j].userID
		}
	}
	sort.Slice(creditors, byAmountDesc(creditors))
	sort.Slice(debtors, byAmountDesc(debtors))

	var out []Repayment
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].amount
		if creditors[j].amount.Cmp(amount) < 0 {
			amount = creditors[j].amount
		}
		out = append(out, Repayment{
			FromUserID: debtors[i].userID,
			ToUserID:   creditors[j].userID,
			Amount:     amount,
		})
		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)
		if debtors[i].amount.IsZero() {
			i++
		}
		if creditors[j].amount.IsZero() {
			j++
		}
	}
	return out
}
