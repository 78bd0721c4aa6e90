// Package split computes per-participant shares of an expense total.
// Every method guarantees the zero-sum law: the returned shares sum to the
// total exactly, in minor units, or the computation fails closed.
package split

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/split-ledger/internal/money"
)

// Method identifies the split algorithm for an expense.
type Method string

const (
	// MethodEqual divides the total evenly among all participants.
	MethodEqual Method = "equal"
	// MethodUnequal takes explicit per-user exact amounts.
	MethodUnequal Method = "unequal"
	// MethodPercentage divides by per-user percentages summing to 100.
	MethodPercentage Method = "percentage"
	// MethodExactAmount is the UI alias for MethodUnequal.
	MethodExactAmount Method = "exact_amount"
	// MethodShares divides by per-user integer weights.
	MethodShares Method = "shares"
	// MethodAdjustment is an equal split with signed per-user deltas.
	MethodAdjustment Method = "adjustment"
)

// Valid reports whether m is a known split method.
func (m Method) Valid() bool {
	switch m {
	case MethodEqual, MethodUnequal, MethodPercentage, MethodExactAmount, MethodShares, MethodAdjustment:
		return true
	}
	return false
}

var (
	ErrEmptyParticipantSet       = errors.New("at least one participant is required")
	ErrInvalidSplitConfiguration = errors.New("invalid split configuration")
	ErrAmountMismatch            = errors.New("exact amounts do not sum to the expense total")
	ErrNegativeShareComputed     = errors.New("computed share is negative")
	ErrDuplicateParticipant      = errors.New("duplicate participant in split inputs")
)

// percentTolerance is the allowed deviation of the percentage sum from
// 100.00, expressed in hundredths of a percent.
const percentTolerance = 1

// ShareInput is one participant's input to a split. Which optional field
// is required depends on the method.
type ShareInput struct {
	UserID      int64
	Percentage  *decimal.Decimal // percentage, at most 2 fractional digits
	ShareWeight *int64           // positive integer weight
	ExactAmount *money.Money     // exact amount owed
	Adjustment  *money.Money     // signed delta on top of an equal share
}

// ShareResult is one participant's computed share. Results are always
// sorted by ascending user ID.
type ShareResult struct {
	UserID     int64
	AmountOwed money.Money
}

// Compute splits total among inputs according to method. The returned
// shares are non-negative and sum to total exactly.
func Compute(total money.Money, method Method, inputs []ShareInput) ([]ShareResult, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyParticipantSet
	}
	if total.IsNegative() {
		return nil, fmt.Errorf("%w: total must not be negative", ErrInvalidSplitConfiguration)
	}

	ordered := make([]ShareInput, len(inputs))
	copy(ordered, inputs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].UserID < ordered[j].UserID })
	for i := 1; i < len(ordered); i++ {
		if ordered[i].UserID == ordered[i-1].UserID {
			return nil, fmt.Errorf("%w: user %d", ErrDuplicateParticipant, ordered[i].UserID)
		}
	}

	var (
		results []ShareResult
		err     error
	)
	switch method {
	case MethodEqual:
		results, err = computeEqual(total, ordered)
	case MethodUnequal, MethodExactAmount:
		results, err = computeExact(total, ordered)
	case MethodPercentage:
		results, err = computePercentage(total, ordered)
	case MethodShares:
		results, err = computeShares(total, ordered)
	case MethodAdjustment:
		results, err = computeAdjustment(total, ordered)
	default:
		return nil, fmt.Errorf("%w: unknown method %q", ErrInvalidSplitConfiguration, method)
	}
	if err != nil {
		return nil, err
	}

	// Zero-sum postcondition. A mismatch here is a defect in the method
	// implementation; fail closed rather than return a broken set.
	var sum money.Money
	for _, r := range results {
		if r.AmountOwed.IsNegative() {
			return nil, fmt.Errorf("%w: user %d owes %s", ErrNegativeShareComputed, r.UserID, r.AmountOwed)
		}
		sum = sum.Add(r.AmountOwed)
	}
	if sum.Cmp(total) != 0 {
		return nil, fmt.Errorf("split defect: shares sum to %s, expected %s", sum, total)
	}
	return results, nil
}

// computeEqual divides total by N; the remainder cents go one each to the
// participants with the lowest user IDs so the result is reproducible
// bit-for-bit.
func computeEqual(total money.Money, inputs []ShareInput) ([]ShareResult, error) {
	base, rem := total.SplitEqual(len(inputs))
	results := make([]ShareResult, len(inputs))
	for i, in := range inputs {
		share := base
		if int64(i) < rem {
			share = share.Add(money.FromUnits(1))
		}
		results[i] = ShareResult{UserID: in.UserID, AmountOwed: share}
	}
	return results, nil
}

func computeExact(total money.Money, inputs []ShareInput) ([]ShareResult, error) {
	results := make([]ShareResult, len(inputs))
	var sum money.Money
	for i, in := range inputs {
		if in.ExactAmount == nil {
			return nil, fmt.Errorf("%w: user %d has no exact amount", ErrInvalidSplitConfiguration, in.UserID)
		}
		if in.ExactAmount.IsNegative() {
			return nil, fmt.Errorf("%w: user %d", ErrNegativeShareComputed, in.UserID)
		}
		sum = sum.Add(*in.ExactAmount)
		results[i] = ShareResult{UserID: in.UserID, AmountOwed: *in.ExactAmount}
	}
	if sum.Cmp(total) != 0 {
		return nil, fmt.Errorf("%w: amounts sum to %s, total is %s", ErrAmountMismatch, sum, total)
	}
	return results, nil
}

func computePercentage(total money.Money, inputs []ShareInput) ([]ShareResult, error) {
	// Percentages are carried as hundredths of a percent so the tolerance
	// check and the share math stay in integers.
	weights := make([]int64, len(inputs))
	var sumBP int64
	for i, in := range inputs {
		if in.Percentage == nil {
			return nil, fmt.Errorf("%w: user %d has no percentage", ErrInvalidSplitConfiguration, in.UserID)
		}
		bp := in.Percentage.Shift(2)
		if !bp.IsInteger() {
			return nil, fmt.Errorf("%w: percentage for user %d has more than 2 decimal places", ErrInvalidSplitConfiguration, in.UserID)
		}
		v := bp.IntPart()
		if v < 0 || v > 10000 {
			return nil, fmt.Errorf("%w: percentage for user %d out of range", ErrInvalidSplitConfiguration, in.UserID)
		}
		weights[i] = v
		sumBP += v
	}
	if sumBP < 10000-percentTolerance || sumBP > 10000+percentTolerance {
		return nil, fmt.Errorf("%w: percentages sum to %s%%", ErrInvalidSplitConfiguration, decimal.New(sumBP, -2))
	}
	return largestRemainder(total, inputs, weights, sumBP), nil
}

func computeShares(total money.Money, inputs []ShareInput) ([]ShareResult, error) {
	weights := make([]int64, len(inputs))
	var sum int64
	for i, in := range inputs {
		if in.ShareWeight == nil {
			return nil, fmt.Errorf("%w: user %d has no share weight", ErrInvalidSplitConfiguration, in.UserID)
		}
		if *in.ShareWeight <= 0 {
			return nil, fmt.Errorf("%w: share weight for user %d must be positive", ErrInvalidSplitConfiguration, in.UserID)
		}
		weights[i] = *in.ShareWeight
		sum += *in.ShareWeight
	}
	return largestRemainder(total, inputs, weights, sum), nil
}

// computeAdjustment starts from an equal split, applies each signed delta,
// and redistributes the delta total across the unadjusted participants so
// the sum stays constant. A participant counts as adjusted when the
// Adjustment field is set, even to zero.
func computeAdjustment(total money.Money, inputs []ShareInput) ([]ShareResult, error) {
	results, err := computeEqual(total, inputs)
	if err != nil {
		return nil, err
	}

	var adjTotal money.Money
	var unadjusted []int
	for i, in := range inputs {
		if in.Adjustment == nil {
			unadjusted = append(unadjusted, i)
			continue
		}
		results[i].AmountOwed = results[i].AmountOwed.Add(*in.Adjustment)
		adjTotal = adjTotal.Add(*in.Adjustment)
	}

	if !adjTotal.IsZero() && len(unadjusted) == 0 {
		return nil, fmt.Errorf("%w: adjustments sum to %s with no unadjusted participant to absorb them", ErrInvalidSplitConfiguration, adjTotal)
	}
	if len(unadjusted) > 0 {
		// Spread -adjTotal equally over the unadjusted participants. The
		// fractional remainders are all equal here, so the largest-remainder
		// rule degenerates to its ascending-user-ID tie-break: the first
		// participants in ID order absorb the residual cents.
		redistribute := adjTotal.Neg()
		base, rem := redistribute.SplitEqual(len(unadjusted))
		for k, pos := range unadjusted {
			delta := base
			if int64(k) < rem {
				delta = delta.Add(money.FromUnits(1))
			}
			results[pos].AmountOwed = results[pos].AmountOwed.Add(delta)
		}
	}

	for _, r := range results {
		if r.AmountOwed.IsNegative() {
			return nil, fmt.Errorf("%w: adjustment drives user %d below zero", ErrNegativeShareComputed, r.UserID)
		}
	}
	return results, nil
}

// largestRemainder allocates total proportionally to weights: each
// participant gets the floor of total*weight/sum, then the leftover cents
// go one each to the largest fractional remainders, ties broken by
// ascending user ID. inputs must already be sorted by user ID.
func largestRemainder(total money.Money, inputs []ShareInput, weights []int64, weightSum int64) []ShareResult {
	type alloc struct {
		idx int
		rem int64
	}
	results := make([]ShareResult, len(inputs))
	allocs := make([]alloc, len(inputs))
	var assigned money.Money
	for i, in := range inputs {
		share, rem := total.MulRatFloor(weights[i], weightSum)
		results[i] = ShareResult{UserID: in.UserID, AmountOwed: share}
		allocs[i] = alloc{idx: i, rem: rem}
		assigned = assigned.Add(share)
	}

	leftover := total.Sub(assigned).Units()
	sort.SliceStable(allocs, func(a, b int) bool {
		if allocs[a].rem != allocs[b].rem {
			return allocs[a].rem > allocs[b].rem
		}
		return results[allocs[a].idx].UserID < results[allocs[b].idx].UserID
	})
	for k := int64(0); k < leftover; k++ {
		i := allocs[k].idx
		results[i].AmountOwed = results[i].AmountOwed.Add(money.FromUnits(1))
	}
	return results
}
