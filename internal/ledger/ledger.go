// Package ledger maintains pairwise balances as a pure fold over an
// append-only log of financial events. The log is the source of truth;
// the per-pair accumulators are derived state that any replay of the same
// ordered log reproduces exactly.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gitlab.com/yelinaung/split-ledger/internal/money"
)

var (
	ErrNonPositiveAmount           = errors.New("ledger entry amount must be positive")
	ErrNonPositiveSettlementAmount = errors.New("settlement amount must be positive")
	ErrSamePairUsers               = errors.New("ledger entry must involve two distinct users")
	ErrUnknownEntryKind            = errors.New("unknown ledger entry kind")
)

// PairKey is the canonical identity of a user pair: Low < High always.
// One key per relationship, so A→B and B→A can never be double-booked.
type PairKey struct {
	Low  int64
	High int64
}

// NewPairKey builds the canonical key for two user IDs.
func NewPairKey(a, b int64) PairKey {
	if a < b {
		return PairKey{Low: a, High: b}
	}
	return PairKey{Low: b, High: a}
}

// Contains reports whether userID is one side of the pair.
func (k PairKey) Contains(userID int64) bool {
	return k.Low == userID || k.High == userID
}

// Other returns the counterpart of userID in the pair.
func (k PairKey) Other(userID int64) int64 {
	if k.Low == userID {
		return k.High
	}
	return k.Low
}

// Ledger folds entries into signed per-pair accumulators. Appends are
// serialized and reads see either the pre- or post-append state, never a
// half-applied entry. Because the fold is commutative per pair, the log
// can be sharded by PairKey and the shard snapshots merged when volume
// demands it; a single ledger keeps the whole fold behind one lock.
type Ledger struct {
	mu sync.RWMutex
	// balances[k] is the amount High owes Low, signed.
	balances map[PairKey]money.Money
	entries  []Entry
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{balances: make(map[PairKey]money.Money)}
}

// Replay folds an ordered entry log from empty state. The same log always
// produces the same balances.
func Replay(entries []Entry) (*Ledger, error) {
	l := New()
	for i, e := range entries {
		if err := l.Append(e); err != nil {
			return nil, fmt.Errorf("replay failed at entry %d: %w", i, err)
		}
	}
	return l, nil
}

// Append validates and applies a single entry. The entry is recorded in
// insertion order for audit and as-of queries.
func (l *Ledger) Append(e Entry) error {
	if err := e.validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key, delta := e.pairDelta()
	l.balances[key] = l.balances[key].Add(delta)
	l.entries = append(l.entries, e)
	return nil
}

// NetBalance returns the signed net amount between a and b: positive
// means b owes a. A pair with no history is zero, not an error, so
// callers cannot distinguish it from a settled pair here; MemberBalances
// on the projector makes that distinction.
func (l *Ledger) NetBalance(a, b int64) money.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()

	bal := l.balances[NewPairKey(a, b)]
	if a < b {
		// bal is what the higher ID owes the lower; a is the lower.
		return bal
	}
	return bal.Neg()
}

// Snapshot returns a consistent copy of every pair balance, including
// pairs that have settled back to zero.
func (l *Ledger) Snapshot() map[PairKey]money.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[PairKey]money.Money, len(l.balances))
	for k, v := range l.balances {
		out[k] = v
	}
	return out
}

// Entries returns a copy of the full log in insertion order.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// EntriesAsOf returns the prefix of the log with OccurredAt not after t,
// in insertion order.
func (l *Ledger) EntriesAsOf(t time.Time) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Entry
	for _, e := range l.entries {
		if !e.OccurredAt.After(t) {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries in the log.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
