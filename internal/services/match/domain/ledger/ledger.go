// Package ledger stores the append-only history of a match.
//
// A Ledger is owned by the match loop. Policies only ever see it through the
// read-only History interface, either directly (home side) or through Mirror
// (away side).
package ledger

import (
	"strconv"

	apperrors "github.com/louisbranch/roshambo/internal/platform/errors"
	"github.com/louisbranch/roshambo/internal/services/match/domain/move"
)

// DefaultCapacity is the number of rounds a match plays before it ends.
const DefaultCapacity = 500

var (
	// ErrCapacityExceeded indicates an append on a full ledger. It is the
	// designed end-of-match signal.
	ErrCapacityExceeded = apperrors.New(apperrors.CodeLedgerCapacityExceeded, "ledger capacity exceeded")
	// ErrOutOfRange indicates a read outside [0, Len).
	ErrOutOfRange = apperrors.New(apperrors.CodeLedgerOutOfRange, "ledger index out of range")
	// ErrInvalidRecord indicates an append with a non-real move or outcome.
	ErrInvalidRecord = apperrors.New(apperrors.CodeLedgerInvalidRecord, "invalid ledger record")
	// ErrInvalidCapacity indicates a ledger was built without room for a round.
	ErrInvalidCapacity = apperrors.New(apperrors.CodeLedgerInvalidCapacity, "ledger capacity must be positive")
)

// Record is one completed round seen from the self side.
type Record struct {
	Self     move.Move
	Opponent move.Move
	Outcome  move.Outcome
}

// Mirror returns the record seen from the opponent.
func (r Record) Mirror() Record {
	return Record{
		Self:     r.Opponent,
		Opponent: r.Self,
		Outcome:  r.Outcome.Mirror(),
	}
}

// History is read-only access to the rounds played so far.
type History interface {
	// Len returns the number of completed rounds.
	Len() int
	// At returns round i, failing with ErrOutOfRange outside [0, Len).
	At(i int) (Record, error)
}

// Ledger is a capacity-bounded, append-only sequence of rounds.
type Ledger struct {
	records  []Record
	capacity int
}

// New creates an empty ledger holding up to capacity rounds.
func New(capacity int) (*Ledger, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Ledger{
		records:  make([]Record, 0, capacity),
		capacity: capacity,
	}, nil
}

// Append records one completed round.
//
// A full ledger is left untouched and ErrCapacityExceeded is returned.
func (l *Ledger) Append(self, opponent move.Move, outcome move.Outcome) error {
	if len(l.records) >= l.capacity {
		return apperrors.WithMetadata(
			apperrors.CodeLedgerCapacityExceeded,
			ErrCapacityExceeded.Message,
			map[string]string{"capacity": strconv.Itoa(l.capacity)},
		)
	}
	if !self.Valid() || !opponent.Valid() || outcome == move.OutcomeNone {
		return apperrors.WithMetadata(
			apperrors.CodeLedgerInvalidRecord,
			ErrInvalidRecord.Message,
			map[string]string{
				"self":     self.String(),
				"opponent": opponent.String(),
				"outcome":  outcome.String(),
			},
		)
	}
	l.records = append(l.records, Record{Self: self, Opponent: opponent, Outcome: outcome})
	return nil
}

// At returns round i.
func (l *Ledger) At(i int) (Record, error) {
	if i < 0 || i >= len(l.records) {
		return Record{}, apperrors.WithMetadata(
			apperrors.CodeLedgerOutOfRange,
			ErrOutOfRange.Message,
			map[string]string{"index": strconv.Itoa(i), "length": strconv.Itoa(len(l.records))},
		)
	}
	return l.records[i], nil
}

// Len returns the number of rounds played.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Cap returns the maximum number of rounds.
func (l *Ledger) Cap() int {
	return l.capacity
}

// Full reports whether no further round can be appended.
func (l *Ledger) Full() bool {
	return len(l.records) >= l.capacity
}

// Records returns a copy of the rounds played.
func (l *Ledger) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Mirror returns the ledger seen from the opponent side.
func (l *Ledger) Mirror() History {
	return mirrored{source: l}
}

type mirrored struct {
	source History
}

func (m mirrored) Len() int {
	return m.source.Len()
}

func (m mirrored) At(i int) (Record, error) {
	record, err := m.source.At(i)
	if err != nil {
		return Record{}, err
	}
	return record.Mirror(), nil
}

var _ History = (*Ledger)(nil)
