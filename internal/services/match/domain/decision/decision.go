// Package decision picks each side's move for the next round.
//
// A Policy reads history from its own point of view and never appends; the
// match loop appends only after both sides have decided.
package decision

import (
	"strings"

	apperrors "github.com/louisbranch/roshambo/internal/platform/errors"
	"github.com/louisbranch/roshambo/internal/services/match/domain/ledger"
	"github.com/louisbranch/roshambo/internal/services/match/domain/move"
)

// Side is a seat in a match.
type Side uint8

const (
	// Home records its own moves as Self in the ledger.
	Home Side = iota
	// Away sees the ledger mirrored.
	Away
)

func (s Side) String() string {
	switch s {
	case Home:
		return "home"
	case Away:
		return "away"
	default:
		return "unknown"
	}
}

// ParseSide resolves "home" or "away".
func ParseSide(name string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "home":
		return Home, nil
	case "away":
		return Away, nil
	default:
		return Home, apperrors.WithMetadata(apperrors.CodeSideUnknown, "unknown side", map[string]string{"side": name})
	}
}

// Decision is a chosen move and the rule that produced it.
type Decision struct {
	Move     move.Move
	Strategy string
}

// Policy chooses a move from history seen from the deciding side.
type Policy interface {
	Decide(h ledger.History) (Decision, error)
}

// Engine routes each side to its policy.
type Engine struct {
	home Policy
	away Policy
}

// NewEngine builds an engine from the policies of both seats.
func NewEngine(home, away Policy) *Engine {
	return &Engine{home: home, away: away}
}

// Decide returns the decision of side for round l.Len().
func (e *Engine) Decide(l *ledger.Ledger, side Side) (Decision, error) {
	switch side {
	case Home:
		return e.home.Decide(l)
	case Away:
		return e.away.Decide(l.Mirror())
	default:
		return Decision{Move: move.None}, apperrors.WithMetadata(apperrors.CodeSideUnknown, "unknown side", map[string]string{"side": side.String()})
	}
}

// DecideMove returns only the move of Decide.
func (e *Engine) DecideMove(l *ledger.Ledger, side Side) (move.Move, error) {
	decision, err := e.Decide(l, side)
	if err != nil {
		return move.None, err
	}
	return decision.Move, nil
}
