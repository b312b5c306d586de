// Package strategy holds the opponent-modeling catalog: six hypotheses about
// how an opponent picks its next move, the detector that backtests them
// against the ledger, and the independent rotation-drift predictor.
//
// Every predictor reasons from a reference round and never reads past it.
// Callers gate on history length; a predictor asked to look before round 0
// returns ErrInsufficientHistory instead of reading an unset slot.
package strategy

import (
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/roshambo/internal/platform/errors"
	"github.com/louisbranch/roshambo/internal/platform/random"
	"github.com/louisbranch/roshambo/internal/services/match/domain/ledger"
	"github.com/louisbranch/roshambo/internal/services/match/domain/move"
)

// ID labels one catalog strategy.
type ID int

const (
	Random ID = iota
	BeatLastInput
	PlayPreviousLosing
	CounterRotation
	WinStayLoseShift
	WinReplayLoseShift
	// RotationEcho plays the CounterRotation extrapolation itself instead of
	// countering it. It is an exploration draw only and is never detected.
	RotationEcho
)

var (
	// ErrInsufficientHistory indicates a predictor was asked about a round
	// the ledger cannot support.
	ErrInsufficientHistory = apperrors.New(apperrors.CodeStrategyInsufficientHistory, "insufficient history for strategy")
	// ErrUnknownStrategy indicates an ID outside the catalog.
	ErrUnknownStrategy = apperrors.New(apperrors.CodeStrategyUnknown, "unknown strategy")
	// ErrSourceRequired indicates a random draw was needed but no source was given.
	ErrSourceRequired = apperrors.New(apperrors.CodeStrategySourceRequired, "random source is required")
)

var names = map[ID]string{
	Random:             "random",
	BeatLastInput:      "beat_last_input",
	PlayPreviousLosing: "play_previous_losing",
	CounterRotation:    "counter_rotation",
	WinStayLoseShift:   "win_stay_lose_shift",
	WinReplayLoseShift: "win_replay_lose_shift",
	RotationEcho:       "rotation_echo",
}

func (id ID) String() string {
	if name, ok := names[id]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(id)) + ")"
}

// IDs returns every strategy identifier in draw order.
func IDs() []ID {
	return []ID{
		Random,
		BeatLastInput,
		PlayPreviousLosing,
		CounterRotation,
		WinStayLoseShift,
		WinReplayLoseShift,
		RotationEcho,
	}
}

// ParseID resolves a strategy by its snake_case name.
func ParseID(name string) (ID, error) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	for id, candidate := range names {
		if candidate == trimmed {
			return id, nil
		}
	}
	return 0, apperrors.WithMetadata(apperrors.CodeStrategyUnknown, "unknown strategy "+strconv.Quote(name), map[string]string{"strategy": name})
}

// Predict returns the move strategy id expects the opponent to play after
// round ref.
//
// CounterRotation can return an out-of-domain value (move.Move(3)) when the
// opponent's earlier move was Scissors; such a prediction never equals an
// observed move. Random draws a uniform move from rng and fails with
// ErrSourceRequired when rng is nil; the other rules never consult rng.
func Predict(id ID, h ledger.History, ref int, rng random.Source) (move.Move, error) {
	switch id {
	case Random:
		n, err := draw(rng, 3)
		if err != nil {
			return move.None, err
		}
		return move.Move(n), nil
	case BeatLastInput:
		record, err := reference(h, ref)
		if err != nil {
			return move.None, err
		}
		return move.WinningMoveAgainst(record.Opponent), nil
	case PlayPreviousLosing:
		record, err := reference(h, ref)
		if err != nil {
			return move.None, err
		}
		return move.LosingMoveAgainst(record.Self), nil
	case CounterRotation, RotationEcho:
		raw, err := rotation(h, ref)
		if err != nil {
			return move.None, err
		}
		return move.Move(raw), nil
	case WinStayLoseShift:
		record, err := reference(h, ref)
		if err != nil {
			return move.None, err
		}
		if opponentWon(record) {
			return record.Opponent, nil
		}
		return move.WinningMoveAgainst(record.Opponent), nil
	case WinReplayLoseShift:
		record, err := reference(h, ref)
		if err != nil {
			return move.None, err
		}
		if opponentWon(record) {
			return record.Self, nil
		}
		return move.WinningMoveAgainst(record.Opponent), nil
	default:
		return move.None, unknown(id)
	}
}

// draw returns rng.Intn(n), or ErrSourceRequired for a nil rng.
func draw(rng random.Source, n int) (int, error) {
	if rng == nil {
		return 0, ErrSourceRequired
	}
	return rng.Intn(n), nil
}

// Counter returns the move that defeats what strategy id predicts after
// round ref.
func Counter(id ID, h ledger.History, ref int, rng random.Source) (move.Move, error) {
	switch id {
	case RotationEcho:
		raw, err := rotation(h, ref)
		if err != nil {
			return move.None, err
		}
		return move.Wrap(raw), nil
	case CounterRotation:
		raw, err := rotation(h, ref)
		if err != nil {
			return move.None, err
		}
		// The raw value may sit outside the domain; the successor is taken
		// modulo three as is.
		return move.Wrap(raw + 1), nil
	}

	predicted, err := Predict(id, h, ref, rng)
	if err != nil {
		return move.None, err
	}
	return move.WinningMoveAgainst(predicted), nil
}

// rotation returns the unnormalized CounterRotation extrapolation for ref:
// the opponent's move at ref, plus the rotation from it back to the move
// before, plus one. With a single round there is no earlier move and the
// rotation is zero.
func rotation(h ledger.History, ref int) (int, error) {
	latest, err := reference(h, ref)
	if err != nil {
		return 0, err
	}
	earlier := latest
	if ref > 0 {
		earlier, err = h.At(ref - 1)
		if err != nil {
			return 0, err
		}
	}
	turn := int(earlier.Opponent) - int(latest.Opponent)
	return int(latest.Opponent) + turn + 1, nil
}

func reference(h ledger.History, ref int) (ledger.Record, error) {
	if ref < 0 || ref >= h.Len() {
		return ledger.Record{}, apperrors.WithMetadata(
			apperrors.CodeStrategyInsufficientHistory,
			ErrInsufficientHistory.Message,
			map[string]string{"reference": strconv.Itoa(ref), "length": strconv.Itoa(h.Len())},
		)
	}
	return h.At(ref)
}

// opponentWon reports whether the opponent took the round.
func opponentWon(record ledger.Record) bool {
	return record.Outcome == move.OutcomeLost
}

func unknown(id ID) error {
	return apperrors.WithMetadata(apperrors.CodeStrategyUnknown, ErrUnknownStrategy.Message, map[string]string{"strategy": id.String()})
}
