package strategy

import (
	"strconv"

	apperrors "github.com/louisbranch/roshambo/internal/platform/errors"
	"github.com/louisbranch/roshambo/internal/platform/random"
	"github.com/louisbranch/roshambo/internal/services/match/domain/ledger"
)

// hypotheses are the strategies the detector backtests, in priority order.
var hypotheses = []ID{
	BeatLastInput,
	PlayPreviousLosing,
	CounterRotation,
	WinStayLoseShift,
	WinReplayLoseShift,
}

// fallback is drawn from when no hypothesis explains the last move. Rotation
// is the most common residual pattern once simple rules fail, so it shares
// the fallback with the uniform baseline instead of spreading over all six.
var fallback = []ID{Random, CounterRotation}

// Hypotheses returns the backtested strategies in priority order.
func Hypotheses() []ID {
	return append([]ID(nil), hypotheses...)
}

// Fallback returns the strategies drawn from when nothing matches.
func Fallback() []ID {
	return append([]ID(nil), fallback...)
}

// Candidates returns the hypotheses consistent with the opponent's latest move.
//
// Each hypothesis is evaluated as of round Len-2 and kept when its prediction
// equals the opponent's move at round Len-1. At least two rounds are required.
func Candidates(h ledger.History) ([]ID, error) {
	length := h.Len()
	if length < 2 {
		return nil, apperrors.WithMetadata(
			apperrors.CodeStrategyInsufficientHistory,
			ErrInsufficientHistory.Message,
			map[string]string{"length": strconv.Itoa(length), "required": "2"},
		)
	}
	observed, err := h.At(length - 1)
	if err != nil {
		return nil, err
	}

	var matches []ID
	for _, id := range hypotheses {
		// Hypotheses are deterministic; no random source is consulted.
		predicted, err := Predict(id, h, length-2, nil)
		if err != nil {
			return nil, err
		}
		if predicted == observed.Opponent {
			matches = append(matches, id)
		}
	}
	return matches, nil
}

// Guess picks the strategy the opponent is most plausibly following.
//
// With no history it is Random. With one round there is nothing to backtest
// and every identifier is equally likely. Otherwise one of the matching
// hypotheses is drawn uniformly, or one of the fallback pair when none match.
func Guess(h ledger.History, rng random.Source) (ID, error) {
	switch h.Len() {
	case 0:
		return Random, nil
	case 1:
		ids := IDs()
		n, err := draw(rng, len(ids))
		if err != nil {
			return Random, err
		}
		return ids[n], nil
	}

	matches, err := Candidates(h)
	if err != nil {
		return Random, err
	}
	if len(matches) == 0 {
		matches = fallback
	}
	n, err := draw(rng, len(matches))
	if err != nil {
		return Random, err
	}
	return matches[n], nil
}
