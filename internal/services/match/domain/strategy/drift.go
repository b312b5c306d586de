package strategy

import (
	"github.com/louisbranch/roshambo/internal/platform/random"
	"github.com/louisbranch/roshambo/internal/services/match/domain/ledger"
	"github.com/louisbranch/roshambo/internal/services/match/domain/move"
)

// DriftWindow bounds how many trailing rotation deltas the drift predictor reads.
const DriftWindow = 4

// Drift predicts the opponent's next move from the drift of its rotation and
// returns the move that beats it.
//
// The latest rotation delta is extrapolated by the mean change between
// consecutive deltas over the trailing window, truncated toward zero. With no
// history the move is random; after one round it is the move that loses to our
// own opening, since no rotation can be measured yet.
func Drift(h ledger.History, rng random.Source) (move.Move, error) {
	length := h.Len()
	switch length {
	case 0:
		n, err := draw(rng, 3)
		if err != nil {
			return move.None, err
		}
		return move.Move(n), nil
	case 1:
		first, err := h.At(0)
		if err != nil {
			return move.None, err
		}
		return move.LosingMoveAgainst(first.Self), nil
	}

	deltas, err := rotationDeltas(h, DriftWindow)
	if err != nil {
		return move.None, err
	}
	var acc float64
	for i := 0; i < len(deltas)-1; i++ {
		acc += float64(deltas[i] - deltas[i+1])
	}
	acc /= float64(len(deltas))

	last, err := h.At(length - 1)
	if err != nil {
		return move.None, err
	}
	next := move.Shift(last.Opponent, deltas[0]+int(acc))
	return move.WinningMoveAgainst(next), nil
}

// rotationDeltas returns up to window deltas between consecutive opponent
// moves, newest first.
func rotationDeltas(h ledger.History, window int) ([]int, error) {
	length := h.Len()
	deltas := make([]int, 0, window)
	for i := 0; i < window && length-2-i >= 0; i++ {
		to, err := h.At(length - 1 - i)
		if err != nil {
			return nil, err
		}
		from, err := h.At(length - 2 - i)
		if err != nil {
			return nil, err
		}
		deltas = append(deltas, move.Delta(from.Opponent, to.Opponent))
	}
	return deltas, nil
}
