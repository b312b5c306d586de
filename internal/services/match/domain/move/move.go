// Package move implements the three-way cyclic choice algebra and round
// resolution for rock-paper-scissors.
//
// Moves are ordered Rock < Paper < Scissors < Rock: the cyclic successor of a
// move always defeats it.
package move

import (
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/roshambo/internal/platform/errors"
)

// Move is one of the three real choices, or None for an unset slot.
type Move int8

const (
	None Move = iota - 1
	Rock
	Paper
	Scissors
)

// count is the size of the move domain.
const count = 3

// ErrInvalidMove indicates a move name could not be parsed.
var ErrInvalidMove = apperrors.New(apperrors.CodeMoveInvalid, "invalid move")

func (m Move) String() string {
	switch m {
	case Rock:
		return "Rock"
	case Paper:
		return "Paper"
	case Scissors:
		return "Scissors"
	default:
		return "None"
	}
}

// Valid reports whether m is a real move.
func (m Move) Valid() bool {
	return m == Rock || m == Paper || m == Scissors
}

// Moves returns the real moves in cyclic order.
func Moves() []Move {
	return []Move{Rock, Paper, Scissors}
}

// ParseMove parses a case-insensitive move name.
func ParseMove(name string) (Move, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rock", "r":
		return Rock, nil
	case "paper", "p":
		return Paper, nil
	case "scissors", "s":
		return Scissors, nil
	default:
		return None, apperrors.WithMetadata(apperrors.CodeMoveInvalid, "invalid move "+strconv.Quote(name), map[string]string{"move": name})
	}
}

// WinningMoveAgainst returns the move that defeats m.
//
// m must be a real move.
func WinningMoveAgainst(m Move) Move {
	switch m {
	case Rock:
		return Paper
	case Paper:
		return Scissors
	case Scissors:
		return Rock
	default:
		panic("move: WinningMoveAgainst called with " + m.String())
	}
}

// LosingMoveAgainst returns the move that m defeats.
//
// m must be a real move.
func LosingMoveAgainst(m Move) Move {
	switch m {
	case Rock:
		return Scissors
	case Paper:
		return Rock
	case Scissors:
		return Paper
	default:
		panic("move: LosingMoveAgainst called with " + m.String())
	}
}

// Wrap maps any integer onto the move domain (non-negative modulo three).
func Wrap(n int) Move {
	n %= count
	if n < 0 {
		n += count
	}
	return Move(n)
}

// Delta returns the rotation from one real move to the next, in [0, 2].
// A delta of 1 means to beats from.
func Delta(from, to Move) int {
	return int(Wrap(int(to) - int(from)))
}

// Shift rotates m forward by d steps.
func Shift(m Move, d int) Move {
	return Wrap(int(m) + d)
}
