package move

import (
	"errors"
	"testing"

	apperrors "github.com/louisbranch/roshambo/internal/platform/errors"
)

func TestWinningAndLosingMoves(t *testing.T) {
	tcs := []struct {
		move    Move
		winning Move
		losing  Move
	}{
		{move: Rock, winning: Paper, losing: Scissors},
		{move: Paper, winning: Scissors, losing: Rock},
		{move: Scissors, winning: Rock, losing: Paper},
	}
	for _, tc := range tcs {
		if got := WinningMoveAgainst(tc.move); got != tc.winning {
			t.Fatalf("WinningMoveAgainst(%v) = %v, want %v", tc.move, got, tc.winning)
		}
		if got := LosingMoveAgainst(tc.move); got != tc.losing {
			t.Fatalf("LosingMoveAgainst(%v) = %v, want %v", tc.move, got, tc.losing)
		}
	}
}

func TestWinningMoveAgainstNonePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for None")
		}
	}()
	WinningMoveAgainst(None)
}

func TestParseMove(t *testing.T) {
	tcs := []struct {
		name string
		want Move
	}{
		{name: "rock", want: Rock},
		{name: " Paper ", want: Paper},
		{name: "SCISSORS", want: Scissors},
		{name: "s", want: Scissors},
	}
	for _, tc := range tcs {
		got, err := ParseMove(tc.name)
		if err != nil {
			t.Fatalf("ParseMove(%q) returned error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMove(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestParseMoveRejectsUnknown(t *testing.T) {
	got, err := ParseMove("lizard")
	if !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("ParseMove error = %v, want %v", err, ErrInvalidMove)
	}
	if got != None {
		t.Fatalf("ParseMove move = %v, want None", got)
	}
	if apperrors.CodeOf(err) != apperrors.CodeMoveInvalid {
		t.Fatalf("code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeMoveInvalid)
	}
}

func TestMoveStringAndValid(t *testing.T) {
	if None.Valid() || Move(3).Valid() {
		t.Fatal("expected None and out-of-domain values to be invalid")
	}
	if Move(3).String() != "None" {
		t.Fatalf("Move(3).String() = %q, want None", Move(3).String())
	}
	for _, m := range Moves() {
		if !m.Valid() {
			t.Fatalf("%v should be valid", m)
		}
	}
}

func TestWrapDeltaShift(t *testing.T) {
	if got := Wrap(-1); got != Scissors {
		t.Fatalf("Wrap(-1) = %v, want Scissors", got)
	}
	if got := Wrap(4); got != Paper {
		t.Fatalf("Wrap(4) = %v, want Paper", got)
	}
	if got := Delta(Scissors, Rock); got != 1 {
		t.Fatalf("Delta(Scissors, Rock) = %d, want 1", got)
	}
	if got := Delta(Rock, Scissors); got != 2 {
		t.Fatalf("Delta(Rock, Scissors) = %d, want 2", got)
	}
	if got := Shift(Paper, 2); got != Rock {
		t.Fatalf("Shift(Paper, 2) = %v, want Rock", got)
	}
}

func TestResolve(t *testing.T) {
	tcs := []struct {
		self     Move
		opponent Move
		want     Outcome
	}{
		{self: Rock, opponent: Paper, want: OutcomeLost},
		{self: Rock, opponent: Rock, want: OutcomeDraw},
		{self: Rock, opponent: Scissors, want: OutcomeWon},
		{self: Paper, opponent: Scissors, want: OutcomeLost},
		{self: Scissors, opponent: Paper, want: OutcomeWon},
		{self: None, opponent: Rock, want: OutcomeNone},
		{self: Paper, opponent: None, want: OutcomeNone},
	}
	for _, tc := range tcs {
		if got := Resolve(tc.self, tc.opponent); got != tc.want {
			t.Fatalf("Resolve(%v, %v) = %v, want %v", tc.self, tc.opponent, got, tc.want)
		}
	}
}

func TestOutcomeMirror(t *testing.T) {
	tcs := map[Outcome]Outcome{
		OutcomeNone: OutcomeNone,
		OutcomeLost: OutcomeWon,
		OutcomeDraw: OutcomeDraw,
		OutcomeWon:  OutcomeLost,
	}
	for in, want := range tcs {
		if got := in.Mirror(); got != want {
			t.Fatalf("%v.Mirror() = %v, want %v", in, got, want)
		}
	}
}
