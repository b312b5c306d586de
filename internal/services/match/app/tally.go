package app

import (
	"github.com/louisbranch/roshambo/internal/services/match/domain/ledger"
	"github.com/louisbranch/roshambo/internal/services/match/domain/move"
)

// Tally counts round outcomes from the self side of a history.
type Tally struct {
	Won  int
	Lost int
	Draw int
}

// Total returns the number of counted rounds.
func (t Tally) Total() int {
	return t.Won + t.Lost + t.Draw
}

// Mirror returns the tally seen from the opponent.
func (t Tally) Mirror() Tally {
	return Tally{Won: t.Lost, Lost: t.Won, Draw: t.Draw}
}

// Add counts one outcome; OutcomeNone is ignored.
func (t *Tally) Add(outcome move.Outcome) {
	switch outcome {
	case move.OutcomeWon:
		t.Won++
	case move.OutcomeLost:
		t.Lost++
	case move.OutcomeDraw:
		t.Draw++
	}
}

// TallyHistory scans h once and counts its outcomes.
func TallyHistory(h ledger.History) (Tally, error) {
	var tally Tally
	for i := 0; i < h.Len(); i++ {
		record, err := h.At(i)
		if err != nil {
			return Tally{}, err
		}
		tally.Add(record.Outcome)
	}
	return tally, nil
}
