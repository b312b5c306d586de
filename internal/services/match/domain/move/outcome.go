package move

// Outcome is the result of one round seen from one side.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeLost
	OutcomeDraw
	OutcomeWon
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLost:
		return "Lost"
	case OutcomeDraw:
		return "Draw"
	case OutcomeWon:
		return "Won"
	default:
		return "None"
	}
}

// Mirror returns the same outcome seen from the other side.
func (o Outcome) Mirror() Outcome {
	switch o {
	case OutcomeLost:
		return OutcomeWon
	case OutcomeWon:
		return OutcomeLost
	default:
		return o
	}
}

// Resolve returns the outcome of a round for the self side.
//
// OutcomeNone is returned when either move is not a real move; a well formed
// ledger never produces that case.
func Resolve(self, opponent Move) Outcome {
	if !self.Valid() || !opponent.Valid() {
		return OutcomeNone
	}
	switch opponent {
	case WinningMoveAgainst(self):
		return OutcomeLost
	case self:
		return OutcomeDraw
	default:
		return OutcomeWon
	}
}
