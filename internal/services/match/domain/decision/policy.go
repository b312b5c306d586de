package decision

import (
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/roshambo/internal/platform/errors"
	"github.com/louisbranch/roshambo/internal/platform/random"
	"github.com/louisbranch/roshambo/internal/services/match/domain/ledger"
	"github.com/louisbranch/roshambo/internal/services/match/domain/move"
	"github.com/louisbranch/roshambo/internal/services/match/domain/strategy"
)

const (
	// PolicyDetector counters the strategy the detector attributes to the opponent.
	PolicyDetector = "detector"
	// PolicyDrift counters the rotation-drift extrapolation.
	PolicyDrift = "drift"

	strategyDrift    = "drift"
	strategyScripted = "scripted"
)

var (
	// ErrUnknownPolicy indicates a policy name outside PolicyNames.
	ErrUnknownPolicy = apperrors.New(apperrors.CodePolicyUnknown, "unknown policy")
	// ErrUnknownSide indicates a side other than Home or Away.
	ErrUnknownSide = apperrors.New(apperrors.CodeSideUnknown, "unknown side")
	// ErrPolicyExhausted indicates a scripted policy ran out of moves.
	ErrPolicyExhausted = apperrors.New(apperrors.CodePolicyExhausted, "scripted policy exhausted")
)

var factories = map[string]func(random.Source) Policy{
	PolicyDetector: func(rng random.Source) Policy { return NewStrategyPolicy(rng) },
	PolicyDrift:    func(rng random.Source) Policy { return NewDriftPolicy(rng) },
}

// PolicyNames lists the names accepted by ParsePolicy.
func PolicyNames() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParsePolicy builds a named policy drawing from rng.
func ParsePolicy(name string, rng random.Source) (Policy, error) {
	factory, ok := factories[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, apperrors.WithMetadata(
			apperrors.CodePolicyUnknown,
			"unknown policy "+strconv.Quote(name),
			map[string]string{"policy": name, "known": strings.Join(PolicyNames(), ",")},
		)
	}
	return factory(rng), nil
}

// StrategyPolicy plays the counter of the strategy the opponent most
// plausibly follows.
//
// Round 0 is random, round 1 explores a uniformly drawn strategy, and later
// rounds use the detector. The counter is always taken against the latest
// round.
type StrategyPolicy struct {
	rng random.Source
}

// NewStrategyPolicy builds a detector-driven policy.
func NewStrategyPolicy(rng random.Source) *StrategyPolicy {
	return &StrategyPolicy{rng: rng}
}

// Decide implements Policy.
func (p *StrategyPolicy) Decide(h ledger.History) (Decision, error) {
	id, err := strategy.Guess(h, p.rng)
	if err != nil {
		return Decision{Move: move.None}, err
	}
	counter, err := strategy.Counter(id, h, h.Len()-1, p.rng)
	if err != nil {
		return Decision{Move: move.None}, err
	}
	return Decision{Move: counter, Strategy: id.String()}, nil
}

// DriftPolicy plays against the rotation-drift extrapolation.
type DriftPolicy struct {
	rng random.Source
}

// NewDriftPolicy builds a drift-driven policy.
func NewDriftPolicy(rng random.Source) *DriftPolicy {
	return &DriftPolicy{rng: rng}
}

// Decide implements Policy.
func (p *DriftPolicy) Decide(h ledger.History) (Decision, error) {
	next, err := strategy.Drift(h, p.rng)
	if err != nil {
		return Decision{Move: move.None}, err
	}
	return Decision{Move: next, Strategy: strategyDrift}, nil
}

// ScriptedPolicy replays a fixed queue of moves, ignoring history.
type ScriptedPolicy struct {
	moves []move.Move
	next  int
}

// NewScriptedPolicy queues moves in play order.
func NewScriptedPolicy(moves ...move.Move) *ScriptedPolicy {
	return &ScriptedPolicy{moves: append([]move.Move(nil), moves...)}
}

// Push appends moves to the end of the queue.
func (p *ScriptedPolicy) Push(moves ...move.Move) {
	p.moves = append(p.moves, moves...)
}

// Remaining reports how many moves are still queued.
func (p *ScriptedPolicy) Remaining() int {
	return len(p.moves) - p.next
}

// Decide implements Policy.
func (p *ScriptedPolicy) Decide(ledger.History) (Decision, error) {
	if p.next >= len(p.moves) {
		return Decision{Move: move.None}, apperrors.WithMetadata(
			apperrors.CodePolicyExhausted,
			ErrPolicyExhausted.Message,
			map[string]string{"played": strconv.Itoa(p.next)},
		)
	}
	m := p.moves[p.next]
	p.next++
	return Decision{Move: m, Strategy: strategyScripted}, nil
}

var (
	_ Policy = (*StrategyPolicy)(nil)
	_ Policy = (*DriftPolicy)(nil)
	_ Policy = (*ScriptedPolicy)(nil)
)
