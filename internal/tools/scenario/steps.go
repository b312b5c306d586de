package scenario

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/louisbranch/roshambo/internal/platform/random"
	"github.com/louisbranch/roshambo/internal/services/match/app"
	"github.com/louisbranch/roshambo/internal/services/match/domain/decision"
	"github.com/louisbranch/roshambo/internal/services/match/domain/ledger"
	"github.com/louisbranch/roshambo/internal/services/match/domain/move"
	"github.com/louisbranch/roshambo/internal/services/match/domain/strategy"
)

func (r *Runner) runStep(ctx context.Context, state *scenarioState, step Step) error {
	switch step.Kind {
	case "capacity":
		return r.runCapacityStep(state, step.Args)
	case "round":
		return r.runRoundStep(state, step.Args)
	case "play":
		return r.runPlayStep(ctx, state, step.Args)
	case "expect_candidates":
		return r.runExpectCandidatesStep(state, step.Args)
	case "expect_decision":
		return r.runExpectDecisionStep(state, step.Args)
	case "expect_length":
		return r.runExpectLengthStep(state, step.Args)
	case "expect_tally":
		return r.runExpectTallyStep(state, step.Args)
	case "expect_capacity_exceeded":
		return r.runExpectCapacityExceededStep(state, step.Args)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runCapacityStep(state *scenarioState, args map[string]any) error {
	if state.ledger != nil {
		return errors.New("capacity must be set before the first round")
	}
	capacity := readInt(args, "capacity", 0)
	if capacity <= 0 {
		return ledger.ErrInvalidCapacity
	}
	state.capacity = capacity
	return nil
}

func (r *Runner) runRoundStep(state *scenarioState, args map[string]any) error {
	l, err := state.book()
	if err != nil {
		return err
	}
	home, err := move.ParseMove(readString(args, "home", ""))
	if err != nil {
		return fmt.Errorf("home: %w", err)
	}
	away, err := move.ParseMove(readString(args, "away", ""))
	if err != nil {
		return fmt.Errorf("away: %w", err)
	}
	outcome := move.Resolve(home, away)
	if err := l.Append(home, away, outcome); err != nil {
		return err
	}
	r.logf("round %d: %s vs %s (%s)", l.Len()-1, home, away, outcome)
	return nil
}

// runPlayStep lets two policies play until the ledger is full or the
// requested number of rounds has been played.
func (r *Runner) runPlayStep(ctx context.Context, state *scenarioState, args map[string]any) error {
	l, err := state.book()
	if err != nil {
		return err
	}
	rng, err := sourceFrom(args, random.New(int64(readInt(args, "seed", 0))))
	if err != nil {
		return err
	}
	home, err := decision.ParsePolicy(readString(args, "home", decision.PolicyDrift), rng)
	if err != nil {
		return fmt.Errorf("home: %w", err)
	}
	away, err := decision.ParsePolicy(readString(args, "away", decision.PolicyDetector), rng)
	if err != nil {
		return fmt.Errorf("away: %w", err)
	}
	engine := decision.NewEngine(home, away)

	remaining := readInt(args, "rounds", l.Cap()-l.Len())
	for ; remaining > 0 && !l.Full(); remaining-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		homeMove, err := engine.DecideMove(l, decision.Home)
		if err != nil {
			return fmt.Errorf("round %d home: %w", l.Len(), err)
		}
		awayMove, err := engine.DecideMove(l, decision.Away)
		if err != nil {
			return fmt.Errorf("round %d away: %w", l.Len(), err)
		}
		if err := l.Append(homeMove, awayMove, move.Resolve(homeMove, awayMove)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runExpectCandidatesStep(state *scenarioState, args map[string]any) error {
	view, side, err := sideView(state, args)
	if err != nil {
		return err
	}
	ids, err := strategy.Candidates(view)
	if err != nil {
		return err
	}
	got := make([]string, 0, len(ids))
	for _, id := range ids {
		got = append(got, id.String())
	}

	if exact, ok := args["exact"]; ok {
		want, err := toStrings(exact)
		if err != nil {
			return fmt.Errorf("exact: %w", err)
		}
		if strings.Join(got, ",") != strings.Join(want, ",") {
			return r.assertions.Failf("%s candidates = %v, want %v", side, got, want)
		}
	}
	if includes, ok := args["includes"]; ok {
		want, err := toStrings(includes)
		if err != nil {
			return fmt.Errorf("includes: %w", err)
		}
		for _, name := range want {
			if !containsString(got, name) {
				return r.assertions.Failf("%s candidates = %v, want to include %s", side, got, name)
			}
		}
	}
	return nil
}

func (r *Runner) runExpectDecisionStep(state *scenarioState, args map[string]any) error {
	l, err := state.book()
	if err != nil {
		return err
	}
	side, err := decision.ParseSide(readString(args, "side", "home"))
	if err != nil {
		return err
	}
	rng, err := sourceFrom(args, random.NewSequence())
	if err != nil {
		return err
	}
	policy, err := decision.ParsePolicy(readString(args, "policy", ""), rng)
	if err != nil {
		return err
	}
	got, err := decision.NewEngine(policy, policy).Decide(l, side)
	if err != nil {
		return err
	}
	r.logf("%s decision: %s via %s", side, got.Move, got.Strategy)

	if want, ok := args["move"]; ok {
		wantMove, err := move.ParseMove(fmt.Sprint(want))
		if err != nil {
			return fmt.Errorf("move: %w", err)
		}
		if got.Move != wantMove {
			return r.assertions.Failf("%s move = %s, want %s", side, got.Move, wantMove)
		}
	}
	if oneOf, ok := args["one_of"]; ok {
		names, err := toStrings(oneOf)
		if err != nil {
			return fmt.Errorf("one_of: %w", err)
		}
		allowed := make([]string, 0, len(names))
		for _, name := range names {
			m, err := move.ParseMove(name)
			if err != nil {
				return fmt.Errorf("one_of: %w", err)
			}
			allowed = append(allowed, m.String())
		}
		if !containsString(allowed, got.Move.String()) {
			return r.assertions.Failf("%s move = %s, want one of %v", side, got.Move, allowed)
		}
	}
	if want, ok := args["strategy"]; ok && fmt.Sprint(want) != got.Strategy {
		return r.assertions.Failf("%s strategy = %s, want %v", side, got.Strategy, want)
	}
	return nil
}

func (r *Runner) runExpectLengthStep(state *scenarioState, args map[string]any) error {
	want := readInt(args, "length", 0)
	if got := state.length(); got != want {
		return r.assertions.Failf("ledger length = %d, want %d", got, want)
	}
	return nil
}

func (r *Runner) runExpectTallyStep(state *scenarioState, args map[string]any) error {
	view, side, err := sideView(state, args)
	if err != nil {
		return err
	}
	got, err := app.TallyHistory(view)
	if err != nil {
		return err
	}
	want := app.Tally{
		Won:  readInt(args, "won", got.Won),
		Lost: readInt(args, "lost", got.Lost),
		Draw: readInt(args, "draw", got.Draw),
	}
	if got != want {
		return r.assertions.Failf("%s tally = %+v, want %+v", side, got, want)
	}
	return nil
}

func (r *Runner) runExpectCapacityExceededStep(state *scenarioState, args map[string]any) error {
	l, err := state.book()
	if err != nil {
		return err
	}
	home, err := move.ParseMove(readString(args, "home", "rock"))
	if err != nil {
		return err
	}
	away, err := move.ParseMove(readString(args, "away", "rock"))
	if err != nil {
		return err
	}
	before := l.Records()
	err = l.Append(home, away, move.Resolve(home, away))
	if !errors.Is(err, ledger.ErrCapacityExceeded) {
		return r.assertions.Failf("append on length %d/%d: error = %v, want capacity exceeded", l.Len(), l.Cap(), err)
	}
	after := l.Records()
	if len(after) != len(before) {
		return r.assertions.Failf("ledger length changed from %d to %d on rejected append", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			return r.assertions.Failf("record %d changed on rejected append", i)
		}
	}
	return nil
}

// sideView returns the ledger as seen from the "side" argument.
func sideView(state *scenarioState, args map[string]any) (ledger.History, decision.Side, error) {
	l, err := state.book()
	if err != nil {
		return nil, decision.Home, err
	}
	side, err := decision.ParseSide(readString(args, "side", "home"))
	if err != nil {
		return nil, decision.Home, err
	}
	if side == decision.Away {
		return l.Mirror(), side, nil
	}
	return l, side, nil
}

// sourceFrom returns a scripted source when args carries "draws".
func sourceFrom(args map[string]any, fallback random.Source) (random.Source, error) {
	raw, ok := args["draws"]
	if !ok {
		return fallback, nil
	}
	draws, err := toInts(raw)
	if err != nil {
		return nil, fmt.Errorf("draws: %w", err)
	}
	return random.NewSequence(draws...), nil
}

func readString(args map[string]any, key, fallback string) string {
	if value, ok := args[key].(string); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func readInt(args map[string]any, key string, fallback int) int {
	switch value := args[key].(type) {
	case int:
		return value
	case float64:
		return int(value)
	default:
		return fallback
	}
}

// toStrings accepts a Lua list of strings; an empty Lua table arrives as a map.
func toStrings(value any) ([]string, error) {
	switch v := value.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	case map[string]any:
		if len(v) == 0 {
			return []string{}, nil
		}
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("expected list, got table with keys %v", keys)
	case string:
		return []string{v}, nil
	default:
		return nil, fmt.Errorf("expected list, got %T", value)
	}
}

func toInts(value any) ([]int, error) {
	switch v := value.(type) {
	case []any:
		out := make([]int, 0, len(v))
		for _, item := range v {
			n, ok := item.(int)
			if !ok {
				return nil, fmt.Errorf("expected integer, got %v", item)
			}
			out = append(out, n)
		}
		return out, nil
	case map[string]any:
		if len(v) == 0 {
			return []int{}, nil
		}
		return nil, fmt.Errorf("expected list of integers")
	case int:
		return []int{v}, nil
	default:
		return nil, fmt.Errorf("expected list of integers, got %T", value)
	}
}

func containsString(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}
