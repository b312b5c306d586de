// Package app drives matches between two decision policies and reports on
// them.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/roshambo/internal/platform/id"
	"github.com/louisbranch/roshambo/internal/platform/otel"
	"github.com/louisbranch/roshambo/internal/platform/random"
	"github.com/louisbranch/roshambo/internal/services/match/domain/decision"
	"github.com/louisbranch/roshambo/internal/services/match/domain/ledger"
	"github.com/louisbranch/roshambo/internal/services/match/domain/move"
)

// Config describes one match.
type Config struct {
	// Capacity is the number of rounds played. Defaults to ledger.DefaultCapacity.
	Capacity int
	// Seed is recorded in the summary; it seeds Source when Source is nil.
	Seed int64
	// HomePolicy and AwayPolicy name the policies for ParsePolicy.
	HomePolicy string
	AwayPolicy string
	// Home and Away override the named policies when set.
	Home decision.Policy
	Away decision.Policy
	// Source is shared by both policies. Defaults to random.New(Seed).
	Source random.Source
	// Observer is called after every appended round.
	Observer RoundObserver
	// Tracer defaults to the module tracer from the global provider.
	Tracer trace.Tracer
}

// RoundResult is one completed round, scored from the home side.
type RoundResult struct {
	Index   int
	Home    decision.Decision
	Away    decision.Decision
	Outcome move.Outcome
}

// RoundObserver receives each round as soon as it is recorded.
type RoundObserver func(RoundResult)

// Summary is the result of a finished match.
type Summary struct {
	ID         string
	Seed       int64
	HomePolicy string
	AwayPolicy string
	Capacity   int
	// Tally is scored from the home side.
	Tally  Tally
	Rounds []RoundResult
}

// Winner reports which side took more rounds.
func (s Summary) Winner() Winner {
	switch {
	case s.Tally.Won > s.Tally.Lost:
		return WinnerHome
	case s.Tally.Lost > s.Tally.Won:
		return WinnerAway
	default:
		return WinnerDraw
	}
}

// Winner names the side that took a match.
type Winner string

const (
	WinnerHome Winner = "home"
	WinnerAway Winner = "away"
	WinnerDraw Winner = "draw"
)

// Runner plays one match. A Runner owns its ledger and is not reusable.
type Runner struct {
	engine     *decision.Engine
	ledger     *ledger.Ledger
	seed       int64
	homePolicy string
	awayPolicy string
	observer   RoundObserver
	tracer     trace.Tracer
}

// NewRunner validates cfg and builds the policies for both sides.
func NewRunner(cfg Config) (*Runner, error) {
	capacity := cfg.Capacity
	if capacity == 0 {
		capacity = ledger.DefaultCapacity
	}
	l, err := ledger.New(capacity)
	if err != nil {
		return nil, err
	}
	rng := cfg.Source
	if rng == nil {
		rng = random.New(cfg.Seed)
	}

	home, homeName, err := resolvePolicy(cfg.Home, cfg.HomePolicy, decision.PolicyDrift, rng)
	if err != nil {
		return nil, fmt.Errorf("home policy: %w", err)
	}
	away, awayName, err := resolvePolicy(cfg.Away, cfg.AwayPolicy, decision.PolicyDetector, rng)
	if err != nil {
		return nil, fmt.Errorf("away policy: %w", err)
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer()
	}
	return &Runner{
		engine:     decision.NewEngine(home, away),
		ledger:     l,
		seed:       cfg.Seed,
		homePolicy: homeName,
		awayPolicy: awayName,
		observer:   cfg.Observer,
		tracer:     tracer,
	}, nil
}

// Ledger exposes the match history read-only.
func (r *Runner) Ledger() ledger.History {
	return r.ledger
}

// Play runs rounds until the ledger reaches capacity.
//
// Cancellation is checked between rounds; a canceled match returns the
// context error and no summary.
func (r *Runner) Play(ctx context.Context) (Summary, error) {
	matchID, err := id.NewID()
	if err != nil {
		return Summary{}, fmt.Errorf("match id: %w", err)
	}
	ctx, span := r.tracer.Start(ctx, "match.play", trace.WithAttributes(
		attribute.String("match.id", matchID),
		attribute.Int64("match.seed", r.seed),
		attribute.Int("match.capacity", r.ledger.Cap()),
		attribute.String("match.home_policy", r.homePolicy),
		attribute.String("match.away_policy", r.awayPolicy),
	))
	defer span.End()

	summary := Summary{
		ID:         matchID,
		Seed:       r.seed,
		HomePolicy: r.homePolicy,
		AwayPolicy: r.awayPolicy,
		Capacity:   r.ledger.Cap(),
		Rounds:     make([]RoundResult, 0, r.ledger.Cap()),
	}
	for !r.ledger.Full() {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return Summary{}, err
		}
		result, err := r.playRound(ctx)
		if errors.Is(err, ledger.ErrCapacityExceeded) {
			break
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return Summary{}, err
		}
		summary.Tally.Add(result.Outcome)
		summary.Rounds = append(summary.Rounds, result)
		if r.observer != nil {
			r.observer(result)
		}
	}

	span.SetAttributes(
		attribute.Int("match.home_won", summary.Tally.Won),
		attribute.Int("match.away_won", summary.Tally.Lost),
		attribute.Int("match.draws", summary.Tally.Draw),
	)
	return summary, nil
}

func (r *Runner) playRound(ctx context.Context) (RoundResult, error) {
	index := r.ledger.Len()
	_, span := r.tracer.Start(ctx, "match.round", trace.WithAttributes(attribute.Int("round.index", index)))
	defer span.End()

	home, err := r.engine.Decide(r.ledger, decision.Home)
	if err != nil {
		return RoundResult{}, fmt.Errorf("round %d home: %w", index, err)
	}
	away, err := r.engine.Decide(r.ledger, decision.Away)
	if err != nil {
		return RoundResult{}, fmt.Errorf("round %d away: %w", index, err)
	}
	outcome := move.Resolve(home.Move, away.Move)
	if err := r.ledger.Append(home.Move, away.Move, outcome); err != nil {
		return RoundResult{}, err
	}

	span.SetAttributes(
		attribute.String("round.home_move", home.Move.String()),
		attribute.String("round.home_strategy", home.Strategy),
		attribute.String("round.away_move", away.Move.String()),
		attribute.String("round.away_strategy", away.Strategy),
		attribute.String("round.outcome", outcome.String()),
	)
	return RoundResult{Index: index, Home: home, Away: away, Outcome: outcome}, nil
}

func resolvePolicy(policy decision.Policy, name, fallback string, rng random.Source) (decision.Policy, string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if policy != nil {
		if name == "" {
			name = "custom"
		}
		return policy, name, nil
	}
	if name == "" {
		name = fallback
	}
	built, err := decision.ParsePolicy(name, rng)
	if err != nil {
		return nil, "", err
	}
	return built, name, nil
}
