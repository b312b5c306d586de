package app

import (
	"context"
	"fmt"
	"time"

	"github.com/louisbranch/roshambo/internal/services/match/storage"
)

// ToArchive converts a summary into archive records.
func ToArchive(summary Summary, createdAt time.Time) (storage.Match, []storage.Round) {
	match := storage.Match{
		ID:         summary.ID,
		Seed:       summary.Seed,
		HomePolicy: summary.HomePolicy,
		AwayPolicy: summary.AwayPolicy,
		Capacity:   summary.Capacity,
		Rounds:     len(summary.Rounds),
		HomeWon:    summary.Tally.Won,
		AwayWon:    summary.Tally.Lost,
		Draws:      summary.Tally.Draw,
		CreatedAt:  createdAt.UTC(),
	}
	rounds := make([]storage.Round, 0, len(summary.Rounds))
	for _, result := range summary.Rounds {
		rounds = append(rounds, storage.Round{
			MatchID:      summary.ID,
			Index:        result.Index,
			HomeMove:     result.Home.Move,
			AwayMove:     result.Away.Move,
			Outcome:      result.Outcome,
			HomeStrategy: result.Home.Strategy,
			AwayStrategy: result.Away.Strategy,
		})
	}
	return match, rounds
}

// Archive saves a finished match to store.
func Archive(ctx context.Context, store storage.MatchStore, summary Summary, now func() time.Time) error {
	if store == nil {
		return fmt.Errorf("match store is required")
	}
	if now == nil {
		now = time.Now
	}
	match, rounds := ToArchive(summary, now())
	if err := store.SaveMatch(ctx, match, rounds); err != nil {
		return fmt.Errorf("archive match %s: %w", summary.ID, err)
	}
	return nil
}
