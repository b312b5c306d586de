// Package storage defines persistence contracts for the match archive.
//
// The archive is write-once: a finished match is saved with all of its
// rounds and never resumed.
package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/roshambo/internal/platform/errors"
	"github.com/louisbranch/roshambo/internal/services/match/domain/move"
)

var (
	// ErrNotFound indicates a requested match is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")
	// ErrAlreadyExists indicates a match with the same ID was already saved.
	ErrAlreadyExists = apperrors.New(apperrors.CodeAlreadyExists, "record already exists")
)

// Match is the header of one archived match.
type Match struct {
	ID         string
	Seed       int64
	HomePolicy string
	AwayPolicy string
	Capacity   int
	Rounds     int
	HomeWon    int
	AwayWon    int
	Draws      int
	CreatedAt  time.Time
}

// Round is one archived round, scored from the home side.
type Round struct {
	MatchID      string
	Index        int
	HomeMove     move.Move
	AwayMove     move.Move
	Outcome      move.Outcome
	HomeStrategy string
	AwayStrategy string
}

// MatchPage stores one page of match headers.
type MatchPage struct {
	Matches       []Match
	NextPageToken string
}

// MatchStore persists finished matches.
type MatchStore interface {
	SaveMatch(ctx context.Context, match Match, rounds []Round) error
	GetMatch(ctx context.Context, matchID string) (Match, error)
	ListMatches(ctx context.Context, pageSize int, pageToken string) (MatchPage, error)
	ListRounds(ctx context.Context, matchID string) ([]Round, error)
}
