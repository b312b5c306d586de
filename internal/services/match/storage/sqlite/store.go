// Package sqlite provides a SQLite-backed match archive.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/roshambo/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/roshambo/internal/services/match/domain/move"
	"github.com/louisbranch/roshambo/internal/services/match/storage"
	"github.com/louisbranch/roshambo/internal/services/match/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists archived matches in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite match archive and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveMatch inserts a match header and all of its rounds in one transaction.
func (s *Store) SaveMatch(ctx context.Context, match storage.Match, rounds []storage.Round) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	match.ID = strings.TrimSpace(match.ID)
	if match.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if match.Rounds != len(rounds) {
		return fmt.Errorf("match declares %d rounds, got %d", match.Rounds, len(rounds))
	}
	createdAt := match.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save match: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO matches (
		   id, seed, home_policy, away_policy, capacity,
		   rounds, home_won, away_won, draws, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		match.ID,
		match.Seed,
		match.HomePolicy,
		match.AwayPolicy,
		match.Capacity,
		match.Rounds,
		match.HomeWon,
		match.AwayWon,
		match.Draws,
		toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("save match: %w", err)
	}

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO match_rounds (
		   match_id, round_index, home_move, away_move, outcome, home_strategy, away_strategy
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare save rounds: %w", err)
	}
	defer stmt.Close()

	for i, round := range rounds {
		if round.Index != i {
			return fmt.Errorf("round %d stored at index %d", round.Index, i)
		}
		if _, err := stmt.ExecContext(
			ctx,
			match.ID,
			round.Index,
			int(round.HomeMove),
			int(round.AwayMove),
			int(round.Outcome),
			round.HomeStrategy,
			round.AwayStrategy,
		); err != nil {
			return fmt.Errorf("save round %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save match: %w", err)
	}
	return nil
}

// GetMatch returns one match header by ID.
func (s *Store) GetMatch(ctx context.Context, matchID string) (storage.Match, error) {
	if err := ctx.Err(); err != nil {
		return storage.Match{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Match{}, fmt.Errorf("storage is not configured")
	}
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return storage.Match{}, fmt.Errorf("match id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+matchColumns+`
		   FROM matches
		  WHERE id = ?`,
		matchID,
	)
	match, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Match{}, storage.ErrNotFound
		}
		return storage.Match{}, fmt.Errorf("get match: %w", err)
	}
	return match, nil
}

// ListMatches returns one page of match headers ordered by ID.
func (s *Store) ListMatches(ctx context.Context, pageSize int, pageToken string) (storage.MatchPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.MatchPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.MatchPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		return storage.MatchPage{}, fmt.Errorf("page size must be greater than zero")
	}
	pageToken = strings.TrimSpace(pageToken)

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+matchColumns+`
		   FROM matches
		  WHERE id > ?
		  ORDER BY id ASC
		  LIMIT ?`,
		pageToken,
		pageSize+1,
	)
	if err != nil {
		return storage.MatchPage{}, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	page := storage.MatchPage{Matches: make([]storage.Match, 0, pageSize)}
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return storage.MatchPage{}, fmt.Errorf("list matches: %w", err)
		}
		page.Matches = append(page.Matches, match)
	}
	if err := rows.Err(); err != nil {
		return storage.MatchPage{}, fmt.Errorf("list matches: %w", err)
	}
	if len(page.Matches) > pageSize {
		page.NextPageToken = page.Matches[pageSize-1].ID
		page.Matches = page.Matches[:pageSize]
	}
	return page, nil
}

// ListRounds returns every round of a match in play order.
func (s *Store) ListRounds(ctx context.Context, matchID string) ([]storage.Round, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if _, err := s.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT match_id, round_index, home_move, away_move, outcome, home_strategy, away_strategy
		   FROM match_rounds
		  WHERE match_id = ?
		  ORDER BY round_index ASC`,
		strings.TrimSpace(matchID),
	)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	defer rows.Close()

	var rounds []storage.Round
	for rows.Next() {
		var round storage.Round
		var homeMove, awayMove, outcome int
		if err := rows.Scan(
			&round.MatchID,
			&round.Index,
			&homeMove,
			&awayMove,
			&outcome,
			&round.HomeStrategy,
			&round.AwayStrategy,
		); err != nil {
			return nil, fmt.Errorf("list rounds: %w", err)
		}
		round.HomeMove = move.Move(homeMove)
		round.AwayMove = move.Move(awayMove)
		round.Outcome = move.Outcome(outcome)
		rounds = append(rounds, round)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	return rounds, nil
}

const matchColumns = `id, seed, home_policy, away_policy, capacity,
		        rounds, home_won, away_won, draws, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (storage.Match, error) {
	var match storage.Match
	var createdAt int64
	if err := row.Scan(
		&match.ID,
		&match.Seed,
		&match.HomePolicy,
		&match.AwayPolicy,
		&match.Capacity,
		&match.Rounds,
		&match.HomeWon,
		&match.AwayWon,
		&match.Draws,
		&createdAt,
	); err != nil {
		return storage.Match{}, err
	}
	match.CreatedAt = fromMillis(createdAt)
	return match, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "matches.id")
}

var _ storage.MatchStore = (*Store)(nil)
