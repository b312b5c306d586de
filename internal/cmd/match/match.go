// Package match implements the match command: play policy-vs-policy
// matches, report them, and optionally archive them.
package match

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/roshambo/internal/platform/cmd"
	apperrors "github.com/louisbranch/roshambo/internal/platform/errors"
	"github.com/louisbranch/roshambo/internal/platform/id"
	"github.com/louisbranch/roshambo/internal/platform/random"
	"github.com/louisbranch/roshambo/internal/services/match/app"
	"github.com/louisbranch/roshambo/internal/services/match/domain/decision"
	"github.com/louisbranch/roshambo/internal/services/match/storage"
	"github.com/louisbranch/roshambo/internal/services/match/storage/sqlite"
)

// Config holds match command configuration.
type Config struct {
	Rounds     int    `env:"ROSHAMBO_MATCH_ROUNDS"       envDefault:"500"`
	Count      int    `env:"ROSHAMBO_MATCH_COUNT"        envDefault:"1"`
	Seed       int64  `env:"ROSHAMBO_MATCH_SEED"`
	HomePolicy string `env:"ROSHAMBO_MATCH_HOME_POLICY"  envDefault:"drift"`
	AwayPolicy string `env:"ROSHAMBO_MATCH_AWAY_POLICY"  envDefault:"detector"`
	DBPath     string `env:"ROSHAMBO_MATCH_DB_PATH"`
	Locale     string `env:"ROSHAMBO_MATCH_LOCALE"       envDefault:"en-US"`
	Verbose    bool   `env:"ROSHAMBO_MATCH_VERBOSE"`
	List       bool
	PageSize   int `env:"ROSHAMBO_MATCH_PAGE_SIZE" envDefault:"20"`
	// Show prints one archived match with its rounds instead of playing.
	Show string
	// CheckLocales reports report catalog keys missing per locale.
	CheckLocales bool
}

// ParseConfig loads env defaults and then parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	policies := strings.Join(decision.PolicyNames(), ", ")
	fs.IntVar(&cfg.Rounds, "rounds", cfg.Rounds, "rounds per match")
	fs.IntVar(&cfg.Count, "count", cfg.Count, "number of matches to play")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for reproducibility (0 = random)")
	fs.StringVar(&cfg.HomePolicy, "home", cfg.HomePolicy, "home policy ("+policies+")")
	fs.StringVar(&cfg.AwayPolicy, "away", cfg.AwayPolicy, "away policy ("+policies+")")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite archive path (empty = no archive)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "report locale")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "print every round")
	fs.BoolVar(&cfg.List, "list", false, "list archived matches instead of playing")
	fs.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "archived matches per page with -list")
	fs.StringVar(&cfg.Show, "show", "", "print the archived match with this id instead of playing")
	fs.BoolVar(&cfg.CheckLocales, "check-locales", false, "report missing catalog keys per locale and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values Run depends on.
func (c Config) Validate() error {
	switch {
	case c.CheckLocales:
		return nil
	case strings.TrimSpace(c.Show) != "":
		if strings.TrimSpace(c.DBPath) == "" {
			return invalidConfig("-show requires an archive path")
		}
		if _, err := id.Parse(c.Show); err != nil {
			return apperrors.Wrap(apperrors.CodeConfigInvalid, "invalid match id "+strconv.Quote(c.Show), err)
		}
		return nil
	case c.List:
		if strings.TrimSpace(c.DBPath) == "" {
			return invalidConfig("-list requires an archive path")
		}
		if c.PageSize <= 0 {
			return invalidConfig("page size must be greater than zero")
		}
		return nil
	}
	if c.Rounds <= 0 {
		return invalidConfig("rounds must be greater than zero")
	}
	if c.Count <= 0 {
		return invalidConfig("count must be greater than zero")
	}
	return nil
}

func invalidConfig(message string) error {
	return apperrors.New(apperrors.CodeConfigInvalid, message)
}

// Run executes the match command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := log.New(errOut, entrypoint.LogPrefix(entrypoint.ServiceMatch), 0)
	if cfg.CheckLocales {
		return checkLocales(app.NewReporter(nil, cfg.Locale), out)
	}

	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceMatch, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		var store *sqlite.Store
		if strings.TrimSpace(cfg.DBPath) != "" {
			opened, err := sqlite.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			defer func() {
				if err := opened.Close(); err != nil {
					logger.Printf("close archive: %v", err)
				}
			}()
			store = opened
		}

		reporter := app.NewReporter(nil, cfg.Locale)
		if strings.TrimSpace(cfg.Show) != "" {
			return showMatch(ctx, store, reporter, cfg.Show, out)
		}
		if cfg.List {
			return listMatches(ctx, store, reporter, cfg.PageSize, out)
		}

		for i := 0; i < cfg.Count; i++ {
			seed := cfg.Seed
			if seed != 0 {
				seed += int64(i)
			}
			if err := playMatch(ctx, cfg, seed, store, reporter, logger, out); err != nil {
				return err
			}
		}
		return nil
	})
}

func playMatch(ctx context.Context, cfg Config, seed int64, store *sqlite.Store, reporter *app.Reporter, logger *log.Logger, out io.Writer) error {
	seed, err := random.ResolveSeed(seed)
	if err != nil {
		return err
	}

	var observer app.RoundObserver
	if cfg.Verbose {
		observer = func(result app.RoundResult) {
			if err := reporter.Round(out, result); err != nil {
				logger.Printf("write round %d: %v", result.Index, err)
			}
		}
	}
	runner, err := app.NewRunner(app.Config{
		Capacity:   cfg.Rounds,
		Seed:       seed,
		HomePolicy: cfg.HomePolicy,
		AwayPolicy: cfg.AwayPolicy,
		Observer:   observer,
	})
	if err != nil {
		return err
	}

	started := time.Now()
	summary, err := runner.Play(ctx)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		logger.Printf("match %s finished in %s", summary.ID, time.Since(started))
	}
	if err := reporter.Summary(out, summary); err != nil {
		return err
	}
	if store != nil {
		if err := app.Archive(ctx, store, summary, nil); err != nil {
			return err
		}
		logger.Printf("archived match %s", summary.ID)
	}
	return nil
}

func listMatches(ctx context.Context, store storage.MatchStore, reporter *app.Reporter, pageSize int, out io.Writer) error {
	var matches []storage.Match
	token := ""
	for {
		page, err := store.ListMatches(ctx, pageSize, token)
		if err != nil {
			return err
		}
		matches = append(matches, page.Matches...)
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	return reporter.Matches(out, matches)
}

func showMatch(ctx context.Context, store storage.MatchStore, reporter *app.Reporter, matchID string, out io.Writer) error {
	matchID = strings.ToLower(strings.TrimSpace(matchID))
	match, err := store.GetMatch(ctx, matchID)
	if err != nil {
		return fmt.Errorf("show match %s: %w", matchID, err)
	}
	rounds, err := store.ListRounds(ctx, matchID)
	if err != nil {
		return fmt.Errorf("show match %s: %w", matchID, err)
	}
	return reporter.Archived(out, match, rounds)
}

func checkLocales(reporter *app.Reporter, out io.Writer) error {
	missing, err := reporter.LocaleCheck(out)
	if err != nil {
		return err
	}
	if missing > 0 {
		return fmt.Errorf("%d catalog keys missing", missing)
	}
	return nil
}
