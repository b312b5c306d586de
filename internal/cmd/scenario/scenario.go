// Package scenario implements the scenario command.
package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	entrypoint "github.com/louisbranch/roshambo/internal/platform/cmd"
	apperrors "github.com/louisbranch/roshambo/internal/platform/errors"
	"github.com/louisbranch/roshambo/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	Scenario   string `env:"ROSHAMBO_SCENARIO_FILE"`
	Assertions bool   `env:"ROSHAMBO_SCENARIO_ASSERT"   envDefault:"true"`
	Verbose    bool   `env:"ROSHAMBO_SCENARIO_VERBOSE"`
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to a scenario lua file or a directory of them")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the scenario command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if strings.TrimSpace(cfg.Scenario) == "" {
		return apperrors.New(apperrors.CodeConfigInvalid, "scenario path is required")
	}

	paths, err := scenarioPaths(cfg.Scenario)
	if err != nil {
		return err
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}

	logger := log.New(errOut, "", 0)
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceScenario, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		var failed int
		for _, path := range paths {
			runCfg := scenario.Config{
				Assertions: mode,
				Verbose:    cfg.Verbose,
				Logger:     logger,
			}
			if err := scenario.RunFile(ctx, runCfg, path); err != nil {
				if ctx.Err() != nil {
					return err
				}
				fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
				failed++
				continue
			}
			fmt.Fprintf(out, "ok   %s\n", path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d scenarios failed", failed, len(paths))
		}
		return nil
	})
}

// scenarioPaths expands path into the scenario files it names.
func scenarioPaths(path string) ([]string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "scenario not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("stat scenario: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	paths, err := filepath.Glob(filepath.Join(path, "*.lua"))
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	if len(paths) == 0 {
		return nil, apperrors.WithMetadata(apperrors.CodeNotFound, "no scenarios found in "+path, map[string]string{"path": path})
	}
	sort.Strings(paths)
	return paths, nil
}
