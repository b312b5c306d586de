// Package cmd holds the startup plumbing shared by roshambo commands.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/roshambo/internal/platform/config"
	apperrors "github.com/louisbranch/roshambo/internal/platform/errors"
	"github.com/louisbranch/roshambo/internal/platform/otel"
	"google.golang.org/grpc/codes"
)

const defaultOTelShutdownTimeout = 5 * time.Second

// Service identifiers used as telemetry service names and log prefixes.
const (
	ServiceMatch    = "match"
	ServiceScenario = "scenario"
)

// RunOptions controls shared entrypoint behavior for commands.
type RunOptions struct {
	// ShutdownTimeout sets the timeout used when stopping telemetry.
	ShutdownTimeout time.Duration
	// Logger receives telemetry shutdown failures. Defaults to the std logger.
	Logger *log.Logger
}

// ParseConfig loads environment defaults into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// ParseConfigFromArgs loads defaults from env and then parses flags, so flags
// override the environment.
func ParseConfigFromArgs[T any](cfg *T, fs *flag.FlagSet, args []string) error {
	if err := ParseConfig(cfg); err != nil {
		return err
	}
	return ParseArgs(fs, args)
}

// Process exit statuses for failed runs.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitCode maps a run error to a process exit status. Errors whose gRPC code
// marks rejected input exit with ExitUsage; everything else with ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch apperrors.StatusOf(err).Code() {
	case codes.InvalidArgument,
		codes.ResourceExhausted,
		codes.OutOfRange,
		codes.FailedPrecondition,
		codes.NotFound:
		return ExitUsage
	default:
		return ExitFailure
	}
}

// Fail formats err with its error reason, when it has one, and exits with
// ExitCode(err).
func Fail(err error) {
	config.ExitCodef(ExitCode(err), "%s", FailureMessage(err))
}

// FailureMessage renders err for stderr, e.g. "Error [POLICY_UNKNOWN]: ...".
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	if reason := apperrors.ReasonOf(apperrors.StatusOf(err)); reason != "" {
		return fmt.Sprintf("Error [%s]: %v", reason, err)
	}
	return fmt.Sprintf("Error: %v", err)
}

// LogPrefix returns the bracketed log prefix for a service, e.g. "[MATCH] ".
func LogPrefix(service string) string {
	return "[" + strings.ToUpper(strings.TrimSpace(service)) + "] "
}

// RunWithTelemetry configures tracing and executes a command run loop.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	return RunWithTelemetryAndOptions(ctx, service, RunOptions{}, run)
}

// RunWithTelemetryAndOptions configures tracing and executes a command run loop.
func RunWithTelemetryAndOptions(ctx context.Context, service string, options RunOptions, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := otel.Setup(ctx, "roshambo-"+service)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		shutdownTimeout := options.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = defaultOTelShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger := options.Logger
			if logger == nil {
				logger = log.Default()
			}
			logger.Printf("%s otel shutdown: %v", service, err)
		}
	}()
	return run(ctx)
}
