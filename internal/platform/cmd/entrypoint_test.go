package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"testing"

	apperrors "github.com/louisbranch/roshambo/internal/platform/errors"
	"github.com/louisbranch/roshambo/internal/platform/otel"
)

type testConfig struct {
	Rounds int    `env:"ROSHAMBO_CMD_TEST_ROUNDS" envDefault:"500"`
	Policy string `env:"ROSHAMBO_CMD_TEST_POLICY" envDefault:"drift"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("ROSHAMBO_CMD_TEST_ROUNDS", "40")
	t.Setenv("ROSHAMBO_CMD_TEST_POLICY", "detector")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.IntVar(&cfg.Rounds, "rounds", cfg.Rounds, "rounds")
	fs.StringVar(&cfg.Policy, "policy", cfg.Policy, "policy")

	if err := ParseArgs(fs, []string{"-rounds", "7"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfg.Rounds != 7 {
		t.Fatalf("rounds = %d, want flag value 7", cfg.Rounds)
	}
	if cfg.Policy != "detector" {
		t.Fatalf("policy = %q, want env value detector", cfg.Policy)
	}
}

func TestParseConfigFromArgsReadsEnvAndFlags(t *testing.T) {
	t.Setenv("ROSHAMBO_CMD_TEST_POLICY", "detector")

	cfg := testConfig{}
	fs := flag.NewFlagSet("configargs", flag.ContinueOnError)
	fs.IntVar(&cfg.Rounds, "rounds", 0, "rounds")
	fs.StringVar(&cfg.Policy, "policy", "", "policy")
	if err := ParseConfigFromArgs(&cfg, fs, []string{"-rounds", "9"}); err != nil {
		t.Fatalf("parse config and args: %v", err)
	}
	if cfg.Rounds != 9 {
		t.Fatalf("rounds = %d, want 9", cfg.Rounds)
	}
	if cfg.Policy != "detector" {
		t.Fatalf("policy = %q, want detector", cfg.Policy)
	}
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected nil target error")
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestLogPrefix(t *testing.T) {
	if got := LogPrefix(ServiceMatch); got != "[MATCH] " {
		t.Fatalf("LogPrefix = %q, want [MATCH] ", got)
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceMatch, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryReturnsRunError(t *testing.T) {
	t.Setenv(otel.EnvEndpoint, "")
	want := errors.New("boom")

	called := false
	err := RunWithTelemetry(context.Background(), ServiceScenario, func(context.Context) error {
		called = true
		return want
	})
	if !called {
		t.Fatal("expected run to be called")
	}
	if !errors.Is(err, want) {
		t.Fatalf("error = %v, want %v", err, want)
	}
}

func TestExitCode(t *testing.T) {
	tcs := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain", err: errors.New("disk full"), want: ExitFailure},
		{name: "unknown policy", err: fmt.Errorf("home: %w", apperrors.New(apperrors.CodePolicyUnknown, "unknown policy")), want: ExitUsage},
		{name: "invalid config", err: apperrors.New(apperrors.CodeConfigInvalid, "rounds must be greater than zero"), want: ExitUsage},
		{name: "capacity exceeded", err: apperrors.New(apperrors.CodeLedgerCapacityExceeded, "ledger is full"), want: ExitUsage},
		{name: "not found", err: apperrors.New(apperrors.CodeNotFound, "record not found"), want: ExitUsage},
		{name: "already exists", err: apperrors.New(apperrors.CodeAlreadyExists, "record already exists"), want: ExitFailure},
		{name: "internal", err: apperrors.New(apperrors.CodeUnknown, "unexpected"), want: ExitFailure},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestFailureMessage(t *testing.T) {
	coded := fmt.Errorf("home: %w", apperrors.New(apperrors.CodePolicyUnknown, "unknown policy"))
	if got := FailureMessage(coded); got != "Error [POLICY_UNKNOWN]: home: unknown policy" {
		t.Fatalf("message = %q", got)
	}
	if got := FailureMessage(errors.New("disk full")); got != "Error: disk full" {
		t.Fatalf("message = %q", got)
	}
}
