package app

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/louisbranch/roshambo/internal/platform/i18n/catalog"
	"github.com/louisbranch/roshambo/internal/services/match/domain/decision"
	"github.com/louisbranch/roshambo/internal/services/match/domain/move"
	"github.com/louisbranch/roshambo/internal/services/match/storage"
)

func sampleSummary() Summary {
	return Summary{
		ID:         "abc",
		Seed:       7,
		HomePolicy: "drift",
		AwayPolicy: "detector",
		Capacity:   2,
		Tally:      Tally{Won: 1, Draw: 1},
		Rounds: []RoundResult{
			{Index: 0, Home: decision.Decision{Move: move.Rock, Strategy: "drift"}, Away: decision.Decision{Move: move.Scissors, Strategy: "random"}, Outcome: move.OutcomeWon},
			{Index: 1, Home: decision.Decision{Move: move.Paper, Strategy: "drift"}, Away: decision.Decision{Move: move.Paper, Strategy: "beat_last_input"}, Outcome: move.OutcomeDraw},
		},
	}
}

func TestReporterSummary(t *testing.T) {
	var out bytes.Buffer
	if err := NewReporter(nil, "en-US").Summary(&out, sampleSummary()); err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := strings.Join([]string{
		"Match abc (seed 7)",
		"Home: drift, Away: detector",
		"Rounds played: 2",
		"Home won 1, lost 0, tied 1",
		"Winner: home",
	}, "\n") + "\n"
	if out.String() != want {
		t.Fatalf("summary =\n%s\nwant\n%s", out.String(), want)
	}
}

// TestReporterPrintsSeedVerbatim keeps the seed in a form -seed accepts,
// without locale digit grouping.
func TestReporterPrintsSeedVerbatim(t *testing.T) {
	tcs := []struct {
		locale string
		want   string
	}{
		{locale: "en-US", want: "Match abc (seed 1234567890)"},
		{locale: "pt-BR", want: "Partida abc (semente 1234567890)"},
	}
	for _, tc := range tcs {
		t.Run(tc.locale, func(t *testing.T) {
			summary := sampleSummary()
			summary.Seed = 1234567890
			var out bytes.Buffer
			if err := NewReporter(nil, tc.locale).Summary(&out, summary); err != nil {
				t.Fatalf("summary: %v", err)
			}
			title := strings.SplitN(out.String(), "\n", 2)[0]
			if title != tc.want {
				t.Fatalf("title = %q, want %q", title, tc.want)
			}
		})
	}
}

func TestReporterPrintsNegativeSeedVerbatim(t *testing.T) {
	summary := sampleSummary()
	summary.Seed = -9223372036854775808
	var out bytes.Buffer
	if err := NewReporter(nil, "en-US").Summary(&out, summary); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out.String(), "(seed -9223372036854775808)") {
		t.Fatalf("summary = %q", out.String())
	}
}

func TestReporterArchived(t *testing.T) {
	match := storage.Match{ID: "m-1", Seed: 1234567, HomePolicy: "drift", AwayPolicy: "detector", Rounds: 2, HomeWon: 0, AwayWon: 1, Draws: 1}
	rounds := []storage.Round{
		{MatchID: "m-1", Index: 0, HomeMove: move.Rock, AwayMove: move.Paper, Outcome: move.OutcomeLost},
		{MatchID: "m-1", Index: 1, HomeMove: move.Paper, AwayMove: move.Paper, Outcome: move.OutcomeDraw},
	}
	var out bytes.Buffer
	if err := NewReporter(nil, "en-US").Archived(&out, match, rounds); err != nil {
		t.Fatalf("archived: %v", err)
	}
	want := strings.Join([]string{
		"Match m-1 (seed 1234567)",
		"Home: drift, Away: detector",
		"Rounds played: 2",
		"Home won 0, lost 1, tied 1",
		"Winner: away",
		"Round 1: home Rock, away Paper, Lost",
		"Round 2: home Paper, away Paper, Draw",
	}, "\n") + "\n"
	if out.String() != want {
		t.Fatalf("archived =\n%s\nwant\n%s", out.String(), want)
	}
}

func TestReporterLocaleCheckEmbedded(t *testing.T) {
	var out bytes.Buffer
	missing, err := NewReporter(nil, "en-US").LocaleCheck(&out)
	if err != nil {
		t.Fatalf("locale check: %v", err)
	}
	if missing != 0 {
		t.Fatalf("missing = %d, want 0:\n%s", missing, out.String())
	}
	want := "Locale en-US is complete\nLocale pt-BR is complete\n"
	if out.String() != want {
		t.Fatalf("locale check = %q, want %q", out.String(), want)
	}
}

func TestReporterLocaleCheckReportsMissingKeys(t *testing.T) {
	bundle, err := catalog.LoadFromFS(fstest.MapFS{
		"locales/en-US/report.yaml": {Data: []byte(`locale: "en-US"
namespace: "report"
messages:
  "report.title": "Match %s (seed %s)"
  "report.rounds": "Rounds played: %d"
`)},
		"locales/pt-BR/report.yaml": {Data: []byte(`locale: "pt-BR"
namespace: "report"
messages:
  "report.title": "Partida %s (semente %s)"
`)},
	})
	if err != nil {
		t.Fatalf("load bundle: %v", err)
	}

	var out bytes.Buffer
	missing, err := NewReporter(bundle, "en-US").LocaleCheck(&out)
	if err != nil {
		t.Fatalf("locale check: %v", err)
	}
	if missing != 1 {
		t.Fatalf("missing = %d, want 1", missing)
	}
	if !strings.Contains(out.String(), "Locale pt-BR is missing report.rounds") {
		t.Fatalf("locale check = %q", out.String())
	}
}

func TestReporterLocalizesRounds(t *testing.T) {
	reporter := NewReporter(nil, "pt-BR")
	var out bytes.Buffer
	if err := reporter.Round(&out, sampleSummary().Rounds[0]); err != nil {
		t.Fatalf("round: %v", err)
	}
	if got := out.String(); got != "Rodada 1: casa Pedra, visitante Tesoura, Vitória\n" {
		t.Fatalf("round = %q", got)
	}
}

func TestReporterFallsBackToBaseLocale(t *testing.T) {
	reporter := NewReporter(nil, "fr-FR")
	if reporter.Locale() != "en-US" {
		t.Fatalf("locale = %q, want en-US", reporter.Locale())
	}
	if got := reporter.MoveName(move.Scissors); got != "Scissors" {
		t.Fatalf("move name = %q, want Scissors", got)
	}
	if got := reporter.OutcomeName(move.OutcomeDraw); got != "Draw" {
		t.Fatalf("outcome name = %q, want Draw", got)
	}
}

func TestReporterMatches(t *testing.T) {
	reporter := NewReporter(nil, "en-US")

	var empty bytes.Buffer
	if err := reporter.Matches(&empty, nil); err != nil {
		t.Fatalf("matches: %v", err)
	}
	if empty.String() != "No archived matches.\n" {
		t.Fatalf("empty list = %q", empty.String())
	}

	var out bytes.Buffer
	matches := []storage.Match{{ID: "m-1", Rounds: 500, HomePolicy: "drift", HomeWon: 170, AwayPolicy: "detector", AwayWon: 160, Draws: 170}}
	if err := reporter.Matches(&out, matches); err != nil {
		t.Fatalf("matches: %v", err)
	}
	want := "m-1  500 rounds  home drift won 170  away detector won 160  tied 170\n"
	if out.String() != want {
		t.Fatalf("list = %q, want %q", out.String(), want)
	}
}

func TestSummaryWinner(t *testing.T) {
	tcs := []struct {
		tally Tally
		want  Winner
	}{
		{tally: Tally{Won: 2, Lost: 1}, want: WinnerHome},
		{tally: Tally{Won: 1, Lost: 2}, want: WinnerAway},
		{tally: Tally{Won: 1, Lost: 1, Draw: 3}, want: WinnerDraw},
	}
	for _, tc := range tcs {
		if got := (Summary{Tally: tc.tally}).Winner(); got != tc.want {
			t.Fatalf("Winner(%+v) = %s, want %s", tc.tally, got, tc.want)
		}
	}
}
