package app

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/louisbranch/roshambo/internal/platform/i18n/catalog"
	"github.com/louisbranch/roshambo/internal/services/match/domain/move"
	"github.com/louisbranch/roshambo/internal/services/match/storage"
)

// Reporter renders match results through a message catalog.
type Reporter struct {
	bundle *catalog.Bundle
	locale string
}

// NewReporter builds a reporter for locale. A nil bundle uses the embedded
// catalog; unknown locales fall back to the base locale.
func NewReporter(bundle *catalog.Bundle, locale string) *Reporter {
	if bundle == nil {
		bundle = catalog.Default()
	}
	return &Reporter{bundle: bundle, locale: bundle.Resolve(locale)}
}

// Locale returns the resolved locale.
func (r *Reporter) Locale() string {
	return r.locale
}

// Summary writes the headline of a finished match.
func (r *Reporter) Summary(w io.Writer, summary Summary) error {
	p := r.bundle.Printer(r.locale)
	lines := []string{
		p.Sprintf("report.title", summary.ID, strconv.FormatInt(summary.Seed, 10)),
		p.Sprintf("report.sides", summary.HomePolicy, summary.AwayPolicy),
		p.Sprintf("report.rounds", len(summary.Rounds)),
		p.Sprintf("report.tally", summary.Tally.Won, summary.Tally.Lost, summary.Tally.Draw),
		p.Sprintf("report.winner." + string(summary.Winner())),
	}
	return writeLines(w, lines)
}

// Round writes one round line.
func (r *Reporter) Round(w io.Writer, result RoundResult) error {
	p := r.bundle.Printer(r.locale)
	line := p.Sprintf("report.round",
		result.Index+1,
		r.MoveName(result.Home.Move),
		r.MoveName(result.Away.Move),
		r.OutcomeName(result.Outcome),
	)
	return writeLines(w, []string{line})
}

// Matches writes one line per archived match header.
func (r *Reporter) Matches(w io.Writer, matches []storage.Match) error {
	p := r.bundle.Printer(r.locale)
	if len(matches) == 0 {
		return writeLines(w, []string{p.Sprintf("report.list.empty")})
	}
	lines := make([]string, 0, len(matches))
	for _, match := range matches {
		lines = append(lines, p.Sprintf("report.list.entry",
			match.ID,
			match.Rounds,
			match.HomePolicy,
			match.HomeWon,
			match.AwayPolicy,
			match.AwayWon,
			match.Draws,
		))
	}
	return writeLines(w, lines)
}

// Archived writes an archived match header followed by its rounds.
func (r *Reporter) Archived(w io.Writer, match storage.Match, rounds []storage.Round) error {
	p := r.bundle.Printer(r.locale)
	winner := WinnerDraw
	switch {
	case match.HomeWon > match.AwayWon:
		winner = WinnerHome
	case match.AwayWon > match.HomeWon:
		winner = WinnerAway
	}
	lines := []string{
		p.Sprintf("report.title", match.ID, strconv.FormatInt(match.Seed, 10)),
		p.Sprintf("report.sides", match.HomePolicy, match.AwayPolicy),
		p.Sprintf("report.rounds", match.Rounds),
		p.Sprintf("report.tally", match.HomeWon, match.AwayWon, match.Draws),
		p.Sprintf("report.winner." + string(winner)),
	}
	for _, round := range rounds {
		lines = append(lines, p.Sprintf("report.round",
			round.Index+1,
			r.MoveName(round.HomeMove),
			r.MoveName(round.AwayMove),
			r.OutcomeName(round.Outcome),
		))
	}
	return writeLines(w, lines)
}

// LocaleCheck writes one line per catalog locale naming the keys it lacks
// against the base locale, and returns how many keys are missing in total.
func (r *Reporter) LocaleCheck(w io.Writer) (int, error) {
	p := r.bundle.Printer(r.locale)
	var lines []string
	total := 0
	for _, locale := range r.bundle.Locales() {
		missing := r.bundle.MissingKeys(locale)
		if len(missing) == 0 {
			lines = append(lines, p.Sprintf("report.locale.complete", locale))
			continue
		}
		total += len(missing)
		for _, key := range missing {
			lines = append(lines, p.Sprintf("report.locale.missing", locale, key))
		}
	}
	return total, writeLines(w, lines)
}

// MoveName returns the localized name of m.
func (r *Reporter) MoveName(m move.Move) string {
	return r.message("move." + strings.ToLower(m.String()))
}

// OutcomeName returns the localized name of o.
func (r *Reporter) OutcomeName(o move.Outcome) string {
	return r.message("move.outcome." + strings.ToLower(o.String()))
}

func (r *Reporter) message(key string) string {
	if value, ok := r.bundle.Message(r.locale, key); ok {
		return value
	}
	return key
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
