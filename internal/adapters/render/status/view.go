package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/lobbymatch/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now time.Time
}

func renderView(view domain.StatusView, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Lobby Status"),
		s.header.Render(fmt.Sprintf("stations: %d  open matches: %d", domain.StationCount, openMatches(view.Matches))),
		s.section.Render(renderStations(view.Assignments, s)),
		s.section.Render(renderEvents(view.Events, opts, s)),
		s.section.Render(renderMatches(view.Matches, opts, s)),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderStations(assignments domain.Assignments, s styles) string {
	lines := make([]string, 0, domain.StationCount)
	for i, station := range domain.Stations {
		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.station.Render(station.Label()),
			" ",
			sessionLabel(assignments[i], s),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderEvents(events []domain.PairingEvent, opts RenderOptions, s styles) string {
	lines := []string{s.heading.Render("Recent lobby history")}
	if len(events) == 0 {
		lines = append(lines, s.empty.Render("No lobby events yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, event := range events {
		ids := make([]string, 0, domain.StationCount)
		for i, station := range domain.Stations {
			ids = append(ids, fmt.Sprintf("%s: %s", station.Label(), sessionLabel(event.Assignments[i], s)))
		}

		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.meta.Render(formatWhen(event.At, opts.Now)),
			"  ",
			strings.Join(ids, ", "),
			" ",
			outcomeTag(event.Outcome, s),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderMatches(matches []domain.MatchRecord, opts RenderOptions, s styles) string {
	lines := []string{s.heading.Render("Recent games")}
	if len(matches) == 0 {
		lines = append(lines, s.empty.Render("No games played yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, record := range matches {
		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.meta.Render(formatWhen(record.StartedAt, opts.Now)),
			"  ",
			fmt.Sprintf("%s vs %s", record.StationA.Label(), record.StationB.Label()),
			" ",
			matchState(record, opts, s),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func sessionLabel(id domain.SessionID, s styles) string {
	if !id.Present() {
		return s.absent.Render("—")
	}
	return s.session.Render(string(id))
}

func outcomeTag(outcome domain.Outcome, s styles) string {
	tag := fmt.Sprintf("[%s]", outcome)
	switch outcome {
	case domain.OutcomeWaiting:
		return s.waiting.Render(tag)
	case domain.OutcomeMatch:
		return s.match.Render(tag)
	case domain.OutcomeRepeatRejected:
		return s.rejected.Render(tag)
	default:
		return tag
	}
}

func matchState(record domain.MatchRecord, opts RenderOptions, s styles) string {
	if record.EndedAt == nil {
		if opts.Now.IsZero() || opts.Now.Before(record.StartedAt) {
			return s.live.Render("in progress")
		}
		return s.live.Render(fmt.Sprintf("in progress for %s", formatDuration(opts.Now.Sub(record.StartedAt))))
	}

	return s.meta.Render(fmt.Sprintf("finished %s (lasted %s)",
		formatWhen(*record.EndedAt, opts.Now),
		formatDuration(record.EndedAt.Sub(record.StartedAt)),
	))
}

func openMatches(matches []domain.MatchRecord) int {
	count := 0
	for _, record := range matches {
		if record.Open() {
			count++
		}
	}
	return count
}

func formatWhen(at, now time.Time) string {
	if at.IsZero() {
		return "unknown"
	}
	if now.IsZero() {
		return at.Format("2006-01-02 15:04:05")
	}

	yearA, monthA, dayA := now.Date()
	yearB, monthB, dayB := at.Date()
	if yearA == yearB && monthA == monthB && dayA == dayB {
		return at.Format("15:04:05")
	}

	return at.Format("15:04:05 on 02 Jan")
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}

	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}
