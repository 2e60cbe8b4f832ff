package gateway

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/bnema/lobbymatch/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

//go:embed templates/status.html.tmpl
var statusTemplateSource string

var statusTemplate = template.Must(template.New("status").Parse(statusTemplateSource))

type statusPage struct {
	Stations []stationPanel
	Events   []eventLine
	Games    []gameLine
}

type stationPanel struct {
	Label     string
	SessionID string
}

type eventLine struct {
	Timestamp string
	IDs       []stationID
	Outcome   string
}

type stationID struct {
	Label     string
	SessionID string
}

type gameLine struct {
	Started  string
	StationA string
	StationB string
	Ended    string
}

// RenderStatusPage renders the operator HTML view of a status snapshot.
func RenderStatusPage(view domain.StatusView) ([]byte, error) {
	var page statusPage

	for i, station := range domain.Stations {
		page.Stations = append(page.Stations, stationPanel{
			Label:     station.Label(),
			SessionID: displaySession(view.Assignments[i]),
		})
	}

	for _, event := range view.Events {
		ids := make([]stationID, 0, domain.StationCount)
		for i, station := range domain.Stations {
			ids = append(ids, stationID{Label: station.Label(), SessionID: displaySession(event.Assignments[i])})
		}
		page.Events = append(page.Events, eventLine{
			Timestamp: formatTimestamp(event.At),
			IDs:       ids,
			Outcome:   string(event.Outcome),
		})
	}

	for _, record := range view.Matches {
		line := gameLine{
			Started:  formatTimestamp(record.StartedAt),
			StationA: record.StationA.Label(),
			StationB: record.StationB.Label(),
		}
		if record.EndedAt != nil {
			line.Ended = formatTimestamp(*record.EndedAt)
		}
		page.Games = append(page.Games, line)
	}

	var buf bytes.Buffer
	if err := statusTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("execute status template: %w", err)
	}

	return buf.Bytes(), nil
}

func displaySession(id domain.SessionID) string {
	if !id.Present() {
		return "—"
	}
	return string(id)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Local().Format(timestampLayout)
}
