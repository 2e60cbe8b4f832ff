package gateway

import (
	"fmt"
	"time"

	"github.com/bnema/lobbymatch/internal/domain"
)

// StatusPayload is the JSON form of a status view served on /status.json.
type StatusPayload struct {
	Stations    []StationPayload `json:"stations"`
	Events      []EventPayload   `json:"lobby_history"`
	Games       []GamePayload    `json:"games_history"`
	GeneratedAt time.Time        `json:"generated_at"`
}

type StationPayload struct {
	Station   string  `json:"pc"`
	SessionID *string `json:"lobby_id"`
}

type EventPayload struct {
	Timestamp time.Time `json:"timestamp"`
	PC1ID     *string   `json:"pc1_id"`
	PC2ID     *string   `json:"pc2_id"`
	PC3ID     *string   `json:"pc3_id"`
	PC4ID     *string   `json:"pc4_id"`
	Status    string    `json:"status"`
}

type GamePayload struct {
	StationA  string     `json:"pc1"`
	StationB  string     `json:"pc2"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

func NewStatusPayload(view domain.StatusView) StatusPayload {
	stations := make([]StationPayload, 0, domain.StationCount)
	for i, station := range domain.Stations {
		stations = append(stations, StationPayload{
			Station:   string(station),
			SessionID: sessionPtr(view.Assignments[i]),
		})
	}

	events := make([]EventPayload, 0, len(view.Events))
	for _, event := range view.Events {
		events = append(events, EventPayload{
			Timestamp: event.At,
			PC1ID:     sessionPtr(event.Assignments[0]),
			PC2ID:     sessionPtr(event.Assignments[1]),
			PC3ID:     sessionPtr(event.Assignments[2]),
			PC4ID:     sessionPtr(event.Assignments[3]),
			Status:    string(event.Outcome),
		})
	}

	games := make([]GamePayload, 0, len(view.Matches))
	for _, record := range view.Matches {
		record = record.Clone()
		games = append(games, GamePayload{
			StationA:  string(record.StationA),
			StationB:  string(record.StationB),
			StartTime: record.StartedAt,
			EndTime:   record.EndedAt,
		})
	}

	return StatusPayload{
		Stations:    stations,
		Events:      events,
		Games:       games,
		GeneratedAt: view.GeneratedAt,
	}
}

// View converts the payload back into a domain status view.
func (p StatusPayload) View() (domain.StatusView, error) {
	var view domain.StatusView
	view.GeneratedAt = p.GeneratedAt

	for _, entry := range p.Stations {
		station, err := domain.ParseStation(entry.Station)
		if err != nil {
			return domain.StatusView{}, fmt.Errorf("decode station assignment: %w", err)
		}
		view.Assignments[station.Index()] = sessionValue(entry.SessionID)
	}

	view.Events = make([]domain.PairingEvent, 0, len(p.Events))
	for _, entry := range p.Events {
		view.Events = append(view.Events, domain.PairingEvent{
			At: entry.Timestamp,
			Assignments: domain.Assignments{
				sessionValue(entry.PC1ID),
				sessionValue(entry.PC2ID),
				sessionValue(entry.PC3ID),
				sessionValue(entry.PC4ID),
			},
			Outcome: domain.Outcome(entry.Status),
		})
	}

	view.Matches = make([]domain.MatchRecord, 0, len(p.Games))
	for _, entry := range p.Games {
		a, err := domain.ParseStation(entry.StationA)
		if err != nil {
			return domain.StatusView{}, fmt.Errorf("decode match record: %w", err)
		}
		b, err := domain.ParseStation(entry.StationB)
		if err != nil {
			return domain.StatusView{}, fmt.Errorf("decode match record: %w", err)
		}
		view.Matches = append(view.Matches, domain.MatchRecord{
			StationA:  a,
			StationB:  b,
			StartedAt: entry.StartTime,
			EndedAt:   entry.EndTime,
		}.Clone())
	}

	return view, nil
}

func sessionPtr(id domain.SessionID) *string {
	if !id.Present() {
		return nil
	}
	value := string(id)
	return &value
}

func sessionValue(raw *string) domain.SessionID {
	if raw == nil {
		return ""
	}
	return domain.SessionID(*raw)
}
