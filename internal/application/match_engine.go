package application

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/lobbymatch/internal/domain"
	"github.com/bnema/lobbymatch/internal/ports"
)

const DefaultHistoryLimit = 8

// MatchEngine pairs stations that report the same session id and keeps the
// pairing and match history. All mutations run under a single lock so a
// report's update, pairing search and history append are observed together.
type MatchEngine struct {
	clock        ports.Clock
	logger       *slog.Logger
	historyLimit int

	mu          sync.RWMutex
	assignments domain.Assignments
	partners    [domain.StationCount]domain.Station
	events      []domain.PairingEvent
	matches     []domain.MatchRecord
}

type EngineStats struct {
	Waiting        int `json:"waiting"`
	Matched        int `json:"matched"`
	RepeatRejected int `json:"repeat_rejected"`
	OpenMatches    int `json:"open_matches"`
	ClosedMatches  int `json:"closed_matches"`
}

func NewMatchEngine(clock ports.Clock, logger *slog.Logger, historyLimit int) *MatchEngine {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}

	return &MatchEngine{
		clock:        clock,
		logger:       logger,
		historyLimit: historyLimit,
	}
}

func (e *MatchEngine) ReportSession(station domain.Station, sessionID domain.SessionID) (domain.Verdict, error) {
	idx := station.Index()
	if idx < 0 {
		return "", fmt.Errorf("report session: %w: %q", domain.ErrUnknownStation, station)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()

	if e.assignments[idx] != sessionID {
		e.assignments[idx] = sessionID
		e.appendEvent(now, domain.OutcomeWaiting)
		e.logger.Debug("session reported",
			"station", station,
			"session", sessionID,
		)
	}

	a, b, ok := e.findPair()
	if !ok {
		return domain.VerdictNoMatch, nil
	}

	if e.isRepeat(a, b) {
		e.appendEvent(now, domain.OutcomeRepeatRejected)
		e.logger.Info("repeat pairing rejected",
			"station_a", a,
			"station_b", b,
			"session", e.assignments[a.Index()],
		)
		return domain.VerdictSearchAgain, nil
	}

	e.matches = append(e.matches, domain.MatchRecord{
		StationA:  a,
		StationB:  b,
		StartedAt: now,
	})
	e.appendEvent(now, domain.OutcomeMatch)
	e.logger.Info("match accepted",
		"station_a", a,
		"station_b", b,
		"session", e.assignments[a.Index()],
	)

	return domain.VerdictAccepted, nil
}

// CompleteSession closes the newest open match involving station and
// records both participants as each other's last partner. A station with no
// open match is accepted without any change.
func (e *MatchEngine) CompleteSession(station domain.Station) (domain.Verdict, error) {
	if station.Index() < 0 {
		return "", fmt.Errorf("complete session: %w: %q", domain.ErrUnknownStation, station)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := len(e.matches) - 1; i >= 0; i-- {
		record := &e.matches[i]
		if !record.Open() || !record.Involves(station) {
			continue
		}

		ended := e.clock.Now()
		record.EndedAt = &ended
		e.partners[record.StationA.Index()] = record.StationB
		e.partners[record.StationB.Index()] = record.StationA
		e.logger.Info("match completed",
			"station_a", record.StationA,
			"station_b", record.StationB,
			"reported_by", station,
		)
		return domain.VerdictOK, nil
	}

	e.logger.Debug("completion without open match", "station", station)
	return domain.VerdictOK, nil
}

// Reset clears every station's session id. Partner memory and history are
// kept.
func (e *MatchEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.assignments = domain.Assignments{}
	e.logger.Info("session assignments reset")
}

func (e *MatchEngine) Snapshot() domain.StatusView {
	e.mu.RLock()
	defer e.mu.RUnlock()

	events := tail(e.events, e.historyLimit)
	recent := tail(e.matches, e.historyLimit)
	matches := make([]domain.MatchRecord, 0, len(recent))
	for _, record := range recent {
		matches = append(matches, record.Clone())
	}

	return domain.StatusView{
		Assignments: e.assignments,
		Events:      append([]domain.PairingEvent(nil), events...),
		Matches:     matches,
		GeneratedAt: e.clock.Now(),
	}
}

func (e *MatchEngine) Stats() EngineStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var stats EngineStats
	for _, event := range e.events {
		switch event.Outcome {
		case domain.OutcomeWaiting:
			stats.Waiting++
		case domain.OutcomeMatch:
			stats.Matched++
		case domain.OutcomeRepeatRejected:
			stats.RepeatRejected++
		}
	}
	for _, record := range e.matches {
		if record.Open() {
			stats.OpenMatches++
		} else {
			stats.ClosedMatches++
		}
	}

	return stats
}

func (e *MatchEngine) HistoryLimit() int {
	return e.historyLimit
}

// findPair scans ascending station pairs and returns the first two stations
// holding the same non-empty session id.
func (e *MatchEngine) findPair() (domain.Station, domain.Station, bool) {
	for i := 0; i < domain.StationCount; i++ {
		if !e.assignments[i].Present() {
			continue
		}
		for j := i + 1; j < domain.StationCount; j++ {
			if e.assignments[i] == e.assignments[j] {
				return domain.Stations[i], domain.Stations[j], true
			}
		}
	}

	return "", "", false
}

func (e *MatchEngine) isRepeat(a, b domain.Station) bool {
	return e.partners[a.Index()] == b && e.partners[b.Index()] == a
}

func (e *MatchEngine) appendEvent(at time.Time, outcome domain.Outcome) {
	e.events = append(e.events, domain.PairingEvent{
		At:          at,
		Assignments: e.assignments,
		Outcome:     outcome,
	})
}

func tail[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
