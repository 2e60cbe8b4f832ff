package domain

import "time"

type Outcome string

const (
	OutcomeWaiting        Outcome = "waiting"
	OutcomeMatch          Outcome = "match"
	OutcomeRepeatRejected Outcome = "repeat_rejected"
)

type PairingEvent struct {
	At          time.Time
	Assignments Assignments
	Outcome     Outcome
}

type MatchRecord struct {
	StationA  Station
	StationB  Station
	StartedAt time.Time
	EndedAt   *time.Time
}

func (m MatchRecord) Open() bool {
	return m.EndedAt == nil
}

func (m MatchRecord) Involves(station Station) bool {
	return m.StationA == station || m.StationB == station
}

// Clone returns a copy that does not share EndedAt with m.
func (m MatchRecord) Clone() MatchRecord {
	if m.EndedAt != nil {
		ended := *m.EndedAt
		m.EndedAt = &ended
	}
	return m
}

type StatusView struct {
	Assignments Assignments
	Events      []PairingEvent
	Matches     []MatchRecord
	GeneratedAt time.Time
}
