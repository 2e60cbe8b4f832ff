package toml

import "fmt"

const currentArchiveSchemaVersion = 1

type archiveFileSchema struct {
	Version     int             `toml:"version"`
	GeneratedAt string          `toml:"generated_at"`
	Stations    []stationSchema `toml:"stations"`
	Events      []eventSchema   `toml:"events"`
	Matches     []matchSchema   `toml:"matches"`
}

func (s *archiveFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentArchiveSchemaVersion
	}
}

func (s archiveFileSchema) validateVersion() error {
	if s.Version > currentArchiveSchemaVersion {
		return fmt.Errorf("unsupported archive schema version %d (current %d)", s.Version, currentArchiveSchemaVersion)
	}

	return nil
}

type stationSchema struct {
	Station   string `toml:"pc"`
	SessionID string `toml:"lobby_id,omitempty"`
}

type eventSchema struct {
	Timestamp  string   `toml:"timestamp"`
	SessionIDs []string `toml:"lobby_ids"`
	Status     string   `toml:"status"`
}

type matchSchema struct {
	StationA  string `toml:"pc_a"`
	StationB  string `toml:"pc_b"`
	StartTime string `toml:"start_time"`
	EndTime   string `toml:"end_time,omitempty"`
}
