package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/lobbymatch/internal/domain"
	"github.com/bnema/lobbymatch/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	archivePathKey   = "archive.path"
	archiveFileMode  = 0o644
	archiveDirMode   = 0o755
	archiveConfigDir = ".lobbymatch"
	archiveFileName  = "status.toml"
	tempFilePattern  = ".status-*.toml.tmp"
)

var ErrArchiveNotFound = errors.New("status archive not found")

// Archive writes status snapshots to a TOML file for operators. It is an
// export only; the matchmaker never reads it back into its state.
type Archive struct {
	path string
	mu   sync.RWMutex
}

var _ ports.SnapshotArchive = (*Archive)(nil)

func NewArchive(cfg *viper.Viper) (*Archive, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(archivePathKey)
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, archiveConfigDir, archiveFileName)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve archive path: %w", err)
	}

	return &Archive{path: filepath.Clean(absPath)}, nil
}

func (a *Archive) Path() string {
	return a.path
}

func (a *Archive) Save(ctx context.Context, view domain.StatusView) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(view)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return writeFileAtomic(a.path, data)
}

func (a *Archive) Load(ctx context.Context) (domain.StatusView, error) {
	if err := ctx.Err(); err != nil {
		return domain.StatusView{}, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	data, err := os.ReadFile(a.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.StatusView{}, ErrArchiveNotFound
		}
		return domain.StatusView{}, fmt.Errorf("read archive file: %w", err)
	}

	return Decode(data)
}

// Encode renders a status view as an archive document.
func Encode(view domain.StatusView) ([]byte, error) {
	file := toArchiveSchema(view)
	file.applyDefaults()

	data, err := toml.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("encode archive: %w", err)
	}

	return data, nil
}

func Decode(data []byte) (domain.StatusView, error) {
	var file archiveFileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return domain.StatusView{}, fmt.Errorf("decode archive: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return domain.StatusView{}, err
	}
	file.applyDefaults()

	return fromArchiveSchema(file)
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), archiveDirMode); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp archive file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp archive file: %w", err)
	}

	if err := tempFile.Chmod(archiveFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp archive file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp archive file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace archive file: %w", err)
	}

	cleanup = false
	return nil
}

func toArchiveSchema(view domain.StatusView) archiveFileSchema {
	stations := make([]stationSchema, 0, domain.StationCount)
	for i, station := range domain.Stations {
		stations = append(stations, stationSchema{
			Station:   string(station),
			SessionID: string(view.Assignments[i]),
		})
	}

	events := make([]eventSchema, 0, len(view.Events))
	for _, event := range view.Events {
		ids := make([]string, 0, domain.StationCount)
		for _, id := range event.Assignments {
			ids = append(ids, string(id))
		}
		events = append(events, eventSchema{
			Timestamp:  formatTime(event.At),
			SessionIDs: ids,
			Status:     string(event.Outcome),
		})
	}

	matches := make([]matchSchema, 0, len(view.Matches))
	for _, record := range view.Matches {
		encoded := matchSchema{
			StationA:  string(record.StationA),
			StationB:  string(record.StationB),
			StartTime: formatTime(record.StartedAt),
		}
		if record.EndedAt != nil {
			encoded.EndTime = formatTime(*record.EndedAt)
		}
		matches = append(matches, encoded)
	}

	return archiveFileSchema{
		GeneratedAt: formatTime(view.GeneratedAt),
		Stations:    stations,
		Events:      events,
		Matches:     matches,
	}
}

func fromArchiveSchema(file archiveFileSchema) (domain.StatusView, error) {
	view := domain.StatusView{GeneratedAt: parseTime(file.GeneratedAt)}

	for _, entry := range file.Stations {
		station, err := domain.ParseStation(entry.Station)
		if err != nil {
			return domain.StatusView{}, fmt.Errorf("decode archive station: %w", err)
		}
		view.Assignments[station.Index()] = domain.SessionID(entry.SessionID)
	}

	view.Events = make([]domain.PairingEvent, 0, len(file.Events))
	for _, entry := range file.Events {
		if len(entry.SessionIDs) != domain.StationCount {
			return domain.StatusView{}, fmt.Errorf("decode archive event: expected %d lobby ids, got %d", domain.StationCount, len(entry.SessionIDs))
		}
		var assignments domain.Assignments
		for i, id := range entry.SessionIDs {
			assignments[i] = domain.SessionID(id)
		}
		view.Events = append(view.Events, domain.PairingEvent{
			At:          parseTime(entry.Timestamp),
			Assignments: assignments,
			Outcome:     domain.Outcome(entry.Status),
		})
	}

	view.Matches = make([]domain.MatchRecord, 0, len(file.Matches))
	for _, entry := range file.Matches {
		a, err := domain.ParseStation(entry.StationA)
		if err != nil {
			return domain.StatusView{}, fmt.Errorf("decode archive match: %w", err)
		}
		b, err := domain.ParseStation(entry.StationB)
		if err != nil {
			return domain.StatusView{}, fmt.Errorf("decode archive match: %w", err)
		}

		record := domain.MatchRecord{StationA: a, StationB: b, StartedAt: parseTime(entry.StartTime)}
		if entry.EndTime != "" {
			ended := parseTime(entry.EndTime)
			record.EndedAt = &ended
		}
		view.Matches = append(view.Matches, record)
	}

	return view, nil
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.Format(time.RFC3339)
}
