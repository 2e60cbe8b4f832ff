package status

import (
	"testing"
	"time"

	"github.com/bnema/lobbymatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmptySnapshot(t *testing.T) {
	output, err := Render(domain.StatusView{}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "Lobby Status")
	assert.Contains(t, output, "stations: 4  open matches: 0")
	assert.Contains(t, output, "PC1")
	assert.Contains(t, output, "PC4")
	assert.Contains(t, output, "No lobby events yet.")
	assert.Contains(t, output, "No games played yet.")
}

func TestRenderSnapshotWithHistory(t *testing.T) {
	now := time.Date(2026, 2, 14, 12, 30, 0, 0, time.UTC)
	started := now.Add(-20 * time.Minute)
	ended := now.Add(-5 * time.Minute)

	output, err := Render(domain.StatusView{
		Assignments: domain.Assignments{"L2", "L2", "", ""},
		Events: []domain.PairingEvent{
			{At: started, Assignments: domain.Assignments{"L1", "L1", "", ""}, Outcome: domain.OutcomeMatch},
			{At: now.Add(-time.Minute), Assignments: domain.Assignments{"L2", "L2", "", ""}, Outcome: domain.OutcomeRepeatRejected},
		},
		Matches: []domain.MatchRecord{
			{StationA: domain.StationPC1, StationB: domain.StationPC2, StartedAt: started, EndedAt: &ended},
			{StationA: domain.StationPC3, StationB: domain.StationPC4, StartedAt: now.Add(-90 * time.Second)},
		},
	}, RenderOptions{Now: now})

	require.NoError(t, err)
	assert.Contains(t, output, "open matches: 1")
	assert.Contains(t, output, "L2")
	assert.Contains(t, output, "[match]")
	assert.Contains(t, output, "[repeat_rejected]")
	assert.Contains(t, output, "PC1 vs PC2")
	assert.Contains(t, output, "finished 12:25:00 (lasted 15m)")
	assert.Contains(t, output, "PC3 vs PC4")
	assert.Contains(t, output, "in progress for 1m")
	assert.Contains(t, output, "12:10:00")
}

func TestRenderUsesFullDateForOtherDays(t *testing.T) {
	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

	output, err := Render(domain.StatusView{
		Events: []domain.PairingEvent{
			{At: now.Add(-24 * time.Hour), Outcome: domain.OutcomeWaiting},
		},
	}, RenderOptions{Now: now})

	require.NoError(t, err)
	assert.Contains(t, output, "12:00:00 on 13 Feb")
	assert.Contains(t, output, "[waiting]")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want string
	}{
		{name: "seconds", in: 42 * time.Second, want: "42s"},
		{name: "minutes", in: 15*time.Minute + 10*time.Second, want: "15m"},
		{name: "hours", in: 2*time.Hour + 5*time.Minute, want: "2h05m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.in))
		})
	}
}
