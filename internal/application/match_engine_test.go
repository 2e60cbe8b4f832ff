package application

import (
	"sync"
	"testing"
	"time"

	"github.com/bnema/lobbymatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type steppingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func newTestEngine(t *testing.T) *MatchEngine {
	t.Helper()
	return NewMatchEngine(&steppingClock{
		now:  time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC),
		step: time.Second,
	}, nil, 0)
}

func report(t *testing.T, engine *MatchEngine, station domain.Station, session domain.SessionID) domain.Verdict {
	t.Helper()
	verdict, err := engine.ReportSession(station, session)
	require.NoError(t, err)
	return verdict
}

func complete(t *testing.T, engine *MatchEngine, station domain.Station) {
	t.Helper()
	verdict, err := engine.CompleteSession(station)
	require.NoError(t, err)
	require.Equal(t, domain.VerdictOK, verdict)
}

func outcomes(events []domain.PairingEvent) []domain.Outcome {
	result := make([]domain.Outcome, 0, len(events))
	for _, event := range events {
		result = append(result, event.Outcome)
	}
	return result
}

func TestMatchEngineAcceptsPairWithSameSession(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)

	assert.Equal(t, domain.VerdictNoMatch, report(t, engine, domain.StationPC1, "L1"))
	assert.Equal(t, domain.VerdictAccepted, report(t, engine, domain.StationPC3, "L1"))

	view := engine.Snapshot()
	require.Len(t, view.Matches, 1)
	assert.Equal(t, domain.StationPC1, view.Matches[0].StationA)
	assert.Equal(t, domain.StationPC3, view.Matches[0].StationB)
	assert.True(t, view.Matches[0].Open())
	assert.Equal(t, []domain.Outcome{
		domain.OutcomeWaiting,
		domain.OutcomeWaiting,
		domain.OutcomeMatch,
	}, outcomes(view.Events))
	assert.Equal(t, domain.Assignments{"L1", "", "L1", ""}, view.Events[2].Assignments)
}

func TestMatchEngineUnknownStationDoesNotMutate(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)

	_, err := engine.ReportSession(domain.Station("pc5"), "L1")
	require.ErrorIs(t, err, domain.ErrUnknownStation)

	_, err = engine.CompleteSession(domain.Station("PC1"))
	require.ErrorIs(t, err, domain.ErrUnknownStation)

	view := engine.Snapshot()
	assert.Empty(t, view.Events)
	assert.Empty(t, view.Matches)
	assert.Equal(t, domain.Assignments{}, view.Assignments)
}

func TestMatchEngineUnchangedReportAppendsNoWaitingEvent(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)

	assert.Equal(t, domain.VerdictNoMatch, report(t, engine, domain.StationPC1, "L1"))
	assert.Equal(t, domain.VerdictNoMatch, report(t, engine, domain.StationPC1, "L1"))
	assert.Equal(t, domain.VerdictNoMatch, report(t, engine, domain.StationPC2, ""))

	assert.Equal(t, []domain.Outcome{domain.OutcomeWaiting}, outcomes(engine.Snapshot().Events))
}

func TestMatchEngineUnchangedReportStillSearchesForPair(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)

	assert.Equal(t, domain.VerdictNoMatch, report(t, engine, domain.StationPC1, "L1"))
	assert.Equal(t, domain.VerdictAccepted, report(t, engine, domain.StationPC2, "L1"))
	complete(t, engine, domain.StationPC1)

	// pc1 keeps polling with its stale id; the pair is found again and
	// rejected as a repeat.
	assert.Equal(t, domain.VerdictSearchAgain, report(t, engine, domain.StationPC1, "L1"))

	assert.Equal(t, []domain.Outcome{
		domain.OutcomeWaiting,
		domain.OutcomeWaiting,
		domain.OutcomeMatch,
		domain.OutcomeRepeatRejected,
	}, outcomes(engine.Snapshot().Events))
}

func TestMatchEngineEmptySessionNeverPairs(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)

	assert.Equal(t, domain.VerdictNoMatch, report(t, engine, domain.StationPC1, "L1"))
	assert.Equal(t, domain.VerdictNoMatch, report(t, engine, domain.StationPC1, ""))
	assert.Equal(t, domain.VerdictNoMatch, report(t, engine, domain.StationPC2, ""))
	assert.Empty(t, engine.Snapshot().Matches)
}

func TestMatchEngineRejectsImmediateRepeat(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)

	report(t, engine, domain.StationPC1, "L1")
	require.Equal(t, domain.VerdictAccepted, report(t, engine, domain.StationPC2, "L1"))
	complete(t, engine, domain.StationPC1)

	assert.Equal(t, domain.VerdictNoMatch, report(t, engine, domain.StationPC2, "L2"))
	assert.Equal(t, domain.VerdictSearchAgain, report(t, engine, domain.StationPC1, "L2"))

	view := engine.Snapshot()
	require.Len(t, view.Matches, 1)
	assert.Equal(t, domain.OutcomeRepeatRejected, view.Events[len(view.Events)-1].Outcome)
	assert.Equal(t, domain.Assignments{"L2", "L2", "", ""}, view.Assignments)
}

func TestMatchEngineAcceptanceAloneDoesNotBlockRepeat(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)

	report(t, engine, domain.StationPC1, "L1")
	require.Equal(t, domain.VerdictAccepted, report(t, engine, domain.StationPC2, "L1"))

	report(t, engine, domain.StationPC1, "L2")
	assert.Equal(t, domain.VerdictAccepted, report(t, engine, domain.StationPC2, "L2"))
	assert.Len(t, engine.Snapshot().Matches, 2)
}

func TestMatchEngineRepeatBlockLiftsAfterThirdPartyMatch(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)

	report(t, engine, domain.StationPC1, "L1")
	require.Equal(t, domain.VerdictAccepted, report(t, engine, domain.StationPC2, "L1"))
	complete(t, engine, domain.StationPC2)

	report(t, engine, domain.StationPC1, "L2")
	require.Equal(t, domain.VerdictSearchAgain, report(t, engine, domain.StationPC2, "L2"))

	// pc2 plays pc3 in between.
	report(t, engine, domain.StationPC1, "")
	require.Equal(t, domain.VerdictAccepted, report(t, engine, domain.StationPC3, "L2"))
	complete(t, engine, domain.StationPC3)

	report(t, engine, domain.StationPC3, "")
	report(t, engine, domain.StationPC2, "L3")
	assert.Equal(t, domain.VerdictAccepted, report(t, engine, domain.StationPC1, "L3"))
}

func TestMatchEngineTieBreakPicksLowestPair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		assignments []domain.SessionID
		wantA       domain.Station
		wantB       domain.Station
	}{
		{
			name:        "three share one id",
			assignments: []domain.SessionID{"", "X", "X", "X"},
			wantA:       domain.StationPC2,
			wantB:       domain.StationPC3,
		},
		{
			name:        "two disjoint pairs",
			assignments: []domain.SessionID{"A", "B", "B", "A"},
			wantA:       domain.StationPC1,
			wantB:       domain.StationPC4,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			engine := newTestEngine(t)
			engine.assignments = domain.Assignments{tc.assignments[0], tc.assignments[1], tc.assignments[2], tc.assignments[3]}

			a, b, ok := engine.findPair()
			require.True(t, ok)
			assert.Equal(t, tc.wantA, a)
			assert.Equal(t, tc.wantB, b)
		})
	}
}

func TestMatchEngineCompleteWithoutOpenMatchIsNoop(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	report(t, engine, domain.StationPC1, "L1")
	before := engine.Snapshot()

	complete(t, engine, domain.StationPC4)

	after := engine.Snapshot()
	assert.Equal(t, before.Assignments, after.Assignments)
	assert.Equal(t, before.Events, after.Events)
	assert.Equal(t, before.Matches, after.Matches)
	assert.Equal(t, [domain.StationCount]domain.Station{}, engine.partners)
}

func TestMatchEngineCompleteClosesNewestOpenMatch(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)

	report(t, engine, domain.StationPC1, "L1")
	require.Equal(t, domain.VerdictAccepted, report(t, engine, domain.StationPC2, "L1"))
	report(t, engine, domain.StationPC2, "")
	require.Equal(t, domain.VerdictNoMatch, report(t, engine, domain.StationPC3, "L2"))
	require.Equal(t, domain.VerdictAccepted, report(t, engine, domain.StationPC1, "L2"))

	complete(t, engine, domain.StationPC1)

	view := engine.Snapshot()
	require.Len(t, view.Matches, 2)
	assert.True(t, view.Matches[0].Open())
	assert.False(t, view.Matches[1].Open())
	assert.Equal(t, domain.StationPC3, engine.partners[domain.StationPC1.Index()])
	assert.Equal(t, domain.StationPC1, engine.partners[domain.StationPC3.Index()])
	assert.Equal(t, domain.Station(""), engine.partners[domain.StationPC2.Index()])

	complete(t, engine, domain.StationPC2)
	assert.False(t, engine.Snapshot().Matches[0].Open())
}

func TestMatchEngineResetKeepsHistoryAndPartners(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)

	report(t, engine, domain.StationPC1, "L1")
	report(t, engine, domain.StationPC2, "L1")
	complete(t, engine, domain.StationPC1)
	before := engine.Snapshot()

	engine.Reset()

	after := engine.Snapshot()
	assert.Equal(t, domain.Assignments{}, after.Assignments)
	assert.Equal(t, before.Events, after.Events)
	assert.Equal(t, before.Matches, after.Matches)

	report(t, engine, domain.StationPC1, "L9")
	assert.Equal(t, domain.VerdictSearchAgain, report(t, engine, domain.StationPC2, "L9"))
}

func TestMatchEngineSnapshotTruncatesHistory(t *testing.T) {
	t.Parallel()

	engine := NewMatchEngine(fixedClock{now: time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)}, nil, 3)

	for _, session := range []domain.SessionID{"a", "b", "c", "d", "e"} {
		report(t, engine, domain.StationPC4, session)
	}

	view := engine.Snapshot()
	require.Len(t, view.Events, 3)
	assert.Equal(t, domain.SessionID("c"), view.Events[0].Assignments.Get(domain.StationPC4))
	assert.Equal(t, domain.SessionID("e"), view.Events[2].Assignments.Get(domain.StationPC4))
	assert.Equal(t, 5, engine.Stats().Waiting)
	assert.Len(t, engine.events, 5)
}

func TestMatchEngineSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	report(t, engine, domain.StationPC1, "L1")
	report(t, engine, domain.StationPC2, "L1")

	view := engine.Snapshot()
	view.Events[0].Outcome = domain.OutcomeMatch
	view.Assignments[0] = "tampered"

	complete(t, engine, domain.StationPC1)

	assert.True(t, view.Matches[0].Open())
	fresh := engine.Snapshot()
	assert.Equal(t, domain.OutcomeWaiting, fresh.Events[0].Outcome)
	assert.Equal(t, domain.SessionID("L1"), fresh.Assignments[0])
	assert.False(t, fresh.Matches[0].Open())
}

func TestMatchEngineScenario(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	engine := NewMatchEngine(&steppingClock{now: start, step: time.Second}, nil, 0)

	assert.Equal(t, domain.VerdictNoMatch, report(t, engine, domain.StationPC1, "L1"))
	assert.Equal(t, domain.VerdictAccepted, report(t, engine, domain.StationPC2, "L1"))

	view := engine.Snapshot()
	require.Len(t, view.Matches, 1)
	t0 := view.Matches[0].StartedAt
	assert.True(t, t0.After(start))

	complete(t, engine, domain.StationPC1)
	view = engine.Snapshot()
	require.NotNil(t, view.Matches[0].EndedAt)
	assert.True(t, view.Matches[0].EndedAt.After(t0))
	assert.Equal(t, domain.StationPC2, engine.partners[0])
	assert.Equal(t, domain.StationPC1, engine.partners[1])

	assert.Equal(t, domain.VerdictNoMatch, report(t, engine, domain.StationPC1, "L2"))
	assert.Equal(t, domain.VerdictSearchAgain, report(t, engine, domain.StationPC2, "L2"))

	// pc1 and pc2 are still the lowest pair sharing L2.
	assert.Equal(t, domain.VerdictSearchAgain, report(t, engine, domain.StationPC3, "L2"))

	assert.Equal(t, EngineStats{
		Waiting:        5,
		Matched:        1,
		RepeatRejected: 2,
		ClosedMatches:  1,
	}, engine.Stats())
}

func TestMatchEngineConcurrentReports(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			station := domain.Stations[i%domain.StationCount]
			_, _ = engine.ReportSession(station, domain.SessionID(string(rune('a'+i%3))))
			_ = engine.Snapshot()
			if i%7 == 0 {
				_, _ = engine.CompleteSession(station)
			}
		}(i)
	}
	wg.Wait()

	stats := engine.Stats()
	assert.Equal(t, stats.Matched, stats.OpenMatches+stats.ClosedMatches)
}
