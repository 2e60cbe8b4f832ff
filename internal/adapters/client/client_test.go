package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/lobbymatch/internal/adapters/gateway"
	"github.com/bnema/lobbymatch/internal/application"
	"github.com/bnema/lobbymatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func newGateway(t *testing.T) (*Client, *application.MatchEngine) {
	t.Helper()

	engine := application.NewMatchEngine(fixedClock{now: time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)}, nil, 0)
	server := httptest.NewServer(gateway.NewHandler(engine, nil))
	t.Cleanup(server.Close)

	return New(server.URL+"/", server.Client()), engine
}

func TestClientDrivesMatchLifecycle(t *testing.T) {
	t.Parallel()

	c, engine := newGateway(t)
	ctx := context.Background()

	verdict, err := c.ReportSession(ctx, domain.StationPC1, "L1")
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictNoMatch, verdict)

	verdict, err = c.ReportSession(ctx, domain.StationPC2, "L1")
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictAccepted, verdict)

	require.NoError(t, c.CompleteSession(ctx, domain.StationPC1))

	_, err = c.ReportSession(ctx, domain.StationPC1, "L2")
	require.NoError(t, err)
	verdict, err = c.ReportSession(ctx, domain.StationPC2, "L2")
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictSearchAgain, verdict)

	require.NoError(t, c.Reset(ctx))
	assert.Equal(t, domain.Assignments{}, engine.Snapshot().Assignments)
}

func TestClientSurfacesUnknownStation(t *testing.T) {
	t.Parallel()

	c, _ := newGateway(t)

	_, err := c.ReportSession(context.Background(), domain.Station("pc7"), "L1")
	require.ErrorIs(t, err, ErrGatewayRejected)
	assert.Contains(t, err.Error(), "Unknown PC name")

	err = c.CompleteSession(context.Background(), domain.Station("pc7"))
	require.ErrorIs(t, err, ErrGatewayRejected)
}

func TestClientSnapshot(t *testing.T) {
	t.Parallel()

	c, engine := newGateway(t)
	ctx := context.Background()

	_, err := c.ReportSession(ctx, domain.StationPC3, "L5")
	require.NoError(t, err)
	_, err = c.ReportSession(ctx, domain.StationPC4, "")
	require.NoError(t, err)

	view, err := c.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, engine.Snapshot().Assignments, view.Assignments)
	require.Len(t, view.Events, 1)
	assert.Equal(t, domain.OutcomeWaiting, view.Events[0].Outcome)
	assert.Empty(t, view.Matches)
}

func TestClientReportsServerFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	c := New(server.URL, server.Client())

	_, err := c.Snapshot(context.Background())
	require.ErrorIs(t, err, ErrUnexpectedReply)
	assert.Contains(t, err.Error(), "boom")
}

func TestClientHonoursContextCancellation(t *testing.T) {
	t.Parallel()

	c, _ := newGateway(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ReportSession(ctx, domain.StationPC1, "L1")
	require.ErrorIs(t, err, context.Canceled)
}
