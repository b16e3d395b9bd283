package sweeper

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickleball/internal/events"
	"pickleball/internal/game/match"
)

type fakeRegistry struct {
	calls  atomic.Int32
	result match.SweepResult
}

func (f *fakeRegistry) Sweep() match.SweepResult {
	if f.calls.Add(1) == 1 {
		return f.result
	}
	return match.SweepResult{}
}

func TestRunOncePublishesExpiredChallenges(t *testing.T) {
	reg := &fakeRegistry{result: match.SweepResult{
		Expired: []match.Snapshot{{ID: "m1"}, {ID: "m2"}},
		Evicted: 3,
	}}
	rec := events.NewRecorder(8)
	s := New(reg, rec, time.Minute, hclog.NewNullLogger())

	s.RunOnce()
	got := rec.Events()
	require.Len(t, got, 2)
	assert.Equal(t, events.ChallengeExpired, got[0].Type)
	assert.Equal(t, "m1", got[0].Match.ID)
	assert.Equal(t, "m2", got[1].Match.ID)

	s.RunOnce()
	assert.Empty(t, rec.Events())
}

func TestStartRunsOnSchedule(t *testing.T) {
	reg := &fakeRegistry{}
	s := New(reg, events.NewRecorder(1), 20*time.Millisecond, hclog.NewNullLogger())
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })

	assert.Eventually(t, func() bool { return reg.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestStopWithoutStart(t *testing.T) {
	s := New(&fakeRegistry{}, events.NewRecorder(1), time.Minute, hclog.NewNullLogger())
	assert.NoError(t, s.Stop())
}

func TestSweepsRealRegistry(t *testing.T) {
	reg := match.NewRegistry(nil, match.Settings{PendingTTL: time.Nanosecond}, nil)
	_, err := reg.Challenge("a", "b")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	rec := events.NewRecorder(4)
	New(reg, rec, time.Minute, hclog.NewNullLogger()).RunOnce()

	got := rec.Events()
	require.Len(t, got, 1)
	assert.Equal(t, match.PlayerID("a"), got[0].Match.Challenger)
	_, err = reg.Status("a")
	require.ErrorIs(t, err, match.ErrNotInMatch)
}
