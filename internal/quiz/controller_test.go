package quiz

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

type fakeTicker struct {
	c       chan time.Time
	once    sync.Once
	stopped chan struct{}
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }

func (f *fakeTicker) Stop() {
	f.once.Do(func() { close(f.stopped) })
}

// fakeClock hands out manually driven tickers.
type fakeClock struct {
	created chan *fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{created: make(chan *fakeTicker, 16)}
}

func (fc *fakeClock) factory(time.Duration) Ticker {
	ft := &fakeTicker{c: make(chan time.Time), stopped: make(chan struct{})}
	fc.created <- ft
	return ft
}

func (fc *fakeClock) next(t *testing.T) *fakeTicker {
	t.Helper()
	select {
	case ft := <-fc.created:
		return ft
	case <-time.After(waitTimeout):
		t.Fatal("timer was not armed")
		return nil
	}
}

func (fc *fakeClock) assertNoNewTimer(t *testing.T) {
	t.Helper()
	select {
	case <-fc.created:
		t.Fatal("unexpected timer armed")
	default:
	}
}

func (f *fakeTicker) fire(t *testing.T) {
	t.Helper()
	select {
	case f.c <- time.Now():
	case <-time.After(waitTimeout):
		t.Fatal("tick not consumed")
	}
}

func (f *fakeTicker) waitStopped(t *testing.T) {
	t.Helper()
	select {
	case <-f.stopped:
	case <-time.After(waitTimeout):
		t.Fatal("ticker not stopped")
	}
}

func nextEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(waitTimeout):
		t.Fatal("no tick event")
		return Event{}
	}
}

func newTestController(t *testing.T, timerStart int) (*Controller, *fakeClock, chan Event) {
	t.Helper()

	clock := newFakeClock()
	events := make(chan Event, 64)
	c := NewController(
		WithTickerFactory(clock.factory),
		WithOnTick(func(ev Event) { events <- ev }),
		WithSessionOptions(
			WithTimerStart(timerStart),
			WithRand(rand.New(rand.NewSource(3))),
		),
	)
	t.Cleanup(c.Close)

	return c, clock, events
}

func TestController_TicksCountDown(t *testing.T) {
	c, clock, events := newTestController(t, 5)
	require.NoError(t, c.Start(testQuestions()))

	ft := clock.next(t)
	ft.fire(t)

	ev := nextEvent(t, events)
	require.NoError(t, ev.Err)
	assert.False(t, ev.TimedOut)
	assert.Equal(t, 4, ev.Snapshot.Remaining)
	assert.Equal(t, StateAwaiting, c.State())
}

func TestController_TimeoutSubmitsOnceAndStopsTimer(t *testing.T) {
	c, clock, events := newTestController(t, 3)
	require.NoError(t, c.Start(testQuestions()))

	ft := clock.next(t)
	for i := 0; i < 3; i++ {
		ft.fire(t)
	}

	// Plain ticks may be merged on delivery, the timeout never is.
	var ev Event
	for !ev.TimedOut {
		ev = nextEvent(t, events)
	}
	assert.Equal(t, 0, ev.Snapshot.Remaining)

	ft.waitStopped(t)
	clock.assertNoNewTimer(t)
	assert.Empty(t, events)

	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, StateRevealed, snap.State)
	assert.Equal(t, 1, snap.Attempts)
	assert.False(t, snap.IsCorrect)
	assert.True(t, snap.TimedOut)
}

func TestController_SlowObserverDoesNotDelayCountdown(t *testing.T) {
	clock := newFakeClock()
	release := make(chan struct{})
	events := make(chan Event, 64)
	c := NewController(
		WithTickerFactory(clock.factory),
		WithOnTick(func(ev Event) {
			<-release
			events <- ev
		}),
		WithSessionOptions(
			WithTimerStart(10),
			WithRand(rand.New(rand.NewSource(3))),
		),
	)
	t.Cleanup(c.Close)
	require.NoError(t, c.Start(testQuestions()))

	// The observer is stuck on the first event; every tick is still consumed.
	ft := clock.next(t)
	for i := 0; i < 5; i++ {
		ft.fire(t)
	}

	assert.Eventually(t, func() bool {
		snap, err := c.Snapshot()
		return err == nil && snap.Remaining == 5
	}, waitTimeout, 5*time.Millisecond)

	close(release)

	var ev Event
	for ev.Snapshot.Remaining != 5 {
		ev = nextEvent(t, events)
		require.NoError(t, ev.Err)
	}
	assert.False(t, ev.TimedOut)
}

func TestController_AnswerCancelsTimer(t *testing.T) {
	c, clock, events := newTestController(t, 10)
	require.NoError(t, c.Start(testQuestions()))

	ft := clock.next(t)
	ft.fire(t)
	nextEvent(t, events)

	require.NoError(t, c.SelectOption(0))
	ft.waitStopped(t)

	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 9, snap.Remaining)
	assert.Equal(t, StateRevealed, snap.State)

	// A stale tick from the cancelled generation is dropped.
	assert.False(t, c.tick(1))
	snap2, err := c.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, snap, snap2)
}

func TestController_AdvanceRearmsTimer(t *testing.T) {
	c, clock, events := newTestController(t, 4)
	require.NoError(t, c.Start(testQuestions()))

	first := clock.next(t)
	require.NoError(t, c.SelectOption(1))
	first.waitStopped(t)

	// Revealed: nothing armed until the next question.
	clock.assertNoNewTimer(t)

	require.NoError(t, c.Advance())
	second := clock.next(t)

	second.fire(t)
	ev := nextEvent(t, events)
	assert.Equal(t, 2, ev.Snapshot.Number)
	assert.Equal(t, 3, ev.Snapshot.Remaining)
}

func TestController_StaleCommandsKeepTimer(t *testing.T) {
	c, clock, _ := newTestController(t, 4)
	require.NoError(t, c.Start(testQuestions()))
	clock.next(t)

	// Advance before reveal is a no-op and must not re-arm.
	require.NoError(t, c.Advance())
	clock.assertNoNewTimer(t)
}

func TestController_FinishStopsTimer(t *testing.T) {
	c, clock, _ := newTestController(t, 4)
	questions := testQuestions()
	require.NoError(t, c.Start(questions))

	for i := 0; i < len(questions); i++ {
		ft := clock.next(t)
		require.NoError(t, c.SelectOption(0))
		ft.waitStopped(t)
		require.NoError(t, c.Advance())
	}

	assert.Equal(t, StateFinished, c.State())
	clock.assertNoNewTimer(t)
	assert.Len(t, c.History(), len(questions))
}

func TestController_RestartRearmsFromAnyState(t *testing.T) {
	c, clock, events := newTestController(t, 5)
	require.NoError(t, c.Start(testQuestions()))

	first := clock.next(t)
	first.fire(t)
	nextEvent(t, events)

	require.NoError(t, c.Restart())
	first.waitStopped(t)

	second := clock.next(t)
	second.fire(t)
	ev := nextEvent(t, events)
	assert.Equal(t, 4, ev.Snapshot.Remaining)
	assert.Equal(t, 0, ev.Snapshot.Attempts)
}

func TestController_StartEmptyKeepsState(t *testing.T) {
	c, clock, _ := newTestController(t, 5)

	require.ErrorIs(t, c.Start(nil), ErrInvalidInput)
	assert.Equal(t, StateIdle, c.State())
	clock.assertNoNewTimer(t)

	require.ErrorIs(t, c.Restart(), ErrInvalidInput)
}

func TestController_Close(t *testing.T) {
	c, clock, _ := newTestController(t, 5)
	require.NoError(t, c.Start(testQuestions()))
	ft := clock.next(t)

	c.Close()
	ft.waitStopped(t)

	assert.ErrorIs(t, c.SelectOption(0), ErrClosed)
	assert.ErrorIs(t, c.Advance(), ErrClosed)
	assert.ErrorIs(t, c.Restart(), ErrClosed)
	assert.ErrorIs(t, c.Start(testQuestions()), ErrClosed)
	assert.ErrorIs(t, c.SubmitAnswer(nil), ErrClosed)
	clock.assertNoNewTimer(t)
}
