package quiz

import (
	"sync"
	"time"

	"github.com/aliskhannn/trivia-quiz-bot/internal/domain/entities"
)

// Ticker is a periodic tick source.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the default TickerFactory backed by time.Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Event is delivered to the tick observer after every processed tick.
type Event struct {
	Snapshot Snapshot
	TimedOut bool  // this tick submitted the question
	Err      error // set if the tick or the snapshot failed
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithTickerFactory replaces the tick source.
func WithTickerFactory(f TickerFactory) ControllerOption {
	return func(c *Controller) {
		c.newTicker = f
	}
}

// WithTickInterval sets the time unit of the countdown. Default is one second.
func WithTickInterval(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithOnTick registers an observer for tick events. Events are delivered in
// order on a separate goroutine, so a slow observer never holds up the
// countdown. Plain ticks still waiting for delivery are replaced by newer
// ones; timeouts and errors are always delivered.
func WithOnTick(fn func(Event)) ControllerOption {
	return func(c *Controller) {
		c.onTick = fn
	}
}

// WithSessionOptions passes options to the underlying Session.
func WithSessionOptions(opts ...Option) ControllerOption {
	return func(c *Controller) {
		c.sessionOpts = append(c.sessionOpts, opts...)
	}
}

// Controller serializes commands to a Session and owns its countdown timer.
// The timer runs only while the session awaits an answer and is re-armed for
// every new question.
type Controller struct {
	mu      sync.Mutex
	session *Session

	newTicker   TickerFactory
	interval    time.Duration
	onTick      func(Event)
	sessionOpts []Option

	gen        uint64        // generation of the armed timer
	stop       chan struct{} // nil when no timer is armed
	armedRound uint64
	closed     bool

	evMu    sync.Mutex
	pending []Event
	wake    chan struct{}
	done    chan struct{}
}

// NewController creates a controller around an idle session.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		newTicker: NewTimeTicker,
		interval:  time.Second,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.session = NewSession(c.sessionOpts...)
	if c.onTick != nil {
		go c.deliver()
	}
	return c
}

// Start begins a new run. See Session.Start.
func (c *Controller) Start(questions []entities.Question) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if err := c.session.Start(questions); err != nil {
		return err
	}
	c.syncTimer()
	return nil
}

// Restart begins a new run over the same questions.
func (c *Controller) Restart() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if err := c.session.Restart(); err != nil {
		return err
	}
	c.syncTimer()
	return nil
}

// SubmitAnswer submits an encoded option text, or a timeout when selected is nil.
func (c *Controller) SubmitAnswer(selected *string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	err := c.session.SubmitAnswer(selected)
	c.syncTimer()
	return err
}

// SelectOption submits the option at index i of the display order.
func (c *Controller) SelectOption(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	err := c.session.SelectOption(i)
	c.syncTimer()
	return err
}

// Advance moves to the next question or finishes the run.
func (c *Controller) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.session.Advance()
	c.syncTimer()
	return nil
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Snapshot()
}

// State returns the current phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.State()
}

// History returns the answers given so far.
func (c *Controller) History() []entities.QuizAnswer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.History()
}

// Close stops the timer and the event delivery. Every later command fails
// with ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelTimer()
	if !c.closed {
		close(c.done)
	}
	c.closed = true
}

// syncTimer arms, keeps or cancels the timer to match the session state.
// Must be called with mu held.
func (c *Controller) syncTimer() {
	if c.session.State() != StateAwaiting {
		c.cancelTimer()
		return
	}

	round := c.session.Round()
	if c.stop != nil && c.armedRound == round {
		return
	}

	c.cancelTimer()
	c.armTimer(round)
}

func (c *Controller) armTimer(round uint64) {
	c.gen++
	stop := make(chan struct{})
	c.stop = stop
	c.armedRound = round

	go c.run(c.gen, c.newTicker(c.interval), stop)
}

func (c *Controller) cancelTimer() {
	if c.stop == nil {
		return
	}
	close(c.stop)
	c.stop = nil
}

func (c *Controller) run(gen uint64, t Ticker, stop <-chan struct{}) {
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C():
			if !c.tick(gen) {
				return
			}
		}
	}
}

// tick applies one tick of timer generation gen and reports whether that
// timer is still armed afterwards.
func (c *Controller) tick(gen uint64) bool {
	c.mu.Lock()

	if c.stop == nil || c.gen != gen {
		c.mu.Unlock()
		return false
	}

	timedOut, err := c.session.Tick()
	snap, snapErr := c.session.Snapshot()
	if err == nil {
		err = snapErr
	}

	c.syncTimer()
	armed := c.stop != nil && c.gen == gen

	c.mu.Unlock()

	if c.onTick != nil {
		c.publish(Event{Snapshot: snap, TimedOut: timedOut, Err: err})
	}

	return armed
}

// publish queues ev for the observer without blocking.
func (c *Controller) publish(ev Event) {
	c.evMu.Lock()
	if n := len(c.pending); n > 0 && !c.pending[n-1].TimedOut && c.pending[n-1].Err == nil {
		c.pending[n-1] = ev
	} else {
		c.pending = append(c.pending, ev)
	}
	c.evMu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// deliver hands queued events to the observer until the controller is closed.
func (c *Controller) deliver() {
	for {
		select {
		case <-c.done:
			return
		case <-c.wake:
		}

		for {
			ev, ok := c.popEvent()
			if !ok {
				break
			}
			c.onTick(ev)
		}
	}
}

func (c *Controller) popEvent() (Event, bool) {
	c.evMu.Lock()
	defer c.evMu.Unlock()

	if len(c.pending) == 0 {
		return Event{}, false
	}
	ev := c.pending[0]
	c.pending = c.pending[1:]
	if len(c.pending) == 0 {
		c.pending = nil
	}
	return ev, true
}
