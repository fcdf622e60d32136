// Package quiz implements a timed multiple choice quiz session.
//
// A Session is a plain state machine: it has no goroutines and no locking.
// Controller wraps a Session, serializes commands to it and drives its
// per-question countdown.
package quiz

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/aliskhannn/trivia-quiz-bot/internal/domain/entities"
)

// TimerStart is the default number of seconds given for each question.
const TimerStart = 60

const incorrectAnswersPerQuestion = 3

// State is the phase of a quiz session.
type State int

const (
	StateIdle     State = iota // no questions started yet
	StateAwaiting              // waiting for an answer, timer running
	StateRevealed              // answer evaluated, waiting for advance
	StateFinished              // all questions passed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaiting:
		return "awaiting"
	case StateRevealed:
		return "revealed"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Option configures a Session.
type Option func(*Session)

// WithTimerStart sets the countdown start in seconds. Non-positive values are ignored.
func WithTimerStart(seconds int) Option {
	return func(s *Session) {
		if seconds > 0 {
			s.timerStart = seconds
		}
	}
}

// WithRand sets the random source used for shuffling.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) {
		s.rng = rng
	}
}

// Session is the state of one quiz run.
type Session struct {
	questions []entities.Question // canonical set, never reordered
	order     []entities.Question // shuffled working copy
	index     int
	options   []string // encoded options of the current question, in display order

	correct  int
	attempts int

	selected  string
	isCorrect bool
	timedOut  bool
	revealed  bool
	finished  bool
	remaining int

	started bool
	round   uint64 // bumped on every question change
	history []entities.QuizAnswer

	timerStart int
	rng        *rand.Rand
}

// NewSession creates an idle session.
func NewSession(opts ...Option) *Session {
	s := &Session{timerStart: TimerStart}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins a new run over questions in a random order.
// On error the session is left unchanged.
func (s *Session) Start(questions []entities.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: empty question set", ErrInvalidInput)
	}

	canonical := make([]entities.Question, 0, len(questions))
	for i, q := range questions {
		if err := validateQuestion(q); err != nil {
			return fmt.Errorf("%w: question %d: %w", ErrInvalidInput, i+1, err)
		}
		canonical = append(canonical, q.Clone())
	}

	s.questions = canonical
	s.reset()

	return nil
}

// Restart begins a new run over the same questions with a fresh order.
func (s *Session) Restart() error {
	if !s.started {
		return fmt.Errorf("%w: session was never started", ErrInvalidInput)
	}
	s.reset()
	return nil
}

// Tick advances the countdown by one unit. When it reaches zero the question is
// submitted with no selection and Tick reports true.
func (s *Session) Tick() (bool, error) {
	if s.State() != StateAwaiting {
		return false, nil
	}

	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining > 0 {
		return false, nil
	}

	if err := s.submit(nil); err != nil {
		return false, err
	}
	return true, nil
}

// SubmitAnswer evaluates the encoded option text selected, or a timeout when
// selected is nil. It does nothing unless the session is awaiting an answer.
func (s *Session) SubmitAnswer(selected *string) error {
	if s.State() != StateAwaiting {
		return nil
	}
	return s.submit(selected)
}

// SelectOption submits the option at index i of the current display order.
func (s *Session) SelectOption(i int) error {
	if s.State() != StateAwaiting {
		return nil
	}
	if i < 0 || i >= len(s.options) {
		return fmt.Errorf("%w: %d", ErrOptionOutOfRange, i)
	}
	opt := s.options[i]
	return s.submit(&opt)
}

// Advance moves to the next question, or finishes the run after the last one.
// It does nothing unless the current answer has been revealed.
func (s *Session) Advance() {
	if s.State() != StateRevealed {
		return
	}

	if s.index+1 < len(s.order) {
		s.index++
		s.enterQuestion()
		return
	}

	s.finished = true
}

// State returns the current phase.
func (s *Session) State() State {
	switch {
	case !s.started:
		return StateIdle
	case s.finished:
		return StateFinished
	case s.revealed:
		return StateRevealed
	default:
		return StateAwaiting
	}
}

// Remaining returns the seconds left for the current question.
func (s *Session) Remaining() int {
	return s.remaining
}

// Round identifies the current question visit. It changes whenever a new
// question is entered, including on start and restart.
func (s *Session) Round() uint64 {
	return s.round
}

// Scores returns the current scores.
func (s *Session) Scores() Scores {
	return ComputeScores(s.correct, s.attempts, len(s.order))
}

// History returns the answers given so far in play order.
func (s *Session) History() []entities.QuizAnswer {
	out := make([]entities.QuizAnswer, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) reset() {
	s.order = Shuffle(s.rng, s.questions)
	s.index = 0
	s.correct = 0
	s.attempts = 0
	s.finished = false
	s.started = true
	s.history = nil
	s.enterQuestion()
}

func (s *Session) enterQuestion() {
	q := s.order[s.index]

	opts := make([]string, 0, 1+len(q.IncorrectAnswers))
	opts = append(opts, q.CorrectAnswer)
	opts = append(opts, q.IncorrectAnswers...)

	s.options = Shuffle(s.rng, opts)
	s.selected = ""
	s.isCorrect = false
	s.timedOut = false
	s.revealed = false
	s.remaining = s.timerStart
	s.round++
}

func (s *Session) submit(selected *string) error {
	q := s.order[s.index]

	correct, err := Decode(q.CorrectAnswer)
	if err != nil {
		return err
	}
	text, err := Decode(q.Text)
	if err != nil {
		return err
	}

	var picked string
	if selected != nil {
		picked, err = Decode(*selected)
		if err != nil {
			return err
		}
	}

	isCorrect := selected != nil && picked == correct

	s.selected = picked
	s.isCorrect = isCorrect
	s.timedOut = selected == nil
	s.attempts++
	if isCorrect {
		s.correct++
	}
	s.revealed = true

	s.history = append(s.history, entities.QuizAnswer{
		QuestionNumber: s.index + 1,
		Question:       text,
		Difficulty:     q.Difficulty,
		Selected:       picked,
		CorrectAnswer:  correct,
		IsCorrect:      isCorrect,
		TimedOut:       selected == nil,
		ElapsedSeconds: s.timerStart - s.remaining,
	})

	return nil
}

func validateQuestion(q entities.Question) error {
	if len(q.IncorrectAnswers) != incorrectAnswersPerQuestion {
		return fmt.Errorf("want %d incorrect answers, got %d",
			incorrectAnswersPerQuestion, len(q.IncorrectAnswers))
	}

	if _, err := Decode(q.Text); err != nil {
		return err
	}
	if _, err := Decode(q.Category); err != nil {
		return err
	}

	correct, err := Decode(q.CorrectAnswer)
	if err != nil {
		return err
	}

	for _, a := range q.IncorrectAnswers {
		wrong, err := Decode(a)
		if err != nil {
			return err
		}
		if wrong == correct {
			return errors.New("incorrect answer equals the correct answer")
		}
	}

	return nil
}
