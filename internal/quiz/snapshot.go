package quiz

import "github.com/aliskhannn/trivia-quiz-bot/internal/domain/entities"

// Mark tells the presentation layer how to highlight an option.
type Mark int

const (
	MarkNeutral Mark = iota // answer not revealed yet
	MarkCorrect             // the correct option
	MarkWrong               // the selected wrong option
	MarkDimmed              // any other option after reveal
)

// OptionView is a decoded option in display order.
type OptionView struct {
	Text string
	Mark Mark
}

// Snapshot is a read-only view of a session for rendering.
type Snapshot struct {
	State State

	Number     int // 1-based position of the current question
	Total      int
	Category   string
	Question   string
	Difficulty entities.Difficulty
	Stars      int
	Options    []OptionView

	Remaining  int
	TimerStart int

	Revealed      bool
	Finished      bool
	IsCorrect     bool
	TimedOut      bool   // answer was submitted by the timer
	Selected      string // decoded selection, empty on timeout
	CorrectAnswer string // decoded, set only once revealed

	CorrectCount int
	Attempts     int
	Scores       Scores
}

// Snapshot returns the current view. An idle session yields a zero view with
// StateIdle.
func (s *Session) Snapshot() (Snapshot, error) {
	snap := Snapshot{
		State:      s.State(),
		TimerStart: s.timerStart,
	}
	if !s.started {
		return snap, nil
	}

	q := s.order[s.index]

	text, err := Decode(q.Text)
	if err != nil {
		return Snapshot{}, err
	}
	category, err := Decode(q.Category)
	if err != nil {
		return Snapshot{}, err
	}
	correct, err := Decode(q.CorrectAnswer)
	if err != nil {
		return Snapshot{}, err
	}

	options := make([]OptionView, 0, len(s.options))
	for _, o := range s.options {
		decoded, err := Decode(o)
		if err != nil {
			return Snapshot{}, err
		}
		options = append(options, OptionView{
			Text: decoded,
			Mark: s.markFor(decoded, correct),
		})
	}

	snap.Number = s.index + 1
	snap.Total = len(s.order)
	snap.Category = category
	snap.Question = text
	snap.Difficulty = q.Difficulty
	snap.Stars = q.Difficulty.Stars()
	snap.Options = options
	snap.Remaining = s.remaining
	snap.Revealed = s.revealed
	snap.Finished = s.finished
	snap.IsCorrect = s.isCorrect
	snap.TimedOut = s.timedOut
	snap.Selected = s.selected
	snap.CorrectCount = s.correct
	snap.Attempts = s.attempts
	snap.Scores = s.Scores()
	if s.revealed {
		snap.CorrectAnswer = correct
	}

	return snap, nil
}

func (s *Session) markFor(option, correct string) Mark {
	switch {
	case !s.revealed:
		return MarkNeutral
	case option == correct:
		return MarkCorrect
	case !s.timedOut && option == s.selected:
		return MarkWrong
	default:
		return MarkDimmed
	}
}
