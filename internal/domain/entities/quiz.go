package entities

import (
	"time"

	"github.com/google/uuid"
)

// QuizAnswer is the outcome of a single question within a quiz run.
type QuizAnswer struct {
	QuestionNumber int        // 1-based position of the question in the run
	Question       string     // decoded question text
	Difficulty     Difficulty // difficulty of the question
	Selected       string     // decoded selected option, empty on timeout
	CorrectAnswer  string     // decoded correct option
	IsCorrect      bool       // whether the selected option was correct
	TimedOut       bool       // whether the answer was submitted by the timer
	ElapsedSeconds int        // seconds spent on the question
}

// QuizResult is a finished quiz run as written to the result log.
type QuizResult struct {
	ID         uuid.UUID    // unique result ID
	ChatID     int64        // chat the quiz was played in
	UserID     int64        // user who played
	Total      int          // number of questions in the run
	Correct    int          // number of correct answers
	Attempts   int          // number of answered questions, timeouts included
	Score      int          // final score in percent
	StartedAt  time.Time    // when the run started
	FinishedAt time.Time    // when the last question was passed
	Answers    []QuizAnswer // per-question outcomes in play order
}

// NewQuizResult creates a result with a fresh ID.
func NewQuizResult(chatID, userID int64, startedAt, finishedAt time.Time) *QuizResult {
	return &QuizResult{
		ID:         uuid.New(),
		ChatID:     chatID,
		UserID:     userID,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}
}

// Duration returns how long the run took.
func (r *QuizResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
