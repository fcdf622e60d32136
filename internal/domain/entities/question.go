// Package entities contains domain entities used across the application.
package entities

// Difficulty is the difficulty level of a trivia question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Stars returns the number of filled stars shown for the difficulty (1-3).
// Unknown levels are shown as medium.
func (d Difficulty) Stars() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyHard:
		return 3
	default:
		return 2
	}
}

// Question is a multiple choice trivia question.
// All texts are percent-encoded and must be decoded before display or comparison.
type Question struct {
	Category         string     `json:"category" validate:"percent_encoded"`                              // question category, display only
	Type             string     `json:"type"`                                                             // "multiple" for four option questions
	Difficulty       Difficulty `json:"difficulty" validate:"required,oneof=easy medium hard"`            // difficulty level
	Text             string     `json:"question" validate:"required,percent_encoded"`                     // question text
	CorrectAnswer    string     `json:"correct_answer" validate:"required,percent_encoded"`               // the only correct option
	IncorrectAnswers []string   `json:"incorrect_answers" validate:"len=3,dive,required,percent_encoded"` // three wrong options
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	c := q
	c.IncorrectAnswers = append([]string(nil), q.IncorrectAnswers...)
	return c
}
