package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/aliskhannn/trivia-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/trivia-quiz-bot/internal/quiz"
)

var (
	ErrNoQuestions      = errors.New("question set is empty")
	ErrInvalidQuestions = errors.New("invalid question set")
)

// QuestionRepository provides read-only access to the bundled question set.
// The set is loaded once and never changes afterwards.
type QuestionRepository struct {
	questions []entities.Question
}

// NewQuestionRepository loads and validates questions from a JSON file.
func NewQuestionRepository(path string) (*QuestionRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}

	questions, err := ParseQuestions(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return &QuestionRepository{questions: questions}, nil
}

// GetAll returns a copy of all questions in file order.
func (r *QuestionRepository) GetAll(_ context.Context) ([]entities.Question, error) {
	out := make([]entities.Question, 0, len(r.questions))
	for _, q := range r.questions {
		out = append(out, q.Clone())
	}
	return out, nil
}

// Count returns the number of questions.
func (r *QuestionRepository) Count() int {
	return len(r.questions)
}

// ParseQuestions decodes either an Open Trivia DB response object
// ({"results": [...]}) or a bare array of questions and validates every record.
func ParseQuestions(data []byte) ([]entities.Question, error) {
	var questions []entities.Question

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &questions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal questions JSON: %w", err)
		}
	} else {
		var wrapper struct {
			Results []entities.Question `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to unmarshal questions JSON: %w", err)
		}
		questions = wrapper.Results
	}

	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	validate := newValidator()
	for i := range questions {
		if err := validate.Struct(questions[i]); err != nil {
			return nil, fmt.Errorf("%w: question %d: %w", ErrInvalidQuestions, i+1, err)
		}
	}

	return questions, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("percent_encoded", validatePercentEncoded)
	return v
}

// validatePercentEncoded checks that a string field decodes cleanly.
func validatePercentEncoded(fl validator.FieldLevel) bool {
	_, err := quiz.Decode(fl.Field().String())
	return err == nil
}
