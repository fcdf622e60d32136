package service

import (
	"context"

	"github.com/aliskhannn/trivia-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/trivia-quiz-bot/internal/quiz"
)

// QuestionRepository provides the question set.
type QuestionRepository interface {
	GetAll(ctx context.Context) ([]entities.Question, error)
}

// ResultRepository persists finished quiz runs.
type ResultRepository interface {
	Save(ctx context.Context, result *entities.QuizResult) error
	ListByChat(ctx context.Context, chatID int64, limit int) ([]entities.QuizResult, error)
}

// TickNotifier receives countdown events so the quiz message can be redrawn.
type TickNotifier interface {
	NotifyTick(chatID int64, ev quiz.Event)
}
