package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aliskhannn/trivia-quiz-bot/internal/quiz"
	"github.com/aliskhannn/trivia-quiz-bot/internal/repository"
	"github.com/aliskhannn/trivia-quiz-bot/internal/service"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

// withErrorHandling turns handler errors into user messages.
// Expected errors are answered with a specific text, everything else is logged.
func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		err := fn(ctx, chatID)
		if err == nil {
			return nil
		}

		if text, ok := userMessage(err); ok {
			h.logger.Debug("handle error",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			_ = h.send(newPlainMessage(chatID, text))
			return nil
		}

		h.logger.Error("handle error",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		_ = h.send(newPlainMessage(chatID, msgInternalError))
		return nil
	}
}

// userMessage maps expected errors to a message for the user.
func userMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, quiz.ErrClosed):
		return msgNoActiveQuiz, true
	case errors.Is(err, service.ErrResultLogDisabled):
		return msgHistoryDisabled, true
	case errors.Is(err, quiz.ErrOptionOutOfRange):
		return msgOptionOutOfRange, true
	case errors.Is(err, quiz.ErrInvalidInput), errors.Is(err, repository.ErrNoQuestions):
		return msgQuizUnavailable, true
	default:
		return "", false
	}
}
