package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/trivia-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/trivia-quiz-bot/internal/quiz"
)

// BotAPI is the part of *tgbotapi.BotAPI the handler uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type QuizService interface {
	Start(ctx context.Context, chatID, userID int64) (quiz.Snapshot, error)
	Answer(ctx context.Context, chatID int64, option int) (quiz.Snapshot, error)
	Next(ctx context.Context, chatID int64) (quiz.Snapshot, error)
	Restart(ctx context.Context, chatID int64) (quiz.Snapshot, error)
	Snapshot(chatID int64) (quiz.Snapshot, error)
	SetMessageID(chatID int64, messageID int)
	MessageID(chatID int64) (int, bool)
	History(ctx context.Context, chatID int64, limit int) ([]entities.QuizResult, error)
}
