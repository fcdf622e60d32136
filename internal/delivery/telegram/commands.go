package telegram

import (
	"context"

	"github.com/aliskhannn/trivia-quiz-bot/internal/domain/entities"
)

func (h *Handler) handleStart() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		msg := newMessage(chatID, welcomeMarkdownV2(h.timerSeconds))
		msg.ReplyMarkup = buildStartKeyboard()
		return h.send(msg)
	}
}

func (h *Handler) handleHelp() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		return h.send(newMessage(chatID, helpMarkdownV2()))
	}
}

// handleQuiz starts a new quiz. A non-zero reuseMsgID turns that message into
// the quiz message instead of sending a new one.
func (h *Handler) handleQuiz(userID int64, reuseMsgID int) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		prevMsgID, hadPrev := h.quizService.MessageID(chatID)

		if _, err := h.quizService.Start(ctx, chatID, userID); err != nil {
			return err
		}

		if reuseMsgID != 0 {
			h.quizService.SetMessageID(chatID, reuseMsgID)
		}
		if hadPrev && prevMsgID != reuseMsgID {
			h.deleteMessage(chatID, prevMsgID)
		}

		return h.refresh(chatID)
	}
}

func (h *Handler) handleRestart() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if _, err := h.quizService.Restart(ctx, chatID); err != nil {
			return err
		}
		return h.refresh(chatID)
	}
}

func (h *Handler) handleNext() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if _, err := h.quizService.Next(ctx, chatID); err != nil {
			return err
		}
		return h.refresh(chatID)
	}
}

func (h *Handler) handleHistory() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		results, err := h.quizService.History(ctx, chatID, historyLimit)
		if err != nil {
			return err
		}
		return h.send(newMessage(chatID, historyText(results)))
	}
}

func historyText(results []entities.QuizResult) string {
	if len(results) == 0 {
		return md(msgHistoryEmpty)
	}
	return renderHistory(results)
}
