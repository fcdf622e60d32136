package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/trivia-quiz-bot/internal/quiz"
	"github.com/aliskhannn/trivia-quiz-bot/internal/service"
)

const historyLimit = 5

// Handler routes Telegram updates to the quiz service and keeps the quiz
// message of every chat in sync with its session.
type Handler struct {
	bot          BotAPI
	logger       *zap.Logger
	quizService  QuizService
	timerSeconds int
	renderEvery  int

	chatLocks sync.Map // chatID -> *sync.Mutex
}

func NewHandler(
	bot BotAPI,
	logger *zap.Logger,
	quizService QuizService,
	timerSeconds int,
	renderEvery int,
) *Handler {
	if renderEvery <= 0 {
		renderEvery = 1
	}
	return &Handler{
		bot:          bot,
		logger:       logger,
		quizService:  quizService,
		timerSeconds: timerSeconds,
		renderEvery:  renderEvery,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	if !update.Message.IsCommand() {
		return
	}

	switch update.Message.Command() {
	case "start":
		_ = h.withErrorHandling(h.handleStart())(ctx, chatID)
	case "help":
		_ = h.withErrorHandling(h.handleHelp())(ctx, chatID)
	case "quiz":
		_ = h.withErrorHandling(h.handleQuiz(userID, 0))(ctx, chatID)
	case "restart":
		_ = h.withErrorHandling(h.handleRestart())(ctx, chatID)
	case "history":
		_ = h.withErrorHandling(h.handleHistory())(ctx, chatID)
	default:
		_ = h.send(newPlainMessage(chatID, msgUnknownCommand))
	}
}

// NotifyTick redraws the quiz message on timeout and every renderEvery seconds.
func (h *Handler) NotifyTick(chatID int64, ev quiz.Event) {
	if !ev.TimedOut && ev.Snapshot.Remaining%h.renderEvery != 0 {
		return
	}

	if err := h.refresh(chatID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return
		}
		h.logger.Warn("failed to redraw quiz timer",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// refresh renders the current snapshot into the chat's quiz message, sending a
// new message if there is none yet or the old one can no longer be edited.
// Redraws of one chat are serialized and always use the latest snapshot, so a
// slow redraw cannot overwrite a newer one.
func (h *Handler) refresh(chatID int64) error {
	unlock := h.lockChat(chatID)
	defer unlock()

	snap, err := h.quizService.Snapshot(chatID)
	if err != nil {
		return err
	}

	text := renderQuiz(snap)
	kb := buildQuizKeyboard(snap)

	if msgID, ok := h.quizService.MessageID(chatID); ok {
		edit := newEdit(chatID, msgID, text)
		edit.ReplyMarkup = &kb

		err := h.sendEdit(edit)
		if err == nil {
			return nil
		}

		// Deleted or too old to edit: forget it and post the quiz again.
		h.logger.Warn("failed to edit quiz message, sending a new one",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", msgID),
			zap.Error(err),
		)
		h.quizService.SetMessageID(chatID, 0)
	}

	msg := newMessage(chatID, text)
	msg.ReplyMarkup = kb

	sent, err := h.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("send quiz message: %w", err)
	}
	h.quizService.SetMessageID(chatID, sent.MessageID)

	return nil
}

func (h *Handler) lockChat(chatID int64) func() {
	v, _ := h.chatLocks.LoadOrStore(chatID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (h *Handler) send(c tgbotapi.Chattable) error {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return err
	}
	return nil
}

// sendEdit sends an edit. Telegram rejects edits that change nothing; those
// are not errors here.
func (h *Handler) sendEdit(edit tgbotapi.EditMessageTextConfig) error {
	if _, err := h.bot.Send(edit); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return fmt.Errorf("edit quiz message: %w", err)
	}
	return nil
}

func (h *Handler) deleteMessage(chatID int64, messageID int) {
	if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		h.logger.Debug("failed to delete message",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err),
		)
	}
}
