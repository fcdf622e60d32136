package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/aliskhannn/trivia-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/trivia-quiz-bot/internal/quiz"
	"github.com/aliskhannn/trivia-quiz-bot/internal/storage"
)

var (
	ErrSessionNotFound   = errors.New("quiz session not found")
	ErrResultLogDisabled = errors.New("result log is disabled")
)

const maxHistory = 10

// QuizConfig holds quiz session parameters.
type QuizConfig struct {
	TimerSeconds  int
	SessionTTL    time.Duration
	SweepSchedule string
}

// QuizOption configures a QuizService.
type QuizOption func(*QuizService)

// WithTickerFactory replaces the countdown tick source of new sessions.
func WithTickerFactory(f quiz.TickerFactory) QuizOption {
	return func(s *QuizService) {
		s.newTicker = f
	}
}

// WithClock replaces the wall clock used for activity tracking and results.
func WithClock(now func() time.Time) QuizOption {
	return func(s *QuizService) {
		s.now = now
	}
}

// QuizService manages one quiz session per chat.
type QuizService struct {
	questionRepo QuestionRepository
	resultRepo   ResultRepository
	store        *storage.SessionStorage
	notifier     TickNotifier
	cfg          QuizConfig
	logger       *zap.Logger

	newTicker quiz.TickerFactory
	now       func() time.Time
}

// NewQuizService creates a new QuizService. A nil resultRepo disables the result log.
func NewQuizService(
	questionRepo QuestionRepository,
	resultRepo ResultRepository,
	store *storage.SessionStorage,
	cfg QuizConfig,
	logger *zap.Logger,
	opts ...QuizOption,
) *QuizService {
	s := &QuizService{
		questionRepo: questionRepo,
		resultRepo:   resultRepo,
		store:        store,
		cfg:          cfg,
		logger:       logger,
		newTicker:    quiz.NewTimeTicker,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetNotifier sets the tick notifier (called after handler is created).
func (s *QuizService) SetNotifier(notifier TickNotifier) {
	s.notifier = notifier
}

// Start begins a new quiz in a chat, replacing any session already running there.
func (s *QuizService) Start(ctx context.Context, chatID, userID int64) (quiz.Snapshot, error) {
	questions, err := s.questionRepo.GetAll(ctx)
	if err != nil {
		return quiz.Snapshot{}, fmt.Errorf("get questions: %w", err)
	}

	var ctrl *quiz.Controller
	ctrl = quiz.NewController(
		quiz.WithTickerFactory(s.newTicker),
		quiz.WithSessionOptions(quiz.WithTimerStart(s.cfg.TimerSeconds)),
		quiz.WithOnTick(func(ev quiz.Event) {
			s.handleTick(chatID, ctrl, ev)
		}),
	)

	if err := ctrl.Start(questions); err != nil {
		ctrl.Close()
		return quiz.Snapshot{}, fmt.Errorf("start quiz: %w", err)
	}

	now := s.now()
	prev, hadPrev := s.store.Put(storage.Session{
		ChatID:       chatID,
		UserID:       userID,
		Controller:   ctrl,
		StartedAt:    now,
		LastActivity: now,
	})
	if hadPrev {
		prev.Controller.Close()
	}

	s.logger.Info("quiz started",
		zap.Int64("chat_id", chatID),
		zap.Int64("user_id", userID),
		zap.Int("questions", len(questions)),
	)

	return ctrl.Snapshot()
}

// Answer submits the option at index option of the current question.
func (s *QuizService) Answer(_ context.Context, chatID int64, option int) (quiz.Snapshot, error) {
	sess, err := s.session(chatID)
	if err != nil {
		return quiz.Snapshot{}, err
	}

	if err := sess.Controller.SelectOption(option); err != nil {
		return quiz.Snapshot{}, fmt.Errorf("select option: %w", err)
	}
	s.store.Touch(chatID, s.now())

	return sess.Controller.Snapshot()
}

// Next moves to the next question. When the run finishes, it is written to the
// result log.
func (s *QuizService) Next(ctx context.Context, chatID int64) (quiz.Snapshot, error) {
	sess, err := s.session(chatID)
	if err != nil {
		return quiz.Snapshot{}, err
	}

	if err := sess.Controller.Advance(); err != nil {
		return quiz.Snapshot{}, fmt.Errorf("advance: %w", err)
	}
	s.store.Touch(chatID, s.now())

	snap, err := sess.Controller.Snapshot()
	if err != nil {
		return quiz.Snapshot{}, err
	}

	if snap.Finished {
		if err := s.RecordResult(ctx, sess, snap); err != nil {
			// The player still gets the final screen.
			s.logger.Error("failed to record quiz result",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
		}
	}

	return snap, nil
}

// Restart begins a new run over the same questions.
func (s *QuizService) Restart(_ context.Context, chatID int64) (quiz.Snapshot, error) {
	sess, err := s.session(chatID)
	if err != nil {
		return quiz.Snapshot{}, err
	}

	if err := sess.Controller.Restart(); err != nil {
		return quiz.Snapshot{}, fmt.Errorf("restart quiz: %w", err)
	}
	s.store.ResetRun(chatID, s.now())

	s.logger.Info("quiz restarted", zap.Int64("chat_id", chatID))

	return sess.Controller.Snapshot()
}

// Snapshot returns the current view of the chat's session.
func (s *QuizService) Snapshot(chatID int64) (quiz.Snapshot, error) {
	sess, err := s.session(chatID)
	if err != nil {
		return quiz.Snapshot{}, err
	}
	return sess.Controller.Snapshot()
}

// SetMessageID remembers the message that displays the chat's quiz.
func (s *QuizService) SetMessageID(chatID int64, messageID int) {
	s.store.SetMessageID(chatID, messageID)
}

// MessageID returns the message that displays the chat's quiz.
func (s *QuizService) MessageID(chatID int64) (int, bool) {
	sess, ok := s.store.Get(chatID)
	if !ok || sess.MessageID == 0 {
		return 0, false
	}
	return sess.MessageID, true
}

// RecordResult writes a finished run to the result log once.
func (s *QuizService) RecordResult(ctx context.Context, sess storage.Session, snap quiz.Snapshot) error {
	if s.resultRepo == nil {
		return nil
	}
	if !s.store.MarkRecorded(sess.ChatID, sess.Controller) {
		return nil
	}

	result := entities.NewQuizResult(sess.ChatID, sess.UserID, sess.StartedAt, s.now())
	result.Total = snap.Total
	result.Correct = snap.CorrectCount
	result.Attempts = snap.Attempts
	result.Score = snap.Scores.Score
	result.Answers = sess.Controller.History()

	if err := s.resultRepo.Save(ctx, result); err != nil {
		return fmt.Errorf("save quiz result: %w", err)
	}

	s.logger.Info("quiz result recorded",
		zap.Int64("chat_id", sess.ChatID),
		zap.String("result_id", result.ID.String()),
		zap.Int("score", result.Score),
		zap.Duration("duration", result.Duration()),
	)

	return nil
}

// History returns up to limit latest results of a chat, newest first.
func (s *QuizService) History(ctx context.Context, chatID int64, limit int) ([]entities.QuizResult, error) {
	if s.resultRepo == nil {
		return nil, ErrResultLogDisabled
	}
	if limit <= 0 || limit > maxHistory {
		limit = maxHistory
	}

	results, err := s.resultRepo.ListByChat(ctx, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// SweepIdle closes and removes sessions idle for longer than the session TTL.
func (s *QuizService) SweepIdle() int {
	if s.cfg.SessionTTL <= 0 {
		return 0
	}

	removed := s.store.RemoveIdle(s.now().Add(-s.cfg.SessionTTL))
	for _, sess := range removed {
		sess.Controller.Close()
	}

	if len(removed) > 0 {
		s.logger.Info("idle quiz sessions removed", zap.Int("count", len(removed)))
	}
	return len(removed)
}

// RunSweeper schedules SweepIdle until ctx is done.
func (s *QuizService) RunSweeper(ctx context.Context) {
	s.logger.Info("session sweeper started")

	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(s.cfg.SweepSchedule, func() {
		s.SweepIdle()
	})
	if err != nil {
		s.logger.Error("failed to add cron job",
			zap.String("schedule", s.cfg.SweepSchedule),
			zap.Error(err),
		)
		return
	}

	c.Start()

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("session sweeper stopped")
}

// Shutdown closes every session.
func (s *QuizService) Shutdown() {
	for _, sess := range s.store.RemoveAll() {
		sess.Controller.Close()
	}
}

func (s *QuizService) session(chatID int64) (storage.Session, error) {
	sess, ok := s.store.Get(chatID)
	if !ok {
		return storage.Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// handleTick forwards countdown events of the chat's current controller.
func (s *QuizService) handleTick(chatID int64, ctrl *quiz.Controller, ev quiz.Event) {
	if ev.Err != nil {
		s.logger.Error("quiz tick failed", zap.Int64("chat_id", chatID), zap.Error(ev.Err))
		return
	}

	sess, ok := s.store.Get(chatID)
	if !ok || sess.Controller != ctrl {
		return
	}

	if ev.TimedOut {
		s.logger.Debug("question timed out",
			zap.Int64("chat_id", chatID),
			zap.Int("question", ev.Snapshot.Number),
		)
	}

	if s.notifier != nil {
		s.notifier.NotifyTick(chatID, ev)
	}
}
