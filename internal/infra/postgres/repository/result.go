package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/trivia-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/trivia-quiz-bot/internal/infra/postgres"
)

var ErrEmptyResult = errors.New("quiz result has no answers")

var answerColumns = []string{
	"result_id", "question_number", "question", "difficulty",
	"selected", "correct_answer", "is_correct", "timed_out", "elapsed_seconds",
}

// ResultRepository stores finished quiz runs.
type ResultRepository struct {
	db postgres.DBTX
	tr *postgres.Transactor
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(db postgres.DBTX, tr *postgres.Transactor) *ResultRepository {
	return &ResultRepository{db: db, tr: tr}
}

// Save writes the result and its answers in one transaction.
func (r *ResultRepository) Save(ctx context.Context, result *entities.QuizResult) error {
	if len(result.Answers) == 0 {
		return ErrEmptyResult
	}

	return r.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := insertResult(ctx, tx, result); err != nil {
			return err
		}
		return insertAnswers(ctx, tx, result.ID, result.Answers)
	})
}

// ListByChat returns the latest results of a chat, newest first. Answers are
// not loaded.
func (r *ResultRepository) ListByChat(ctx context.Context, chatID int64, limit int) ([]entities.QuizResult, error) {
	query := `
		SELECT id, chat_id, user_id, total, correct, attempts, score, started_at, finished_at
		FROM quiz_results
		WHERE chat_id = $1
		ORDER BY finished_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("list quiz results: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entities.QuizResult, error) {
		var res entities.QuizResult
		err := row.Scan(
			&res.ID,
			&res.ChatID,
			&res.UserID,
			&res.Total,
			&res.Correct,
			&res.Attempts,
			&res.Score,
			&res.StartedAt,
			&res.FinishedAt,
		)
		return res, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan quiz results: %w", err)
	}

	return results, nil
}

func insertResult(ctx context.Context, db postgres.DBTX, result *entities.QuizResult) error {
	query := `
		INSERT INTO quiz_results (
			id, chat_id, user_id, total, correct,
			attempts, score, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := db.Exec(
		ctx,
		query,
		result.ID,
		result.ChatID,
		result.UserID,
		result.Total,
		result.Correct,
		result.Attempts,
		result.Score,
		result.StartedAt.UTC(),
		result.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert quiz result: %w", err)
	}

	return nil
}

func insertAnswers(ctx context.Context, db postgres.DBTX, resultID uuid.UUID, answers []entities.QuizAnswer) error {
	rows := make([][]any, 0, len(answers))
	for _, a := range answers {
		var selected *string
		if !a.TimedOut {
			selected = &a.Selected
		}
		rows = append(rows, []any{
			resultID,
			a.QuestionNumber,
			a.Question,
			string(a.Difficulty),
			selected,
			a.CorrectAnswer,
			a.IsCorrect,
			a.TimedOut,
			a.ElapsedSeconds,
		})
	}

	n, err := db.CopyFrom(ctx, pgx.Identifier{"quiz_result_answers"}, answerColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("insert quiz answers: %w", err)
	}
	if int(n) != len(answers) {
		return fmt.Errorf("insert quiz answers: copied %d of %d rows", n, len(answers))
	}

	return nil
}
