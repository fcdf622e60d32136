package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/aliskhannn/trivia-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/trivia-quiz-bot/internal/quiz"
)

// renderQuiz renders the quiz message text for a snapshot (MarkdownV2 safe).
func renderQuiz(snap quiz.Snapshot) string {
	if snap.Finished {
		return renderFinished(snap)
	}

	var sb strings.Builder

	sb.WriteString(md(buildProgressBar(snap.Number, snap.Total, progressBarLength)))
	sb.WriteString("\n")
	sb.WriteString(bold(fmt.Sprintf("Question %d of %d", snap.Number, snap.Total)))
	sb.WriteString(md("  " + buildStars(snap.Stars)))
	sb.WriteString("\n")
	if snap.Category != "" {
		sb.WriteString(italic(snap.Category))
		sb.WriteString(md("  "))
	}
	sb.WriteString(md("⏱ " + formatTimer(snap.Remaining)))
	sb.WriteString("\n\n")

	sb.WriteString(md(snap.Question))
	sb.WriteString("\n\n")

	if snap.Revealed {
		sb.WriteString(renderVerdict(snap))
		sb.WriteString("\n\n")
	}

	sb.WriteString(renderScoreLine(snap.Scores))

	return sb.String()
}

func renderVerdict(snap quiz.Snapshot) string {
	switch {
	case snap.IsCorrect:
		return bold("✅ Correct!")
	case snap.TimedOut:
		return bold("⏰ Time is up!") + "\n" + md("Correct answer: ") + bold(snap.CorrectAnswer)
	default:
		return bold("❌ Wrong!") + "\n" + md("Correct answer: ") + bold(snap.CorrectAnswer)
	}
}

func renderScoreLine(s quiz.Scores) string {
	return md(fmt.Sprintf("Score: %d%%    Max Score: %d%%", s.Score, s.MaxScore)) +
		"\n" + md(buildScoreBar(s.Score, s.MaxScore, scoreBarLength))
}

func renderFinished(snap quiz.Snapshot) string {
	emoji := "📚"
	switch {
	case snap.Scores.Score >= 90:
		emoji = "🏆"
	case snap.Scores.Score >= 70:
		emoji = "🎉"
	case snap.Scores.Score >= 50:
		emoji = "👍"
	}

	return fmt.Sprintf(
		"%s %s\n\n%s\n%s\n%s",
		md(emoji),
		bold("Quiz Finished!"),
		md(fmt.Sprintf("You scored %d out of %d", snap.CorrectCount, snap.Total)),
		md(fmt.Sprintf("Final Score: %d%%", snap.Scores.Score)),
		md(buildScoreBar(snap.Scores.Score, snap.Scores.MaxScore, scoreBarLength)),
	)
}

// renderHistory renders the latest results of a chat, newest first.
func renderHistory(results []entities.QuizResult) string {
	var sb strings.Builder

	sb.WriteString(bold("Latest results"))
	sb.WriteString("\n")

	for _, r := range results {
		sb.WriteString("\n")
		sb.WriteString(md(fmt.Sprintf(
			"%s  %d/%d  %d%%  (%s)",
			r.FinishedAt.UTC().Format("2006-01-02 15:04"),
			r.Correct,
			r.Total,
			r.Score,
			r.Duration().Round(time.Second),
		)))
	}

	return sb.String()
}

// optionLabel decorates an option with its reveal mark.
func optionLabel(o quiz.OptionView) string {
	switch o.Mark {
	case quiz.MarkCorrect:
		return "✅ " + o.Text
	case quiz.MarkWrong:
		return "❌ " + o.Text
	default:
		return o.Text
	}
}
