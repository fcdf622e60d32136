package telegram

import (
	"fmt"
	"strings"
)

const (
	progressBarLength = 10
	scoreBarLength    = 10
	maxStars          = 3
)

// buildProgressBar creates a text progress bar.
func buildProgressBar(current, total, length int) string {
	if total <= 0 {
		return "[" + strings.Repeat("░", length) + "]"
	}

	filled := current * length / total
	filled = clamp(filled, 0, length)

	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", length-filled) + "]"
}

// buildScoreBar draws the current score in green, the part still reachable in
// yellow and the part already lost in grey.
func buildScoreBar(score, maxScore, length int) string {
	green := clamp(cells(score, length), 0, length)
	reachable := clamp(cells(maxScore, length), green, length)

	return strings.Repeat("🟩", green) +
		strings.Repeat("🟨", reachable-green) +
		strings.Repeat("⬜", length-reachable)
}

// cells converts a percentage into bar cells, rounding half up.
func cells(percent, length int) int {
	return (2*percent*length + 100) / 200
}

// buildStars renders filled and empty stars for a difficulty level.
func buildStars(n int) string {
	n = clamp(n, 0, maxStars)
	return strings.Repeat("★", n) + strings.Repeat("☆", maxStars-n)
}

// formatTimer formats seconds as mm:ss.
func formatTimer(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
