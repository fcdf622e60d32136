package quiz

// Scores holds the running score and its best and worst achievable final values,
// all in percent.
type Scores struct {
	Score    int // correct / attempts
	MaxScore int // final score if every remaining question is answered correctly
	MinScore int // final score if every remaining question is answered wrong
}

// ComputeScores calculates scores from the number of correct answers, attempts
// and total questions. Percentages are rounded half up.
func ComputeScores(correct, attempts, total int) Scores {
	if total <= 0 {
		return Scores{}
	}

	var s Scores
	if attempts > 0 {
		s.Score = percent(correct, attempts)
	}
	s.MaxScore = percent(correct+(total-attempts), total)
	s.MinScore = percent(correct, total)

	return s
}

// percent returns round(100*n/d) with halves rounded up, for n >= 0 and d > 0.
func percent(n, d int) int {
	return (200*n + d) / (2 * d)
}
