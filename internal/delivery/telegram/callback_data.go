package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionQuiz = "quiz"
)

// Quiz sub-actions.
const (
	quizStart   = "start"
	quizAnswer  = "answer"
	quizNext    = "next"
	quizRestart = "restart"
	quizNoop    = "noop"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// subAction returns the first parameter or an empty string.
func (cd callbackData) subAction() string {
	if len(cd.Params) == 0 {
		return ""
	}
	return cd.Params[0]
}

// intParam parses the parameter at index i as a non-negative integer.
func (cd callbackData) intParam(i int) (int, bool) {
	if i < 0 || i >= len(cd.Params) {
		return 0, false
	}
	n, err := strconv.Atoi(cd.Params[i])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// buildQuizAnswerCallback builds callback data for picking option of question number.
func buildQuizAnswerCallback(number, option int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizAnswer, strconv.Itoa(number), strconv.Itoa(option)},
	}.encode()
}

// buildQuizStartCallback builds callback data for starting a new quiz.
func buildQuizStartCallback() string {
	return callbackData{Action: actionQuiz, Params: []string{quizStart}}.encode()
}

// buildQuizNextCallback builds callback data for moving to the next question.
func buildQuizNextCallback() string {
	return callbackData{Action: actionQuiz, Params: []string{quizNext}}.encode()
}

// buildQuizRestartCallback builds callback data for restarting the quiz.
func buildQuizRestartCallback() string {
	return callbackData{Action: actionQuiz, Params: []string{quizRestart}}.encode()
}

// buildQuizNoopCallback is used by buttons that only display state.
func buildQuizNoopCallback() string {
	return callbackData{Action: actionQuiz, Params: []string{quizNoop}}.encode()
}
