package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/quizcraft/grammarquiz/internal/quiz"
	"github.com/quizcraft/grammarquiz/internal/store"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// apiError maps domain errors to status codes. Model-call failure kinds stay
// distinguishable to the client: 429 for quota, 502 for everything else the
// model did wrong.
func apiError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrRateLimited):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, quiz.ErrAPIFailure), errors.Is(err, quiz.ErrMalformedResponse):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, quiz.ErrAttemptNotFound), errors.Is(err, store.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, quiz.ErrAlreadyAnswered), errors.Is(err, quiz.ErrSubmitted),
		errors.Is(err, store.ErrConstraint):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, quiz.ErrBadIndex), errors.Is(err, quiz.ErrNotStarted),
		errors.Is(err, quiz.ErrNotReady), errors.Is(err, quiz.ErrNothingAnswered):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
