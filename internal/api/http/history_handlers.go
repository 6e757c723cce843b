package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quizcraft/grammarquiz/internal/store"
)

// GET /sessions?limit=50
func ListSessionsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
		sessions, err := st.ListSessions(r.Context(), limit)
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, sessions)
	}
}

// GET /sessions/{sessionID}/questions
func SessionQuestionsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseInt64(chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, "bad session id", http.StatusBadRequest)
			return
		}
		questions, err := st.SessionQuestions(r.Context(), id)
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, questions)
	}
}

// DELETE /sessions/{sessionID}
// Removes the session and its question records. user_stats keeps counting the
// deleted answers; history deletion never reconciles aggregates.
func DeleteSessionHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseInt64(chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, "bad session id", http.StatusBadRequest)
			return
		}
		if err := st.DeleteSession(r.Context(), id); err != nil {
			apiError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DELETE /sessions
func ClearHistoryHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.DeleteAllHistory(r.Context()); err != nil {
			apiError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
