package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quizcraft/grammarquiz/internal/store"
)

// GET /stats/overall
func OverallStatsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := st.OverallStats(r.Context())
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, stats)
	}
}

// GET /stats/topics
func TopicStatsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := st.TopicStats(r.Context())
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, stats)
	}
}

// GET /stats/topics/{topic}/history?limit=20
func TopicHistoryHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := chi.URLParam(r, "topic")
		limit := parseIntDefault(r.URL.Query().Get("limit"), 20)
		history, err := st.TopicHistory(r.Context(), topic, limit)
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, history)
	}
}
