package http

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/quizcraft/grammarquiz/internal/quiz"
	"github.com/quizcraft/grammarquiz/internal/storage"
	"github.com/quizcraft/grammarquiz/internal/store"
)

// GET /meta
func MetaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"topics":          quiz.Topics,
			"tense_subtopics": quiz.TenseSubtopics,
			"question_types":  quiz.QuestionTypes,
			"difficulties":    quiz.Difficulties,
			"default_count":   quiz.DefaultQuestionCount,
		})
	}
}

type generateReq struct {
	Topic        string            `json:"topic"`
	Tense        string            `json:"tense,omitempty"` // refines "Tenses"
	QuestionType quiz.QuestionType `json:"question_type"`
	Difficulty   quiz.Difficulty   `json:"difficulty"`
	Count        int               `json:"count,omitempty"`
}

// POST /quizzes
func GenerateQuizHandler(mgr *quiz.Manager, gen *quiz.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		topic := strings.TrimSpace(req.Topic)
		if topic == "" {
			http.Error(w, "topic required", http.StatusBadRequest)
			return
		}
		if topic == "Tenses" {
			if t := strings.TrimSpace(req.Tense); t != "" {
				topic = t + " Tense"
			} else {
				topic = "Tenses (General)"
			}
		}
		if !quiz.ValidQuestionType(req.QuestionType) {
			http.Error(w, "unknown question_type", http.StatusBadRequest)
			return
		}
		// Generation is only enabled once a difficulty is chosen.
		if !quiz.ValidDifficulty(req.Difficulty) {
			http.Error(w, "difficulty required", http.StatusBadRequest)
			return
		}

		questions, err := gen.Generate(r.Context(), topic, req.QuestionType, req.Difficulty, req.Count)
		if err != nil {
			apiError(w, err)
			return
		}
		a := mgr.Create(topic, req.QuestionType, req.Difficulty, questions)
		writeJSON(w, viewAttempt(a))
	}
}

// GET /quizzes/{attemptID}
func GetQuizHandler(mgr *quiz.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := mgr.Get(chi.URLParam(r, "attemptID"))
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, viewAttempt(a))
	}
}

// POST /quizzes/{attemptID}/start
func StartQuizHandler(mgr *quiz.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := mgr.Start(chi.URLParam(r, "attemptID"))
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, viewAttempt(a))
	}
}

// POST /quizzes/{attemptID}/navigate {"index": n}
func NavigateHandler(mgr *quiz.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Index int `json:"index"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		a, err := mgr.Navigate(chi.URLParam(r, "attemptID"), req.Index)
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, viewAttempt(a))
	}
}

type answerReq struct {
	Index    int    `json:"index"`
	Answer   string `json:"answer,omitempty"`
	ImageKey string `json:"image_key,omitempty"` // uploaded via /assets
}

// POST /quizzes/{attemptID}/answers
// Text and image answers are mutually exclusive. Answering the last
// unanswered question persists the attempt, then transitions it to submitted.
func AnswerHandler(mgr *quiz.Manager, eval *quiz.Evaluator, st store.Store, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		var req answerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		hasText := strings.TrimSpace(req.Answer) != ""
		hasImage := req.ImageKey != ""
		if hasText == hasImage {
			http.Error(w, "provide exactly one of answer or image_key", http.StatusBadRequest)
			return
		}

		a, err := mgr.Get(attemptID)
		if err != nil {
			apiError(w, err)
			return
		}
		if a.State != quiz.StateInProgress {
			if a.State == quiz.StateReady {
				apiError(w, quiz.ErrNotStarted)
			} else {
				apiError(w, quiz.ErrSubmitted)
			}
			return
		}
		if req.Index < 0 || req.Index >= len(a.Questions) {
			apiError(w, quiz.ErrBadIndex)
			return
		}
		if _, dup := a.Results[req.Index]; dup {
			apiError(w, quiz.ErrAlreadyAnswered)
			return
		}
		q := a.Questions[req.Index]

		var ev quiz.Evaluation
		userAnswer := req.Answer
		if hasImage {
			img, mimeType, err := readBlob(blobs, req.ImageKey)
			if err != nil {
				http.Error(w, "image not found: "+err.Error(), http.StatusBadRequest)
				return
			}
			ev, err = eval.EvaluateImage(r.Context(), q, img, mimeType)
			if err != nil {
				apiError(w, err)
				return
			}
			userAnswer = ev.ExtractedAnswer
			if userAnswer == "" {
				userAnswer = "Image uploaded"
			}
		} else {
			ev, err = eval.EvaluateText(r.Context(), q, req.Answer)
			if err != nil {
				apiError(w, err)
				return
			}
		}

		a, allAnswered, err := mgr.Record(attemptID, req.Index, quiz.Result{
			Question:      q.Question,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     ev.IsCorrect,
			Score:         ev.Score,
			Feedback:      ev.Feedback,
			Explanation:   q.Explanation,
			QuestionType:  q.Type,
		})
		if err != nil {
			apiError(w, err)
			return
		}
		if allAnswered {
			a, err = persistAndSubmit(r, mgr, st, attemptID)
			if err != nil {
				apiError(w, err)
				return
			}
		}
		writeJSON(w, viewAttempt(a))
	}
}

// POST /quizzes/{attemptID}/finish
// Early finish: remaining unanswered questions are skipped and never persisted.
func FinishQuizHandler(mgr *quiz.Manager, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := persistAndSubmit(r, mgr, st, chi.URLParam(r, "attemptID"))
		if err != nil {
			apiError(w, err)
			return
		}
		writeJSON(w, viewAttempt(a))
	}
}

// DELETE /quizzes/{attemptID} discards an in-memory attempt without saving.
func DiscardQuizHandler(mgr *quiz.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mgr.Delete(chi.URLParam(r, "attemptID"))
		w.WriteHeader(http.StatusNoContent)
	}
}

// persistAndSubmit claims the attempt, saves all answered questions, the
// session row and the final score in one transaction, then flips the attempt
// to submitted. The claim makes concurrent finishes persist exactly once; a
// failed save releases it so the attempt can be finished again.
func persistAndSubmit(r *http.Request, mgr *quiz.Manager, st store.Store, attemptID string) (quiz.Attempt, error) {
	a, err := mgr.BeginSubmit(attemptID)
	if err != nil {
		return quiz.Attempt{}, err
	}

	answers := make([]store.AnswerInput, 0, len(a.Results))
	for _, res := range a.OrderedResults() {
		answers = append(answers, store.AnswerInput{
			Topic:         a.Topic,
			Question:      res.Question,
			UserAnswer:    res.UserAnswer,
			CorrectAnswer: res.CorrectAnswer,
			IsCorrect:     res.IsCorrect,
			Score:         res.Score,
			Feedback:      res.Feedback,
			QuestionType:  string(res.QuestionType),
		})
	}
	sessionID, err := st.SaveAttempt(r.Context(), a.Topic, len(a.Questions), answers)
	if err != nil {
		mgr.AbortSubmit(attemptID)
		return quiz.Attempt{}, err
	}
	return mgr.Submit(attemptID, sessionID)
}

func readBlob(blobs storage.BlobStore, key string) ([]byte, string, error) {
	rc, err := blobs.Get(key)
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", err
	}
	return data, http.DetectContentType(data), nil
}

// --- attempt view ---

type questionView struct {
	Question      string            `json:"question"`
	Type          quiz.QuestionType `json:"type"`
	Options       []string          `json:"options,omitempty"`
	Difficulty    quiz.Difficulty   `json:"difficulty,omitempty"`
	CorrectAnswer string            `json:"correct_answer,omitempty"`
	Explanation   string            `json:"explanation,omitempty"`
}

type attemptView struct {
	ID             string              `json:"id"`
	Topic          string              `json:"topic"`
	QuestionType   quiz.QuestionType   `json:"question_type"`
	Difficulty     quiz.Difficulty     `json:"difficulty"`
	State          quiz.State          `json:"state"`
	Current        int                 `json:"current"`
	TotalQuestions int                 `json:"total_questions"`
	AnsweredCount  int                 `json:"answered_count"`
	Answered       []int               `json:"answered"`
	Questions      []questionView      `json:"questions"`
	Results        map[int]quiz.Result `json:"results,omitempty"`
	Summary        *quiz.Summary       `json:"summary,omitempty"`
	SessionID      int64               `json:"session_id,omitempty"`
}

// viewAttempt hides correct answers, explanations and per-question results
// until the attempt is submitted.
func viewAttempt(a quiz.Attempt) attemptView {
	v := attemptView{
		ID:             a.ID,
		Topic:          a.Topic,
		QuestionType:   a.QuestionType,
		Difficulty:     a.Difficulty,
		State:          a.State,
		Current:        a.Current,
		TotalQuestions: len(a.Questions),
		AnsweredCount:  len(a.Results),
		Answered:       answeredIndexes(a),
		SessionID:      a.SessionID,
	}
	submitted := a.State == quiz.StateSubmitted
	for _, q := range a.Questions {
		qv := questionView{
			Question:   q.Question,
			Type:       q.Type,
			Options:    q.Options,
			Difficulty: q.Difficulty,
		}
		if submitted {
			qv.CorrectAnswer = q.CorrectAnswer
			qv.Explanation = q.Explanation
		}
		v.Questions = append(v.Questions, qv)
	}
	if submitted {
		v.Results = a.Results
		s := a.Summarize()
		v.Summary = &s
	}
	return v
}

func answeredIndexes(a quiz.Attempt) []int {
	out := make([]int, 0, len(a.Results))
	for i := range a.Results {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
