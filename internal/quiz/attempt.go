package quiz

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// State is the single explicit progress value of an attempt. It replaces the
// ad hoc mode/progress flags of a form-driven UI.
type State string

const (
	StateReady      State = "ready"       // questions generated, quiz not started
	StateInProgress State = "in_progress" // answering
	StateSubmitting State = "submitting"  // claimed for persistence, no further answers
	StateSubmitted  State = "submitted"   // summary available
)

var (
	ErrAttemptNotFound = errors.New("attempt not found")
	ErrNotStarted      = errors.New("quiz not started")
	ErrNotReady        = errors.New("quiz already started")
	ErrSubmitted       = errors.New("quiz already submitted")
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrBadIndex        = errors.New("question index out of range")
	ErrNothingAnswered = errors.New("no questions answered yet")
)

// Result is one graded answer held in memory until the attempt is persisted.
type Result struct {
	Question      string       `json:"question"`
	UserAnswer    string       `json:"user_answer"`
	CorrectAnswer string       `json:"correct_answer"`
	IsCorrect     bool         `json:"is_correct"`
	Score         int          `json:"score"`
	Feedback      string       `json:"feedback"`
	Explanation   string       `json:"explanation,omitempty"`
	QuestionType  QuestionType `json:"question_type"`
}

type Summary struct {
	TotalQuestions int     `json:"total_questions"`
	Answered       int     `json:"answered"`
	Skipped        int     `json:"skipped"`
	Correct        int     `json:"correct"`
	Wrong          int     `json:"wrong"`
	TotalScore     int     `json:"total_score"`
	AvgScore       float64 `json:"avg_score"`
	Accuracy       float64 `json:"accuracy"`
}

// Attempt is one quiz run: the generated questions, the FSM state, the cursor
// for back/next navigation, and the index->result map.
type Attempt struct {
	ID           string         `json:"id"`
	Topic        string         `json:"topic"`
	QuestionType QuestionType   `json:"question_type"`
	Difficulty   Difficulty     `json:"difficulty"`
	Questions    []Question     `json:"questions"`
	State        State          `json:"state"`
	Current      int            `json:"current"`
	Results      map[int]Result `json:"results"`
	SessionID    int64          `json:"session_id,omitempty"` // set once persisted
}

// Summarize aggregates the recorded results. Skipped questions are excluded
// from the accuracy and average-score denominators.
func (a Attempt) Summarize() Summary {
	s := Summary{
		TotalQuestions: len(a.Questions),
		Answered:       len(a.Results),
		Skipped:        len(a.Questions) - len(a.Results),
	}
	for _, r := range a.Results {
		s.TotalScore += r.Score
		if r.IsCorrect {
			s.Correct++
		} else {
			s.Wrong++
		}
	}
	if s.Answered > 0 {
		s.AvgScore = float64(s.TotalScore) / float64(s.Answered)
		s.Accuracy = float64(s.Correct) / float64(s.Answered) * 100
	}
	return s
}

// OrderedResults returns the recorded results in question order.
func (a Attempt) OrderedResults() []Result {
	out := make([]Result, 0, len(a.Results))
	for i := range a.Questions {
		if r, ok := a.Results[i]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Manager holds active attempts in memory. Persistence happens only on
// submission; an abandoned attempt leaves no rows behind.
type Manager struct {
	mu       sync.RWMutex
	attempts map[string]*Attempt
}

func NewManager() *Manager {
	return &Manager{attempts: map[string]*Attempt{}}
}

func (m *Manager) Create(topic string, qtype QuestionType, difficulty Difficulty, questions []Question) Attempt {
	a := &Attempt{
		ID:           uuid.NewString(),
		Topic:        topic,
		QuestionType: qtype,
		Difficulty:   difficulty,
		Questions:    questions,
		State:        StateReady,
		Results:      map[int]Result{},
	}
	m.mu.Lock()
	m.attempts[a.ID] = a
	m.mu.Unlock()
	return snapshot(a)
}

func (m *Manager) Get(id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return snapshot(a), nil
}

// Start moves ready -> in_progress. Starting is a manual confirmation step
// after generation.
func (m *Manager) Start(id string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	if a.State == StateSubmitted {
		return Attempt{}, ErrSubmitted
	}
	if a.State != StateReady {
		return Attempt{}, ErrNotReady
	}
	a.State = StateInProgress
	return snapshot(a), nil
}

// Navigate moves the cursor without answering. Recorded answers are kept.
func (m *Manager) Navigate(id string, target int) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	switch a.State {
	case StateReady:
		return Attempt{}, ErrNotStarted
	case StateSubmitting, StateSubmitted:
		return Attempt{}, ErrSubmitted
	}
	if target < 0 || target >= len(a.Questions) {
		return Attempt{}, ErrBadIndex
	}
	a.Current = target
	return snapshot(a), nil
}

// Record stores the graded result for one question and auto-advances the
// cursor unless it sits on the last question. The second return reports
// whether every question is now answered, which triggers submission.
func (m *Manager) Record(id string, index int, r Result) (Attempt, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, false, ErrAttemptNotFound
	}
	switch a.State {
	case StateSubmitting, StateSubmitted:
		return Attempt{}, false, ErrSubmitted
	case StateReady:
		return Attempt{}, false, ErrNotStarted
	}
	if index < 0 || index >= len(a.Questions) {
		return Attempt{}, false, ErrBadIndex
	}
	if _, dup := a.Results[index]; dup {
		return Attempt{}, false, ErrAlreadyAnswered
	}
	a.Results[index] = r
	if index < len(a.Questions)-1 {
		a.Current = index + 1
	}
	return snapshot(a), len(a.Results) == len(a.Questions), nil
}

// BeginSubmit claims the attempt for persistence, moving in_progress ->
// submitting under the lock. Exactly one caller wins; concurrent finishes see
// ErrSubmitted. The winner persists, then calls Submit, or AbortSubmit on a
// failed save.
func (m *Manager) BeginSubmit(id string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	switch a.State {
	case StateSubmitting, StateSubmitted:
		return Attempt{}, ErrSubmitted
	case StateReady:
		return Attempt{}, ErrNotStarted
	}
	if len(a.Results) == 0 {
		return Attempt{}, ErrNothingAnswered
	}
	a.State = StateSubmitting
	return snapshot(a), nil
}

// AbortSubmit releases a submitting claim so the attempt can be finished again.
func (m *Manager) AbortSubmit(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.attempts[id]; ok && a.State == StateSubmitting {
		a.State = StateInProgress
	}
}

// Submit moves the attempt to submitted and pins the persisted session id.
// Accepted from submitting (the BeginSubmit flow) or directly from
// in_progress.
func (m *Manager) Submit(id string, sessionID int64) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	switch a.State {
	case StateSubmitted:
		return Attempt{}, ErrSubmitted
	case StateReady:
		return Attempt{}, ErrNotStarted
	}
	if len(a.Results) == 0 {
		return Attempt{}, ErrNothingAnswered
	}
	a.State = StateSubmitted
	a.SessionID = sessionID
	return snapshot(a), nil
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.attempts, id)
	m.mu.Unlock()
}

func snapshot(a *Attempt) Attempt {
	cp := *a
	cp.Questions = append([]Question(nil), a.Questions...)
	cp.Results = make(map[int]Result, len(a.Results))
	for k, v := range a.Results {
		cp.Results[k] = v
	}
	return cp
}
