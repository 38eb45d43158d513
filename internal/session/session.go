// Package session holds the per-user study lifecycle: the active document,
// its current summary and quiz, collected answers, and the quiz state
// machine. Everything lives in an explicit context struct keyed by
// session id.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/study-agent/backend/internal/quiz"
)

// State is the quiz lifecycle state of a session.
type State string

const (
	// StateNoQuiz: a document is open but no quiz exists yet.
	StateNoQuiz State = "no_quiz"
	// StateQuizPresented: a quiz exists and answers may be recorded.
	StateQuizPresented State = "quiz_presented"
	// StateQuizSubmitted: answers were graded; terminal until Reset or a
	// fresh document.
	StateQuizSubmitted State = "quiz_submitted"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrNoDocument       = errors.New("session has no document text")
	ErrSummaryRequired  = errors.New("a summary must exist before generating a quiz")
	ErrNoQuiz           = errors.New("session has no quiz")
	ErrAlreadySubmitted = errors.New("quiz already submitted")
	ErrNotSubmitted     = errors.New("quiz has not been submitted")
)

// Session is the explicit session-context struct. All mutation goes through
// Controller methods, which hold mu.
type Session struct {
	mu sync.Mutex

	ID         string
	DocumentID int64
	Filename   string
	Text       string

	Summary      string
	SummaryStyle string

	Quiz    *quiz.Data
	Answers map[string]string
	State   State

	Result *quiz.Result

	CreatedAt time.Time
}

func newSession(documentID int64, filename, text string) *Session {
	return &Session{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Filename:   filename,
		Text:       text,
		Answers:    make(map[string]string),
		State:      StateNoQuiz,
		CreatedAt:  time.Now(),
	}
}

// Manager is the in-memory session registry.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

func (m *Manager) add(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// View is the JSON-safe snapshot of a session returned by the API.
type View struct {
	ID           string            `json:"id"`
	DocumentID   int64             `json:"document_id"`
	Filename     string            `json:"filename"`
	State        State             `json:"state"`
	HasSummary   bool              `json:"has_summary"`
	Summary      string            `json:"summary,omitempty"`
	SummaryStyle string            `json:"summary_style,omitempty"`
	Quiz         *quiz.Data        `json:"quiz,omitempty"`
	Answers      map[string]string `json:"answers,omitempty"`
	Result       *quiz.Result      `json:"result,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

func (s *Session) view() *View {
	answers := make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		answers[k] = v
	}

	return &View{
		ID:           s.ID,
		DocumentID:   s.DocumentID,
		Filename:     s.Filename,
		State:        s.State,
		HasSummary:   s.Summary != "",
		Summary:      s.Summary,
		SummaryStyle: s.SummaryStyle,
		Quiz:         s.Quiz,
		Answers:      answers,
		Result:       s.Result,
		CreatedAt:    s.CreatedAt,
	}
}
