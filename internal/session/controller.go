package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/study-agent/backend/internal/metrics"
	"github.com/study-agent/backend/internal/quiz"
	"github.com/study-agent/backend/internal/storage/models"
	"github.com/study-agent/backend/pkg/logger"
)

// Ingestor turns an upload into a stored document.
type Ingestor interface {
	Process(filename string, data []byte) (*models.Document, error)
}

// Store is the slice of the persistence layer the controller needs.
type Store interface {
	GetLatestSummary(documentID int64) (*models.Summary, error)
	InsertSummary(s *models.Summary) (int64, error)
	GetLatestQuiz(documentID int64) (*models.Quiz, error)
	InsertQuiz(q *models.Quiz) (int64, error)
	InsertQuizAttempt(a *models.QuizAttempt) (int64, error)
}

// Generator produces summaries and quizzes from document text.
type Generator interface {
	Summarize(ctx context.Context, text, style string) (string, error)
	GenerateQuiz(ctx context.Context, text string) (*quiz.Data, error)
}

// Cache is the optional read-through cache; a nil Cache disables caching.
// Summary entries carry the style they were generated under, so a hit never
// relabels cached text with the requested style.
type Cache interface {
	GetSummary(ctx context.Context, documentID int64) (text, style string, ok bool, err error)
	SetSummary(ctx context.Context, documentID int64, text, style string) error
	GetQuiz(ctx context.Context, documentID int64) (string, bool, error)
	SetQuiz(ctx context.Context, documentID int64, data string) error
	Invalidate(ctx context.Context, documentID int64) error
}

const DefaultSummaryStyle = "academic"

// Controller orchestrates the study flow: open a session around a document,
// generate a summary, generate a quiz (summary required first), collect
// answers, grade, and record the attempt.
type Controller struct {
	ingestor  Ingestor
	store     Store
	generator Generator
	cache     Cache
	sessions  *Manager
}

func NewController(ingestor Ingestor, store Store, generator Generator, cache Cache, sessions *Manager) *Controller {
	return &Controller{
		ingestor:  ingestor,
		store:     store,
		generator: generator,
		cache:     cache,
		sessions:  sessions,
	}
}

// Open ingests the uploaded document and starts a session around it. Any
// previously stored summary or quiz for the document is loaded, so the
// session resumes where earlier work left off: an existing quiz puts the
// session straight into quiz_presented.
func (c *Controller) Open(ctx context.Context, filename string, data []byte) (*View, error) {
	doc, err := c.ingestor.Process(filename, data)
	if err != nil {
		return nil, err
	}

	// Re-upload may have changed the text; cached generation output for
	// this document can no longer be trusted.
	if c.cache != nil {
		if err := c.cache.Invalidate(ctx, doc.ID); err != nil {
			logger.Warn("Cache invalidation failed", zap.Error(err))
		}
	}

	s := newSession(doc.ID, doc.Filename, doc.Content)

	if summary, err := c.store.GetLatestSummary(doc.ID); err != nil {
		logger.Warn("Failed to load stored summary", zap.Error(err))
	} else if summary != nil {
		s.Summary = summary.Text
		s.SummaryStyle = summary.Style
	}

	if stored, err := c.store.GetLatestQuiz(doc.ID); err != nil {
		logger.Warn("Failed to load stored quiz", zap.Error(err))
	} else if stored != nil {
		parsed, err := quiz.Parse(stored.Data)
		if err != nil {
			logger.Warn("Stored quiz failed validation, ignoring",
				zap.Int64("quiz_id", stored.ID),
				zap.Error(err),
			)
		} else {
			s.Quiz = parsed
			s.State = StateQuizPresented
		}
	}

	c.sessions.add(s)

	logger.Info("Session opened",
		zap.String("session_id", s.ID),
		zap.Int64("document_id", doc.ID),
		zap.String("state", string(s.State)),
	)

	return s.view(), nil
}

// Get returns a snapshot of the session.
func (c *Controller) Get(sessionID string) (*View, error) {
	s, err := c.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

// GenerateSummary returns the session's current summary, generating and
// persisting a new one when none exists or force is set.
func (c *Controller) GenerateSummary(ctx context.Context, sessionID, style string, force bool) (*View, error) {
	s, err := c.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Text == "" {
		return nil, ErrNoDocument
	}
	if style == "" {
		style = DefaultSummaryStyle
	}

	if s.Summary != "" && !force {
		return s.view(), nil
	}

	if !force && c.cache != nil {
		if cached, cachedStyle, ok, err := c.cache.GetSummary(ctx, s.DocumentID); err != nil {
			logger.Warn("Summary cache read failed", zap.Error(err))
		} else if ok {
			metrics.CacheHits.WithLabelValues("summary").Inc()
			s.Summary = cached
			s.SummaryStyle = cachedStyle
			return s.view(), nil
		} else {
			metrics.CacheMisses.WithLabelValues("summary").Inc()
		}
	}

	start := time.Now()
	summary, err := c.generator.Summarize(ctx, s.Text, style)
	metrics.GenerationDuration.WithLabelValues("summary").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("summary", "error").Inc()
		return nil, fmt.Errorf("summary generation failed: %w", err)
	}
	metrics.GenerationTotal.WithLabelValues("summary", "ok").Inc()

	if _, err := c.store.InsertSummary(&models.Summary{
		DocumentID:  s.DocumentID,
		Text:        summary,
		Style:       style,
		GeneratedAt: time.Now(),
	}); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.SetSummary(ctx, s.DocumentID, summary, style); err != nil {
			logger.Warn("Summary cache write failed", zap.Error(err))
		}
	}

	s.Summary = summary
	s.SummaryStyle = style
	return s.view(), nil
}

// GenerateQuiz creates a quiz for the session's document and moves the
// session to quiz_presented. A summary must exist first; that precondition
// belongs to the controller, not the generator.
func (c *Controller) GenerateQuiz(ctx context.Context, sessionID string) (*View, error) {
	s, err := c.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Text == "" {
		return nil, ErrNoDocument
	}
	if s.Summary == "" {
		return nil, ErrSummaryRequired
	}
	if s.State == StateQuizSubmitted {
		return nil, ErrAlreadySubmitted
	}

	if s.Quiz == nil && c.cache != nil {
		if cached, ok, err := c.cache.GetQuiz(ctx, s.DocumentID); err != nil {
			logger.Warn("Quiz cache read failed", zap.Error(err))
		} else if ok {
			if parsed, err := quiz.Parse(cached); err != nil {
				logger.Warn("Cached quiz failed validation, regenerating", zap.Error(err))
			} else {
				metrics.CacheHits.WithLabelValues("quiz").Inc()
				s.Quiz = parsed
				s.Answers = make(map[string]string)
				s.Result = nil
				s.State = StateQuizPresented
				return s.view(), nil
			}
		} else {
			metrics.CacheMisses.WithLabelValues("quiz").Inc()
		}
	}

	start := time.Now()
	data, err := c.generator.GenerateQuiz(ctx, s.Text)
	metrics.GenerationDuration.WithLabelValues("quiz").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("quiz", "error").Inc()
		return nil, fmt.Errorf("quiz generation failed: %w", err)
	}
	metrics.GenerationTotal.WithLabelValues("quiz", "ok").Inc()

	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode quiz data: %w", err)
	}

	if _, err := c.store.InsertQuiz(&models.Quiz{
		DocumentID:  s.DocumentID,
		Data:        string(encoded),
		GeneratedAt: time.Now(),
	}); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.SetQuiz(ctx, s.DocumentID, string(encoded)); err != nil {
			logger.Warn("Quiz cache write failed", zap.Error(err))
		}
	}

	s.Quiz = data
	s.Answers = make(map[string]string)
	s.Result = nil
	s.State = StateQuizPresented

	logger.Info("Quiz presented",
		zap.String("session_id", s.ID),
		zap.Int("questions", data.Total()),
	)

	return s.view(), nil
}

// RecordAnswer stores one answer. Only legal while the quiz is presented;
// unanswered questions are permitted and grade as incorrect.
func (c *Controller) RecordAnswer(sessionID, key, answer string) error {
	s, err := c.sessions.Get(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.State {
	case StateNoQuiz:
		return ErrNoQuiz
	case StateQuizSubmitted:
		return ErrAlreadySubmitted
	}

	s.Answers[key] = answer
	return nil
}

// Submit grades the collected answers, persists the attempt against the
// most recently stored quiz for the document, and moves the session to its
// terminal quiz_submitted state. When no stored quiz row can be found the
// attempt is not persisted and grading still succeeds.
func (c *Controller) Submit(ctx context.Context, sessionID string) (*View, error) {
	s, err := c.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.State {
	case StateNoQuiz:
		return nil, ErrNoQuiz
	case StateQuizSubmitted:
		return nil, ErrAlreadySubmitted
	}

	result := quiz.Grade(s.Quiz, s.Answers)

	metrics.QuizAttemptsTotal.Inc()
	if result.Total > 0 {
		metrics.QuizScoreRatio.Observe(float64(result.Score) / float64(result.Total))
	}

	stored, err := c.store.GetLatestQuiz(s.DocumentID)
	if err != nil {
		logger.Warn("Failed to look up quiz for attempt", zap.Error(err))
	}
	if stored == nil {
		logger.Warn("No stored quiz found, attempt not persisted",
			zap.String("session_id", s.ID),
			zap.Int64("document_id", s.DocumentID),
		)
	} else {
		answers, err := json.Marshal(s.Answers)
		if err != nil {
			return nil, fmt.Errorf("failed to encode answers: %w", err)
		}
		if _, err := c.store.InsertQuizAttempt(&models.QuizAttempt{
			QuizID:      stored.ID,
			Answers:     string(answers),
			Score:       result.Score,
			AttemptedAt: time.Now(),
		}); err != nil {
			return nil, err
		}
	}

	s.Result = result
	s.State = StateQuizSubmitted

	logger.Info("Quiz submitted",
		zap.String("session_id", s.ID),
		zap.Int("score", result.Score),
		zap.Int("total", result.Total),
	)

	return s.view(), nil
}

// Reset re-enters quiz_presented with cleared answers, allowing a second
// run at the same quiz.
func (c *Controller) Reset(sessionID string) (*View, error) {
	s, err := c.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Quiz == nil {
		return nil, ErrNoQuiz
	}

	s.Answers = make(map[string]string)
	s.Result = nil
	s.State = StateQuizPresented

	return s.view(), nil
}
