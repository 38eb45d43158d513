package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/study-agent/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	c, err := NewClient(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	if err := c.InitSchema(); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	return c
}

func TestUpsertDocumentByFilename(t *testing.T) {
	c := newTestClient(t)
	now := time.Now()

	first, err := c.UpsertDocument(&models.Document{
		Filename:   "notes.pdf",
		Content:    "first upload",
		UploadedAt: now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second, err := c.UpsertDocument(&models.Document{
		Filename:   "notes.pdf",
		Content:    "second upload",
		UploadedAt: now,
		UpdatedAt:  now.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if first != second {
		t.Errorf("re-upload created a new row: %d != %d", first, second)
	}

	doc, err := c.GetDocument(first)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.Content != "second upload" {
		t.Errorf("content = %q, want %q", doc.Content, "second upload")
	}

	docs, err := c.ListDocuments()
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("document rows = %d, want 1", len(docs))
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	c := newTestClient(t)

	_, err := c.InsertSummary(&models.Summary{
		DocumentID:  999,
		Text:        "orphan",
		Style:       "academic",
		GeneratedAt: time.Now(),
	})
	if err == nil {
		t.Fatal("summary referencing a missing document was accepted")
	}

	_, err = c.InsertQuizAttempt(&models.QuizAttempt{
		QuizID:      999,
		Answers:     `{}`,
		Score:       0,
		AttemptedAt: time.Now(),
	})
	if err == nil {
		t.Fatal("attempt referencing a missing quiz was accepted")
	}
}

func TestGetDocumentMissing(t *testing.T) {
	c := newTestClient(t)

	doc, err := c.GetDocument(999)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc != nil {
		t.Errorf("got %+v, want nil", doc)
	}
}

func TestLatestSummaryOrdering(t *testing.T) {
	c := newTestClient(t)
	docID := mustUpsert(t, c, "notes.pdf")

	base := time.Now()
	insertSummary := func(text string, at time.Time) {
		t.Helper()
		_, err := c.InsertSummary(&models.Summary{
			DocumentID:  docID,
			Text:        text,
			Style:       "academic",
			GeneratedAt: at,
		})
		if err != nil {
			t.Fatalf("InsertSummary: %v", err)
		}
	}

	insertSummary("oldest", base.Add(-time.Hour))
	insertSummary("newest", base)
	insertSummary("middle", base.Add(-time.Minute))

	s, err := c.GetLatestSummary(docID)
	if err != nil {
		t.Fatalf("GetLatestSummary: %v", err)
	}
	if s.Text != "newest" {
		t.Errorf("latest summary = %q, want %q", s.Text, "newest")
	}
}

func TestLatestSummaryTieBreaksOnID(t *testing.T) {
	c := newTestClient(t)
	docID := mustUpsert(t, c, "notes.pdf")

	// Same generation timestamp: the later insertion must win.
	at := time.Now()
	for _, text := range []string{"first", "second"} {
		_, err := c.InsertSummary(&models.Summary{
			DocumentID:  docID,
			Text:        text,
			Style:       "academic",
			GeneratedAt: at,
		})
		if err != nil {
			t.Fatalf("InsertSummary: %v", err)
		}
	}

	s, err := c.GetLatestSummary(docID)
	if err != nil {
		t.Fatalf("GetLatestSummary: %v", err)
	}
	if s.Text != "second" {
		t.Errorf("latest summary = %q, want %q", s.Text, "second")
	}
}

func TestLatestQuizAndAttempts(t *testing.T) {
	c := newTestClient(t)
	docID := mustUpsert(t, c, "notes.pdf")

	if q, err := c.GetLatestQuiz(docID); err != nil || q != nil {
		t.Fatalf("GetLatestQuiz on empty table = (%+v, %v), want (nil, nil)", q, err)
	}

	base := time.Now()
	_, err := c.InsertQuiz(&models.Quiz{
		DocumentID:  docID,
		Data:        `{"mcqs":[],"mixed_questions":[]}`,
		GeneratedAt: base.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("InsertQuiz: %v", err)
	}
	newest, err := c.InsertQuiz(&models.Quiz{
		DocumentID:  docID,
		Data:        `{"mcqs":[],"mixed_questions":[]}`,
		GeneratedAt: base,
	})
	if err != nil {
		t.Fatalf("InsertQuiz: %v", err)
	}

	q, err := c.GetLatestQuiz(docID)
	if err != nil {
		t.Fatalf("GetLatestQuiz: %v", err)
	}
	if q.ID != newest {
		t.Errorf("latest quiz id = %d, want %d", q.ID, newest)
	}

	_, err = c.InsertQuizAttempt(&models.QuizAttempt{
		QuizID:      q.ID,
		Answers:     `{"mcq_0":"A. Paris"}`,
		Score:       1,
		AttemptedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertQuizAttempt: %v", err)
	}

	attempts, err := c.GetQuizAttempts(q.ID)
	if err != nil {
		t.Fatalf("GetQuizAttempts: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("attempts = %d, want 1", len(attempts))
	}
	if attempts[0].Score != 1 {
		t.Errorf("score = %d, want 1", attempts[0].Score)
	}
}

func mustUpsert(t *testing.T, c *Client, filename string) int64 {
	t.Helper()

	now := time.Now()
	id, err := c.UpsertDocument(&models.Document{
		Filename:   filename,
		Content:    "content",
		UploadedAt: now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	return id
}
