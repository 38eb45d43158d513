package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/study-agent/backend/internal/storage/models"
	"github.com/study-agent/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	// DSN parameters apply to every pooled connection; a plain PRAGMA Exec
	// would only configure the one connection that ran it.
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT UNIQUE NOT NULL,
		content TEXT NOT NULL,
		word_count INTEGER NOT NULL DEFAULT 0,
		sentence_count INTEGER NOT NULL DEFAULT 0,
		uploaded_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_filename ON documents(filename);

	CREATE TABLE IF NOT EXISTS summaries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id INTEGER NOT NULL,
		summary_text TEXT NOT NULL,
		style TEXT NOT NULL DEFAULT 'academic',
		generated_at INTEGER NOT NULL,
		FOREIGN KEY (document_id) REFERENCES documents(id)
	);
	CREATE INDEX IF NOT EXISTS idx_summaries_document ON summaries(document_id);

	CREATE TABLE IF NOT EXISTS quizzes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id INTEGER NOT NULL,
		quiz_data TEXT NOT NULL,
		generated_at INTEGER NOT NULL,
		FOREIGN KEY (document_id) REFERENCES documents(id)
	);
	CREATE INDEX IF NOT EXISTS idx_quizzes_document ON quizzes(document_id);

	CREATE TABLE IF NOT EXISTS quiz_attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		quiz_id INTEGER NOT NULL,
		answers TEXT NOT NULL,
		score INTEGER NOT NULL,
		attempted_at INTEGER NOT NULL,
		FOREIGN KEY (quiz_id) REFERENCES quizzes(id)
	);
	CREATE INDEX IF NOT EXISTS idx_attempts_quiz ON quiz_attempts(quiz_id);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// UpsertDocument inserts the document or, when the filename already exists,
// overwrites its content and stats under the existing id. The surviving row
// id is returned either way.
func (c *Client) UpsertDocument(doc *models.Document) (int64, error) {
	query := `
		INSERT INTO documents (filename, content, word_count, sentence_count, uploaded_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET
			content = excluded.content,
			word_count = excluded.word_count,
			sentence_count = excluded.sentence_count,
			updated_at = excluded.updated_at
	`

	_, err := c.db.Exec(
		query,
		doc.Filename,
		doc.Content,
		doc.WordCount,
		doc.SentenceCount,
		doc.UploadedAt.Unix(),
		doc.UpdatedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert document: %w", err)
	}

	var id int64
	err = c.db.QueryRow(`SELECT id FROM documents WHERE filename = ?`, doc.Filename).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve document id: %w", err)
	}

	doc.ID = id
	logger.Debug("Document upserted", zap.Int64("document_id", id), zap.String("filename", doc.Filename))
	return id, nil
}

func (c *Client) GetDocument(id int64) (*models.Document, error) {
	query := `SELECT id, filename, content, word_count, sentence_count, uploaded_at, updated_at FROM documents WHERE id = ?`

	var doc models.Document
	var uploadedAt, updatedAt int64

	err := c.db.QueryRow(query, id).Scan(
		&doc.ID,
		&doc.Filename,
		&doc.Content,
		&doc.WordCount,
		&doc.SentenceCount,
		&uploadedAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.UploadedAt = time.Unix(uploadedAt, 0)
	doc.UpdatedAt = time.Unix(updatedAt, 0)
	return &doc, nil
}

func (c *Client) GetDocumentByFilename(filename string) (*models.Document, error) {
	var id int64
	err := c.db.QueryRow(`SELECT id FROM documents WHERE filename = ?`, filename).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document by filename: %w", err)
	}
	return c.GetDocument(id)
}

func (c *Client) ListDocuments() ([]models.Document, error) {
	query := `SELECT id, filename, word_count, sentence_count, uploaded_at, updated_at FROM documents ORDER BY updated_at DESC`

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		var uploadedAt, updatedAt int64

		err := rows.Scan(&d.ID, &d.Filename, &d.WordCount, &d.SentenceCount, &uploadedAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		d.UploadedAt = time.Unix(uploadedAt, 0)
		d.UpdatedAt = time.Unix(updatedAt, 0)
		docs = append(docs, d)
	}

	return docs, rows.Err()
}

func (c *Client) InsertSummary(s *models.Summary) (int64, error) {
	query := `INSERT INTO summaries (document_id, summary_text, style, generated_at) VALUES (?, ?, ?, ?)`

	res, err := c.db.Exec(query, s.DocumentID, s.Text, s.Style, s.GeneratedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert summary: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read summary id: %w", err)
	}

	s.ID = id
	logger.Debug("Summary inserted", zap.Int64("summary_id", id), zap.Int64("document_id", s.DocumentID))
	return id, nil
}

// GetLatestSummary returns the most recent summary for the document, or nil
// when none exists. Ties on generated_at resolve to the higher insertion id.
func (c *Client) GetLatestSummary(documentID int64) (*models.Summary, error) {
	query := `
		SELECT id, document_id, summary_text, style, generated_at
		FROM summaries
		WHERE document_id = ?
		ORDER BY generated_at DESC, id DESC
		LIMIT 1
	`

	var s models.Summary
	var generatedAt int64

	err := c.db.QueryRow(query, documentID).Scan(&s.ID, &s.DocumentID, &s.Text, &s.Style, &generatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest summary: %w", err)
	}

	s.GeneratedAt = time.Unix(generatedAt, 0)
	return &s, nil
}

func (c *Client) InsertQuiz(q *models.Quiz) (int64, error) {
	query := `INSERT INTO quizzes (document_id, quiz_data, generated_at) VALUES (?, ?, ?)`

	res, err := c.db.Exec(query, q.DocumentID, q.Data, q.GeneratedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert quiz: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read quiz id: %w", err)
	}

	q.ID = id
	logger.Debug("Quiz inserted", zap.Int64("quiz_id", id), zap.Int64("document_id", q.DocumentID))
	return id, nil
}

// GetLatestQuiz returns the most recent quiz for the document, or nil when
// none exists. Same tie-break as GetLatestSummary.
func (c *Client) GetLatestQuiz(documentID int64) (*models.Quiz, error) {
	query := `
		SELECT id, document_id, quiz_data, generated_at
		FROM quizzes
		WHERE document_id = ?
		ORDER BY generated_at DESC, id DESC
		LIMIT 1
	`

	var q models.Quiz
	var generatedAt int64

	err := c.db.QueryRow(query, documentID).Scan(&q.ID, &q.DocumentID, &q.Data, &generatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest quiz: %w", err)
	}

	q.GeneratedAt = time.Unix(generatedAt, 0)
	return &q, nil
}

func (c *Client) InsertQuizAttempt(a *models.QuizAttempt) (int64, error) {
	query := `INSERT INTO quiz_attempts (quiz_id, answers, score, attempted_at) VALUES (?, ?, ?, ?)`

	res, err := c.db.Exec(query, a.QuizID, a.Answers, a.Score, a.AttemptedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert quiz attempt: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read attempt id: %w", err)
	}

	a.ID = id
	logger.Info("Quiz attempt recorded",
		zap.Int64("attempt_id", id),
		zap.Int64("quiz_id", a.QuizID),
		zap.Int("score", a.Score),
	)
	return id, nil
}

func (c *Client) GetQuizAttempts(quizID int64) ([]models.QuizAttempt, error) {
	query := `
		SELECT id, quiz_id, answers, score, attempted_at
		FROM quiz_attempts
		WHERE quiz_id = ?
		ORDER BY attempted_at DESC, id DESC
	`

	rows, err := c.db.Query(query, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.QuizAttempt
	for rows.Next() {
		var a models.QuizAttempt
		var attemptedAt int64

		err := rows.Scan(&a.ID, &a.QuizID, &a.Answers, &a.Score, &attemptedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		a.AttemptedAt = time.Unix(attemptedAt, 0)
		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}
