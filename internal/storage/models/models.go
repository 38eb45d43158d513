package models

import "time"

// Document is one uploaded study document. Filename is unique; re-uploading
// the same filename overwrites Content under the existing id.
type Document struct {
	ID            int64
	Filename      string
	Content       string
	WordCount     int
	SentenceCount int
	UploadedAt    time.Time
	UpdatedAt     time.Time
}

// Summary is an append-only generation result; the current summary for a
// document is structurally the most recent row.
type Summary struct {
	ID          int64
	DocumentID  int64
	Text        string
	Style       string
	GeneratedAt time.Time
}

// Quiz holds the generated question set as a JSON text column.
type Quiz struct {
	ID          int64
	DocumentID  int64
	Data        string
	GeneratedAt time.Time
}

// QuizAttempt records one grading action: the full submitted answer map
// (JSON) and the computed score.
type QuizAttempt struct {
	ID          int64
	QuizID      int64
	Answers     string
	Score       int
	AttemptedAt time.Time
}
