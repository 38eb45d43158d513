package ingestion

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/study-agent/backend/internal/extract"
	"github.com/study-agent/backend/internal/metrics"
	"github.com/study-agent/backend/internal/storage/models"
	"github.com/study-agent/backend/internal/storage/sqlite"
	"github.com/study-agent/backend/pkg/logger"
)

// Processor handles one document upload: pick an extractor, compute text
// statistics, and upsert the document row.
type Processor struct {
	db *sqlite.Client
}

func NewProcessor(db *sqlite.Client) *Processor {
	return &Processor{db: db}
}

// Process extracts text from the uploaded bytes and stores the document.
// Extraction is all-or-nothing; on failure nothing is persisted.
func (p *Processor) Process(filename string, data []byte) (*models.Document, error) {
	format, err := detectFormat(filename, data)
	if err != nil {
		return nil, err
	}

	logger.Info("Processing document",
		zap.String("filename", filename),
		zap.String("format", format),
	)

	start := time.Now()

	var text string
	switch format {
	case "pdf":
		text, err = extract.PDFText(data)
	case "html":
		text, err = extract.HTMLText(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("document contains no extractable text")
	}

	wordCount, sentenceCount := textStats(text)

	now := time.Now()
	doc := &models.Document{
		Filename:      filename,
		Content:       text,
		WordCount:     wordCount,
		SentenceCount: sentenceCount,
		UploadedAt:    now,
		UpdatedAt:     now,
	}

	if _, err := p.db.UpsertDocument(doc); err != nil {
		return nil, err
	}

	metrics.DocumentsProcessed.WithLabelValues(format).Inc()

	logger.Info("Document processed",
		zap.Int64("document_id", doc.ID),
		zap.String("filename", filename),
		zap.Int("words", wordCount),
		zap.Int("sentences", sentenceCount),
	)

	return doc, nil
}

func detectFormat(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		if !extract.IsPDF(data) {
			return "", fmt.Errorf("file %q does not look like a PDF", filename)
		}
		return "pdf", nil
	case ".html", ".htm":
		return "html", nil
	default:
		// No extension hint: trust the magic bytes.
		if extract.IsPDF(data) {
			return "pdf", nil
		}
		return "", fmt.Errorf("unsupported document type %q", filename)
	}
}

// textStats counts words and sentences. Sentence segmentation comes from
// prose; word counting is plain whitespace splitting.
func textStats(text string) (words, sentences int) {
	words = len(strings.Fields(text))

	doc, err := prose.NewDocument(text,
		prose.WithTokenization(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		logger.Warn("Sentence segmentation failed", zap.Error(err))
		return words, 0
	}

	return words, len(doc.Sentences())
}
