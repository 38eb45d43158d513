package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/study-agent/backend/internal/storage/sqlite"
	"github.com/study-agent/backend/pkg/logger"
)

type DocumentHandler struct {
	db *sqlite.Client
}

func NewDocumentHandler(db *sqlite.Client) *DocumentHandler {
	return &DocumentHandler{db: db}
}

func (h *DocumentHandler) List(c *fiber.Ctx) error {
	docs, err := h.db.ListDocuments()
	if err != nil {
		logger.Error("Failed to list documents", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list documents",
		})
	}

	out := make([]fiber.Map, 0, len(docs))
	for _, d := range docs {
		out = append(out, fiber.Map{
			"id":             d.ID,
			"filename":       d.Filename,
			"word_count":     d.WordCount,
			"sentence_count": d.SentenceCount,
			"uploaded_at":    d.UploadedAt.Unix(),
			"updated_at":     d.UpdatedAt.Unix(),
		})
	}

	return c.JSON(fiber.Map{"documents": out})
}

func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document id",
		})
	}

	doc, err := h.db.GetDocument(id)
	if err != nil {
		logger.Error("Failed to get document", zap.Int64("document_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get document",
		})
	}
	if doc == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Document not found",
		})
	}

	return c.JSON(fiber.Map{
		"id":             doc.ID,
		"filename":       doc.Filename,
		"content":        doc.Content,
		"word_count":     doc.WordCount,
		"sentence_count": doc.SentenceCount,
		"uploaded_at":    doc.UploadedAt.Unix(),
		"updated_at":     doc.UpdatedAt.Unix(),
	})
}

// Attempts returns the grading history for the document's latest quiz.
func (h *DocumentHandler) Attempts(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document id",
		})
	}

	q, err := h.db.GetLatestQuiz(id)
	if err != nil {
		logger.Error("Failed to get quiz", zap.Int64("document_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get quiz",
		})
	}
	if q == nil {
		return c.JSON(fiber.Map{"attempts": []fiber.Map{}})
	}

	attempts, err := h.db.GetQuizAttempts(q.ID)
	if err != nil {
		logger.Error("Failed to get attempts", zap.Int64("quiz_id", q.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get attempts",
		})
	}

	out := make([]fiber.Map, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, fiber.Map{
			"id":           a.ID,
			"quiz_id":      a.QuizID,
			"answers":      a.Answers,
			"score":        a.Score,
			"attempted_at": a.AttemptedAt.Unix(),
		})
	}

	return c.JSON(fiber.Map{"attempts": out})
}
