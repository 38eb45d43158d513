package handlers

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/study-agent/backend/internal/session"
	"github.com/study-agent/backend/pkg/logger"
)

type SessionHandler struct {
	controller *session.Controller
}

func NewSessionHandler(controller *session.Controller) *SessionHandler {
	return &SessionHandler{controller: controller}
}

// Open handles the multipart document upload and starts a study session.
func (h *SessionHandler) Open(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A document file is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Failed to read uploaded file", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}

	view, err := h.controller.Open(c.Context(), fileHeader.Filename, data)
	if err != nil {
		logger.Error("Failed to open session",
			zap.String("filename", fileHeader.Filename),
			zap.Error(err),
		)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Failed to extract text from the document",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *SessionHandler) Get(c *fiber.Ctx) error {
	view, err := h.controller.Get(c.Params("id"))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(view)
}

func (h *SessionHandler) GenerateSummary(c *fiber.Ctx) error {
	var req struct {
		Style string `json:"style"`
		Force bool   `json:"force"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	view, err := h.controller.GenerateSummary(c.Context(), c.Params("id"), req.Style, req.Force)
	if err != nil {
		return sessionError(c, err)
	}

	return c.JSON(view)
}

func (h *SessionHandler) GenerateQuiz(c *fiber.Ctx) error {
	view, err := h.controller.GenerateQuiz(c.Context(), c.Params("id"))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(view)
}

func (h *SessionHandler) RecordAnswer(c *fiber.Ctx) error {
	var req struct {
		Key    string `json:"key"`
		Answer string `json:"answer"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Answer key is required",
		})
	}

	if err := h.controller.RecordAnswer(c.Params("id"), req.Key, req.Answer); err != nil {
		return sessionError(c, err)
	}

	return c.JSON(fiber.Map{"recorded": req.Key})
}

func (h *SessionHandler) Submit(c *fiber.Ctx) error {
	view, err := h.controller.Submit(c.Context(), c.Params("id"))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(view)
}

func (h *SessionHandler) Reset(c *fiber.Ctx) error {
	view, err := h.controller.Reset(c.Params("id"))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(view)
}

// sessionError maps lifecycle errors to HTTP statuses; anything unexpected
// is logged and becomes a 500.
func sessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	case errors.Is(err, session.ErrSummaryRequired):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Generate a summary before creating a quiz"})
	case errors.Is(err, session.ErrNoQuiz):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "No quiz exists for this session"})
	case errors.Is(err, session.ErrAlreadySubmitted):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Quiz already submitted; reset to retry"})
	case errors.Is(err, session.ErrNoDocument):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Session has no document text"})
	default:
		logger.Error("Session operation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Operation failed"})
	}
}
