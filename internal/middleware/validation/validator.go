package validation

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	MaxUploadSize       int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware gates mutating requests on content type and size before any
// handler touches the body.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxUploadSize == 0 {
		cfg.MaxUploadSize = 20 * 1024 * 1024
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json", "multipart/form-data"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		contentType := c.Get("Content-Type")
		if contentType != "" {
			allowed := false
			for _, allowedType := range cfg.AllowedContentTypes {
				if strings.Contains(contentType, allowedType) {
					allowed = true
					break
				}
			}
			if !allowed {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Unsupported content type",
				})
			}
		}

		if len(c.Body()) > cfg.MaxUploadSize {
			cfg.Logger.Warn("Upload rejected for size",
				zap.Int("size", len(c.Body())),
				zap.Int("limit", cfg.MaxUploadSize),
			)
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": "Upload exceeds size limit",
			})
		}

		return c.Next()
	}
}
