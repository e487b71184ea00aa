package handlers

import (
	"errors"
	"net/http"

	"clinic-automation/internal/content"
	"clinic-automation/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContentHandler serves language model content generation
type ContentHandler struct {
	generator ContentGeneratorInterface
}

// NewContentHandler creates a new content handler. A nil generator disables
// the endpoint.
func NewContentHandler(generator ContentGeneratorInterface) *ContentHandler {
	return &ContentHandler{generator: generator}
}

// Generate produces copy for the requested kind
func (h *ContentHandler) Generate(c *gin.Context) {
	if h.generator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success":   false,
			"error":     "Content generation is not configured",
			"help":      "Set OPENAI_API_KEY and restart the server",
			"timestamp": timestamp(),
		})
		return
	}

	var req content.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format", "timestamp": timestamp()})
		return
	}

	result, err := h.generator.Generate(detached(c), req)
	if err != nil {
		if errors.Is(err, content.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success":   false,
				"error":     err.Error(),
				"kinds":     content.Kinds,
				"timestamp": timestamp(),
			})
			return
		}
		logger.Error("Content generation request failed", zap.String("kind", string(req.Kind)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":        false,
			"error":          "Content generation failed",
			"help":           "The language model service did not return content. Check OPENAI_API_KEY and OPENAI_MODEL, then retry",
			"actionRequired": "Check the content generation configuration",
			"timestamp":      timestamp(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"kind":      result.Kind,
		"content":   result.Content,
		"model":     result.Model,
		"timestamp": timestamp(),
	})
}
