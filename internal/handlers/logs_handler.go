package handlers

import (
	"net/http"
	"strconv"

	"clinic-automation/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxLogPage = 500

// LogsHandler serves the delivery log to the dashboard
type LogsHandler struct {
	reader DeliveryLogReaderInterface
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(reader DeliveryLogReaderInterface) *LogsHandler {
	return &LogsHandler{reader: reader}
}

// List returns delivery log entries, newest first
func (h *LogsHandler) List(c *gin.Context) {
	limit := 100
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 || l > maxLogPage {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid limit value"})
			return
		}
		limit = l
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		o, err := strconv.Atoi(offsetStr)
		if err != nil || o < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid offset value"})
			return
		}
		offset = o
	}

	entries, err := h.reader.Recent(c.Request.Context(), limit, offset)
	if err != nil {
		logger.Error("Failed to list delivery logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to get delivery logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"logs":      entries,
		"count":     len(entries),
		"limit":     limit,
		"offset":    offset,
		"timestamp": timestamp(),
	})
}
