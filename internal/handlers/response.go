package handlers

import (
	"net/http"
	"time"

	"clinic-automation/internal/models"
	"clinic-automation/internal/services"

	"github.com/gin-gonic/gin"
)

// NotificationResponse is the JSON body returned by every send endpoint
type NotificationResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
	Help           string `json:"help,omitempty"`
	ActionRequired string `json:"actionRequired,omitempty"`
	Code           string `json:"code,omitempty"`
	MessageID      string `json:"messageId,omitempty"`
	Channel        string `json:"channel,omitempty"`
	MessageType    string `json:"messageType,omitempty"`
	Timestamp      string `json:"timestamp"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// statusFor maps a delivery result to the HTTP status of the response
func statusFor(result models.DeliveryResult) int {
	switch {
	case result.Success:
		return http.StatusOK
	case result.Category == models.CategoryValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeOutcome(c *gin.Context, messageType models.MessageType, outcome services.Outcome, successMessage string) {
	result := outcome.Result
	resp := NotificationResponse{
		Success:     result.Success,
		Channel:     string(outcome.Rendered.Channel),
		MessageType: string(messageType),
		Timestamp:   result.Timestamp.UTC().Format(time.RFC3339),
	}
	if result.Timestamp.IsZero() {
		resp.Timestamp = timestamp()
	}

	if result.Success {
		resp.Message = successMessage
		resp.MessageID = result.ExternalMessageID
	} else {
		resp.Error = result.ErrorMessage
		resp.Code = result.ErrorCode
		if result.Guidance != nil {
			resp.Error = result.Guidance.UserMessage
			resp.Help = result.Guidance.HelpText
			resp.ActionRequired = result.Guidance.ActionRequired
		}
	}

	c.JSON(statusFor(result), resp)
}

func writeValidationError(c *gin.Context, channel models.Channel, msg, help string) {
	c.JSON(http.StatusBadRequest, NotificationResponse{
		Success:   false,
		Error:     msg,
		Help:      help,
		Code:      "validation_error",
		Channel:   string(channel),
		Timestamp: timestamp(),
	})
}
