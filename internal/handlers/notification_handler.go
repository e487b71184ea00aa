package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"clinic-automation/internal/config"
	"clinic-automation/internal/models"
	"clinic-automation/pkg/logger"
	"clinic-automation/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NotificationRequest is the request body shared by the send endpoints.
// Each endpoint reads the fields it needs.
type NotificationRequest struct {
	Channel          string `json:"channel"`
	MessageType      string `json:"messageType"`
	PatientName      string `json:"patientName"`
	ClinicName       string `json:"clinicName"`
	CustomMessage    string `json:"customMessage"`
	Message          string `json:"message"`
	AppointmentDate  string `json:"appointmentDate"`
	AppointmentTime  string `json:"appointmentTime"`
	MedicationName   string `json:"medicationName"`
	LabTestType      string `json:"labTestType"`
	DoctorName       string `json:"doctorName"`
	EmergencyDetails string `json:"emergencyDetails"`
	Priority         string `json:"priority"`
	ChatID           string `json:"chatId"`
	GroupID          string `json:"groupId"`
	Phone            string `json:"phone"`
}

func (r *NotificationRequest) fields() models.Fields {
	custom := r.CustomMessage
	if custom == "" {
		custom = r.Message
	}
	f := models.Fields{}
	set := func(name, value string) {
		if value != "" {
			f[name] = value
		}
	}
	set(models.FieldPatientName, r.PatientName)
	set(models.FieldClinicName, r.ClinicName)
	set(models.FieldDoctorName, r.DoctorName)
	set(models.FieldAppointmentDate, r.AppointmentDate)
	set(models.FieldAppointmentTime, r.AppointmentTime)
	set(models.FieldMedicationName, r.MedicationName)
	set(models.FieldLabTestType, r.LabTestType)
	set(models.FieldEmergencyDetails, r.EmergencyDetails)
	set(models.FieldCustomMessage, custom)
	set(models.FieldPriority, r.Priority)
	return f
}

func (r *NotificationRequest) messageType() models.MessageType {
	if r.MessageType == "" && (r.Message != "" || r.CustomMessage != "") {
		return models.MessageTypeCustom
	}
	return models.MessageType(r.MessageType)
}

var priorities = map[string]bool{"low": true, "normal": true, "high": true, "urgent": true}

// NotificationHandler serves the patient notification endpoints
type NotificationHandler struct {
	service NotificationServiceInterface
	config  *config.Config
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(service NotificationServiceInterface, cfg *config.Config) *NotificationHandler {
	return &NotificationHandler{service: service, config: cfg}
}

// detached keeps outbound calls running when the caller goes away so the
// attempt is always logged
func detached(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func (h *NotificationHandler) bind(c *gin.Context, channel models.Channel) (*NotificationRequest, bool) {
	var req NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to parse notification request", zap.String("path", c.FullPath()), zap.Error(err))
		writeValidationError(c, channel, "Invalid request format", "Send a JSON object body")
		return nil, false
	}
	return &req, true
}

func (h *NotificationHandler) send(c *gin.Context, channel models.Channel, recipient string, req *NotificationRequest) {
	msgType := req.messageType()
	outcome := h.service.Notify(detached(c), channel, models.MessageRequest{
		MessageType: msgType,
		Recipient:   recipient,
		Fields:      req.fields(),
	})

	label := string(msgType)
	if label == "" {
		label = "notification"
	}
	writeOutcome(c, msgType, outcome, fmt.Sprintf("✅ %s message sent successfully!", label))
}

// Send handles the unified notification endpoint. The channel defaults to
// sms when a phone number is given and chat otherwise.
func (h *NotificationHandler) Send(c *gin.Context) {
	req, ok := h.bind(c, "")
	if !ok {
		return
	}

	var channel models.Channel
	switch {
	case req.Channel != "":
		parsed, known := models.ParseChannel(strings.ToLower(req.Channel))
		if !known {
			writeValidationError(c, "", fmt.Sprintf("Unknown channel %q", req.Channel), "Use channel sms or chat")
			return
		}
		channel = parsed
	case req.Phone != "":
		channel = models.ChannelSMS
	default:
		channel = models.ChannelChat
	}

	recipient := req.Phone
	if channel == models.ChannelChat {
		recipient = h.chatRecipient(req.ChatID)
	}
	h.send(c, channel, recipient, req)
}

// SendCustomMessage renders a templated message to a chat recipient
func (h *NotificationHandler) SendCustomMessage(c *gin.Context) {
	req, ok := h.bind(c, models.ChannelChat)
	if !ok {
		return
	}
	if req.MessageType == "" || req.PatientName == "" {
		writeValidationError(c, models.ChannelChat, "messageType and patientName are required", "See GET /api/send-custom-message?type=appointment for an example")
		return
	}
	h.send(c, models.ChannelChat, h.chatRecipient(req.ChatID), req)
}

// SendSMS sends a message to a phone number
func (h *NotificationHandler) SendSMS(c *gin.Context) {
	req, ok := h.bind(c, models.ChannelSMS)
	if !ok {
		return
	}
	if req.Phone == "" || (req.Message == "" && req.MessageType == "") {
		writeValidationError(c, models.ChannelSMS, "Phone number and message are required", "Provide both phone (+919963721999) and message fields")
		return
	}

	logger.Info("SMS request received",
		zap.String("phone", utils.MaskRecipient(req.Phone)),
		zap.Int("message_length", len(req.Message)),
	)
	h.send(c, models.ChannelSMS, req.Phone, req)
}

// TelegramSend sends a prioritised custom message to a chat
func (h *NotificationHandler) TelegramSend(c *gin.Context) {
	req, ok := h.bind(c, models.ChannelChat)
	if !ok {
		return
	}
	if req.Message == "" && req.CustomMessage == "" {
		writeValidationError(c, models.ChannelChat, "Message is required", "Provide chatId and message fields")
		return
	}

	req.Priority = strings.ToLower(req.Priority)
	if req.Priority == "" {
		req.Priority = "normal"
	}
	if !priorities[req.Priority] {
		writeValidationError(c, models.ChannelChat, fmt.Sprintf("Unknown priority %q", req.Priority), "Use low, normal, high or urgent")
		return
	}

	req.MessageType = string(models.MessageTypeCustom)
	h.send(c, models.ChannelChat, h.chatRecipient(req.ChatID), req)
}

// GroupMessage posts a custom message to the clinic group chat
func (h *NotificationHandler) GroupMessage(c *gin.Context) {
	req, ok := h.bind(c, models.ChannelChat)
	if !ok {
		return
	}
	if req.Message == "" {
		writeValidationError(c, models.ChannelChat, "Message is required", "Provide a message and optionally groupId")
		return
	}

	groupID := req.GroupID
	if groupID == "" {
		groupID = h.config.Clinic.DefaultGroupID
	}
	req.MessageType = string(models.MessageTypeCustom)
	h.send(c, models.ChannelChat, groupID, req)
}

func (h *NotificationHandler) chatRecipient(chatID string) string {
	if chatID != "" {
		return chatID
	}
	return h.config.Clinic.DefaultChatID
}

var customMessageExamples = map[string]gin.H{
	"appointment": {
		"messageType":     "appointment",
		"patientName":     "Rajesh Kumar",
		"clinicName":      "Dr. Sharma Clinic",
		"appointmentDate": "Tomorrow",
		"appointmentTime": "10:00 AM",
		"doctorName":      "Dr. Rakesh Sharma",
	},
	"prescription": {
		"messageType":    "prescription",
		"patientName":    "Priya Sharma",
		"clinicName":     "Dr. Sharma Clinic",
		"medicationName": "Metformin 500mg - After breakfast",
		"doctorName":     "Dr. Rakesh Sharma",
	},
	"lab_results": {
		"messageType": "lab_results",
		"patientName": "Amit Patel",
		"clinicName":  "Dr. Sharma Clinic",
		"labTestType": "Blood Sugar Test",
		"doctorName":  "Dr. Rakesh Sharma",
	},
	"emergency": {
		"messageType":      "emergency",
		"patientName":      "Sunita Devi",
		"clinicName":       "Dr. Sharma Clinic",
		"emergencyDetails": "Blood pressure readings require immediate attention",
		"doctorName":       "Dr. Rakesh Sharma",
	},
	"follow_up": {
		"messageType": "follow_up",
		"patientName": "Vikram Singh",
		"clinicName":  "Dr. Sharma Clinic",
		"doctorName":  "Dr. Rakesh Sharma",
	},
	"custom": {
		"messageType":   "custom",
		"patientName":   "Meena Iyer",
		"customMessage": "Your health camp registration is confirmed.",
	},
}

func messageTypeNames() []string {
	names := make([]string, 0, len(models.MessageTypes))
	for _, t := range models.MessageTypes {
		names = append(names, string(t))
	}
	return names
}

// CustomMessageInfo describes the custom message endpoint. With ?type= it
// returns an example body and a preview of the rendered message.
func (h *NotificationHandler) CustomMessageInfo(c *gin.Context) {
	if t := c.Query("type"); t != "" {
		example, ok := customMessageExamples[t]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"success":   false,
				"error":     fmt.Sprintf("No example for type %q", t),
				"examples":  messageTypeNames(),
				"timestamp": timestamp(),
			})
			return
		}

		fields := models.Fields{}
		for k, v := range example {
			if k != "messageType" {
				fields[k] = fmt.Sprint(v)
			}
		}
		preview := h.service.Preview(models.ChannelChat, models.MessageRequest{
			MessageType: models.MessageType(t),
			Fields:      fields,
		})

		c.JSON(http.StatusOK, gin.H{
			"message": "Example message data",
			"example": example,
			"preview": preview.Body,
			"usage":   "POST to /api/send-custom-message with this data",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Custom Healthcare Messaging API",
		"clinic":  h.config.Clinic.Name,
		"capabilities": []string{
			"appointment reminders",
			"prescription alerts",
			"lab result notifications",
			"emergency alerts",
			"follow-up care messages",
			"custom messages",
		},
		"usage": gin.H{
			"endpoint": "POST /api/send-custom-message",
			"examples": messageTypeNames(),
			"chat":     channelStatus(h.service.Enabled(models.ChannelChat)),
		},
		"timestamp": timestamp(),
	})
}

// SMSStatus reports the SMS channel configuration without exposing secrets
func (h *NotificationHandler) SMSStatus(c *gin.Context) {
	sms := h.config.SMS
	credentials := gin.H{}
	switch sms.Provider {
	case config.ProviderGateway:
		credentials["gatewayUrl"] = utils.ConfiguredStatus(sms.GatewayURL)
		credentials["gatewayApiKey"] = utils.ConfiguredStatus(sms.GatewayAPIKey)
	default:
		credentials["accountSid"] = utils.ConfiguredStatus(sms.AccountSID)
		credentials["apiKey"] = utils.ConfiguredStatus(sms.APIKey)
		credentials["authToken"] = utils.ConfiguredStatus(sms.AuthToken)
		credentials["messagingService"] = utils.ConfiguredStatus(sms.MessagingServiceSID)
		credentials["phoneNumber"] = utils.ConfiguredStatus(sms.FromNumber)
	}

	c.JSON(http.StatusOK, gin.H{
		"service":     "SMS API",
		"status":      channelStatus(h.service.Enabled(models.ChannelSMS)),
		"provider":    sms.Provider,
		"credentials": credentials,
		"usage":       "POST {phone, message} to /api/sms/send",
		"clinic":      h.config.Clinic.Name,
		"timestamp":   timestamp(),
	})
}

// TelegramStatus reports the chat channel configuration
func (h *NotificationHandler) TelegramStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":       "Chat API",
		"status":        channelStatus(h.service.Enabled(models.ChannelChat)),
		"botToken":      utils.ConfiguredStatus(h.config.Chat.Token),
		"defaultChatId": utils.ConfiguredStatus(h.config.Clinic.DefaultChatID),
		"priorities":    []string{"low", "normal", "high", "urgent"},
		"usage":         "POST {chatId, message, priority} to /api/telegram-send",
		"timestamp":     timestamp(),
	})
}

// GroupInfo describes the group message endpoint
func (h *NotificationHandler) GroupInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":        "Group Messaging API",
		"status":         channelStatus(h.service.Enabled(models.ChannelChat)),
		"defaultGroupId": utils.ConfiguredStatus(h.config.Clinic.DefaultGroupID),
		"usage":          "POST {groupId, message, clinicName} to /api/group-message",
		"timestamp":      timestamp(),
	})
}

// NotificationsInfo describes the unified notification endpoint
func (h *NotificationHandler) NotificationsInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":      "Notification API",
		"messageTypes": messageTypeNames(),
		"channels": gin.H{
			string(models.ChannelSMS):  channelStatus(h.service.Enabled(models.ChannelSMS)),
			string(models.ChannelChat): channelStatus(h.service.Enabled(models.ChannelChat)),
		},
		"usage":     "POST {channel, messageType, patientName, phone|chatId, ...} to /api/notifications",
		"timestamp": timestamp(),
	})
}

// CompleteAutomation summarises what the service can do
func (h *NotificationHandler) CompleteAutomation(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"systemName": h.config.Clinic.Name + " Automation",
		"status": gin.H{
			string(models.ChannelSMS):  channelStatus(h.service.Enabled(models.ChannelSMS)),
			string(models.ChannelChat): channelStatus(h.service.Enabled(models.ChannelChat)),
			"content":                  channelStatus(h.config.ContentEnabled()),
		},
		"capabilities": []string{
			"SMS Automation",
			"Chat Notifications",
			"Appointment Reminders",
			"Emergency Alerts",
			"Follow-up Care",
			"Content Generation",
		},
		"messageTypes": messageTypeNames(),
		"timestamp":    timestamp(),
	})
}

func channelStatus(enabled bool) string {
	if enabled {
		return "Active"
	}
	return "Not configured"
}
