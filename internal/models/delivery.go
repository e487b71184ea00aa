package models

import "time"

// ErrorCategory is the internal taxonomy for failed dispatches
type ErrorCategory string

const (
	CategoryNone            ErrorCategory = ""
	CategoryValidation      ErrorCategory = "validation"
	CategoryVendorAuth      ErrorCategory = "vendor_auth"
	CategoryVendorRecipient ErrorCategory = "vendor_recipient"
	CategoryVendorService   ErrorCategory = "vendor_service"
	CategoryVendorUnknown   ErrorCategory = "vendor_unknown"
)

// Guidance is user-facing text explaining a failure
type Guidance struct {
	UserMessage    string `json:"userMessage"`
	HelpText       string `json:"helpText"`
	ActionRequired string `json:"actionRequired"`
}

// DeliveryResult is the outcome of a single dispatch attempt
type DeliveryResult struct {
	Success           bool          `json:"success"`
	ExternalMessageID string        `json:"externalMessageId,omitempty"`
	ErrorCode         string        `json:"errorCode,omitempty"`
	ErrorMessage      string        `json:"errorMessage,omitempty"`
	Category          ErrorCategory `json:"category,omitempty"`
	Guidance          *Guidance     `json:"guidance,omitempty"`
	Timestamp         time.Time     `json:"timestamp"`
}

// Delivery log statuses
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// DeliveryLogEntry is the persisted audit record of one dispatch attempt
type DeliveryLogEntry struct {
	ID                string    `json:"id"`
	MessageType       string    `json:"messageType"`
	PatientName       string    `json:"patientName"`
	ClinicName        string    `json:"clinicName"`
	Channel           Channel   `json:"channel"`
	Recipient         string    `json:"recipient"`
	Body              string    `json:"body"`
	Success           bool      `json:"success"`
	Status            string    `json:"status"`
	ErrorCode         string    `json:"errorCode,omitempty"`
	ExternalMessageID string    `json:"externalMessageId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// NewDeliveryLogEntry builds the audit record for a finished dispatch attempt
func NewDeliveryLogEntry(id string, req MessageRequest, rendered RenderedMessage, result DeliveryResult) *DeliveryLogEntry {
	status := StatusFailed
	if result.Success {
		status = StatusSent
	}
	createdAt := result.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return &DeliveryLogEntry{
		ID:                id,
		MessageType:       string(req.MessageType),
		PatientName:       req.Fields.Get(FieldPatientName),
		ClinicName:        req.Fields.Get(FieldClinicName),
		Channel:           rendered.Channel,
		Recipient:         rendered.Recipient,
		Body:              rendered.Body,
		Success:           result.Success,
		Status:            status,
		ErrorCode:         result.ErrorCode,
		ExternalMessageID: result.ExternalMessageID,
		CreatedAt:         createdAt.UTC(),
	}
}
