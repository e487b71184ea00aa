package models

// MessageType tags which notification template a request uses
type MessageType string

const (
	MessageTypeAppointment  MessageType = "appointment"
	MessageTypePrescription MessageType = "prescription"
	MessageTypeLabResults   MessageType = "lab_results"
	MessageTypeEmergency    MessageType = "emergency"
	MessageTypeFollowUp     MessageType = "follow_up"
	MessageTypeCustom       MessageType = "custom"
)

// MessageTypes lists the known message types in display order
var MessageTypes = []MessageType{
	MessageTypeAppointment,
	MessageTypePrescription,
	MessageTypeLabResults,
	MessageTypeEmergency,
	MessageTypeFollowUp,
	MessageTypeCustom,
}

// Known reports whether t has a dedicated template
func (t MessageType) Known() bool {
	for _, known := range MessageTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Channel is an outbound delivery mechanism
type Channel string

const (
	ChannelSMS  Channel = "sms"
	ChannelChat Channel = "chat"
)

// ParseChannel maps a channel name, including the "telegram" alias, to a Channel
func ParseChannel(name string) (Channel, bool) {
	switch name {
	case "sms":
		return ChannelSMS, true
	case "chat", "telegram":
		return ChannelChat, true
	default:
		return "", false
	}
}

// Field names understood by the templates
const (
	FieldPatientName      = "patientName"
	FieldClinicName       = "clinicName"
	FieldDoctorName       = "doctorName"
	FieldAppointmentDate  = "appointmentDate"
	FieldAppointmentTime  = "appointmentTime"
	FieldMedicationName   = "medicationName"
	FieldLabTestType      = "labTestType"
	FieldEmergencyDetails = "emergencyDetails"
	FieldCustomMessage    = "customMessage"
	FieldPriority         = "priority"
)

// Fields maps template field names to their values
type Fields map[string]string

// Get returns the value for name, or "" when absent
func (f Fields) Get(name string) string {
	if f == nil {
		return ""
	}
	return f[name]
}

// Clone returns a copy of f that can be modified freely
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// MessageRequest is one caller request to notify a recipient
type MessageRequest struct {
	MessageType MessageType
	Recipient   string
	Fields      Fields
}

// RenderedMessage is the channel-formatted text for one recipient
type RenderedMessage struct {
	Channel   Channel `json:"channel"`
	Body      string  `json:"body"`
	Recipient string  `json:"recipient"`
}
