package content

import (
	"fmt"
	"strings"
)

// Kind selects the prompt used for a generation
type Kind string

const (
	KindInstagramPost       Kind = "instagram_post"
	KindAppointmentReminder Kind = "appointment_reminder"
	KindFacebookPost        Kind = "facebook_post"
	KindFollowUp            Kind = "follow_up"
	KindSeasonal            Kind = "seasonal"
	KindNewsletter          Kind = "newsletter"
	KindHealthTip           Kind = "health_tip"
)

// Kinds lists every supported kind
var Kinds = []Kind{
	KindInstagramPost,
	KindAppointmentReminder,
	KindFacebookPost,
	KindFollowUp,
	KindSeasonal,
	KindNewsletter,
	KindHealthTip,
}

// Request holds the inputs for every kind; each kind reads only its own fields
type Request struct {
	Kind               Kind     `json:"kind"`
	Topic              string   `json:"topic,omitempty"`
	TargetAudience     string   `json:"targetAudience,omitempty"`
	PatientName        string   `json:"patientName,omitempty"`
	AppointmentDate    string   `json:"appointmentDate,omitempty"`
	DoctorName         string   `json:"doctorName,omitempty"`
	PostType           string   `json:"postType,omitempty"`
	TreatmentType      string   `json:"treatmentType,omitempty"`
	DaysSinceTreatment int      `json:"daysSinceTreatment,omitempty"`
	Season             string   `json:"season,omitempty"`
	Month              string   `json:"month,omitempty"`
	Topics             []string `json:"topics,omitempty"`
	Category           string   `json:"category,omitempty"`
}

type prompt struct {
	system      string
	user        string
	maxTokens   int64
	temperature float64
}

var seasonalTopics = map[string]string{
	"spring": "allergies, seasonal depression recovery, spring cleaning for health",
	"summer": "heat safety, hydration, sun protection, vacation health tips",
	"fall":   "flu prevention, back-to-school health, immune system boost",
	"winter": "cold prevention, vitamin D, seasonal depression, holiday health",
}

var postTypes = map[string]bool{"educational": true, "awareness": true, "tips": true}

func requirements(lines ...string) string {
	var b strings.Builder
	b.WriteString("\n\nRequirements:\n")
	for _, l := range lines {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}

// build validates req and returns the prompt for its kind
func build(clinic string, req Request) (prompt, error) {
	switch req.Kind {
	case KindInstagramPost:
		if req.Topic == "" {
			return prompt{}, fmt.Errorf("%w: topic is required", ErrInvalidRequest)
		}
		user := fmt.Sprintf("Create an engaging Instagram post for %s about %s.", clinic, req.Topic)
		if req.TargetAudience != "" {
			user += fmt.Sprintf("\nTarget audience: %s.", req.TargetAudience)
		}
		user += requirements(
			"Professional but friendly tone",
			"Include relevant health tips",
			"Add appropriate hashtags",
			"Keep it under 2000 characters",
			"Include a call-to-action",
			"Make it engaging and informative",
		)
		return prompt{
			system:      fmt.Sprintf("You are a professional healthcare content creator for %s. Create engaging, accurate, and helpful medical content that follows medical best practices and disclaimers.", clinic),
			user:        user,
			maxTokens:   500,
			temperature: 0.7,
		}, nil

	case KindAppointmentReminder:
		if req.PatientName == "" || req.AppointmentDate == "" {
			return prompt{}, fmt.Errorf("%w: patientName and appointmentDate are required", ErrInvalidRequest)
		}
		user := fmt.Sprintf("Create a friendly appointment reminder message for:\nPatient: %s\nAppointment: %s\nDoctor: %s",
			req.PatientName, req.AppointmentDate, req.DoctorName)
		user += requirements(
			"Friendly and professional tone",
			"Include appointment details",
			"Add preparation instructions if needed",
			"Keep it concise (under 160 characters)",
			"Include contact information for changes",
		)
		return prompt{
			system:      "You are a healthcare assistant creating appointment reminder messages. Be professional, clear, and helpful.",
			user:        user,
			maxTokens:   200,
			temperature: 0.5,
		}, nil

	case KindFacebookPost:
		if req.Topic == "" {
			return prompt{}, fmt.Errorf("%w: topic is required", ErrInvalidRequest)
		}
		postType := req.PostType
		if postType == "" {
			postType = "educational"
		}
		if !postTypes[postType] {
			return prompt{}, fmt.Errorf("%w: unknown post type %q", ErrInvalidRequest, postType)
		}
		user := fmt.Sprintf("Create a %s Facebook post for %s about %s.", postType, clinic, req.Topic)
		user += requirements(
			"Professional medical tone",
			"Include accurate health information",
			"Add relevant medical disclaimers",
			"Engaging format with bullet points or numbered lists",
			"Include call-to-action to book appointment",
			"Add appropriate hashtags",
			"300-500 words maximum",
		)
		return prompt{
			system:      "You are a medical content specialist creating educational content for a healthcare facility. Ensure all medical information is accurate and includes appropriate disclaimers.",
			user:        user,
			maxTokens:   600,
			temperature: 0.6,
		}, nil

	case KindFollowUp:
		if req.PatientName == "" || req.TreatmentType == "" {
			return prompt{}, fmt.Errorf("%w: patientName and treatmentType are required", ErrInvalidRequest)
		}
		if req.DaysSinceTreatment < 0 {
			return prompt{}, fmt.Errorf("%w: daysSinceTreatment cannot be negative", ErrInvalidRequest)
		}
		user := fmt.Sprintf("Create a personalized follow-up message for:\nPatient: %s\nTreatment: %s\nDays since treatment: %d",
			req.PatientName, req.TreatmentType, req.DaysSinceTreatment)
		user += requirements(
			"Show care and concern for patient's recovery",
			"Ask about current condition",
			"Provide relevant post-treatment tips",
			"Encourage contact if concerns",
			"Professional but warm tone",
			"100-200 words",
		)
		return prompt{
			system:      "You are a caring healthcare provider creating follow-up messages for patients. Show empathy and provide helpful guidance.",
			user:        user,
			maxTokens:   300,
			temperature: 0.7,
		}, nil

	case KindSeasonal:
		season := strings.ToLower(req.Season)
		topics, ok := seasonalTopics[season]
		if !ok {
			return prompt{}, fmt.Errorf("%w: season must be spring, summer, fall or winter", ErrInvalidRequest)
		}
		user := fmt.Sprintf("Create engaging healthcare content for %s season focusing on %s.", season, topics)
		user += requirements(
			"Multiple content pieces (3-4 topics)",
			"Mix of prevention and treatment advice",
			"Include seasonal health tips",
			"Professional medical guidance",
			"Engaging format for social media",
			"Include relevant hashtags",
		)
		return prompt{
			system:      "You are a healthcare marketing specialist creating seasonal health content. Provide accurate, helpful, and engaging medical information.",
			user:        user,
			maxTokens:   800,
			temperature: 0.7,
		}, nil

	case KindNewsletter:
		if req.Month == "" || len(req.Topics) == 0 {
			return prompt{}, fmt.Errorf("%w: month and topics are required", ErrInvalidRequest)
		}
		user := fmt.Sprintf("Create a monthly healthcare newsletter for %s covering these topics: %s.", req.Month, strings.Join(req.Topics, ", "))
		user += requirements(
			"Professional newsletter format",
			"Multiple sections with headers",
			"Include health tips, news, and advice",
			"Add patient testimonial placeholder",
			"Include upcoming events section",
			"Professional but accessible language",
			"800-1200 words",
		)
		return prompt{
			system:      fmt.Sprintf("You are a medical communications specialist creating newsletter content for %s. Create comprehensive, well-structured content.", clinic),
			user:        user,
			maxTokens:   1500,
			temperature: 0.6,
		}, nil

	case KindHealthTip:
		category := req.Category
		if category == "" {
			category = "general wellness"
		}
		user := fmt.Sprintf("Generate a quick, actionable health tip about %s.", category)
		user += requirements(
			"One clear, specific tip",
			"1-2 sentences maximum",
			"Actionable advice",
			"Medically accurate",
			"Easy to understand",
		)
		return prompt{
			system:      "You are a healthcare professional providing quick, accurate health tips.",
			user:        user,
			maxTokens:   100,
			temperature: 0.5,
		}, nil
	}

	return prompt{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, req.Kind)
}
