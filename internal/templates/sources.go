package templates

const genericTemplate = "generic"

var sources = map[string]string{
	"appointment": `🏥 {{b .clinicName}}

📅 {{b "APPOINTMENT REMINDER"}}

👤 Dear {{b .patientName}},

🕐 {{b "Date/Time:"}} {{.appointmentDate}} at {{.appointmentTime}}
👨‍⚕️ {{b "Doctor:"}} {{.doctorName}}
📍 Please arrive 15 minutes early
💳 Bring ID and insurance cards

❓ {{b "Need to reschedule?"}}
📞 Call: {{.contactPhone}}

{{i (print "Automated reminder from " .clinicName)}}
⏰ Sent: {{.sentAt}}`,

	"prescription": `💊 {{b "MEDICATION REMINDER"}}

👤 Dear {{b .patientName}},

⏰ {{b "Time to take your medication:"}}
💊 {{b .medicationName}}

📋 {{b "Important Instructions:"}}
• Take as prescribed by {{.doctorName}}
• Do not skip doses
• Take with food if advised

📞 {{b "Side effects or concerns?"}}
Call immediately: {{.contactPhone}}

🏥 {{i (print .clinicName " - Your Health Partner")}}
⏰ Sent: {{.sentAt}}`,

	"lab_results": `📊 {{b "LAB RESULTS READY"}}

👤 Dear {{b .patientName}},

✅ Your {{b .labTestType}} results are ready

🏥 {{b "Collection Details:"}}
📍 Reception desk at {{.clinicName}}
🕐 Timing: 9:00 AM - 6:00 PM
💳 Please bring ID proof

👨‍⚕️ {{b "Doctor consultation available"}}
Schedule appointment with {{.doctorName}}

📞 {{b "Questions?"}} Call: {{.contactPhone}}

🏥 {{i .clinicName}}
⏰ Sent: {{.sentAt}}`,

	"emergency": `🚨 {{b "URGENT MEDICAL ALERT"}}

👤 Dear {{b .patientName}},

⚡ {{b "IMMEDIATE ATTENTION REQUIRED"}}

📋 {{b "Details:"}} {{.emergencyDetails}}

📞 {{b "CALL NOW:"}} {{.contactPhone}}
🏥 {{b "Or visit clinic immediately"}}
🚑 {{b "Emergency services:"}} Dial 108

⏰ {{b "This is a time-sensitive medical matter"}}

🏥 {{i (print .clinicName " Emergency Team")}}
👨‍⚕️ {{.doctorName}}
⏰ Sent: {{.sentAt}}`,

	"follow_up": `💚 {{b "FOLLOW-UP CARE"}}

👤 Dear {{b .patientName}},

🩺 Hope you're feeling better after your visit with {{.doctorName}}!

📋 {{b "Please remember:"}}
💊 Take medications as prescribed
🚰 Stay well hydrated
😴 Get adequate rest
🚶 Light exercise as advised

📞 {{b "Any concerns or side effects?"}}
Call us: {{.contactPhone}}

📅 {{b "Next appointment:"}} As scheduled
👨‍⚕️ With {{.doctorName}}

🏥 {{i (print .clinicName " - Always Caring")}}
⏰ Sent: {{.sentAt}}`,

	"custom": `{{with .priorityMarker}}{{.}} {{end}}🏥 {{b .clinicName}}

👤 Dear {{b .patientName}},

{{.customMessage}}

📞 {{b "Contact us:"}} {{.contactPhone}}
👨‍⚕️ {{b "Doctor:"}} {{.doctorName}}

🏥 {{i .clinicName}}
⏰ Sent: {{.sentAt}}`,

	genericTemplate: `🏥 {{b .clinicName}}

👤 Dear {{b .patientName}},

📋 Healthcare notification from your medical team.

📞 Contact: {{.contactPhone}}
👨‍⚕️ {{.doctorName}}

🏥 {{i .clinicName}}
⏰ {{.sentAt}}`,
}
