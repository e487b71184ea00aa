// Package classifier maps vendor error codes to guidance shown to clinic staff.
package classifier

import "clinic-automation/internal/models"

// Classification is the category and guidance for one vendor error code
type Classification struct {
	Category models.ErrorCategory
	Guidance models.Guidance
}

// Chat vendor error codes. The SMS vendor reports numeric codes that are used as-is.
const (
	CodeChatUnauthorized = "telegram_unauthorized"
	CodeChatNotFound     = "telegram_chat_not_found"
	CodeChatForbidden    = "telegram_forbidden"
)

var table = map[string]Classification{
	"20003": {
		Category: models.CategoryVendorAuth,
		Guidance: models.Guidance{
			UserMessage:    "Authentication failed with the SMS provider",
			HelpText:       "Verify the SMS credentials (API key and secret, or account SID and auth token) in the server configuration",
			ActionRequired: "Check SMS credential configuration",
		},
	},
	"21211": {
		Category: models.CategoryVendorRecipient,
		Guidance: models.Guidance{
			UserMessage:    "Invalid phone number format",
			HelpText:       "Use international format with country code, e.g. +919963721999",
			ActionRequired: "Fix phone number format and retry",
		},
	},
	"21606": unverifiedRecipient,
	"21608": unverifiedRecipient,
	"21614": {
		Category: models.CategoryVendorService,
		Guidance: models.Guidance{
			UserMessage:    "Invalid messaging service identifier",
			HelpText:       "Check the configured messaging service SID",
			ActionRequired: "Verify the messaging service SID in the SMS provider console",
		},
	},
	"21619": {
		Category: models.CategoryVendorService,
		Guidance: models.Guidance{
			UserMessage:    "Messaging service not found",
			HelpText:       "The messaging service may be disabled or deleted",
			ActionRequired: "Recreate the messaging service or configure a sender phone number instead",
		},
	},
	CodeChatUnauthorized: {
		Category: models.CategoryVendorAuth,
		Guidance: models.Guidance{
			UserMessage:    "Chat bot authentication failed",
			HelpText:       "Verify the bot token credentials in the server configuration",
			ActionRequired: "Check bot token configuration",
		},
	},
	CodeChatNotFound: {
		Category: models.CategoryVendorRecipient,
		Guidance: models.Guidance{
			UserMessage:    "Chat not found",
			HelpText:       "The recipient must send /start to the clinic bot before it can message them",
			ActionRequired: "Ask the recipient to start a conversation with the bot",
		},
	},
	CodeChatForbidden: {
		Category: models.CategoryVendorRecipient,
		Guidance: models.Guidance{
			UserMessage:    "Bot blocked by user",
			HelpText:       "The recipient blocked the bot or removed it from the group",
			ActionRequired: "Ask the recipient to unblock the bot and send /start",
		},
	},
}

var unverifiedRecipient = Classification{
	Category: models.CategoryVendorRecipient,
	Guidance: models.Guidance{
		UserMessage:    "Phone number not verified for trial account",
		HelpText:       "Add the number to the verified caller IDs in the SMS provider console",
		ActionRequired: "Verify the phone number or upgrade to a paid account",
	},
}

var unknown = Classification{
	Category: models.CategoryVendorUnknown,
	Guidance: models.Guidance{
		UserMessage:    "Unexpected vendor error",
		HelpText:       "Check the vendor console for account status and error details",
		ActionRequired: "Review the vendor account settings and try again",
	},
}

// Classify returns the classification for a vendor error code. Unknown codes,
// including the empty code, map to the generic vendor error.
func Classify(code string) Classification {
	if c, ok := table[code]; ok {
		return c
	}
	return unknown
}

// Known reports whether code has a dedicated entry
func Known(code string) bool {
	_, ok := table[code]
	return ok
}
