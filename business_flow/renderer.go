package businessflow

import (
	"strings"

	"github.com/amirphl/Kitsune/models"
)

// ToneTransform post-processes rendered text according to a personality tone.
// Transforms are registered per tone so new styles can be added without
// touching the dispatcher.
type ToneTransform func(text string, p *models.Personality) string

// CasualSuffix is appended to messages sent with the casual tone
const CasualSuffix = " 😊"

var toneTransforms = map[models.Tone]ToneTransform{
	models.ToneCasual: func(text string, _ *models.Personality) string {
		return text + CasualSuffix
	},
}

// RenderTemplate substitutes the template's declared variables with contact
// fields and applies the personality's tone transform. Placeholders without a
// corresponding contact value are left verbatim.
func RenderTemplate(template *models.MessageTemplate, contact *models.Contact, personality *models.Personality) string {
	text := template.Content

	for _, variable := range template.Variables {
		value, ok := contactField(contact, variable)
		if !ok || value == "" {
			continue
		}
		text = strings.ReplaceAll(text, "{"+variable+"}", value)
	}

	if personality != nil {
		if transform, ok := toneTransforms[personality.Tone]; ok {
			text = transform(text, personality)
		}
	}

	return text
}

// contactField maps a declared variable name to the contact field backing it
func contactField(contact *models.Contact, variable string) (string, bool) {
	if contact == nil {
		return "", false
	}
	switch variable {
	case "name":
		return contact.DisplayName(), true
	case "phone":
		return contact.Phone, true
	default:
		if v, ok := contact.Preferences[variable]; ok {
			return v, true
		}
		return "", false
	}
}
