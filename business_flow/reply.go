package businessflow

import (
	"fmt"
	"strings"

	"github.com/amirphl/Kitsune/models"
)

// Keyword groups for the stand-in reply rules, checked in priority order
var (
	greetingKeywords = []string{"olá", "ola", "oi", "hello", "hi"}
	pricingKeywords  = []string{"preço", "preco", "price", "pricing"}
	handoffKeywords  = []string{"humano", "atendente", "human", "agent"}
)

// Canned responses for the stand-in reply rules
const (
	replyPricing = "We have several pricing options available. Could you tell me which product you are interested in?"
	replyHandoff = "I understand you would rather talk to one of our agents. I am forwarding your conversation now, one moment please."
	replyGeneric = "Thank you for your message. I am processing your request and will get back to you shortly."
)

// Reply produces the assistant's answer to an inbound message. Matching is
// case-insensitive, first match wins: greeting, pricing, handoff, then a
// generic acknowledgment. recentHistory is accepted for future context-aware
// replies and is unused by the current rules.
func Reply(contactName, text string, recentHistory []*models.ConversationEntry) string {
	_ = recentHistory

	lower := strings.ToLower(text)

	if containsAny(lower, greetingKeywords) {
		name := ""
		if contactName != "" {
			name = " " + contactName
		}
		return fmt.Sprintf("Hello%s! How can I help you today?", name)
	}
	if containsAny(lower, pricingKeywords) {
		return replyPricing
	}
	if containsAny(lower, handoffKeywords) {
		return replyHandoff
	}
	return replyGeneric
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
