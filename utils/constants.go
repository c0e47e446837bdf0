package utils

import (
	"time"
)

// ContextKey is the type used for request-scoped context values
type ContextKey string

// Context keys propagated from HTTP handlers and channel consumers into flows
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Dispatch constants
const (
	// ContactCooldown is the minimum interval between outbound contacts to the same person
	ContactCooldown = 24 * time.Hour

	// ConversationContextSize is how many trailing history entries the reply engine receives
	ConversationContextSize = 5

	// DefaultPhoneDailyLimit is the per-number daily send ceiling when none is provided
	DefaultPhoneDailyLimit = 100

	// DefaultCampaignDailyLimit caps recipients per campaign run when none is provided
	DefaultCampaignDailyLimit = 50
)
