// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"

	"github.com/amirphl/Kitsune/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for request tracking
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// MessageSender is the outbound channel boundary consumed by the flows.
// This keeps dispatch and conversation handling independent of the concrete
// WhatsApp client and easy to test.
type MessageSender interface {
	SendMessage(ctx context.Context, from, to, text string) error
}

// IdentityRegistrar registers a sending number with the outbound channel
// before it is persisted locally
type IdentityRegistrar interface {
	RegisterNumber(ctx context.Context, number string) error
}

// DispatchTrigger requests an immediate dispatch run outside the regular
// schedule. Implemented by the campaign scheduler.
type DispatchTrigger interface {
	TriggerNow(campaignID uint)
}

// HistoryCache is an optional read-through cache for recent conversation
// context. A nil cache degrades to repository reads.
type HistoryCache interface {
	RecentEntries(ctx context.Context, contactID uint) ([]*models.ConversationEntry, bool)
	Store(ctx context.Context, contactID uint, entries []*models.ConversationEntry)
	Invalidate(ctx context.Context, contactID uint)
}
