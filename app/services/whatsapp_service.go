// Package services provides external service integrations and technical concerns like channel clients
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/amirphl/Kitsune/config"
	"github.com/amirphl/Kitsune/utils"
)

// InboundHandler processes one message received on a registered number
type InboundHandler func(ctx context.Context, from, to, text string) error

// WhatsAppService is the WhatsApp channel client. Outbound sends and number
// registration go to the provider; inbound messages are delivered to the
// handler registered with OnMessage.
type WhatsAppService interface {
	RegisterNumber(ctx context.Context, number string) error
	SendMessage(ctx context.Context, from, to, text string) error
	OnMessage(handler InboundHandler)
	// Deliver routes one inbound message to the registered handler.
	// Called by the inbound webhook.
	Deliver(ctx context.Context, from, to, text string) error
}

// WhatsAppServiceImpl implements WhatsAppService against the provider's HTTP API
type WhatsAppServiceImpl struct {
	config *config.WhatsAppConfig
	client *http.Client

	mu      sync.RWMutex
	handler InboundHandler
}

// whatsappSendRequest represents the request payload for the provider send API
type whatsappSendRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

// whatsappRegisterRequest represents the request payload for number registration
type whatsappRegisterRequest struct {
	Number string `json:"number"`
}

// whatsappResponse represents the provider response envelope
type whatsappResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewWhatsAppService creates a new WhatsApp service instance
func NewWhatsAppService(cfg *config.WhatsAppConfig) WhatsAppService {
	return &WhatsAppServiceImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// RegisterNumber registers a sending number with the provider
func (s *WhatsAppServiceImpl) RegisterNumber(ctx context.Context, number string) error {
	return s.post(ctx, "/api/v1/numbers/register", whatsappRegisterRequest{Number: number})
}

// SendMessage sends one text message from a registered number
func (s *WhatsAppServiceImpl) SendMessage(ctx context.Context, from, to, text string) error {
	return s.post(ctx, "/api/v1/messages/send", whatsappSendRequest{From: from, To: to, Body: text})
}

// OnMessage registers the inbound handler. The last registered handler wins.
func (s *WhatsAppServiceImpl) OnMessage(handler InboundHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// Deliver routes one inbound message to the registered handler
func (s *WhatsAppServiceImpl) Deliver(ctx context.Context, from, to, text string) error {
	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()

	if handler == nil {
		return fmt.Errorf("no inbound handler registered")
	}
	return handler(ctx, from, to, text)
}

func (s *WhatsAppServiceImpl) post(ctx context.Context, path string, payload any) error {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal WhatsApp request: %w", err)
	}

	url := fmt.Sprintf("https://%s%s", s.config.ProviderDomain, path)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call WhatsApp provider: %w", err)
	}
	defer resp.Body.Close()

	var result whatsappResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode WhatsApp provider response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || result.Status != "ok" {
		return fmt.Errorf("WhatsApp provider rejected request: %s (%d)", result.Message, resp.StatusCode)
	}
	return nil
}

// MockWhatsAppService implements WhatsAppService for testing
type MockWhatsAppService struct {
	mu                sync.Mutex
	SentMessages      []MockWhatsAppMessage
	RegisteredNumbers []string
	SendErr           error
	RegisterErr       error
	handler           InboundHandler
}

// MockWhatsAppMessage represents a recorded outbound message
type MockWhatsAppMessage struct {
	From   string
	To     string
	Text   string
	SentAt time.Time
}

// NewMockWhatsAppService creates a new mock WhatsApp service
func NewMockWhatsAppService() *MockWhatsAppService {
	return &MockWhatsAppService{
		SentMessages:      make([]MockWhatsAppMessage, 0),
		RegisteredNumbers: make([]string, 0),
	}
}

// RegisterNumber records a mock number registration
func (m *MockWhatsAppService) RegisterNumber(ctx context.Context, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RegisterErr != nil {
		return m.RegisterErr
	}
	m.RegisteredNumbers = append(m.RegisteredNumbers, number)
	return nil
}

// SendMessage records a mock outbound message
func (m *MockWhatsAppService) SendMessage(ctx context.Context, from, to, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.SentMessages = append(m.SentMessages, MockWhatsAppMessage{
		From:   from,
		To:     to,
		Text:   text,
		SentAt: utils.UTCNow(),
	})
	return nil
}

// OnMessage registers the inbound handler
func (m *MockWhatsAppService) OnMessage(handler InboundHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
}

// Deliver routes one inbound message to the registered handler
func (m *MockWhatsAppService) Deliver(ctx context.Context, from, to, text string) error {
	m.mu.Lock()
	handler := m.handler
	m.mu.Unlock()

	if handler == nil {
		return fmt.Errorf("no inbound handler registered")
	}
	return handler(ctx, from, to, text)
}

// GetSentMessages returns all recorded outbound messages
func (m *MockWhatsAppService) GetSentMessages() []MockWhatsAppMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockWhatsAppMessage, len(m.SentMessages))
	copy(out, m.SentMessages)
	return out
}

// ClearSentMessages clears the recorded outbound messages
func (m *MockWhatsAppService) ClearSentMessages() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentMessages = make([]MockWhatsAppMessage, 0)
}
