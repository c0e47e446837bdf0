package dto

// InboundMessageRequest represents one message delivered by the channel webhook
type InboundMessageRequest struct {
	From string `json:"from" validate:"required,min=3,max=50"`
	To   string `json:"to" validate:"required,min=3,max=50"`
	Text string `json:"text" validate:"required"`
}
