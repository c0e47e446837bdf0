// Package businessflow contains the core business logic and use cases for campaign dispatch and conversations
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Campaign-related errors
	ErrCampaignNotFound      = errors.New("campaign not found")
	ErrPersonalityNotFound   = errors.New("personality not found")
	ErrTemplateNotFound      = errors.New("message template not found")
	ErrCampaignAlreadyActive = errors.New("campaign is already active")
	ErrCampaignRunning       = errors.New("campaign run already in flight")
	ErrCampaignNameRequired  = errors.New("campaign name is required")
	ErrTargetGroupsRequired  = errors.New("at least one target group is required")
	ErrPhoneNumbersRequired  = errors.New("at least one phone number is required")

	// Dispatch errors
	ErrNoCapacity = errors.New("no sending number with remaining capacity")

	// Conversation errors
	ErrUnregisteredNumber = errors.New("receiving number is not registered")
	ErrEmptyInboundText   = errors.New("inbound message text is empty")

	// Phone number errors
	ErrNumberNotFound       = errors.New("phone number not found")
	ErrNumberAlreadyExists  = errors.New("phone number already exists")
	ErrContactNotFound      = errors.New("contact not found")
	ErrContactAlreadyExists = errors.New("contact already exists")
	ErrChannelRegistration  = errors.New("channel registration failed")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsNoCapacity(err error) bool {
	return errors.Is(err, ErrNoCapacity)
}

func IsUnregisteredNumber(err error) bool {
	return errors.Is(err, ErrUnregisteredNumber)
}

func IsCampaignRunning(err error) bool {
	return errors.Is(err, ErrCampaignRunning)
}

func IsNumberNotFound(err error) bool {
	return errors.Is(err, ErrNumberNotFound)
}

func IsContactNotFound(err error) bool {
	return errors.Is(err, ErrContactNotFound)
}
