package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/amirphl/Kitsune/models"
	"github.com/amirphl/Kitsune/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registeredNumber() *models.PhoneNumber {
	return &models.PhoneNumber{ID: 1, Number: "+5511000000001", Status: models.PhoneStatusOnline, DailyLimit: 100}
}

func TestHandleInboundUnknownContact(t *testing.T) {
	number := registeredNumber()
	phoneRepo := newFakePhoneRepo(number)
	contactRepo := newFakeContactRepo()
	sender := &scriptedSender{}

	flow := NewConversationFlow(phoneRepo, contactRepo, sender, nil, nil, nil)

	result, err := flow.HandleInbound(context.Background(), &InboundMessage{
		From: "+5511999990001",
		To:   number.Number,
		Text: "oi",
	})

	require.NoError(t, err)
	assert.True(t, result.ContactCreated)
	assert.Equal(t, "Hello! How can I help you today?", result.Reply)

	// The new contact exists and both directions of the exchange are stored.
	created, err := contactRepo.ByPhone(context.Background(), "+5511999990001")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Nil(t, created.Name)
	assert.NotNil(t, created.LastContactAt)

	entries := contactRepo.allEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, models.DirectionInbound, entries[0].Direction)
	assert.Equal(t, "oi", entries[0].Message)
	assert.Equal(t, models.DirectionOutbound, entries[1].Direction)
	assert.Equal(t, result.Reply, entries[1].Message)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, number.Number, sender.sent[0].from)
	assert.Equal(t, created.Phone, sender.sent[0].to)

	// The receiving number's reply counts against its daily budget.
	assert.Equal(t, 1, number.SentToday)
}

func TestHandleInboundKnownContactGreetsByName(t *testing.T) {
	number := registeredNumber()
	ana := &models.Contact{ID: 1, Phone: "+5511999990001", Name: utils.ToPtr("Ana")}

	phoneRepo := newFakePhoneRepo(number)
	contactRepo := newFakeContactRepo(ana)
	sender := &scriptedSender{}

	flow := NewConversationFlow(phoneRepo, contactRepo, sender, nil, nil, nil)

	result, err := flow.HandleInbound(context.Background(), &InboundMessage{
		From: ana.Phone,
		To:   number.Number,
		Text: "Olá!",
	})

	require.NoError(t, err)
	assert.False(t, result.ContactCreated)
	assert.Equal(t, ana.ID, result.ContactID)
	assert.Equal(t, "Hello Ana! How can I help you today?", result.Reply)
	assert.Equal(t, 1, contactRepo.count())
}

func TestHandleInboundUnregisteredNumber(t *testing.T) {
	phoneRepo := newFakePhoneRepo()
	contactRepo := newFakeContactRepo()
	sender := &scriptedSender{}

	flow := NewConversationFlow(phoneRepo, contactRepo, sender, nil, nil, nil)

	result, err := flow.HandleInbound(context.Background(), &InboundMessage{
		From: "+5511999990001",
		To:   "+5511000000099",
		Text: "oi",
	})

	require.Error(t, err)
	assert.True(t, IsUnregisteredNumber(err))
	assert.Nil(t, result)

	// Nothing is persisted when the receiving number is unknown.
	assert.Equal(t, 0, contactRepo.count())
	assert.Empty(t, contactRepo.allEntries())
	assert.Empty(t, sender.sent)
}

func TestHandleInboundEmptyText(t *testing.T) {
	number := registeredNumber()
	phoneRepo := newFakePhoneRepo(number)
	contactRepo := newFakeContactRepo()

	flow := NewConversationFlow(phoneRepo, contactRepo, &scriptedSender{}, nil, nil, nil)

	_, err := flow.HandleInbound(context.Background(), &InboundMessage{
		From: "+5511999990001",
		To:   number.Number,
		Text: "   ",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyInboundText))
	assert.Equal(t, 0, contactRepo.count())
}

func TestHandleInboundKeywordReplies(t *testing.T) {
	number := registeredNumber()
	ana := &models.Contact{ID: 1, Phone: "+5511999990001", Name: utils.ToPtr("Ana")}

	cases := []struct {
		name string
		text string
		want string
	}{
		{"Pricing", "quanto custa? qual o preço?", replyPricing},
		{"Handoff", "quero um atendente", replyHandoff},
		{"Generic", "meu pedido atrasou", replyGeneric},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			flow := NewConversationFlow(newFakePhoneRepo(registeredNumber()), newFakeContactRepo(ana), &scriptedSender{}, nil, nil, nil)

			result, err := flow.HandleInbound(context.Background(), &InboundMessage{
				From: ana.Phone,
				To:   number.Number,
				Text: tc.text,
			})

			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Reply)
		})
	}
}

func TestHandleInboundSendFailureStoresNothing(t *testing.T) {
	number := registeredNumber()
	phoneRepo := newFakePhoneRepo(number)
	contactRepo := newFakeContactRepo()
	sender := &scriptedSender{errs: []error{errors.New("provider unavailable")}}

	flow := NewConversationFlow(phoneRepo, contactRepo, sender, nil, nil, nil)

	_, err := flow.HandleInbound(context.Background(), &InboundMessage{
		From: "+5511999990001",
		To:   number.Number,
		Text: "oi",
	})

	require.Error(t, err)

	// The failed exchange leaves no trace: no history entries, the
	// number's counter untouched, and no contact row for the unknown
	// sender. An unsent exchange must not make its sender eligible for
	// campaign dispatch.
	assert.Empty(t, contactRepo.allEntries())
	assert.Equal(t, 0, number.SentToday)
	assert.Equal(t, 0, contactRepo.count())

	saved, lookupErr := contactRepo.ByPhone(context.Background(), "+5511999990001")
	require.NoError(t, lookupErr)
	assert.Nil(t, saved)
}
