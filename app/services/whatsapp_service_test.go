package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockWhatsAppService(t *testing.T) {
	ctx := context.Background()

	t.Run("RecordsSentMessages", func(t *testing.T) {
		mock := NewMockWhatsAppService()

		err := mock.SendMessage(ctx, "+5511000000001", "+5511999990001", "hello")
		require.NoError(t, err)

		sent := mock.GetSentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "+5511000000001", sent[0].From)
		assert.Equal(t, "+5511999990001", sent[0].To)
		assert.Equal(t, "hello", sent[0].Text)
		assert.False(t, sent[0].SentAt.IsZero())

		mock.ClearSentMessages()
		assert.Empty(t, mock.GetSentMessages())
	})

	t.Run("RecordsRegisteredNumbers", func(t *testing.T) {
		mock := NewMockWhatsAppService()

		err := mock.RegisterNumber(ctx, "+5511000000001")
		require.NoError(t, err)
		assert.Equal(t, []string{"+5511000000001"}, mock.RegisteredNumbers)
	})

	t.Run("ConfiguredErrorsPropagate", func(t *testing.T) {
		mock := NewMockWhatsAppService()
		mock.SendErr = errors.New("send down")
		mock.RegisterErr = errors.New("register down")

		assert.Error(t, mock.SendMessage(ctx, "a", "b", "c"))
		assert.Error(t, mock.RegisterNumber(ctx, "a"))
		assert.Empty(t, mock.GetSentMessages())
	})
}

func TestDeliverRoutesToRegisteredHandler(t *testing.T) {
	ctx := context.Background()
	mock := NewMockWhatsAppService()

	t.Run("NoHandlerRegistered", func(t *testing.T) {
		err := mock.Deliver(ctx, "+5511999990001", "+5511000000001", "oi")
		assert.Error(t, err)
	})

	t.Run("HandlerReceivesMessage", func(t *testing.T) {
		var gotFrom, gotTo, gotText string
		mock.OnMessage(func(ctx context.Context, from, to, text string) error {
			gotFrom, gotTo, gotText = from, to, text
			return nil
		})

		err := mock.Deliver(ctx, "+5511999990001", "+5511000000001", "oi")
		require.NoError(t, err)
		assert.Equal(t, "+5511999990001", gotFrom)
		assert.Equal(t, "+5511000000001", gotTo)
		assert.Equal(t, "oi", gotText)
	})

	t.Run("HandlerErrorPropagates", func(t *testing.T) {
		mock.OnMessage(func(ctx context.Context, from, to, text string) error {
			return errors.New("flow failed")
		})

		err := mock.Deliver(ctx, "+5511999990001", "+5511000000001", "oi")
		assert.Error(t, err)
	})
}
