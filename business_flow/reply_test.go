package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReply(t *testing.T) {
	t.Run("GreetingWithName", func(t *testing.T) {
		reply := Reply("Ana", "olá, tudo bem?", nil)
		assert.Equal(t, "Hello Ana! How can I help you today?", reply)
	})

	t.Run("GreetingWithoutName", func(t *testing.T) {
		reply := Reply("", "oi", nil)
		assert.Equal(t, "Hello! How can I help you today?", reply)
	})

	t.Run("GreetingIsCaseInsensitive", func(t *testing.T) {
		reply := Reply("Ana", "OI, bom dia", nil)
		assert.Equal(t, "Hello Ana! How can I help you today?", reply)
	})

	t.Run("PricingKeyword", func(t *testing.T) {
		reply := Reply("Ana", "qual o preço do plano?", nil)
		assert.Equal(t, replyPricing, reply)
	})

	t.Run("HandoffKeyword", func(t *testing.T) {
		reply := Reply("", "quero falar com um humano", nil)
		assert.Equal(t, replyHandoff, reply)
	})

	t.Run("GreetingWinsOverLaterGroups", func(t *testing.T) {
		// First matching group decides; greeting is checked before pricing.
		reply := Reply("Ana", "oi, qual o preço?", nil)
		assert.Equal(t, "Hello Ana! How can I help you today?", reply)
	})

	t.Run("NoKeywordFallsBackToGeneric", func(t *testing.T) {
		reply := Reply("Ana", "meu pedido não chegou", nil)
		assert.Equal(t, replyGeneric, reply)
	})
}
