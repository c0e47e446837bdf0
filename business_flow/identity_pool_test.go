package businessflow

import (
	"testing"

	"github.com/amirphl/Kitsune/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentityPool(t *testing.T) {
	t.Run("ExcludesOfflineAndExhaustedNumbers", func(t *testing.T) {
		online := &models.PhoneNumber{ID: 1, Status: models.PhoneStatusOnline, SentToday: 0, DailyLimit: 10}
		offline := &models.PhoneNumber{ID: 2, Status: models.PhoneStatusOffline, SentToday: 0, DailyLimit: 10}
		exhausted := &models.PhoneNumber{ID: 3, Status: models.PhoneStatusOnline, SentToday: 10, DailyLimit: 10}

		pool := NewIdentityPool([]*models.PhoneNumber{online, offline, exhausted})

		available := pool.Available()
		require.Len(t, available, 1)
		assert.Equal(t, uint(1), available[0].ID)
	})

	t.Run("OrdersLeastUsedFirst", func(t *testing.T) {
		busy := &models.PhoneNumber{ID: 1, Status: models.PhoneStatusOnline, SentToday: 7, DailyLimit: 10}
		fresh := &models.PhoneNumber{ID: 2, Status: models.PhoneStatusOnline, SentToday: 0, DailyLimit: 10}
		mid := &models.PhoneNumber{ID: 3, Status: models.PhoneStatusOnline, SentToday: 3, DailyLimit: 10}

		pool := NewIdentityPool([]*models.PhoneNumber{busy, fresh, mid})

		available := pool.Available()
		require.Len(t, available, 3)
		assert.Equal(t, uint(2), available[0].ID)
		assert.Equal(t, uint(3), available[1].ID)
		assert.Equal(t, uint(1), available[2].ID)
	})

	t.Run("EmptyInput", func(t *testing.T) {
		pool := NewIdentityPool(nil)
		assert.True(t, pool.Empty())
		assert.Nil(t, pool.Next())
	})
}

func TestIdentityPoolMarkSent(t *testing.T) {
	t.Run("DropsNumberAtDailyLimit", func(t *testing.T) {
		number := &models.PhoneNumber{ID: 1, Status: models.PhoneStatusOnline, SentToday: 0, DailyLimit: 1}
		pool := NewIdentityPool([]*models.PhoneNumber{number})

		next := pool.Next()
		require.Equal(t, number, next)

		dropped := pool.MarkSent(next)
		assert.True(t, dropped)
		assert.Equal(t, 1, number.SentToday)
		assert.True(t, pool.Empty())
	})

	t.Run("KeepsNumberWithRemainingCapacity", func(t *testing.T) {
		number := &models.PhoneNumber{ID: 1, Status: models.PhoneStatusOnline, SentToday: 0, DailyLimit: 2}
		pool := NewIdentityPool([]*models.PhoneNumber{number})

		dropped := pool.MarkSent(pool.Next())
		assert.False(t, dropped)
		assert.False(t, pool.Empty())
		assert.Equal(t, 1, number.SentToday)
	})

	t.Run("OrderFixedAtConstruction", func(t *testing.T) {
		a := &models.PhoneNumber{ID: 1, Status: models.PhoneStatusOnline, SentToday: 0, DailyLimit: 10}
		b := &models.PhoneNumber{ID: 2, Status: models.PhoneStatusOnline, SentToday: 0, DailyLimit: 10}
		pool := NewIdentityPool([]*models.PhoneNumber{a, b})

		first := pool.Next()
		pool.MarkSent(first)

		// With equal counters the sort is stable, so the other number does
		// not jump ahead; Next still returns the head of the pool.
		assert.NotNil(t, pool.Next())
		assert.Len(t, pool.Available(), 2)
	})
}
