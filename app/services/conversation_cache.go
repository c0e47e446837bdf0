package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amirphl/Kitsune/models"
	"github.com/redis/go-redis/v9"
)

// ConversationCache is a Redis-backed cache of the recent conversation
// context per contact. It satisfies the history cache boundary the
// conversation flow consumes. The cache is advisory; every failure is
// treated as a miss.
type ConversationCache struct {
	rc  *redis.Client
	ttl time.Duration
}

// NewConversationCache creates a new conversation cache instance
func NewConversationCache(rc *redis.Client, ttl time.Duration) *ConversationCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ConversationCache{rc: rc, ttl: ttl}
}

func conversationKey(contactID uint) string {
	return fmt.Sprintf("conversation:history:%d", contactID)
}

// RecentEntries returns the cached context for the contact, if present
func (c *ConversationCache) RecentEntries(ctx context.Context, contactID uint) ([]*models.ConversationEntry, bool) {
	bs, err := c.rc.Get(ctx, conversationKey(contactID)).Bytes()
	if err != nil || len(bs) == 0 {
		return nil, false
	}

	var entries []*models.ConversationEntry
	if err := json.Unmarshal(bs, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// Store caches the context for the contact
func (c *ConversationCache) Store(ctx context.Context, contactID uint, entries []*models.ConversationEntry) {
	bs, err := json.Marshal(entries)
	if err != nil {
		return
	}
	_ = c.rc.Set(ctx, conversationKey(contactID), bs, c.ttl).Err()
}

// Invalidate drops the cached context after new entries are appended
func (c *ConversationCache) Invalidate(ctx context.Context, contactID uint) {
	_ = c.rc.Del(ctx, conversationKey(contactID)).Err()
}
