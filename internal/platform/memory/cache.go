package memory

import (
	"sort"
	"sync"

	"github.com/adamavenir/tern/internal/types"
)

// Cache is a platform.Cache kept in memory, for demo mode and tests.
type Cache struct {
	mu     sync.Mutex
	filled map[string]bool
	byID   map[string]map[string]types.Message
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		filled: map[string]bool{},
		byID:   map[string]map[string]types.Message{},
	}
}

func (c *Cache) GetCachedMessages(platformName, channelID string) ([]types.Message, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := types.ChannelKey(platformName, channelID)
	if !c.filled[key] {
		return nil, false, nil
	}
	out := make([]types.Message, 0, len(c.byID[key]))
	for _, msg := range c.byID[key] {
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TS != out[j].TS {
			return out[i].TS < out[j].TS
		}
		return out[i].ID < out[j].ID
	})
	return out, true, nil
}

func (c *Cache) UpsertCachedMessage(platformName, channelID string, message types.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := types.ChannelKey(platformName, channelID)
	if c.byID[key] == nil {
		c.byID[key] = map[string]types.Message{}
	}
	c.byID[key][message.ID] = message
	return nil
}

func (c *Cache) DeleteCachedMessage(platformName, channelID, messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byID[types.ChannelKey(platformName, channelID)], messageID)
	return nil
}

func (c *Cache) ReplaceCachedMessages(platformName, channelID string, messages []types.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := types.ChannelKey(platformName, channelID)
	next := make(map[string]types.Message, len(messages))
	for _, msg := range messages {
		next[msg.ID] = msg
	}
	c.byID[key] = next
	c.filled[key] = true
	return nil
}
