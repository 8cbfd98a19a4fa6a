package bot

import (
	"sort"
	"sync"

	tele "gopkg.in/telebot.v3"
)

// Channel is one required-subscription entry managed via /addfsub.
type Channel struct {
	ID      int64
	Title   string
	JoinURL string
}

// Channels is the in-process registry of channels a user must join
// before using the bot. Empty registry means the gate is open.
type Channels struct {
	mu   sync.Mutex
	list map[int64]Channel
}

func NewChannels() *Channels {
	return &Channels{list: make(map[int64]Channel)}
}

func (c *Channels) Add(ch Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list[ch.ID] = ch
}

// Remove deletes a channel, reporting whether it was present.
func (c *Channels) Remove(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.list[id]
	delete(c.list, id)
	return ok
}

// All returns the channels ordered by ID.
func (c *Channels) All() []Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Channel, 0, len(c.list))
	for _, ch := range c.list {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Channels) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.list)
}

// memberChecker is the slice of the Telegram client the gate needs.
// *tele.Bot satisfies it.
type memberChecker interface {
	ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error)
}

// Missing returns the first required channel userID has not joined, or
// nil when the gate passes. A failing membership check skips that
// channel: a misconfigured bot must not lock everyone out.
func (c *Channels) Missing(m memberChecker, userID int64) *Channel {
	for _, ch := range c.All() {
		member, err := m.ChatMemberOf(tele.ChatID(ch.ID), &tele.User{ID: userID})
		if err != nil {
			continue
		}
		if member.Role == tele.Left || member.Role == tele.Kicked {
			return &ch
		}
	}
	return nil
}
