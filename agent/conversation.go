package agent

import (
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"

	"datapilot/viz"
)

// Turn is one entry of the conversation: a message plus, for assistant
// turns that produced a chart, the rendered artifact.
type Turn struct {
	Message  *schema.Message
	Artifact *viz.Artifact
	At       time.Time
}

// Conversation is the append-only turn log of one session. Turns are never
// rewritten; Clear is the only truncation.
type Conversation struct {
	mu    sync.RWMutex
	turns []Turn
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append records a turn.
func (c *Conversation) Append(msg *schema.Message, artifact *viz.Artifact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, Turn{Message: msg, Artifact: artifact, At: time.Now()})
}

// Messages returns the message log in order. The slice is a copy; the
// messages themselves are shared and must not be mutated.
func (c *Conversation) Messages() []*schema.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	msgs := make([]*schema.Message, len(c.turns))
	for i, t := range c.turns {
		msgs[i] = t.Message
	}
	return msgs
}

// Turns returns a copy of the full turn log.
func (c *Conversation) Turns() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Turn(nil), c.turns...)
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Clear truncates the conversation.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
}
