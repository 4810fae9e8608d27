// Package conversation holds the per-conversation short-term memory: the
// last turns of dialogue and the resolved entity slots follow-up questions
// refer back to.
package conversation

import (
	"time"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
)

const (
	SlotRecentProject  = "most_recent_project_id"
	SlotRecentProperty = "most_recent_property_id"
)

type Context struct {
	ConversationID string            `json:"conversation_id"`
	Turns          []contractx.Turn  `json:"turns"`
	Resolved       map[string]string `json:"resolved,omitempty"`
	UpdatedAt      time.Time         `json:"updated_at"`

	// ephemeral marks a context built after a cache failure. It serves the
	// current message but is never persisted.
	ephemeral bool
}

func newContext(conversationID string) *Context {
	return &Context{
		ConversationID: conversationID,
		Resolved:       map[string]string{},
	}
}

func (c *Context) Resolve(slot string) string {
	if c.Resolved == nil {
		return ""
	}
	return c.Resolved[slot]
}

func (c *Context) HasResolvedEntity() bool {
	return c.Resolve(SlotRecentProject) != "" || c.Resolve(SlotRecentProperty) != ""
}

// IsEmpty reports whether the conversation has no recorded history yet.
func (c *Context) IsEmpty() bool {
	return len(c.Turns) == 0
}

// appendTurn adds a turn unless one with the same message id is already
// recorded, then evicts the oldest turns beyond limit.
func (c *Context) appendTurn(turn contractx.Turn, limit int) {
	for _, existing := range c.Turns {
		if existing.MessageID != "" && existing.MessageID == turn.MessageID {
			return
		}
	}
	c.Turns = append(c.Turns, turn)
	if limit > 0 && len(c.Turns) > limit {
		c.Turns = c.Turns[len(c.Turns)-limit:]
	}
}
