package nodes

import (
	"context"

	conversationx "github.com/renzovallejo/lima-property-agent/agent/conversation"
)

// LoadContext attaches the conversation's short-term memory. Load never
// fails; at worst it yields an empty degraded context.
func LoadContext(ctx context.Context, in *GraphState, manager *conversationx.Manager) (*GraphState, error) {
	in.Context = manager.Load(ctx, in.Msg.ConversationID)
	return in, nil
}
