package nodes

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
	conversationx "github.com/renzovallejo/lima-property-agent/agent/conversation"
)

// AppendTurns records the user message and the assistant reply in the
// conversation history. A failed write is logged and the reply still goes
// out; the next turn simply sees slightly less memory.
func AppendTurns(ctx context.Context, in *GraphState, manager *conversationx.Manager) (*GraphState, error) {
	userTurn := contractx.Turn{
		MessageID: in.Msg.MessageID,
		Role:      contractx.RoleHuman,
		Text:      in.Msg.Text,
		Timestamp: in.Now,
	}
	assistantTurn := contractx.Turn{
		MessageID: in.Msg.MessageID + ":reply",
		Role:      contractx.RoleAssistant,
		Text:      in.Reply.Message,
		Timestamp: in.Now,
	}

	if err := manager.Append(ctx, in.Context, userTurn, assistantTurn); err != nil {
		log.Warn().Err(err).Str("conversation_id", in.Msg.ConversationID).Msg("history append failed")
	}
	return in, nil
}
