// Package nodes holds the orchestration pipeline steps. Each node is a
// pure-ish function over GraphState wired into the eino graph by the
// orchestrator.
package nodes

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
	conversationx "github.com/renzovallejo/lima-property-agent/agent/conversation"
	retrievalx "github.com/renzovallejo/lima-property-agent/agent/retrieval"
	schedulex "github.com/renzovallejo/lima-property-agent/agent/schedule"
)

var (
	ErrInvalidMessage      = errors.New("message is empty")
	ErrInvalidConversation = errors.New("conversation id is empty")
)

type GraphInput struct {
	Msg contractx.InboundMessage
}

type GraphOutput struct {
	Reply contractx.StructuredReply
}

type GraphState struct {
	Msg     contractx.InboundMessage
	Now     time.Time
	Started time.Time

	Context        *conversationx.Context
	Classification contractx.Classification
	Filters        contractx.SearchFilters
	Search         *retrievalx.Result
	Schedule       *schedulex.Outcome

	Message string
	Reply   contractx.StructuredReply
}

// ValidateRequest normalizes the inbound message and stamps the clock. A
// missing message id gets one generated so downstream idempotency keys
// always exist.
func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	msg := in.Msg
	msg.ConversationID = strings.TrimSpace(msg.ConversationID)
	if msg.ConversationID == "" {
		return nil, ErrInvalidConversation
	}

	msg.Text = strings.TrimSpace(msg.Text)
	if msg.Text == "" {
		return nil, ErrInvalidMessage
	}

	if strings.TrimSpace(msg.MessageID) == "" {
		msg.MessageID = uuid.NewString()
	}

	now := nowFn()
	return &GraphState{
		Msg:     msg,
		Now:     now,
		Started: now,
	}, nil
}
