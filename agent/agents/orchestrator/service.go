// Package orchestrator is the single entry point of the conversation core:
// one inbound message in, one structured reply out, with per-conversation
// serialization around the pipeline.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
	conversationx "github.com/renzovallejo/lima-property-agent/agent/conversation"
	nodex "github.com/renzovallejo/lima-property-agent/agent/nodes"
	promptx "github.com/renzovallejo/lima-property-agent/agent/prompt"
	retrievalx "github.com/renzovallejo/lima-property-agent/agent/retrieval"
	routerx "github.com/renzovallejo/lima-property-agent/agent/router"
	schedulex "github.com/renzovallejo/lima-property-agent/agent/schedule"
)

var (
	ErrInvalidMessage      = nodex.ErrInvalidMessage
	ErrInvalidConversation = nodex.ErrInvalidConversation
)

type Orchestrator struct {
	manager *conversationx.Manager
	locks   *conversationx.Locks
	router  *routerx.Router
	engine  *retrievalx.Engine
	machine *schedulex.Machine
	model   contractx.LanguageModel
	prompts promptx.PromptSet

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(
	manager *conversationx.Manager,
	router *routerx.Router,
	engine *retrievalx.Engine,
	machine *schedulex.Machine,
	model contractx.LanguageModel,
	prompts promptx.PromptSet,
) (*Orchestrator, error) {
	if manager == nil {
		return nil, errors.New("conversation manager is required")
	}
	if router == nil {
		return nil, errors.New("intent router is required")
	}
	if engine == nil {
		return nil, errors.New("retrieval engine is required")
	}
	if machine == nil {
		return nil, errors.New("scheduling machine is required")
	}
	if model == nil {
		return nil, errors.New("language model is required")
	}

	o := &Orchestrator{
		manager: manager,
		locks:   conversationx.NewLocks(),
		router:  router,
		engine:  engine,
		machine: machine,
		model:   model,
		prompts: prompts,
		now:     time.Now,
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleMessage processes one inbound message end to end. Messages of the
// same conversation are serialized; different conversations run freely in
// parallel.
func (o *Orchestrator) HandleMessage(ctx context.Context, msg contractx.InboundMessage) (contractx.StructuredReply, error) {
	if strings.TrimSpace(msg.ConversationID) == "" {
		return contractx.StructuredReply{}, ErrInvalidConversation
	}

	release := o.locks.Acquire(msg.ConversationID)
	defer release()

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{Msg: msg})
	if err != nil {
		return contractx.StructuredReply{}, err
	}
	return out.Reply, nil
}

// Reset wipes the conversation's context and abandons any open draft.
func (o *Orchestrator) Reset(ctx context.Context, conversationID string) error {
	release := o.locks.Acquire(conversationID)
	defer release()

	if err := o.machine.Abandon(ctx, conversationID); err != nil {
		return err
	}
	return o.manager.Reset(ctx, conversationID)
}
