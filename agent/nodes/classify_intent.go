package nodes

import (
	"context"

	parsex "github.com/renzovallejo/lima-property-agent/agent/parse"
	routerx "github.com/renzovallejo/lima-property-agent/agent/router"
	schedulex "github.com/renzovallejo/lima-property-agent/agent/schedule"
)

// ClassifyIntent resolves the intent and accumulates search filters from
// the history plus the current message. An in-progress draft biases
// continuation turns toward the scheduling flow; a committed one only
// recaptures confirmation replays, cancellations and new schedule requests.
func ClassifyIntent(ctx context.Context, in *GraphState, r *routerx.Router, machine *schedulex.Machine) (*GraphState, error) {
	status := routerx.DraftNone
	if state, ok := machine.DraftState(ctx, in.Msg.ConversationID); ok {
		switch state {
		case schedulex.StateCommitted:
			status = routerx.DraftCommitted
		case schedulex.StateAbandoned:
			// Routes normally.
		default:
			status = routerx.DraftOpen
		}
	}

	in.Classification = r.Classify(ctx, in.Msg.Text, in.Context, status)
	in.Filters = parsex.Accumulate(in.Context.Turns, in.Msg.Text)
	return in, nil
}
