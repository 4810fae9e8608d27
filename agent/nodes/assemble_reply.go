package nodes

import (
	"time"

	replyx "github.com/renzovallejo/lima-property-agent/agent/reply"
)

// AssembleReply builds the structured reply from whichever branch ran.
func AssembleReply(in *GraphState, nowFn func() time.Time) (*GraphState, error) {
	in.Reply = replyx.Assemble(replyx.Input{
		Classification: in.Classification,
		Message:        in.Message,
		Search:         in.Search,
		Schedule:       in.Schedule,
		Elapsed:        nowFn().Sub(in.Started),
	})
	return in, nil
}
