package nodes

import (
	"fmt"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Reply.Message == "" {
		return GraphOutput{}, fmt.Errorf("%w: pipeline produced an empty reply", contractx.ErrValidation)
	}
	return GraphOutput{Reply: in.Reply}, nil
}
