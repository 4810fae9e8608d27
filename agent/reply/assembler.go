// Package reply turns an agent outcome into the StructuredReply handed to
// channel adapters. No channel markup is produced here.
package reply

import (
	"fmt"
	"time"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
	retrievalx "github.com/renzovallejo/lima-property-agent/agent/retrieval"
	schedulex "github.com/renzovallejo/lima-property-agent/agent/schedule"
)

// Input carries whichever branch outcome the dispatcher produced. Exactly
// one of Search and Schedule is set for their respective intents.
type Input struct {
	Classification contractx.Classification
	Message        string
	Search         *retrievalx.Result
	Schedule       *schedulex.Outcome
	Elapsed        time.Duration
}

// Assemble builds the tagged reply variant for one processed message.
func Assemble(in Input) contractx.StructuredReply {
	out := contractx.StructuredReply{
		Kind:    contractx.ReplyOnboarding,
		Message: in.Message,
		Debug: contractx.ReplyDebug{
			Intent:           in.Classification.Intent,
			ProcessingTimeMS: in.Elapsed.Milliseconds(),
		},
	}

	switch in.Classification.Intent {
	case contractx.IntentPropertySearch:
		out.Kind = contractx.ReplyPropertySearchResult
		if in.Search != nil {
			out.Items = in.Search.Items
			out.Summary = searchSummary(in.Search)
			out.Debug.CacheHit = in.Search.CacheHit
			out.Debug.ItemCount = len(in.Search.Items)
		}
		if len(out.Items) > 0 {
			out.SuggestedActions = []string{"agendar_visita", "ver_mas_opciones"}
		} else {
			out.SuggestedActions = []string{"buscar_otra_propiedad", "ver_proyectos"}
		}

	case contractx.IntentScheduleVisit:
		out.Kind = contractx.ReplyScheduleFollowUp
		if in.Schedule != nil {
			out.Appointment = in.Schedule.Appointment
			if in.Schedule.Committed {
				out.Kind = contractx.ReplyScheduleConfirmation
				out.SuggestedActions = []string{"buscar_otra_propiedad"}
			} else if in.Schedule.State == schedulex.StateConfirming {
				out.SuggestedActions = []string{"confirmar_cita"}
			}
		}

	default:
		out.SuggestedActions = []string{"buscar_propiedad", "ver_proyectos"}
	}

	return out
}

func searchSummary(res *retrievalx.Result) string {
	n := len(res.Items)
	switch {
	case n == 0:
		return "No encontré propiedades con esos criterios"
	case res.Project != nil:
		return fmt.Sprintf("Encontré %d propiedades en %s", n, res.Project.Name)
	case n == 1:
		return "Encontré 1 propiedad"
	default:
		return fmt.Sprintf("Encontré %d propiedades", n)
	}
}
