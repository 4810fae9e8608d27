package nodes

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
	conversationx "github.com/renzovallejo/lima-property-agent/agent/conversation"
	promptx "github.com/renzovallejo/lima-property-agent/agent/prompt"
	retrievalx "github.com/renzovallejo/lima-property-agent/agent/retrieval"
	schedulex "github.com/renzovallejo/lima-property-agent/agent/schedule"
)

const (
	welcomeMessage = "¡Hola! Soy Pascal, tu asesor inmobiliario. Puedo ayudarte a encontrar departamentos, " +
		"casas y oficinas en Lima, y agendar visitas a nuestros proyectos. ¿Qué estás buscando?"

	onboardingFallback = "¡Hola! Cuéntame qué tipo de propiedad buscas o en qué distrito, y te muestro opciones."

	searchApology = "Tuve un problema consultando las propiedades en este momento. ¿Puedes intentarlo de nuevo en unos minutos?"

	noResultsMessage = "No encontré propiedades con esos criterios. ¿Quieres ajustar el distrito, " +
		"el número de dormitorios o el presupuesto?"
)

// Dependencies bundles the collaborators the dispatch step fans out to.
type Dependencies struct {
	Manager *conversationx.Manager
	Engine  *retrievalx.Engine
	Machine *schedulex.Machine
	Model   contractx.LanguageModel
	Prompts promptx.PromptSet
}

// DispatchAgent runs the functional path the classification selected. Every
// branch produces a message; transient failures degrade to apologetic or
// deterministic text instead of surfacing an error to the pipeline.
func DispatchAgent(ctx context.Context, in *GraphState, deps Dependencies) (*GraphState, error) {
	switch in.Classification.Intent {
	case contractx.IntentPropertySearch:
		dispatchSearch(ctx, in, deps)
	case contractx.IntentScheduleVisit:
		dispatchSchedule(ctx, in, deps)
	default:
		dispatchOnboarding(ctx, in, deps)
	}
	return in, nil
}

func dispatchOnboarding(ctx context.Context, in *GraphState, deps Dependencies) {
	if in.Context.IsEmpty() {
		in.Message = welcomeMessage
		return
	}

	text, err := deps.Model.Complete(ctx, deps.Prompts.Onboarding, in.Context.Turns, in.Msg.Text)
	if err != nil || text == "" {
		if err != nil {
			log.Warn().Err(err).Msg("onboarding completion failed, using canned reply")
		}
		in.Message = onboardingFallback
		return
	}
	in.Message = text
}

func dispatchSearch(ctx context.Context, in *GraphState, deps Dependencies) {
	res, err := deps.Engine.Search(ctx, in.Msg.Text, in.Filters, in.Context, in.Classification.Contextual)
	if err != nil {
		log.Error().Err(err).Str("conversation_id", in.Msg.ConversationID).Msg("property search failed")
		in.Message = searchApology
		return
	}
	in.Search = res

	// Remember what was shown so follow-ups and scheduling can refer back.
	if !res.Contextual && len(res.Items) > 0 {
		top := res.Items[0]
		if err := deps.Manager.SetResolved(ctx, in.Context, conversationx.SlotRecentProperty, top.ID); err != nil {
			log.Warn().Err(err).Msg("resolved property slot not persisted")
		}
		if err := deps.Manager.SetResolved(ctx, in.Context, conversationx.SlotRecentProject, top.ProjectID); err != nil {
			log.Warn().Err(err).Msg("resolved project slot not persisted")
		}
	}
	if res.Project != nil {
		if err := deps.Manager.SetResolved(ctx, in.Context, conversationx.SlotRecentProject, res.Project.ID); err != nil {
			log.Warn().Err(err).Msg("resolved project slot not persisted")
		}
	}

	if len(res.Items) == 0 {
		in.Message = noResultsMessage
		return
	}

	in.Message = describeResults(ctx, in, deps, res)
}

// describeResults prefers model-written prose over the listing, degrading
// to a deterministic summary when the gateway is down.
func describeResults(ctx context.Context, in *GraphState, deps Dependencies, res *retrievalx.Result) string {
	system := deps.Prompts.Property + "\n\nPropiedades encontradas:\n" + formatItems(res.Items)
	text, err := deps.Model.Complete(ctx, system, in.Context.Turns, in.Msg.Text)
	if err != nil || text == "" {
		if err != nil {
			log.Warn().Err(err).Msg("search narration failed, using deterministic summary")
		}
		return deterministicSummary(res.Items)
	}
	return text
}

func dispatchSchedule(ctx context.Context, in *GraphState, deps Dependencies) {
	out, err := deps.Machine.Advance(ctx, in.Context, in.Msg)
	if err != nil {
		log.Error().Err(err).Str("conversation_id", in.Msg.ConversationID).Msg("scheduling advance failed")
		in.Message = "Tuve un problema con tu solicitud de visita. ¿Lo intentamos de nuevo?"
		return
	}
	in.Schedule = out
	in.Message = out.Prompt
}
