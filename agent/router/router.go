// Package router decides which functional path an inbound message takes.
// Deterministic rules run first and last; the language model only breaks
// ties for ambiguous messages.
package router

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
	conversationx "github.com/renzovallejo/lima-property-agent/agent/conversation"
	parsex "github.com/renzovallejo/lima-property-agent/agent/parse"
)

type Config struct {
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// DraftStatus tells Classify what appointment draft the conversation carries.
type DraftStatus int

const (
	DraftNone DraftStatus = iota
	// DraftOpen marks a draft still collecting slots or awaiting confirmation.
	DraftOpen
	// DraftCommitted marks a draft whose appointment is already booked.
	DraftCommitted
)

type Router struct {
	model   contractx.LanguageModel
	timeout time.Duration
}

func New(model contractx.LanguageModel, cfg Config) *Router {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Router{model: model, timeout: cfg.Timeout}
}

// Classify resolves the intent for one message. It never returns an error:
// a failing or nonsensical model falls back to keyword heuristics.
func (r *Router) Classify(ctx context.Context, text string, cc *conversationx.Context, draft DraftStatus) contractx.Classification {
	// An in-progress appointment draft captures its continuation turns: slot
	// answers ("el sábado a las 10am", "Torre Pacífico"), confirmations and
	// cancellations. An explicit new search still breaks out. Once the
	// appointment is booked, only replays, cancellations and explicit
	// scheduling requests return to the flow.
	if continuesSchedule(text, draft) {
		return contractx.Classification{Intent: contractx.IntentScheduleVisit, Source: contractx.SourceOverride}
	}

	// Unambiguous messages skip the model entirely.
	if parsex.IsGreeting(text) && !parsex.HasSearchSignal(text) {
		return contractx.Classification{Intent: contractx.IntentOnboarding, Source: contractx.SourceHeuristic}
	}
	if parsex.HasScheduleSignal(text) {
		return contractx.Classification{Intent: contractx.IntentScheduleVisit, Source: contractx.SourceHeuristic}
	}

	// Short attribute question about an already-resolved entity: answer from
	// context, no model call and no fresh retrieval needed.
	if cc != nil && cc.HasResolvedEntity() && parsex.IsAttributeFollowUp(text) {
		return contractx.Classification{
			Intent:     contractx.IntentPropertySearch,
			Source:     contractx.SourceOverride,
			Contextual: true,
		}
	}

	intent, source := r.modelIntent(ctx, text)

	// The model under-triggers on greetings followed by a concrete ask.
	if intent == contractx.IntentOnboarding &&
		(cc == nil || !cc.HasResolvedEntity()) &&
		parsex.HasSearchSignal(text) {
		return contractx.Classification{Intent: contractx.IntentPropertySearch, Source: contractx.SourceOverride}
	}

	return contractx.Classification{Intent: intent, Source: source}
}

func continuesSchedule(text string, draft DraftStatus) bool {
	switch draft {
	case DraftOpen:
		if parsex.HasScheduleSignal(text) || parsex.HasTemporalSignal(text) ||
			parsex.IsAffirmative(text) || parsex.IsCancellation(text) ||
			parsex.MentionsProject(text) {
			return true
		}
		return !parsex.HasSearchSignal(text)
	case DraftCommitted:
		return parsex.HasScheduleSignal(text) ||
			parsex.IsAffirmative(text) || parsex.IsCancellation(text)
	default:
		return false
	}
}

func (r *Router) modelIntent(ctx context.Context, text string) (contractx.Intent, contractx.ClassificationSource) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.model.Classify(cctx, text)
	if err != nil {
		log.Warn().Err(err).Msg("intent model unavailable, falling back to keywords")
		return parsex.FallbackIntent(text), contractx.SourceFallback
	}
	return parseLabel(raw, text)
}

// parseLabel tolerates both the prompted JSON shape and bare labels, and
// maps partial matches onto the closed intent set.
func parseLabel(raw, text string) (contractx.Intent, contractx.ClassificationSource) {
	label := raw
	if j := gjson.Get(raw, "intent"); j.Exists() {
		label = j.String()
	}
	label = strings.ToUpper(strings.TrimSpace(label))

	switch {
	case strings.Contains(label, "PROPERTY") || strings.Contains(label, "SEARCH"):
		return contractx.IntentPropertySearch, contractx.SourceModel
	case strings.Contains(label, "SCHEDULE") || strings.Contains(label, "VISIT"):
		return contractx.IntentScheduleVisit, contractx.SourceModel
	case strings.Contains(label, "ONBOARDING") || strings.Contains(label, "SMALL_TALK"):
		return contractx.IntentOnboarding, contractx.SourceModel
	default:
		log.Warn().Str("label", raw).Msg("unrecognized intent label, falling back to keywords")
		return parsex.FallbackIntent(text), contractx.SourceFallback
	}
}
