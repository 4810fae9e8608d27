package reply

import (
	"testing"
	"time"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
	retrievalx "github.com/renzovallejo/lima-property-agent/agent/retrieval"
	schedulex "github.com/renzovallejo/lima-property-agent/agent/schedule"
)

func TestAssembleSearchResult(t *testing.T) {
	t.Parallel()

	got := Assemble(Input{
		Classification: contractx.Classification{Intent: contractx.IntentPropertySearch},
		Message:        "Aquí tienes dos opciones",
		Search: &retrievalx.Result{
			Items:    []contractx.PropertySummary{{ID: "a"}, {ID: "b"}},
			CacheHit: true,
		},
		Elapsed: 42 * time.Millisecond,
	})

	if got.Kind != contractx.ReplyPropertySearchResult {
		t.Errorf("Kind = %s", got.Kind)
	}
	if got.Summary != "Encontré 2 propiedades" {
		t.Errorf("Summary = %q", got.Summary)
	}
	if !got.Debug.CacheHit || got.Debug.ItemCount != 2 || got.Debug.ProcessingTimeMS != 42 {
		t.Errorf("Debug = %+v", got.Debug)
	}
	if len(got.SuggestedActions) == 0 || got.SuggestedActions[0] != "agendar_visita" {
		t.Errorf("SuggestedActions = %v", got.SuggestedActions)
	}
}

func TestAssembleEmptySearch(t *testing.T) {
	t.Parallel()

	got := Assemble(Input{
		Classification: contractx.Classification{Intent: contractx.IntentPropertySearch},
		Search:         &retrievalx.Result{},
	})

	if got.Summary != "No encontré propiedades con esos criterios" {
		t.Errorf("Summary = %q", got.Summary)
	}
	if got.SuggestedActions[0] != "buscar_otra_propiedad" {
		t.Errorf("SuggestedActions = %v", got.SuggestedActions)
	}
}

func TestAssembleScheduleConfirmation(t *testing.T) {
	t.Parallel()

	when := time.Date(2025, 6, 14, 10, 0, 0, 0, time.Local)
	got := Assemble(Input{
		Classification: contractx.Classification{Intent: contractx.IntentScheduleVisit},
		Message:        "¡Tu visita quedó agendada!",
		Schedule: &schedulex.Outcome{
			State:       schedulex.StateCommitted,
			Committed:   true,
			Appointment: &contractx.AppointmentInfo{ID: "apt-1", ScheduledFor: when},
		},
	})

	if got.Kind != contractx.ReplyScheduleConfirmation {
		t.Errorf("Kind = %s", got.Kind)
	}
	if got.Appointment == nil || got.Appointment.ID != "apt-1" {
		t.Errorf("Appointment = %+v", got.Appointment)
	}
}

func TestAssembleScheduleFollowUp(t *testing.T) {
	t.Parallel()

	got := Assemble(Input{
		Classification: contractx.Classification{Intent: contractx.IntentScheduleVisit},
		Message:        "¿Para qué día?",
		Schedule:       &schedulex.Outcome{State: schedulex.StateCollecting},
	})

	if got.Kind != contractx.ReplyScheduleFollowUp {
		t.Errorf("Kind = %s", got.Kind)
	}
	if got.Appointment != nil {
		t.Error("follow-up carries an appointment")
	}
}

func TestAssembleOnboarding(t *testing.T) {
	t.Parallel()

	got := Assemble(Input{
		Classification: contractx.Classification{Intent: contractx.IntentOnboarding},
		Message:        "¡Hola! Soy el asistente de ventas.",
	})

	if got.Kind != contractx.ReplyOnboarding {
		t.Errorf("Kind = %s", got.Kind)
	}
	if len(got.SuggestedActions) == 0 {
		t.Error("onboarding reply has no suggested actions")
	}
}
