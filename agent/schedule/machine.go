package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
	conversationx "github.com/renzovallejo/lima-property-agent/agent/conversation"
	parsex "github.com/renzovallejo/lima-property-agent/agent/parse"
)

// Outcome describes one advance of the scheduling flow, including the
// Spanish prompt the assistant should send next.
type Outcome struct {
	State            State
	Draft            *Draft
	Missing          []string
	Appointment      *contractx.AppointmentInfo
	Committed        bool
	Abandoned        bool
	RetryableFailure bool
	Prompt           string
}

// Machine advances one appointment draft per user message. The caller holds
// the conversation lock, so each conversation sees at most one open draft.
type Machine struct {
	drafts       *DraftStore
	appointments contractx.AppointmentWriter
	catalog      contractx.Catalog
	now          func() time.Time
}

func NewMachine(drafts *DraftStore, appointments contractx.AppointmentWriter, catalog contractx.Catalog) *Machine {
	return &Machine{drafts: drafts, appointments: appointments, catalog: catalog, now: time.Now}
}

// Advance applies one user message to the conversation's draft and returns
// the resulting state plus the next prompt.
func (m *Machine) Advance(ctx context.Context, cc *conversationx.Context, msg contractx.InboundMessage) (*Outcome, error) {
	draft, err := m.drafts.Load(ctx, msg.ConversationID)
	if errors.Is(err, ErrNoDraft) {
		draft = m.newDraft(ctx, cc, msg)
	} else if err != nil {
		return nil, err
	}

	if parsex.IsCancellation(msg.Text) {
		if err := m.drafts.Delete(ctx, msg.ConversationID); err != nil {
			log.Warn().Err(err).Str("conversation_id", msg.ConversationID).Msg("draft delete failed on cancellation")
		}
		draft.State = StateAbandoned
		return &Outcome{
			State:     StateAbandoned,
			Draft:     draft,
			Abandoned: true,
			Prompt:    "Listo, cancelé la solicitud de visita. Si cambias de opinión, aquí estoy.",
		}, nil
	}

	// A committed draft only answers replays; anything new starts fresh.
	if draft.State == StateCommitted {
		if draft.CommitMessageID == msg.MessageID || parsex.IsAffirmative(msg.Text) {
			return m.confirmedOutcome(ctx, draft)
		}
		draft = m.newDraft(ctx, cc, msg)
	}

	m.absorbSlots(ctx, draft, msg)

	if invalid, prompt := m.invalidTime(msg.Text); invalid {
		m.save(ctx, draft)
		return &Outcome{State: draft.State, Draft: draft, Missing: draft.MissingSlots(), Prompt: prompt}, nil
	}

	if draft.State == StateConfirming && parsex.IsAffirmative(msg.Text) {
		return m.commit(ctx, draft, msg)
	}

	if draft.Complete() {
		draft.State = StateConfirming
		m.save(ctx, draft)
		return &Outcome{
			State:  StateConfirming,
			Draft:  draft,
			Prompt: m.summaryPrompt(draft),
		}, nil
	}

	draft.State = StateCollecting
	missing := draft.MissingSlots()
	m.save(ctx, draft)
	return &Outcome{
		State:   StateCollecting,
		Draft:   draft,
		Missing: missing,
		Prompt:  missingPrompt(missing),
	}, nil
}

// DraftState reports the persisted draft's state for the conversation, so
// the router can tell an in-progress draft from an already-booked one. The
// second return is false when no draft exists.
func (m *Machine) DraftState(ctx context.Context, conversationID string) (State, bool) {
	draft, err := m.drafts.Load(ctx, conversationID)
	if err != nil {
		return "", false
	}
	return draft.State, true
}

// Abandon clears the open draft, if any. Used when the conversation context
// is reset.
func (m *Machine) Abandon(ctx context.Context, conversationID string) error {
	return m.drafts.Delete(ctx, conversationID)
}

func (m *Machine) newDraft(ctx context.Context, cc *conversationx.Context, msg contractx.InboundMessage) *Draft {
	now := m.now()
	draft := &Draft{
		ID:             uuid.NewString(),
		ConversationID: msg.ConversationID,
		LeadID:         msg.LeadID,
		State:          StateNew,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// Pre-fill from what the conversation already resolved.
	if cc != nil {
		if id := cc.Resolve(conversationx.SlotRecentProperty); id != "" {
			draft.PropertyID = id
		}
		if id := cc.Resolve(conversationx.SlotRecentProject); id != "" {
			draft.ProjectID = id
			if project, err := m.catalog.ProjectByID(ctx, id); err == nil && project != nil {
				draft.ProjectName = project.Name
			}
		}
	}
	return draft
}

// absorbSlots fills whatever slots the message carries. Filled slots are
// only overwritten by a new explicit value, never cleared.
func (m *Machine) absorbSlots(ctx context.Context, draft *Draft, msg contractx.InboundMessage) {
	if when, err := parsex.VisitTime(msg.Text, m.now()); err == nil {
		draft.ScheduledFor = &when
	}

	if project, err := m.catalog.MatchProject(ctx, msg.Text); err == nil && project != nil {
		draft.ProjectID = project.ID
		draft.ProjectName = project.Name
	}
}

// invalidTime detects an understood-but-unavailable moment, answered with a
// targeted availability prompt instead of a generic re-ask.
func (m *Machine) invalidTime(text string) (bool, string) {
	_, err := parsex.VisitTime(text, m.now())
	if errors.Is(err, parsex.ErrOutsideAvailability) {
		return true, "Nuestro horario de visitas es de lunes a sábado, de 9am a 6pm. ¿Qué otro día y hora te acomodan?"
	}
	return false, ""
}

func (m *Machine) commit(ctx context.Context, draft *Draft, msg contractx.InboundMessage) (*Outcome, error) {
	req := contractx.AppointmentRequest{
		LeadID:         draft.LeadID,
		ConversationID: draft.ConversationID,
		ProjectID:      draft.ProjectID,
		PropertyID:     draft.PropertyID,
		ScheduledFor:   *draft.ScheduledFor,
		MessageID:      msg.MessageID,
	}

	appointmentID, err := m.appointments.CreateAppointment(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("conversation_id", draft.ConversationID).Msg("appointment commit failed")
		m.save(ctx, draft)
		return &Outcome{
			State:            StateConfirming,
			Draft:            draft,
			RetryableFailure: true,
			Prompt:           "Tuvimos un problema guardando tu cita. Tus datos siguen aquí, ¿confirmamos de nuevo?",
		}, nil
	}

	draft.State = StateCommitted
	draft.AppointmentID = appointmentID
	draft.CommitMessageID = msg.MessageID
	m.save(ctx, draft)

	return m.confirmedOutcome(ctx, draft)
}

func (m *Machine) confirmedOutcome(ctx context.Context, draft *Draft) (*Outcome, error) {
	info := &contractx.AppointmentInfo{
		ID:           draft.AppointmentID,
		ScheduledFor: *draft.ScheduledFor,
		ProjectName:  draft.ProjectName,
	}
	if project, err := m.catalog.ProjectByID(ctx, draft.ProjectID); err == nil && project != nil {
		info.ProjectAddress = project.Address
	}

	return &Outcome{
		State:       StateCommitted,
		Draft:       draft,
		Committed:   true,
		Appointment: info,
		Prompt: fmt.Sprintf("¡Tu visita quedó agendada! Te esperamos en %s el %s.",
			draft.ProjectName, formatSpanish(*draft.ScheduledFor)),
	}, nil
}

func (m *Machine) summaryPrompt(draft *Draft) string {
	return fmt.Sprintf("Perfecto, sería una visita a %s el %s. ¿Confirmamos?",
		draft.ProjectName, formatSpanish(*draft.ScheduledFor))
}

func (m *Machine) save(ctx context.Context, draft *Draft) {
	draft.UpdatedAt = m.now()
	if err := m.drafts.Save(ctx, draft); err != nil {
		log.Warn().Err(err).Str("conversation_id", draft.ConversationID).Msg("draft save failed")
	}
}

// missingPrompt names exactly the missing slots, never re-asking filled ones.
func missingPrompt(missing []string) string {
	asks := map[string]string{
		SlotDateTime: "¿Para qué día y hora te gustaría agendar la visita? Atendemos de lunes a sábado, de 9am a 6pm.",
		SlotProject:  "¿Qué proyecto te gustaría visitar?",
	}
	if len(missing) == 1 {
		return asks[missing[0]]
	}
	return "¿Qué proyecto te gustaría visitar, y para qué día y hora? Atendemos de lunes a sábado, de 9am a 6pm."
}

var spanishDays = map[time.Weekday]string{
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sábado",
	time.Sunday:    "domingo",
}

var spanishMonths = map[time.Month]string{
	time.January: "enero", time.February: "febrero", time.March: "marzo",
	time.April: "abril", time.May: "mayo", time.June: "junio",
	time.July: "julio", time.August: "agosto", time.September: "septiembre",
	time.October: "octubre", time.November: "noviembre", time.December: "diciembre",
}

func formatSpanish(t time.Time) string {
	hour := strings.ToLower(t.Format("3:04pm"))
	return fmt.Sprintf("%s %d de %s a las %s",
		spanishDays[t.Weekday()], t.Day(), spanishMonths[t.Month()], hour)
}
