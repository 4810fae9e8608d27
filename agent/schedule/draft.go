// Package schedule drives the visit appointment slot-filling flow: one
// draft per conversation moves through collection and confirmation until a
// single appointment is committed.
package schedule

import "time"

type State string

const (
	StateNew        State = "NEW"
	StateCollecting State = "COLLECTING"
	StateConfirming State = "CONFIRMING"
	StateCommitted  State = "COMMITTED"
	StateAbandoned  State = "ABANDONED"
)

const (
	SlotProject  = "project"
	SlotDateTime = "datetime"
)

// Draft accumulates appointment slots across turns. CommitMessageID records
// which user message triggered the commit so replays resolve to the same
// appointment.
type Draft struct {
	ID              string     `json:"id"`
	ConversationID  string     `json:"conversation_id"`
	LeadID          string     `json:"lead_id,omitempty"`
	ProjectID       string     `json:"project_id,omitempty"`
	ProjectName     string     `json:"project_name,omitempty"`
	PropertyID      string     `json:"property_id,omitempty"`
	ScheduledFor    *time.Time `json:"scheduled_for,omitempty"`
	State           State      `json:"state"`
	AppointmentID   string     `json:"appointment_id,omitempty"`
	CommitMessageID string     `json:"commit_message_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// MissingSlots lists what still has to be asked for, in asking order.
func (d *Draft) MissingSlots() []string {
	var missing []string
	if d.ScheduledFor == nil {
		missing = append(missing, SlotDateTime)
	}
	if d.ProjectID == "" {
		missing = append(missing, SlotProject)
	}
	return missing
}

func (d *Draft) Complete() bool {
	return len(d.MissingSlots()) == 0
}
