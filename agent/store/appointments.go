package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
)

// Appointments implements contract.AppointmentWriter. Commits are
// idempotent per source message id: the unique column plus the lookup
// before insert resolve replays to the prior appointment.
type Appointments struct {
	db  *bun.DB
	now func() time.Time
}

func NewAppointments(db *bun.DB) *Appointments {
	return &Appointments{db: db, now: time.Now}
}

func (a *Appointments) CreateAppointment(ctx context.Context, req contractx.AppointmentRequest) (string, error) {
	if req.MessageID == "" {
		return "", fmt.Errorf("%w: appointment commit requires a message id", contractx.ErrValidation)
	}
	if req.ScheduledFor.IsZero() {
		return "", fmt.Errorf("%w: appointment commit requires a scheduled time", contractx.ErrValidation)
	}

	if id, err := a.findBySourceMessage(ctx, req.MessageID); err != nil {
		return "", err
	} else if id != "" {
		return id, nil
	}

	apt := &Appointment{
		ID:              uuid.NewString(),
		LeadID:          req.LeadID,
		ConversationID:  req.ConversationID,
		ProjectID:       req.ProjectID,
		PropertyID:      req.PropertyID,
		ScheduledFor:    req.ScheduledFor,
		Notes:           req.Notes,
		SourceMessageID: req.MessageID,
		CreatedAt:       a.now(),
	}

	if _, err := a.db.NewInsert().Model(apt).Exec(ctx); err != nil {
		// A concurrent replay may have won the unique race; re-resolve.
		if id, lookupErr := a.findBySourceMessage(ctx, req.MessageID); lookupErr == nil && id != "" {
			return id, nil
		}
		return "", fmt.Errorf("%w: insert appointment: %v", contractx.ErrPersistence, err)
	}
	return apt.ID, nil
}

func (a *Appointments) findBySourceMessage(ctx context.Context, messageID string) (string, error) {
	var existing Appointment
	err := a.db.NewSelect().
		Model(&existing).
		Column("id").
		Where("apt.source_message_id = ?", messageID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: appointment lookup: %v", contractx.ErrPersistence, err)
	}
	return existing.ID, nil
}
