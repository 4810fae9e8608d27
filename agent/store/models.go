// Package store is the Postgres persistence layer: the property catalog
// with pgvector similarity search and the appointment writer.
package store

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
)

type Project struct {
	bun.BaseModel `bun:"table:projects,alias:proj"`

	ID       string `bun:"id,pk"`
	Name     string `bun:"name,notnull"`
	District string `bun:"district"`
	Address  string `bun:"address"`
}

type Typology struct {
	bun.BaseModel `bun:"table:typologies,alias:typ"`

	ID           string  `bun:"id,pk"`
	ProjectID    string  `bun:"project_id,notnull"`
	NumBedrooms  int     `bun:"num_bedrooms"`
	NumBathrooms int     `bun:"num_bathrooms"`
	AreaM2       float64 `bun:"area_m2"`
}

type Property struct {
	bun.BaseModel `bun:"table:properties,alias:prop"`

	ID         string          `bun:"id,pk"`
	ProjectID  string          `bun:"project_id,notnull"`
	TypologyID string          `bun:"typology_id"`
	Title      string          `bun:"title"`
	Type       string          `bun:"type"`
	Floor      string          `bun:"floor"`
	Pricing    int             `bun:"pricing"`
	Embedding  pgvector.Vector `bun:"embedding,type:vector(1536)"`

	Project  *Project  `bun:"rel:belongs-to,join:project_id=id"`
	Typology *Typology `bun:"rel:belongs-to,join:typology_id=id"`
}

type Appointment struct {
	bun.BaseModel `bun:"table:appointments,alias:apt"`

	ID              string    `bun:"id,pk"`
	LeadID          string    `bun:"lead_id"`
	ConversationID  string    `bun:"conversation_id,notnull"`
	ProjectID       string    `bun:"project_id,notnull"`
	PropertyID      string    `bun:"property_id"`
	ScheduledFor    time.Time `bun:"scheduled_for,notnull"`
	Notes           string    `bun:"notes"`
	SourceMessageID string    `bun:"source_message_id,notnull,unique"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
