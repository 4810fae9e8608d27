package contract

import "time"

// Intent is the closed set of categories an inbound message is routed to.
type Intent string

const (
	IntentOnboarding     Intent = "ONBOARDING_SMALL_TALK"
	IntentPropertySearch Intent = "PROPERTY_SEARCH"
	IntentScheduleVisit  Intent = "SCHEDULE_VISIT"
)

// ClassificationSource records which rule produced the final intent.
type ClassificationSource string

const (
	SourceModel     ClassificationSource = "model"
	SourceHeuristic ClassificationSource = "heuristic"
	SourceOverride  ClassificationSource = "override"
	SourceFallback  ClassificationSource = "fallback"
)

type Classification struct {
	Intent Intent               `json:"intent"`
	Source ClassificationSource `json:"source"`

	// Contextual marks a search-intent message answerable from the
	// conversation's resolved entity without a fresh retrieval.
	Contextual bool `json:"contextual,omitempty"`
}

type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the short-term conversation history.
type Turn struct {
	MessageID string    `json:"message_id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// InboundMessage is the single entry point payload of the core.
type InboundMessage struct {
	ConversationID string
	LeadID         string
	MessageID      string
	Text           string
}

// SearchFilters are the structural constraints extracted from the
// conversation. Nil or empty fields mean unconstrained.
type SearchFilters struct {
	Bedrooms     *int   `json:"bedrooms,omitempty"`
	MaxPrice     *int   `json:"max_price,omitempty"`
	MinPrice     *int   `json:"min_price,omitempty"`
	District     string `json:"district,omitempty"`
	PropertyType string `json:"property_type,omitempty"`
}

// ScoredID is one similarity search hit, higher score is closer.
type ScoredID struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// PropertySummary is the flattened read-only view of a catalog item handed
// to the presentation layer.
type PropertySummary struct {
	ID          string  `json:"id"`
	Title       string  `json:"title,omitempty"`
	Type        string  `json:"type,omitempty"`
	ProjectID   string  `json:"project_id,omitempty"`
	ProjectName string  `json:"project_name,omitempty"`
	District    string  `json:"district,omitempty"`
	PriceUSD    int     `json:"price_usd,omitempty"`
	Bedrooms    int     `json:"bedrooms,omitempty"`
	Bathrooms   int     `json:"bathrooms,omitempty"`
	Floor       string  `json:"floor,omitempty"`
	AreaM2      float64 `json:"area_m2,omitempty"`
	Score       float64 `json:"score,omitempty"`
}

type ProjectInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	District string `json:"district,omitempty"`
	Address  string `json:"address,omitempty"`
}

// AppointmentRequest is the commit payload handed to the persistence
// collaborator. MessageID is the idempotency key: replaying the commit for
// the same originating message must not create a second appointment.
type AppointmentRequest struct {
	LeadID         string
	ConversationID string
	ProjectID      string
	PropertyID     string
	ScheduledFor   time.Time
	Notes          string
	MessageID      string
}

type AppointmentInfo struct {
	ID             string    `json:"id"`
	ScheduledFor   time.Time `json:"scheduled_for"`
	ProjectName    string    `json:"project_name,omitempty"`
	ProjectAddress string    `json:"project_address,omitempty"`
}

// ReplyKind tags the StructuredReply variant.
type ReplyKind string

const (
	ReplyOnboarding           ReplyKind = "ONBOARDING"
	ReplyPropertySearchResult ReplyKind = "PROPERTY_SEARCH_RESULT"
	ReplyScheduleFollowUp     ReplyKind = "SCHEDULE_FOLLOW_UP"
	ReplyScheduleConfirmation ReplyKind = "SCHEDULE_CONFIRMATION"
)

type ReplyDebug struct {
	Intent           Intent `json:"intent"`
	CacheHit         bool   `json:"cache_hit"`
	ItemCount        int    `json:"item_count"`
	ProcessingTimeMS int64  `json:"processing_time_ms"`
}

// StructuredReply is the sole artifact crossing into the presentation
// layer. It never carries channel-specific markup.
type StructuredReply struct {
	Kind             ReplyKind         `json:"kind"`
	Message          string            `json:"message"`
	Summary          string            `json:"summary,omitempty"`
	Items            []PropertySummary `json:"items,omitempty"`
	Appointment      *AppointmentInfo  `json:"appointment,omitempty"`
	SuggestedActions []string          `json:"suggested_actions,omitempty"`
	Debug            ReplyDebug        `json:"debug"`
}
