package contract

import "context"

// LanguageModel is the text generation gateway. Callers must tolerate the
// provider being unavailable and degrade instead of blocking.
type LanguageModel interface {
	Classify(ctx context.Context, text string) (string, error)
	Complete(ctx context.Context, systemPrompt string, history []Turn, userMessage string) (string, error)
}

// Embedder turns text into a fixed-dimension vector. The dimension matches
// the catalog's stored vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Catalog is the read-only store of projects, properties and typologies
// with vector similarity capability.
type Catalog interface {
	SimilaritySearch(ctx context.Context, vector []float32, filters SearchFilters, limit int) ([]ScoredID, error)
	FetchByIDs(ctx context.Context, ids []string) ([]PropertySummary, error)
	PropertiesForProject(ctx context.Context, projectID string, limit int) ([]PropertySummary, error)
	ProjectByID(ctx context.Context, projectID string) (*ProjectInfo, error)
	MatchProject(ctx context.Context, text string) (*ProjectInfo, error)
}

// AppointmentWriter persists a committed appointment. Implementations are
// idempotent per AppointmentRequest.MessageID: a replayed commit returns the
// previously created appointment id.
type AppointmentWriter interface {
	CreateAppointment(ctx context.Context, req AppointmentRequest) (string, error)
}
