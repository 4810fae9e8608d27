// Package retrieval answers property search queries through an embedding
// similarity lookup fronted by a TTL result cache.
package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	cachex "github.com/renzovallejo/lima-property-agent/agent/cache"
	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
	conversationx "github.com/renzovallejo/lima-property-agent/agent/conversation"
)

type Config struct {
	Limit        int           `envconfig:"LIMIT" split_words:"true" default:"5"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" split_words:"true" default:"1h"`
	RetryBackoff time.Duration `envconfig:"RETRY_BACKOFF" split_words:"true" default:"200ms"`
}

// Result is one retrieval outcome handed to the response assembler.
type Result struct {
	Items      []contractx.PropertySummary
	Project    *contractx.ProjectInfo
	CacheHit   bool
	Contextual bool
}

type Engine struct {
	embed   contractx.Embedder
	catalog contractx.Catalog
	cache   cachex.Cache
	cfg     Config
	now     func() time.Time
}

func NewEngine(embed contractx.Embedder, catalog contractx.Catalog, c cachex.Cache, cfg Config) *Engine {
	if cfg.Limit <= 0 {
		cfg.Limit = 5
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
	return &Engine{embed: embed, catalog: catalog, cache: c, cfg: cfg, now: time.Now}
}

// Search resolves a property query. Contextual questions are answered from
// the conversation's resolved entity; an explicit project mention short
// circuits to that project's inventory; everything else goes through the
// cached similarity pipeline.
func (e *Engine) Search(ctx context.Context, query string, filters contractx.SearchFilters, cc *conversationx.Context, contextual bool) (*Result, error) {
	if contextual && cc != nil {
		return e.searchContextual(ctx, cc)
	}

	// A named project replaces similarity search with that project's own
	// inventory. Checked before the cache so project answers never shadow
	// generic query entries.
	if project, err := e.catalog.MatchProject(ctx, query); err == nil && project != nil {
		items, err := e.catalog.PropertiesForProject(ctx, project.ID, e.cfg.Limit)
		if err != nil {
			return nil, fmt.Errorf("project inventory %s: %w", project.ID, err)
		}
		return &Result{Items: items, Project: project}, nil
	}

	key := CacheKey(query, filters)
	if items, ok := e.fromCache(ctx, key); ok {
		return &Result{Items: items, CacheHit: true}, nil
	}

	vector, err := e.embedWithRetry(ctx, NormalizeQuery(query))
	if err != nil {
		return nil, err
	}

	scored, err := e.catalog.SimilaritySearch(ctx, vector, filters, e.cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	items, err := e.resolve(ctx, scored)
	if err != nil {
		return nil, err
	}
	items = rank(items)
	if len(items) > e.cfg.Limit {
		items = items[:e.cfg.Limit]
	}

	e.store(ctx, key, query, items)
	return &Result{Items: items}, nil
}

// resolve loads summaries for fresh search hits, attaching each hit's
// similarity score. Catalog order may differ from hit order; rank restores
// it afterwards.
func (e *Engine) resolve(ctx context.Context, scored []contractx.ScoredID) ([]contractx.PropertySummary, error) {
	if len(scored) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(scored))
	scores := make(map[string]float64, len(scored))
	for _, s := range scored {
		ids = append(ids, s.ID)
		scores[s.ID] = s.Score
	}

	items, err := e.catalog.FetchByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve search hits: %w", err)
	}

	for i := range items {
		items[i].Score = scores[items[i].ID]
	}
	return items, nil
}

func (e *Engine) searchContextual(ctx context.Context, cc *conversationx.Context) (*Result, error) {
	if id := cc.Resolve(conversationx.SlotRecentProperty); id != "" {
		items, err := e.catalog.FetchByIDs(ctx, []string{id})
		if err != nil {
			return nil, fmt.Errorf("contextual property %s: %w", id, err)
		}
		return &Result{Items: items, Contextual: true}, nil
	}

	if id := cc.Resolve(conversationx.SlotRecentProject); id != "" {
		items, err := e.catalog.PropertiesForProject(ctx, id, e.cfg.Limit)
		if err != nil {
			return nil, fmt.Errorf("contextual project %s: %w", id, err)
		}
		project, err := e.catalog.ProjectByID(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("project_id", id).Msg("project lookup failed on contextual answer")
		}
		return &Result{Items: items, Project: project, Contextual: true}, nil
	}

	return &Result{Contextual: true}, nil
}

// fromCache resolves a cached id list against the current catalog. Deleted
// properties drop out; cached order is preserved for the survivors.
func (e *Engine) fromCache(ctx context.Context, key string) ([]contractx.PropertySummary, bool) {
	raw, err := e.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cachex.ErrCacheMiss) {
			log.Warn().Err(err).Msg("result cache unavailable, searching directly")
		}
		return nil, false
	}

	var cached cachedResult
	if err := json.Unmarshal([]byte(raw), &cached); err != nil || cached.expired(e.now()) {
		return nil, false
	}

	ids := make([]string, 0, len(cached.IDs))
	scores := make(map[string]float64, len(cached.IDs))
	for _, s := range cached.IDs {
		ids = append(ids, s.ID)
		scores[s.ID] = s.Score
	}
	if len(ids) == 0 {
		return []contractx.PropertySummary{}, true
	}

	items, err := e.catalog.FetchByIDs(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Msg("cached ids could not be resolved, searching directly")
		return nil, false
	}

	byID := make(map[string]contractx.PropertySummary, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	ordered := make([]contractx.PropertySummary, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			item.Score = scores[id]
			ordered = append(ordered, item)
		}
	}
	return ordered, true
}

func (e *Engine) store(ctx context.Context, key, query string, items []contractx.PropertySummary) {
	ids := make([]contractx.ScoredID, 0, len(items))
	for _, item := range items {
		ids = append(ids, contractx.ScoredID{ID: item.ID, Score: item.Score})
	}
	now := e.now()
	raw, err := json.Marshal(cachedResult{
		Query:     NormalizeQuery(query),
		IDs:       ids,
		CachedAt:  now,
		ExpiresAt: now.Add(e.cfg.CacheTTL),
	})
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, key, string(raw), e.cfg.CacheTTL); err != nil {
		log.Warn().Err(err).Msg("result cache write failed")
	}
}

func (e *Engine) embedWithRetry(ctx context.Context, query string) ([]float32, error) {
	vector, err := e.embed.Embed(ctx, query)
	if err == nil {
		return vector, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: embed: %v", contractx.ErrUpstream, err)
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: embed: %v", contractx.ErrUpstream, ctx.Err())
	case <-time.After(e.cfg.RetryBackoff):
	}

	vector, err = e.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed after retry: %v", contractx.ErrUpstream, err)
	}
	return vector, nil
}

// rank orders by similarity descending, breaking exact score ties by
// ascending price so the cheaper unit surfaces first.
func rank(items []contractx.PropertySummary) []contractx.PropertySummary {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].PriceUSD < items[j].PriceUSD
	})
	return items
}
