package retrieval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	cachex "github.com/renzovallejo/lima-property-agent/agent/cache"
	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
	conversationx "github.com/renzovallejo/lima-property-agent/agent/conversation"
)

type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		err := f.err
		f.err = nil
		return nil, err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }

type fakeCatalog struct {
	mu              sync.Mutex
	similarityCalls int
	scored          []contractx.ScoredID
	properties      map[string]contractx.PropertySummary
	project         *contractx.ProjectInfo
	projectItems    []contractx.PropertySummary
}

func (f *fakeCatalog) SimilaritySearch(context.Context, []float32, contractx.SearchFilters, int) ([]contractx.ScoredID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.similarityCalls++
	return f.scored, nil
}

func (f *fakeCatalog) FetchByIDs(_ context.Context, ids []string) ([]contractx.PropertySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]contractx.PropertySummary, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.properties[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) PropertiesForProject(context.Context, string, int) ([]contractx.PropertySummary, error) {
	return f.projectItems, nil
}

func (f *fakeCatalog) ProjectByID(context.Context, string) (*contractx.ProjectInfo, error) {
	return f.project, nil
}

func (f *fakeCatalog) MatchProject(context.Context, string) (*contractx.ProjectInfo, error) {
	return f.project, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemCache() *memCache { return &memCache{data: map[string]string{}} }

func (m *memCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", cachex.ErrCacheMiss
	}
	return v, nil
}

func (m *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memCache) Expire(context.Context, string, time.Duration) error { return nil }

func (m *memCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func testProperties() map[string]contractx.PropertySummary {
	return map[string]contractx.PropertySummary{
		"a": {ID: "a", Title: "Depa A", PriceUSD: 120000},
		"b": {ID: "b", Title: "Depa B", PriceUSD: 95000},
		"c": {ID: "c", Title: "Depa C", PriceUSD: 150000},
	}
}

func newTestEngine(embed *fakeEmbedder, cat *fakeCatalog, c cachex.Cache) *Engine {
	return NewEngine(embed, cat, c, Config{Limit: 5, CacheTTL: time.Hour})
}

func TestSearchIdempotentWithinTTL(t *testing.T) {
	t.Parallel()

	embed := &fakeEmbedder{}
	cat := &fakeCatalog{
		scored:     []contractx.ScoredID{{ID: "a", Score: 0.9}, {ID: "b", Score: 0.8}},
		properties: testProperties(),
	}
	e := newTestEngine(embed, cat, newMemCache())
	ctx := context.Background()

	first, err := e.Search(ctx, "depa 2 dormitorios miraflores", contractx.SearchFilters{}, nil, false)
	if err != nil {
		t.Fatalf("first Search: %v", err)
	}
	if first.CacheHit {
		t.Error("first call was a cache hit")
	}

	second, err := e.Search(ctx, "Depa  2 dormitorios   MIRAFLORES", contractx.SearchFilters{}, nil, false)
	if err != nil {
		t.Fatalf("second Search: %v", err)
	}
	if !second.CacheHit {
		t.Error("second call missed the cache")
	}

	if embed.calls != 1 {
		t.Errorf("embed calls = %d, want 1", embed.calls)
	}
	if cat.similarityCalls != 1 {
		t.Errorf("similarity calls = %d, want 1", cat.similarityCalls)
	}
	if len(second.Items) != 2 || second.Items[0].ID != "a" {
		t.Errorf("cached items = %+v", second.Items)
	}
}

func TestSearchExpiryTriggersOneFreshEmbed(t *testing.T) {
	t.Parallel()

	embed := &fakeEmbedder{}
	cat := &fakeCatalog{
		scored:     []contractx.ScoredID{{ID: "a", Score: 0.9}},
		properties: testProperties(),
	}
	e := newTestEngine(embed, cat, newMemCache())

	base := time.Now()
	e.now = func() time.Time { return base }
	ctx := context.Background()

	if _, err := e.Search(ctx, "depa en surco", contractx.SearchFilters{}, nil, false); err != nil {
		t.Fatalf("Search: %v", err)
	}

	// Just past the TTL the entry is stale even though redis has not
	// evicted it yet.
	e.now = func() time.Time { return base.Add(time.Hour + time.Second) }

	res, err := e.Search(ctx, "depa en surco", contractx.SearchFilters{}, nil, false)
	if err != nil {
		t.Fatalf("Search after expiry: %v", err)
	}
	if res.CacheHit {
		t.Error("expired entry served as a hit")
	}
	if embed.calls != 2 {
		t.Errorf("embed calls = %d, want 2", embed.calls)
	}
}

func TestSearchDifferentFiltersDifferentEntries(t *testing.T) {
	t.Parallel()

	two, three := 2, 3
	k1 := CacheKey("depa miraflores", contractx.SearchFilters{Bedrooms: &two})
	k2 := CacheKey("depa miraflores", contractx.SearchFilters{Bedrooms: &three})
	if k1 == k2 {
		t.Error("filter variants share a cache key")
	}
}

func TestSearchResolvesHitsWithScores(t *testing.T) {
	t.Parallel()

	embed := &fakeEmbedder{}
	cat := &fakeCatalog{
		scored:     []contractx.ScoredID{{ID: "b", Score: 0.9}, {ID: "a", Score: 0.7}},
		properties: testProperties(),
	}
	e := newTestEngine(embed, cat, newMemCache())

	res, err := e.Search(context.Background(), "depa en lince", contractx.SearchFilters{}, nil, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Items) != 2 {
		t.Fatalf("items = %+v, want 2", res.Items)
	}
	if res.Items[0].ID != "b" || res.Items[0].Score != 0.9 {
		t.Errorf("top item = %+v, want b with score 0.9", res.Items[0])
	}
	if res.Items[1].ID != "a" || res.Items[1].Score != 0.7 {
		t.Errorf("second item = %+v, want a with score 0.7", res.Items[1])
	}
	if res.Items[0].Title == "" {
		t.Error("resolved item lost its catalog fields")
	}
}

func TestSearchTieBreakByPrice(t *testing.T) {
	t.Parallel()

	embed := &fakeEmbedder{}
	cat := &fakeCatalog{
		scored: []contractx.ScoredID{
			{ID: "a", Score: 0.8}, {ID: "b", Score: 0.8}, {ID: "c", Score: 0.9},
		},
		properties: testProperties(),
	}
	e := newTestEngine(embed, cat, newMemCache())

	res, err := e.Search(context.Background(), "depa", contractx.SearchFilters{}, nil, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"c", "b", "a"}
	for i, id := range want {
		if res.Items[i].ID != id {
			t.Fatalf("order = %v, want %v", res.Items, want)
		}
	}
}

func TestSearchCachedDeletedIDsDropOut(t *testing.T) {
	t.Parallel()

	embed := &fakeEmbedder{}
	cat := &fakeCatalog{
		scored:     []contractx.ScoredID{{ID: "a", Score: 0.9}, {ID: "b", Score: 0.8}},
		properties: testProperties(),
	}
	e := newTestEngine(embed, cat, newMemCache())
	ctx := context.Background()

	if _, err := e.Search(ctx, "depa", contractx.SearchFilters{}, nil, false); err != nil {
		t.Fatalf("Search: %v", err)
	}

	// Property "a" disappears from the catalog between searches.
	cat.mu.Lock()
	delete(cat.properties, "a")
	cat.mu.Unlock()

	res, err := e.Search(ctx, "depa", contractx.SearchFilters{}, nil, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !res.CacheHit {
		t.Fatal("expected cache hit")
	}
	if len(res.Items) != 1 || res.Items[0].ID != "b" {
		t.Errorf("items = %+v, want only b", res.Items)
	}
}

func TestSearchEmbedRetriesOnce(t *testing.T) {
	t.Parallel()

	embed := &fakeEmbedder{err: errors.New("rate limited")}
	cat := &fakeCatalog{
		scored:     []contractx.ScoredID{{ID: "a", Score: 0.9}},
		properties: testProperties(),
	}
	e := NewEngine(embed, cat, newMemCache(), Config{RetryBackoff: time.Millisecond})

	res, err := e.Search(context.Background(), "depa", contractx.SearchFilters{}, nil, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if embed.calls != 2 {
		t.Errorf("embed calls = %d, want 2", embed.calls)
	}
	if len(res.Items) != 1 {
		t.Errorf("items = %+v", res.Items)
	}
}

func TestSearchContextualSkipsEmbedding(t *testing.T) {
	t.Parallel()

	embed := &fakeEmbedder{}
	cat := &fakeCatalog{properties: testProperties()}
	e := newTestEngine(embed, cat, newMemCache())

	cc := &conversationx.Context{
		ConversationID: "c1",
		Resolved:       map[string]string{conversationx.SlotRecentProperty: "b"},
	}

	res, err := e.Search(context.Background(), "cuál era el precio?", contractx.SearchFilters{}, cc, true)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !res.Contextual {
		t.Error("Contextual = false")
	}
	if embed.calls != 0 {
		t.Errorf("embed calls = %d, want 0", embed.calls)
	}
	if len(res.Items) != 1 || res.Items[0].ID != "b" {
		t.Errorf("items = %+v, want property b", res.Items)
	}
}

func TestSearchProjectMentionUsesProjectInventory(t *testing.T) {
	t.Parallel()

	embed := &fakeEmbedder{}
	cat := &fakeCatalog{
		project:      &contractx.ProjectInfo{ID: "p-1", Name: "Torre Pacífico"},
		projectItems: []contractx.PropertySummary{{ID: "a", ProjectID: "p-1"}},
	}
	e := newTestEngine(embed, cat, newMemCache())

	res, err := e.Search(context.Background(), "info del proyecto Torre Pacífico", contractx.SearchFilters{}, nil, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Project == nil || res.Project.ID != "p-1" {
		t.Errorf("Project = %+v", res.Project)
	}
	if embed.calls != 0 {
		t.Errorf("embed calls = %d, want 0", embed.calls)
	}
}
