package retrieval

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
)

const cacheKeyPrefix = "search:"

// NormalizeQuery lowercases and collapses whitespace so trivially different
// phrasings of the same query share one cache entry.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// CacheKey derives the result cache key from the normalized query plus the
// structural filters. Filter marshaling is stable (struct field order), so
// identical filter sets always hash identically.
func CacheKey(query string, filters contractx.SearchFilters) string {
	payload, _ := json.Marshal(filters)
	sum := md5.Sum([]byte(NormalizeQuery(query) + ":" + string(payload)))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])[:12]
}

// cachedResult is the stored shape of one search outcome: ids and scores
// only, never denormalized property data.
type cachedResult struct {
	Query     string               `json:"query"`
	IDs       []contractx.ScoredID `json:"ids"`
	CachedAt  time.Time            `json:"cached_at"`
	ExpiresAt time.Time            `json:"expires_at"`
}

func (c cachedResult) expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
