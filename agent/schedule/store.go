package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cachex "github.com/renzovallejo/lima-property-agent/agent/cache"
)

// ErrNoDraft is returned by Load when the conversation has no open draft.
var ErrNoDraft = errors.New("no appointment draft")

type StoreConfig struct {
	TTL       time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
	KeyPrefix string        `envconfig:"KEY_PREFIX" split_words:"true" default:"draft:"`
}

// DraftStore persists at most one draft per conversation in the cache.
type DraftStore struct {
	cache cachex.Cache
	cfg   StoreConfig
}

func NewDraftStore(c cachex.Cache, cfg StoreConfig) *DraftStore {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "draft:"
	}
	return &DraftStore{cache: c, cfg: cfg}
}

func (s *DraftStore) key(conversationID string) string {
	return s.cfg.KeyPrefix + conversationID
}

func (s *DraftStore) Load(ctx context.Context, conversationID string) (*Draft, error) {
	raw, err := s.cache.Get(ctx, s.key(conversationID))
	if errors.Is(err, cachex.ErrCacheMiss) {
		return nil, ErrNoDraft
	}
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", conversationID, err)
	}

	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", conversationID, err)
	}
	return &d, nil
}

func (s *DraftStore) Save(ctx context.Context, d *Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", d.ConversationID, err)
	}
	if err := s.cache.Set(ctx, s.key(d.ConversationID), string(raw), s.cfg.TTL); err != nil {
		return fmt.Errorf("save draft %s: %w", d.ConversationID, err)
	}
	return nil
}

func (s *DraftStore) Delete(ctx context.Context, conversationID string) error {
	if err := s.cache.Delete(ctx, s.key(conversationID)); err != nil {
		return fmt.Errorf("delete draft %s: %w", conversationID, err)
	}
	return nil
}
