package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	cachex "github.com/renzovallejo/lima-property-agent/agent/cache"
	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
)

type Config struct {
	HistoryLimit int           `envconfig:"HISTORY_LIMIT" split_words:"true" default:"5"`
	TTL          time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" split_words:"true" default:"conv:"`
}

// Manager loads and persists conversation contexts through the cache.
type Manager struct {
	cache cachex.Cache
	cfg   Config
	now   func() time.Time
}

func NewManager(c cachex.Cache, cfg Config) *Manager {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 5
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "conv:"
	}
	return &Manager{cache: c, cfg: cfg, now: time.Now}
}

func (m *Manager) key(conversationID string) string {
	return m.cfg.KeyPrefix + conversationID
}

// Load returns the stored context, or a fresh empty one on a miss. A cache
// failure degrades to an ephemeral empty context instead of erroring: the
// assistant answers without memory rather than not at all.
func (m *Manager) Load(ctx context.Context, conversationID string) *Context {
	raw, err := m.cache.Get(ctx, m.key(conversationID))
	if errors.Is(err, cachex.ErrCacheMiss) {
		return newContext(conversationID)
	}
	if err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).
			Msg("context load failed, serving without memory")
		cc := newContext(conversationID)
		cc.ephemeral = true
		return cc
	}

	var cc Context
	if err := json.Unmarshal([]byte(raw), &cc); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).
			Msg("corrupt context payload, starting fresh")
		return newContext(conversationID)
	}
	if cc.Resolved == nil {
		cc.Resolved = map[string]string{}
	}
	cc.ConversationID = conversationID
	return &cc
}

// Append records turns (deduped by message id), trims history to the
// configured limit and persists with a refreshed TTL.
func (m *Manager) Append(ctx context.Context, cc *Context, turns ...contractx.Turn) error {
	for _, turn := range turns {
		cc.appendTurn(turn, m.cfg.HistoryLimit)
	}
	return m.persist(ctx, cc)
}

// SetResolved overwrites an entity slot and persists immediately so a
// follow-up in the next message can rely on it.
func (m *Manager) SetResolved(ctx context.Context, cc *Context, slot, id string) error {
	if id == "" {
		return nil
	}
	if cc.Resolved == nil {
		cc.Resolved = map[string]string{}
	}
	cc.Resolved[slot] = id
	return m.persist(ctx, cc)
}

// Reset deletes the stored context. Callers abandon any open draft as well.
func (m *Manager) Reset(ctx context.Context, conversationID string) error {
	if err := m.cache.Delete(ctx, m.key(conversationID)); err != nil {
		return fmt.Errorf("reset context %s: %w", conversationID, err)
	}
	return nil
}

func (m *Manager) persist(ctx context.Context, cc *Context) error {
	if cc.ephemeral {
		return nil
	}
	cc.UpdatedAt = m.now()

	raw, err := json.Marshal(cc)
	if err != nil {
		return fmt.Errorf("marshal context %s: %w", cc.ConversationID, err)
	}
	if err := m.cache.Set(ctx, m.key(cc.ConversationID), string(raw), m.cfg.TTL); err != nil {
		return fmt.Errorf("persist context %s: %w", cc.ConversationID, err)
	}
	return nil
}
