package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	cachex "github.com/renzovallejo/lima-property-agent/agent/cache"
	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
)

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.data[key]
	if !ok {
		return "", cachex.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func humanTurn(id, text string) contractx.Turn {
	return contractx.Turn{MessageID: id, Role: contractx.RoleHuman, Text: text, Timestamp: time.Now()}
}

func TestLoadMissReturnsEmpty(t *testing.T) {
	t.Parallel()

	m := NewManager(newFakeCache(), Config{})
	cc := m.Load(context.Background(), "c1")

	if !cc.IsEmpty() {
		t.Error("expected empty context on miss")
	}
	if cc.ConversationID != "c1" {
		t.Errorf("ConversationID = %q", cc.ConversationID)
	}
}

func TestAppendRoundTrip(t *testing.T) {
	t.Parallel()

	fc := newFakeCache()
	m := NewManager(fc, Config{})
	ctx := context.Background()

	cc := m.Load(ctx, "c1")
	if err := m.Append(ctx, cc, humanTurn("m1", "hola")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	reloaded := m.Load(ctx, "c1")
	if len(reloaded.Turns) != 1 || reloaded.Turns[0].Text != "hola" {
		t.Fatalf("reloaded turns = %+v", reloaded.Turns)
	}
}

func TestAppendDedupesByMessageID(t *testing.T) {
	t.Parallel()

	m := NewManager(newFakeCache(), Config{})
	ctx := context.Background()

	cc := m.Load(ctx, "c1")
	turn := humanTurn("m1", "hola")
	if err := m.Append(ctx, cc, turn, turn); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(cc.Turns) != 1 {
		t.Errorf("len(Turns) = %d, want 1", len(cc.Turns))
	}
}

func TestAppendEvictsOldest(t *testing.T) {
	t.Parallel()

	m := NewManager(newFakeCache(), Config{HistoryLimit: 3})
	ctx := context.Background()

	cc := m.Load(ctx, "c1")
	for i := 0; i < 5; i++ {
		if err := m.Append(ctx, cc, humanTurn(fmt.Sprintf("m%d", i), fmt.Sprintf("msg %d", i))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if len(cc.Turns) != 3 {
		t.Fatalf("len(Turns) = %d, want 3", len(cc.Turns))
	}
	if cc.Turns[0].MessageID != "m2" {
		t.Errorf("oldest kept = %s, want m2", cc.Turns[0].MessageID)
	}
}

func TestResolvedSlotRoundTrip(t *testing.T) {
	t.Parallel()

	m := NewManager(newFakeCache(), Config{})
	ctx := context.Background()

	cc := m.Load(ctx, "c1")
	if err := m.SetResolved(ctx, cc, SlotRecentProject, "p-9"); err != nil {
		t.Fatalf("SetResolved: %v", err)
	}

	reloaded := m.Load(ctx, "c1")
	if got := reloaded.Resolve(SlotRecentProject); got != "p-9" {
		t.Errorf("Resolve = %q, want p-9", got)
	}
	if !reloaded.HasResolvedEntity() {
		t.Error("HasResolvedEntity = false, want true")
	}
}

func TestLoadCacheFailureDegradesToEphemeral(t *testing.T) {
	t.Parallel()

	fc := newFakeCache()
	fc.err = errors.New("connection refused")
	m := NewManager(fc, Config{})
	ctx := context.Background()

	cc := m.Load(ctx, "c1")
	if !cc.IsEmpty() {
		t.Error("expected empty degraded context")
	}

	// A degraded context serves the message but never persists.
	fc.err = nil
	if err := m.Append(ctx, cc, humanTurn("m1", "hola")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(fc.data) != 0 {
		t.Error("ephemeral context was persisted")
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	fc := newFakeCache()
	m := NewManager(fc, Config{})
	ctx := context.Background()

	cc := m.Load(ctx, "c1")
	if err := m.Append(ctx, cc, humanTurn("m1", "hola")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := m.Reset(ctx, "c1"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if !m.Load(ctx, "c1").IsEmpty() {
		t.Error("context survived reset")
	}
}

func TestLocksSerializeSameConversation(t *testing.T) {
	t.Parallel()

	locks := NewLocks()
	var active, maxActive int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := locks.Acquire("c1")
			defer release()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Errorf("maxActive = %d, want 1", maxActive)
	}
}
