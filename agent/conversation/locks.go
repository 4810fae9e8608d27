package conversation

import "sync"

// Locks serializes message processing per conversation so two concurrent
// messages from the same user cannot race on context or draft state.
type Locks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewLocks() *Locks {
	return &Locks{entries: map[string]*lockEntry{}}
}

// Acquire blocks until the conversation lock is held and returns the
// release function. Entries are refcounted so idle conversations do not
// accumulate in memory.
func (l *Locks) Acquire(conversationID string) func() {
	l.mu.Lock()
	e, ok := l.entries[conversationID]
	if !ok {
		e = &lockEntry{}
		l.entries[conversationID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.entries, conversationID)
			}
			l.mu.Unlock()
		})
	}
}
