package store

import (
	"context"
	"path"
	"strconv"
	"sync"
	"time"
)

type kind int

const (
	kindString kind = iota
	kindSet
	kindHash
)

type memoryEntry struct {
	kind      kind
	str       string
	set       map[string]struct{}
	hash      map[string]string
	expiresAt time.Time
}

// MemoryKV is an in-process KV with the same shape semantics as the Redis
// adapter: per-key typed values, lazy TTL expiry, WRONGTYPE on shape
// mismatch. Tests run against it instead of a live Redis.
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// SetClock overrides the expiry clock. Test hook.
func (m *MemoryKV) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryKV) live(key string) (*memoryEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(m.now()) {
		delete(m.entries, key)
		return nil, false
	}
	return e, true
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(key)
	if !ok {
		return "", false, nil
	}
	if e.kind != kindString {
		return "", false, ErrWrongType
	}
	return e.str, true, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &memoryEntry{kind: kindString, str: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

func (m *MemoryKV) SetMembers(_ context.Context, key string) ([]string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(key)
	if !ok {
		return nil, false, nil
	}
	if e.kind != kindSet {
		return nil, false, ErrWrongType
	}
	out := make([]string, 0, len(e.set))
	for member := range e.set {
		out = append(out, member)
	}
	return out, true, nil
}

func (m *MemoryKV) AddToSet(_ context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(key)
	if !ok {
		e = &memoryEntry{kind: kindSet, set: make(map[string]struct{})}
		m.entries[key] = e
	}
	if e.kind != kindSet {
		return ErrWrongType
	}
	for _, member := range members {
		e.set[member] = struct{}{}
	}
	return nil
}

func (m *MemoryKV) RemoveFromSet(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(key)
	if !ok {
		return nil
	}
	if e.kind != kindSet {
		return ErrWrongType
	}
	for _, member := range members {
		delete(e.set, member)
	}
	if len(e.set) == 0 {
		delete(m.entries, key)
	}
	return nil
}

func (m *MemoryKV) ReplaceSet(_ context.Context, key string, members []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(members) == 0 {
		delete(m.entries, key)
		return nil
	}
	set := make(map[string]struct{}, len(members))
	for _, member := range members {
		set[member] = struct{}{}
	}
	m.entries[key] = &memoryEntry{kind: kindSet, set: set}
	return nil
}

func (m *MemoryKV) HashGetAll(_ context.Context, key string) (map[string]string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(key)
	if !ok {
		return nil, false, nil
	}
	if e.kind != kindHash {
		return nil, false, ErrWrongType
	}
	out := make(map[string]string, len(e.hash))
	for field, value := range e.hash {
		out[field] = value
	}
	return out, true, nil
}

func (m *MemoryKV) HashSetAll(_ context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(key)
	if !ok {
		e = &memoryEntry{kind: kindHash, hash: make(map[string]string)}
		m.entries[key] = e
	}
	if e.kind != kindHash {
		return ErrWrongType
	}
	for field, value := range fields {
		e.hash[field] = value
	}
	return nil
}

func (m *MemoryKV) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(key)
	if !ok {
		m.entries[key] = &memoryEntry{kind: kindString, str: "1"}
		return 1, nil
	}
	if e.kind != kindString {
		return 0, ErrWrongType
	}
	n := parseCounter(e.str) + 1
	e.str = formatCounter(n)
	return n, nil
}

func (m *MemoryKV) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(key)
	if !ok {
		return nil
	}
	if ttl <= 0 {
		delete(m.entries, key)
		return nil
	}
	e.expiresAt = m.now().Add(ttl)
	return nil
}

func (m *MemoryKV) ScanKeys(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for key := range m.entries {
		if _, ok := m.live(key); !ok {
			continue
		}
		matched, err := path.Match(pattern, key)
		if err != nil {
			return nil, err
		}
		if matched {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func parseCounter(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func formatCounter(n int64) string {
	return strconv.FormatInt(n, 10)
}
