package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"post-dedup/pkg/model"
)

// MemoryStore 内存实现，用于测试与试运行
type MemoryStore struct {
	mu      sync.RWMutex
	records []*model.PostRecord // 按 id 升序
	byHash  map[string]*model.PostRecord
	nextID  int64
	closed  bool
	clock   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byHash: make(map[string]*model.PostRecord),
		nextID: 1,
		clock:  now,
	}
}

// WithClock 替换写入时间来源
func (m *MemoryStore) WithClock(clock func() time.Time) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = clock
	return m
}

func (m *MemoryStore) Insert(ctx context.Context, record *model.PostRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return wrapErr("insert", ErrClosed)
	}
	record.CreatedAt = m.clock()
	m.appendLocked(record)
	return nil
}

func (m *MemoryStore) Import(ctx context.Context, record *model.PostRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return wrapErr("import", ErrClosed)
	}
	// 与 SQL 后端一致：UTC，精确到毫秒
	if record.CreatedAt.IsZero() {
		record.CreatedAt = m.clock()
	} else {
		record.CreatedAt = record.CreatedAt.UTC().Truncate(time.Millisecond)
	}
	m.appendLocked(record)
	return nil
}

func (m *MemoryStore) appendLocked(record *model.PostRecord) {
	record.ID = m.nextID
	m.nextID++
	stored := record.Clone()
	m.records = append(m.records, stored)
	// 与 SQL 后端一致：同一 hash 返回最早的一条
	if _, ok := m.byHash[stored.ContentHash]; !ok {
		m.byHash[stored.ContentHash] = stored
	}
}

func (m *MemoryStore) FindByHash(ctx context.Context, hash string) (*model.PostRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, wrapErr("find by hash", ErrClosed)
	}
	return m.byHash[hash].Clone(), nil
}

func (m *MemoryStore) MostRecentByTopic(ctx context.Context, topic string, n int) ([]model.PostRecord, error) {
	return m.mostRecent("most recent by topic", n, func(r *model.PostRecord) bool { return r.Topic == topic })
}

func (m *MemoryStore) MostRecentByType(ctx context.Context, postType string, n int) ([]model.PostRecord, error) {
	return m.mostRecent("most recent by type", n, func(r *model.PostRecord) bool { return r.PostType == postType })
}

func (m *MemoryStore) MostRecent(ctx context.Context, n int) ([]model.PostRecord, error) {
	return m.mostRecent("most recent", n, func(*model.PostRecord) bool { return true })
}

func (m *MemoryStore) mostRecent(op string, n int, keep func(*model.PostRecord) bool) ([]model.PostRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, wrapErr(op, ErrClosed)
	}
	matched := make([]*model.PostRecord, 0)
	for _, r := range m.records {
		if keep(r) {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	n = checkLimit(n)
	if len(matched) > n {
		matched = matched[:n]
	}
	out := make([]model.PostRecord, 0, len(matched))
	for _, r := range matched {
		out = append(out, *r.Clone())
	}
	return out, nil
}

func (m *MemoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, wrapErr("delete older than", ErrClosed)
	}
	kept := m.records[:0]
	var deleted int64
	for _, r := range m.records {
		if !r.CreatedAt.After(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	m.byHash = make(map[string]*model.PostRecord, len(kept))
	for _, r := range kept {
		if _, ok := m.byHash[r.ContentHash]; !ok {
			m.byHash[r.ContentHash] = r
		}
	}
	return deleted, nil
}

func (m *MemoryStore) Scan(ctx context.Context, afterID int64, limit int) ([]model.PostRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, wrapErr("scan", ErrClosed)
	}
	limit = checkLimit(limit)
	out := make([]model.PostRecord, 0, limit)
	for _, r := range m.records {
		if len(out) >= limit {
			break
		}
		if r.ID > afterID {
			out = append(out, *r.Clone())
		}
	}
	return out, nil
}

func (m *MemoryStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, wrapErr("count", ErrClosed)
	}
	return int64(len(m.records)), nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
