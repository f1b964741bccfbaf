package service

import (
	"context"
	"time"

	"post-dedup/pkg/store"

	"github.com/pkg/errors"
)

// RetentionPolicy 按天数清理历史记录
type RetentionPolicy struct {
	store store.Store
	clock func() time.Time
}

func NewRetentionPolicy(st store.Store) *RetentionPolicy {
	return &RetentionPolicy{store: st, clock: time.Now}
}

// Prune 删除早于 now - retentionDays 的记录。retentionDays 为 0 时删除全部。
func (p *RetentionPolicy) Prune(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays < 0 {
		return 0, errors.Errorf("保留天数不能为负数: %d", retentionDays)
	}
	cutoff := p.clock().UTC().AddDate(0, 0, -retentionDays)
	return p.store.DeleteOlderThan(ctx, cutoff)
}
