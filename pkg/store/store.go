package store

import (
	"context"
	"fmt"
	"time"

	"post-dedup/pkg/model"

	"github.com/pkg/errors"
)

// Store 投稿历史的持久化接口，只追加。
// 所有读取都返回完整的副本，存储层本身不做任何相似度计算。
type Store interface {
	// Insert 追加一条记录并回填 ID 与 CreatedAt
	Insert(ctx context.Context, record *model.PostRecord) error

	// FindByHash 按 content_hash 精确查找，不存在时返回 nil, nil
	FindByHash(ctx context.Context, hash string) (*model.PostRecord, error)

	// MostRecentByTopic / MostRecentByType / MostRecent 按 created_at 倒序返回至多 n 条
	MostRecentByTopic(ctx context.Context, topic string, n int) ([]model.PostRecord, error)
	MostRecentByType(ctx context.Context, postType string, n int) ([]model.PostRecord, error)
	MostRecent(ctx context.Context, n int) ([]model.PostRecord, error)

	// DeleteOlderThan 删除 created_at <= cutoff 的记录，返回删除条数
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Scan 按 id 升序分批读取 id > afterID 的记录
	Scan(ctx context.Context, afterID int64, limit int) ([]model.PostRecord, error)

	Count(ctx context.Context) (int64, error)
	Close() error
}

// Importer 迁移时使用，保留记录原有的 CreatedAt
type Importer interface {
	Import(ctx context.Context, record *model.PostRecord) error
}

// StorageError 打开、读写、索引失败都包装成该类型
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("存储操作 %s 失败: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: errors.WithStack(err)}
}

// IsStorageError 判断错误链中是否有 StorageError
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// ErrClosed 存储已关闭
var ErrClosed = errors.New("store 已关闭")

// now 统一的写入时间：UTC，精确到毫秒（MySQL datetime(3) 会四舍五入）
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func checkLimit(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
