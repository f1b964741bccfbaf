package store

import (
	"context"
	"time"

	"post-dedup/pkg/model"

	"gorm.io/gorm"
)

// GormStore 基于 gorm 的存储，支持 TiDB/MySQL 与 sqlite
type GormStore struct {
	db    *gorm.DB
	clock func() time.Time
}

// NewGormStore 需要已经 AutoMigrate 过的连接，见 db.InitTiDB / db.InitSQLite
func NewGormStore(gdb *gorm.DB) *GormStore {
	return &GormStore{db: gdb, clock: now}
}

func (s *GormStore) Insert(ctx context.Context, record *model.PostRecord) error {
	return s.create(ctx, "insert", record, s.clock())
}

func (s *GormStore) Import(ctx context.Context, record *model.PostRecord) error {
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.clock()
	}
	return s.create(ctx, "import", record, createdAt.UTC().Truncate(time.Millisecond))
}

func (s *GormStore) create(ctx context.Context, op string, record *model.PostRecord, createdAt time.Time) error {
	row := *record
	row.ID = 0
	row.CreatedAt = createdAt
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return wrapErr(op, err)
	}
	record.ID = row.ID
	record.CreatedAt = createdAt
	return nil
}

func (s *GormStore) FindByHash(ctx context.Context, hash string) (*model.PostRecord, error) {
	var records []model.PostRecord
	err := s.db.WithContext(ctx).
		Where("content_hash = ?", hash).
		Order("id").
		Limit(1).
		Find(&records).Error
	if err != nil {
		return nil, wrapErr("find by hash", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return normalizeTime(&records[0]), nil
}

func (s *GormStore) MostRecentByTopic(ctx context.Context, topic string, n int) ([]model.PostRecord, error) {
	return s.mostRecent(ctx, "most recent by topic", n, s.db.Where("topic = ?", topic))
}

func (s *GormStore) MostRecentByType(ctx context.Context, postType string, n int) ([]model.PostRecord, error) {
	return s.mostRecent(ctx, "most recent by type", n, s.db.Where("post_type = ?", postType))
}

func (s *GormStore) MostRecent(ctx context.Context, n int) ([]model.PostRecord, error) {
	return s.mostRecent(ctx, "most recent", n, s.db)
}

func (s *GormStore) mostRecent(ctx context.Context, op string, n int, scope *gorm.DB) ([]model.PostRecord, error) {
	records := make([]model.PostRecord, 0)
	if n = checkLimit(n); n == 0 {
		return records, nil
	}
	err := scope.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(n).
		Find(&records).Error
	if err != nil {
		return nil, wrapErr(op, err)
	}
	for i := range records {
		normalizeTime(&records[i])
	}
	return records, nil
}

func (s *GormStore) Scan(ctx context.Context, afterID int64, limit int) ([]model.PostRecord, error) {
	records := make([]model.PostRecord, 0)
	if limit = checkLimit(limit); limit == 0 {
		return records, nil
	}
	err := s.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, wrapErr("scan", err)
	}
	for i := range records {
		normalizeTime(&records[i])
	}
	return records, nil
}

func (s *GormStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("created_at <= ?", cutoff.UTC()).
		Delete(&model.PostRecord{})
	if res.Error != nil {
		return 0, wrapErr("delete older than", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.PostRecord{}).Count(&count).Error; err != nil {
		return 0, wrapErr("count", err)
	}
	return count, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrapErr("close", err)
	}
	return wrapErr("close", sqlDB.Close())
}

func normalizeTime(r *model.PostRecord) *model.PostRecord {
	r.CreatedAt = r.CreatedAt.UTC()
	if r.Keywords == nil {
		r.Keywords = model.StringList{}
	}
	if r.MainPoints == nil {
		r.MainPoints = model.StringList{}
	}
	return r
}
