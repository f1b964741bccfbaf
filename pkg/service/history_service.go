package service

import (
	"context"
	"sync"

	"post-dedup/config"
	"post-dedup/pkg/model"
	"post-dedup/pkg/store"

	"go.uber.org/zap"
)

// HistoryService 对外提供 保存 / 重复检查 / 历史查询 / 清理。
// 存储失败时 Save 返回 false，Check 视为不重复（放行），History 返回空列表，错误只记录日志。
type HistoryService struct {
	store     store.Store
	processor *ContentProcessor
	checker   *DuplicateChecker
	retention *RetentionPolicy
	threshold float64

	// mu 串行化 CheckAndSave
	mu sync.Mutex
}

func NewHistoryService(st store.Store, dedup *config.DedupConfig, vocab *config.VocabularyConfig) (*HistoryService, error) {
	if dedup == nil {
		dedup = config.NewDefaultDedupConfig()
	}
	processor, err := NewContentProcessor(vocab)
	if err != nil {
		return nil, err
	}
	return &HistoryService{
		store:     st,
		processor: processor,
		checker:   NewDuplicateChecker(st, processor, dedup),
		retention: NewRetentionPolicy(st),
		threshold: dedup.Threshold,
	}, nil
}

// Processor 返回内部使用的 ContentProcessor
func (s *HistoryService) Processor() *ContentProcessor {
	return s.processor
}

// Save 保存一条已发布的投稿
func (s *HistoryService) Save(ctx context.Context, content, topic, postType, day string) bool {
	record := s.processor.NewRecord(content, topic, postType, day)
	if err := s.store.Insert(ctx, record); err != nil {
		zap.S().Errorf("投稿保存失败: %v", err)
		return false
	}
	zap.S().Debugw("投稿已保存", "id", record.ID, "topic", topic, "post_type", postType, "hash", record.ContentHash)
	return true
}

// Check 使用配置的阈值检查重复
func (s *HistoryService) Check(ctx context.Context, content, topic, postType string) (bool, []model.DuplicateMatch) {
	return s.CheckWithThreshold(ctx, content, topic, postType, s.threshold)
}

// CheckWithThreshold 使用指定阈值检查重复
func (s *HistoryService) CheckWithThreshold(ctx context.Context, content, topic, postType string, threshold float64) (bool, []model.DuplicateMatch) {
	isDuplicate, matches, err := s.checker.Check(ctx, content, topic, postType, threshold)
	if err != nil {
		// 无法确认时按不重复处理，不阻塞调用方
		zap.S().Errorf("重复检查失败，按不重复处理: %v", err)
		return false, []model.DuplicateMatch{}
	}
	return isDuplicate, matches
}

// CheckAndSave 在同一把锁内完成检查与保存，避免并发调用方同时写入相同内容。
// 重复时不保存并返回命中列表。
func (s *HistoryService) CheckAndSave(ctx context.Context, content, topic, postType, day string) (bool, []model.DuplicateMatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if isDuplicate, matches := s.Check(ctx, content, topic, postType); isDuplicate {
		return false, matches
	}
	return s.Save(ctx, content, topic, postType, day), []model.DuplicateMatch{}
}

// History 按时间倒序返回最近 limit 条
func (s *HistoryService) History(ctx context.Context, limit int) []model.PostRecord {
	records, err := s.store.MostRecent(ctx, limit)
	if err != nil {
		zap.S().Errorf("获取投稿历史失败: %v", err)
		return []model.PostRecord{}
	}
	return records
}

// Prune 删除超过保留天数的历史
func (s *HistoryService) Prune(ctx context.Context, retentionDays int) (int64, error) {
	deleted, err := s.retention.Prune(ctx, retentionDays)
	if err != nil {
		zap.S().Errorf("清理历史投稿失败: %v", err)
		return 0, err
	}
	zap.S().Infof("已删除 %d 条超过 %d 天的投稿", deleted, retentionDays)
	return deleted, nil
}
