package service

import (
	"context"
	"time"

	"post-dedup/pkg/store"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// MigrationResult 迁移统计
type MigrationResult struct {
	Processed int
	Skipped   int
	Failed    int
}

type MigrationService struct {
	processor *ContentProcessor
}

func NewMigrationService(processor *ContentProcessor) *MigrationService {
	return &MigrationService{
		processor: processor,
	}
}

// Migrate 从 src 按 id 分批读取历史，用当前词表重新计算指纹、关键词和要点后写入 dst，保留原 created_at。
// dst 中已存在相同指纹的记录会被跳过，因此可以重复执行。
func (s *MigrationService) Migrate(ctx context.Context, src, dst store.Store, batchSize int) (MigrationResult, error) {
	var result MigrationResult
	importer, ok := dst.(store.Importer)
	if !ok {
		return result, errors.Errorf("目标存储 %T 不支持导入", dst)
	}
	if batchSize <= 0 {
		return result, errors.Errorf("批量大小必须大于 0: %d", batchSize)
	}

	startTime := time.Now()
	var afterID int64

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		// 批量查询
		records, err := src.Scan(ctx, afterID, batchSize)
		if err != nil {
			return result, errors.WithMessage(err, "读取源数据失败")
		}
		if len(records) == 0 {
			break
		}

		for _, old := range records {
			afterID = old.ID

			record := s.processor.NewRecord(old.Content, old.Topic, old.PostType, old.Day)
			record.CreatedAt = old.CreatedAt

			existing, err := dst.FindByHash(ctx, record.ContentHash)
			if err != nil {
				zap.S().Warnf("查询记录 ID %d 的指纹失败: %v", old.ID, err)
				result.Failed++
				continue
			}
			if existing != nil {
				zap.S().Debugf("记录 ID %d: 目标中已存在相同内容 (ID %d)，跳过", old.ID, existing.ID)
				result.Skipped++
				continue
			}

			if err := importer.Import(ctx, record); err != nil {
				zap.S().Warnf("导入记录 ID %d 失败: %v", old.ID, err)
				result.Failed++
				continue
			}
			result.Processed++
		}
	}

	zap.S().Infof("迁移完成: 成功 %d 条, 跳过 %d 条, 失败 %d 条", result.Processed, result.Skipped, result.Failed)
	zap.S().Infof("耗时：%s", time.Since(startTime))
	return result, nil
}
