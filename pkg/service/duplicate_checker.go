package service

import (
	"context"
	"sort"

	"post-dedup/config"
	"post-dedup/pkg/model"
	"post-dedup/pkg/store"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DuplicateChecker 先按指纹精确查找，未命中时在三个候选池中计算相似度
type DuplicateChecker struct {
	store     store.Store
	processor *ContentProcessor
	scorer    *Scorer
	cfg       config.DedupConfig
}

func NewDuplicateChecker(st store.Store, processor *ContentProcessor, cfg *config.DedupConfig) *DuplicateChecker {
	if cfg == nil {
		cfg = config.NewDefaultDedupConfig()
	}
	return &DuplicateChecker{
		store:     st,
		processor: processor,
		scorer:    NewScorer(processor, cfg.Weights),
		cfg:       *cfg,
	}
}

// candidatePool 一个候选池：按优先级依次查询
type candidatePool struct {
	category model.MatchCategory
	enabled  bool
	fetch    func(ctx context.Context) ([]model.PostRecord, error)
}

// Check 返回是否重复以及按相似度降序排列的命中列表。
// 存储出错时返回 StorageError，由调用方决定是否放行。
func (c *DuplicateChecker) Check(ctx context.Context, content, topic, postType string, threshold float64) (bool, []model.DuplicateMatch, error) {
	checkID := uuid.NewString()
	log := zap.S().With("check_id", checkID)

	query := c.scorer.extract(content)
	hash := hashNormalized(string(query.normalized))

	exact, err := c.store.FindByHash(ctx, hash)
	if err != nil {
		return false, nil, errors.WithMessage(err, "精确匹配查询失败")
	}
	if exact != nil {
		log.Debugw("命中完全一致的历史投稿", "record_id", exact.ID, "hash", hash)
		return true, []model.DuplicateMatch{
			model.NewDuplicateMatch(model.CategoryExactMatch, 1.0, exact),
		}, nil
	}

	pools := []candidatePool{
		{
			category: model.CategorySimilarTopic,
			enabled:  topic != "",
			fetch: func(ctx context.Context) ([]model.PostRecord, error) {
				return c.store.MostRecentByTopic(ctx, topic, c.cfg.TopicPoolSize)
			},
		},
		{
			category: model.CategorySimilarType,
			enabled:  postType != "",
			fetch: func(ctx context.Context) ([]model.PostRecord, error) {
				return c.store.MostRecentByType(ctx, postType, c.cfg.TypePoolSize)
			},
		},
		{
			category: model.CategoryRecentSimilar,
			enabled:  true,
			fetch: func(ctx context.Context) ([]model.PostRecord, error) {
				return c.store.MostRecent(ctx, c.cfg.RecentPoolSize)
			},
		},
	}

	matches := make([]model.DuplicateMatch, 0)
	// 已收录的原文，同一原文只归属于最先发现它的候选池
	collected := make(map[string]struct{})
	scored := 0
	for _, pool := range pools {
		if !pool.enabled {
			continue
		}
		records, err := pool.fetch(ctx)
		if err != nil {
			return false, nil, errors.WithMessagef(err, "查询候选池 %s 失败", pool.category)
		}
		for i := range records {
			record := &records[i]
			if _, ok := collected[record.Content]; ok {
				continue
			}
			scored++
			similarity := c.scorer.score(query, c.scorer.extract(record.Content)).Total
			if similarity < threshold {
				continue
			}
			collected[record.Content] = struct{}{}
			matches = append(matches, model.NewDuplicateMatch(pool.category, similarity, record))
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	log.Debugw("相似度检查完成", "scored", scored, "matched", len(matches), "threshold", threshold)
	return len(matches) > 0, matches, nil
}
