package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"post-dedup/config"
	"post-dedup/pkg/model"
	"post-dedup/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestService(t *testing.T, st store.Store) *HistoryService {
	svc, err := NewHistoryService(st, nil, nil)
	require.NoError(t, err)
	return svc
}

func TestCheckEmptyHistory(t *testing.T) {
	assert := assert.New(t)
	svc := newTestService(t, store.NewMemoryStore())

	isDuplicate, matches := svc.Check(context.Background(), scenarioPost, "腎臓病", "tips")
	assert.False(isDuplicate)
	assert.NotNil(matches)
	assert.Empty(matches)
}

func TestCheckExactMatch(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService(t, store.NewMemoryStore())

	require.True(t, svc.Save(ctx, scenarioPost, "腎臓病", "tips", "mon"))

	variants := []string{
		scenarioPost,
		"獣医師が教える！【腎臓病】✅重要💡大切🐾",
		"獣医師が教える！\n\n【腎臓病】\n✅重要\n💡大切\n🐾 #別のタグ",
	}
	for _, variant := range variants {
		// 主题、类型不影响精确匹配
		isDuplicate, matches := svc.Check(ctx, variant, "", "")
		assert.True(isDuplicate, variant)
		require.Len(t, matches, 1)
		assert.Equal(model.CategoryExactMatch, matches[0].Category)
		assert.Equal(1.0, matches[0].Similarity)
		assert.Equal(scenarioPost, matches[0].MatchedContent)
		assert.Equal("腎臓病", matches[0].MatchedTopic)
		assert.Equal(int64(1), matches[0].RecordID)
	}
}

func TestCheckBelowThreshold(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService(t, store.NewMemoryStore())

	require.True(t, svc.Save(ctx, "腎臓病、嘔吐、下痢、診断、治療", "腎臓病", "tips", ""))

	isDuplicate, matches := svc.Check(ctx, "腎臓病、嘔吐、下痢、白内障、ワクチン", "腎臓病", "tips")
	assert.False(isDuplicate)
	assert.Empty(matches)

	// 阈值降低后命中
	isDuplicate, matches = svc.CheckWithThreshold(ctx, "腎臓病、嘔吐、下痢、白内障、ワクチン", "腎臓病", "tips", 0.3)
	assert.True(isDuplicate)
	require.Len(t, matches, 1)
	assert.Equal(model.CategorySimilarTopic, matches[0].Category)
	assert.InDelta(0.4*14.0/25.0+0.4*3.0/7.0, matches[0].Similarity, 1e-12)
}

func TestCheckPoolAttribution(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService(t, store.NewMemoryStore())

	require.True(t, svc.Save(ctx, "猫の腎臓病について", "腎臓病", "tips", ""))
	query := "猫の腎臓病についての話"

	tests := []struct {
		topic    string
		postType string
		expected model.MatchCategory
	}{
		{"腎臓病", "tips", model.CategorySimilarTopic},
		{"糖尿病", "tips", model.CategorySimilarType},
		{"糖尿病", "faq", model.CategoryRecentSimilar},
		{"", "", model.CategoryRecentSimilar},
		{"", "tips", model.CategorySimilarType},
	}
	for _, tt := range tests {
		isDuplicate, matches := svc.CheckWithThreshold(ctx, query, tt.topic, tt.postType, 0)
		assert.True(isDuplicate)
		// 同一条历史只出现在第一个发现它的候选池
		require.Len(t, matches, 1)
		assert.Equal(tt.expected, matches[0].Category, "topic=%q type=%q", tt.topic, tt.postType)
	}
}

func TestCheckMatchesSortedBySimilarity(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService(t, store.NewMemoryStore())

	require.True(t, svc.Save(ctx, "猫の腎臓病について知っておきたいこと", "腎臓病", "tips", ""))
	require.True(t, svc.Save(ctx, "犬の散歩", "散歩", "tips", ""))
	require.True(t, svc.Save(ctx, "猫の腎臓病について", "其他", "faq", ""))

	_, matches := svc.CheckWithThreshold(ctx, "猫の腎臓病についての話", "腎臓病", "tips", 0)
	require.Len(t, matches, 3)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(matches[i-1].Similarity, matches[i].Similarity)
	}
	assert.Equal("猫の腎臓病について", matches[0].MatchedContent)
	assert.Equal(model.CategoryRecentSimilar, matches[0].Category)
	assert.Equal("犬の散歩", matches[2].MatchedContent)
	assert.Equal(model.CategorySimilarType, matches[2].Category)
}

func TestCheckFailsOpen(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	core, logs := observer.New(zapcore.ErrorLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	st := store.NewMemoryStore()
	svc := newTestService(t, st)
	require.NoError(t, st.Close())

	isDuplicate, matches := svc.Check(ctx, scenarioPost, "腎臓病", "tips")
	assert.False(isDuplicate)
	assert.NotNil(matches)
	assert.Empty(matches)
	assert.Equal(1, logs.FilterMessageSnippet("重复检查失败").Len())

	assert.False(svc.Save(ctx, scenarioPost, "腎臓病", "tips", "mon"))
	assert.Equal(1, logs.FilterMessageSnippet("投稿保存失败").Len())

	history := svc.History(ctx, 10)
	assert.NotNil(history)
	assert.Empty(history)

	_, err := svc.Prune(ctx, 1)
	assert.True(store.IsStorageError(err))
}

func TestDuplicateCheckerReturnsStorageError(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.Close())

	checker := NewDuplicateChecker(st, newTestProcessor(t), nil)
	_, _, err := checker.Check(context.Background(), "text", "", "", 0.7)
	assert.True(t, store.IsStorageError(err))
	assert.ErrorIs(t, err, store.ErrClosed)
}

func TestCheckPoolSizes(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	dedup := config.NewDefaultDedupConfig()
	dedup.TopicPoolSize = 1
	dedup.TypePoolSize = 0
	dedup.RecentPoolSize = 0
	svc, err := NewHistoryService(store.NewMemoryStore(), dedup, nil)
	require.NoError(t, err)

	require.True(t, svc.Save(ctx, "猫の腎臓病 その1", "腎臓病", "tips", ""))
	require.True(t, svc.Save(ctx, "猫の腎臓病 その2", "腎臓病", "tips", ""))

	_, matches := svc.CheckWithThreshold(ctx, "猫の腎臓病 その3", "腎臓病", "tips", 0)
	require.Len(t, matches, 1)
	// 只取最新的一条
	assert.Equal("猫の腎臓病 その2", matches[0].MatchedContent)
}

func TestCheckAndSave(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newTestService(t, st)

	saved, matches := svc.CheckAndSave(ctx, scenarioPost, "腎臓病", "tips", "mon")
	assert.True(saved)
	assert.Empty(matches)

	saved, matches = svc.CheckAndSave(ctx, scenarioPost+" ", "腎臓病", "tips", "tue")
	assert.False(saved)
	require.Len(t, matches, 1)
	assert.Equal(model.CategoryExactMatch, matches[0].Category)

	count, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(int64(1), count)
}

func TestCheckAndSaveConcurrent(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newTestService(t, st)

	var wg sync.WaitGroup
	var mu sync.Mutex
	savedCount := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if saved, _ := svc.CheckAndSave(ctx, scenarioPost, "腎臓病", "tips", "mon"); saved {
				mu.Lock()
				savedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, savedCount)
	count, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestHistory(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	st := store.NewMemoryStore().WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Hour)
	})
	svc := newTestService(t, st)

	for _, content := range []string{"一", "二", "三"} {
		require.True(t, svc.Save(ctx, content, "", "", ""))
	}

	history := svc.History(ctx, 2)
	require.Len(t, history, 2)
	assert.Equal("三", history[0].Content)
	assert.Equal("二", history[1].Content)
	assert.Len(svc.History(ctx, 10), 3)
	assert.Empty(svc.History(ctx, 0))
}

func TestHistoryServicePrune(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newTestService(t, st)

	require.True(t, svc.Save(ctx, "一", "", "", ""))
	require.True(t, svc.Save(ctx, "二", "", "", ""))

	deleted, err := svc.Prune(ctx, 100000)
	require.NoError(t, err)
	assert.Equal(int64(0), deleted)

	deleted, err = svc.Prune(ctx, 0)
	require.NoError(t, err)
	assert.Equal(int64(2), deleted)

	count, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(int64(0), count)

	_, err = svc.Prune(ctx, -1)
	assert.Error(err)
}
