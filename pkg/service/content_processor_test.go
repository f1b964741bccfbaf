package service

import (
	"sort"
	"testing"

	"post-dedup/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioPost = "獣医師が教える！【腎臓病】✅重要💡大切🐾#猫のあれこれ"

func newTestProcessor(t *testing.T) *ContentProcessor {
	p, err := NewContentProcessor(nil)
	require.NoError(t, err)
	return p
}

func TestNormalize(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("獣医師が教える腎臓病重要大切", Normalize(scenarioPost))
	assert.Equal("helloworld123", Normalize("Hello, World 123"))
	assert.Equal("猫の腎臓病", Normalize("猫の\n腎臓病 #cat #猫"))
	assert.Equal("", Normalize(""))
	assert.Equal("", Normalize("！？、。 \n✅💡"))
	// 只保留拉丁字母、假名和汉字，其它文字与下划线一并去掉
	assert.Equal("abc", Normalize("Привет abc 안녕 αβγ"))
	assert.Equal("snakecase", Normalize("snake_case"))
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		scenarioPost,
		"ABC def ＃タグ #tag",
		"１２３ カタカナ ひらがな 漢字",
		"🐾 ⚠️ 注意！\n\t改行",
		"",
	}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "input %q", input)
	}
}

func TestFingerprint(t *testing.T) {
	assert := assert.New(t)

	base := Fingerprint(scenarioPost)
	assert.Len(base, 32)

	// 空白、换行、标签不同的变体得到相同指纹
	assert.Equal(base, Fingerprint("獣医師が教える！\n【腎臓病】 ✅重要 💡大切 🐾"))
	assert.Equal(base, Fingerprint("獣医師が教える 腎臓病 重要 大切 #別のタグ"))
	assert.NotEqual(base, Fingerprint("獣医師が教える糖尿病"))

	// md5("") 与旧数据兼容
	assert.Equal("d41d8cd98f00b204e9800998ecf8427e", Fingerprint(""))
}

func TestExtractKeywords(t *testing.T) {
	assert := assert.New(t)
	p := newTestProcessor(t)

	keywords := p.ExtractKeywords("腎臓病と糖尿病の診断。嘔吐もある。腎臓病は怖い")
	assert.ElementsMatch([]string{"腎臓病", "糖尿病", "診断", "嘔吐"}, keywords)
	assert.True(sort.StringsAreSorted(keywords))

	assert.NotNil(p.ExtractKeywords(""))
	assert.Empty(p.ExtractKeywords("今日はいい天気"))
}

func TestExtractKeywordsCaseInsensitive(t *testing.T) {
	assert := assert.New(t)

	p, err := NewContentProcessor(&config.VocabularyConfig{
		Categories: map[string][]string{"disease": {"FIP", "fiv"}},
	})
	require.NoError(t, err)
	assert.Equal([]string{"fip", "fiv"}, p.ExtractKeywords("FIP と fip と FIV"))
}

func TestNewContentProcessorRejectsBadPattern(t *testing.T) {
	_, err := NewContentProcessor(&config.VocabularyConfig{
		Categories: map[string][]string{"broken": {"(unclosed"}},
	})
	assert.Error(t, err)
}

func TestExtractPoints(t *testing.T) {
	assert := assert.New(t)
	p := newTestProcessor(t)

	text := "✅毎日の水分補給\n💡 定期的な血液検査\nこれは重要です。普通の文。"
	assert.Equal([]string{
		"毎日の水分補給",
		"定期的な血液検査",
		"これは重要です。",
	}, p.ExtractPoints(text))

	// 同时是要点行又包含重点词时出现两次
	assert.Equal([]string{"水が大切", "✅水が大切"}, p.ExtractPoints("✅水が大切"))

	assert.NotNil(p.ExtractPoints(""))
	assert.Empty(p.ExtractPoints("普通の文。"))
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t,
		[]string{"一行目！", "二行目?", "三行目"},
		splitSentences("一行目！二行目?\n\n  三行目  "))
}

func TestNewRecord(t *testing.T) {
	assert := assert.New(t)
	p := newTestProcessor(t)

	r := p.NewRecord(scenarioPost+"\n腎臓病の診断", "腎臓病", "tips", "mon")
	assert.Equal(Fingerprint(r.Content), r.ContentHash)
	assert.Equal(Normalize(r.Content), r.NormalizedContent)
	assert.Equal("腎臓病", r.Topic)
	assert.Equal("tips", r.PostType)
	assert.Equal("mon", r.Day)
	assert.Equal([]string{"腎臓病", "診断"}, []string(r.Keywords))
	assert.Contains([]string(r.MainPoints), "重要💡大切🐾#猫のあれこれ")
	assert.Zero(r.ID)
	assert.True(r.CreatedAt.IsZero())
}
