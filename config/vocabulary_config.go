package config

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// VocabularyConfig 关键词、要点提取用的词表。
// Categories 为 分类名 -> 正则片段列表。
type VocabularyConfig struct {
	File          string              `json:"file" yaml:"file"` // 可选，单独的词表文件
	Categories    map[string][]string `json:"categories" yaml:"categories"`
	BulletMarkers []string            `json:"bulletMarkers" yaml:"bulletMarkers"`
	SalienceTerms []string            `json:"salienceTerms" yaml:"salienceTerms"`
}

func (v *VocabularyConfig) Validate() []error {
	var errs = make([]error, 0)
	for _, name := range v.CategoryNames() {
		for _, pattern := range v.Categories[name] {
			if strings.TrimSpace(pattern) == "" {
				errs = append(errs, errors.Errorf("词表分类 %s 中存在空模式", name))
				continue
			}
			if _, err := regexp.Compile(pattern); err != nil {
				errs = append(errs, errors.Errorf("词表分类 %s 的模式 %q 无法编译: %v", name, pattern, err))
			}
		}
	}
	for _, marker := range v.BulletMarkers {
		if strings.TrimSpace(marker) == "" {
			errs = append(errs, errors.Errorf("要点符号不能为空"))
		}
	}
	for _, term := range v.SalienceTerms {
		if strings.TrimSpace(term) == "" {
			errs = append(errs, errors.Errorf("重点词不能为空"))
		}
	}
	return errs
}

// CategoryNames 返回排序后的分类名
func (v *VocabularyConfig) CategoryNames() []string {
	names := make([]string, 0, len(v.Categories))
	for name := range v.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func NewDefaultVocabularyConfig() *VocabularyConfig {
	return &VocabularyConfig{
		Categories: map[string][]string{
			"disease": {
				"腎臓病", "心臓病", "糖尿病", "甲状腺", "肝臓", "膀胱", "尿路", "結石", "感染症", "アレルギー",
				"白内障", "緑内障", "結膜炎", "皮膚炎", "外耳炎", "歯周病", "口内炎",
			},
			"symptom": {
				"嘔吐", "下痢", "便秘", "発熱", "食欲不振", "体重減少", "呼吸困難",
			},
			"breed": {
				"アメリカンショートヘア", "ペルシャ", "ロシアンブルー", "スコティッシュフォールド",
				"メインクーン", "ラグドール", "ベンガル", "アビシニアン", "マンチカン", "ブリティッシュ",
			},
			"medical": {
				"血液検査", "診断", "治療", "手術", "薬", "ワクチン", "検査", "レントゲン", "エコー",
				"症状", "予防", "ケア", "管理", "観察", "対処法", "応急処置",
			},
		},
		BulletMarkers: []string{"✅", "💡", "🐾", "⚠️", "❗"},
		SalienceTerms: []string{"重要", "大切", "注意", "必要", "推奨"},
	}
}

// LoadVocabulary 从单独的文件读取词表，yaml 列表或单个字符串都可以
func LoadVocabulary(path string) (*VocabularyConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	fileType := strings.TrimPrefix(filepath.Ext(path), ".")
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Errorf("解析词表文件错误:%s", err.Error())
	}

	vocab := &VocabularyConfig{
		File:       path,
		Categories: make(map[string][]string),
	}
	for name, raw := range v.GetStringMap("categories") {
		patterns, err := toStringList(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "词表分类 %s 格式错误", name)
		}
		vocab.Categories[name] = patterns
	}

	var err error
	if vocab.BulletMarkers, err = toStringList(v.Get("bulletMarkers")); err != nil {
		return nil, errors.Wrap(err, "bulletMarkers 格式错误")
	}
	if vocab.SalienceTerms, err = toStringList(v.Get("salienceTerms")); err != nil {
		return nil, errors.Wrap(err, "salienceTerms 格式错误")
	}

	// 文件中没有给出的部分沿用默认值
	defaults := NewDefaultVocabularyConfig()
	if len(vocab.Categories) == 0 {
		vocab.Categories = defaults.Categories
	}
	if len(vocab.BulletMarkers) == 0 {
		vocab.BulletMarkers = defaults.BulletMarkers
	}
	if len(vocab.SalienceTerms) == 0 {
		vocab.SalienceTerms = defaults.SalienceTerms
	}
	return vocab, nil
}

func toStringList(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		// 单个字符串视为一个模式，不按空白拆分
		return []string{v}, nil
	default:
		return cast.ToStringSliceE(v)
	}
}
