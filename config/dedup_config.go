package config

import (
	"math"

	"github.com/pkg/errors"
)

// DedupConfig 重复检测参数
type DedupConfig struct {
	Threshold      float64        `json:"threshold" yaml:"threshold"`           // 相似度阈值，>= 即视为重复
	TopicPoolSize  int            `json:"topicPoolSize" yaml:"topicPoolSize"`   // 同主题候选数
	TypePoolSize   int            `json:"typePoolSize" yaml:"typePoolSize"`     // 同类型候选数
	RecentPoolSize int            `json:"recentPoolSize" yaml:"recentPoolSize"` // 最近投稿候选数
	RetentionDays  int            `json:"retentionDays" yaml:"retentionDays"`   // 历史保留天数
	Weights        *WeightsConfig `json:"weights" yaml:"weights"`
}

// WeightsConfig 三种相似度信号的权重，合计必须为 1
type WeightsConfig struct {
	Text    float64 `json:"text" yaml:"text"`
	Keyword float64 `json:"keyword" yaml:"keyword"`
	Point   float64 `json:"point" yaml:"point"`
}

func (d *DedupConfig) Validate() []error {
	var errs = make([]error, 0)
	if d.Threshold < 0 || d.Threshold > 1 {
		errs = append(errs, errors.Errorf("相似度阈值必须在 [0,1] 之间: %v", d.Threshold))
	}
	if d.TopicPoolSize < 0 || d.TypePoolSize < 0 || d.RecentPoolSize < 0 {
		errs = append(errs, errors.Errorf("候选池大小不能为负数"))
	}
	if d.RetentionDays < 0 {
		errs = append(errs, errors.Errorf("保留天数不能为负数: %d", d.RetentionDays))
	}
	if d.Weights == nil {
		errs = append(errs, errors.Errorf("相似度权重未设置"))
		return errs
	}
	w := d.Weights
	if w.Text < 0 || w.Keyword < 0 || w.Point < 0 {
		errs = append(errs, errors.Errorf("相似度权重不能为负数"))
	}
	if sum := w.Text + w.Keyword + w.Point; math.Abs(sum-1) > 1e-9 {
		errs = append(errs, errors.Errorf("相似度权重之和必须为 1，当前为 %v", sum))
	}
	return errs
}

func NewDefaultDedupConfig() *DedupConfig {
	return &DedupConfig{
		Threshold:      0.7,
		TopicPoolSize:  20,
		TypePoolSize:   30,
		RecentPoolSize: 50,
		RetentionDays:  90,
		Weights:        NewDefaultWeightsConfig(),
	}
}

func NewDefaultWeightsConfig() *WeightsConfig {
	return &WeightsConfig{
		Text:    0.4,
		Keyword: 0.4,
		Point:   0.2,
	}
}
