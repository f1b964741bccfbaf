package model

import "time"

// MatchCategory 标明重复是在哪个候选池里发现的
type MatchCategory string

const (
	CategoryExactMatch    MatchCategory = "exact_match"
	CategorySimilarTopic  MatchCategory = "similar_topic"
	CategorySimilarType   MatchCategory = "similar_type"
	CategoryRecentSimilar MatchCategory = "recent_similar"
)

// DuplicateMatch 一条命中的历史投稿
type DuplicateMatch struct {
	Category         MatchCategory `json:"type"`
	Similarity       float64       `json:"similarity"`
	MatchedContent   string        `json:"content"`
	MatchedTopic     string        `json:"topic"`
	MatchedCreatedAt time.Time     `json:"created_at"`
	RecordID         int64         `json:"record_id"`
}

// NewDuplicateMatch 由历史记录构造命中结果
func NewDuplicateMatch(category MatchCategory, similarity float64, record *PostRecord) DuplicateMatch {
	return DuplicateMatch{
		Category:         category,
		Similarity:       similarity,
		MatchedContent:   record.Content,
		MatchedTopic:     record.Topic,
		MatchedCreatedAt: record.CreatedAt,
		RecordID:         record.ID,
	}
}
