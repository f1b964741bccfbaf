package model

import "time"

// PostRecord 表示 post_history 表中的一条投稿记录，只追加不修改
type PostRecord struct {
	ID                int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Content           string     `gorm:"type:text;not null" json:"content"`
	ContentHash       string     `gorm:"type:varchar(32);not null;index:idx_content_hash" json:"content_hash"`
	NormalizedContent string     `gorm:"type:text;not null" json:"normalized_content"`
	Topic             string     `gorm:"type:varchar(255);index:idx_topic" json:"topic"`
	PostType          string     `gorm:"type:varchar(64);index:idx_post_type" json:"post_type"`
	Day               string     `gorm:"type:varchar(32)" json:"day"`
	CharCount         int        `json:"char_count"`
	CreatedAt         time.Time  `gorm:"index:idx_created_at" json:"created_at"`
	Keywords          StringList `gorm:"type:text" json:"keywords"`
	MainPoints        StringList `gorm:"type:text" json:"main_points"`
}

// TableName 指定表名
func (PostRecord) TableName() string {
	return "post_history"
}

// Clone 返回深拷贝，存储层对外只返回副本
func (r *PostRecord) Clone() *PostRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Keywords = r.Keywords.Clone()
	c.MainPoints = r.MainPoints.Clone()
	return &c
}

// CountChars 统计字符数，不计换行
func CountChars(content string) int {
	n := 0
	for _, r := range content {
		if r == '\n' || r == '\r' {
			continue
		}
		n++
	}
	return n
}
