package store

import (
	"context"
	"database/sql"
	"time"

	"post-dedup/pkg/model"
)

const postColumns = `id, content, content_hash, normalized_content,
	COALESCE(topic, ''), COALESCE(post_type, ''), COALESCE(day, ''),
	COALESCE(char_count, 0), created_at, keywords, main_points`

// DuckDBStore 基于嵌入式 duckdb 文件的存储
type DuckDBStore struct {
	db    *sql.DB
	clock func() time.Time
}

// NewDuckDBStore 使用已初始化表结构的连接，见 db.OpenDuckDB
func NewDuckDBStore(duckDB *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: duckDB, clock: now}
}

func (s *DuckDBStore) Insert(ctx context.Context, record *model.PostRecord) error {
	return s.insert(ctx, "insert", record, s.clock())
}

func (s *DuckDBStore) Import(ctx context.Context, record *model.PostRecord) error {
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.clock()
	}
	return s.insert(ctx, "import", record, createdAt.UTC().Truncate(time.Millisecond))
}

// insert 单条语句写入，失败时不会留下半条记录
func (s *DuckDBStore) insert(ctx context.Context, op string, record *model.PostRecord, createdAt time.Time) error {
	insertSQL := `
		INSERT INTO post_history (content, content_hash, normalized_content, topic, post_type, day,
			char_count, created_at, keywords, main_points)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	var id int64
	err := s.db.QueryRowContext(ctx, insertSQL,
		record.Content,
		record.ContentHash,
		record.NormalizedContent,
		record.Topic,
		record.PostType,
		record.Day,
		record.CharCount,
		createdAt,
		record.Keywords.Encode(),
		record.MainPoints.Encode(),
	).Scan(&id)
	if err != nil {
		return wrapErr(op, err)
	}
	record.ID = id
	record.CreatedAt = createdAt
	return nil
}

func (s *DuckDBStore) FindByHash(ctx context.Context, hash string) (*model.PostRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM post_history WHERE content_hash = ? ORDER BY id LIMIT 1`, hash)
	if err != nil {
		return nil, wrapErr("find by hash", err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, wrapErr("find by hash", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (s *DuckDBStore) MostRecentByTopic(ctx context.Context, topic string, n int) ([]model.PostRecord, error) {
	return s.query(ctx, "most recent by topic",
		`SELECT `+postColumns+` FROM post_history WHERE topic = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		topic, checkLimit(n))
}

func (s *DuckDBStore) MostRecentByType(ctx context.Context, postType string, n int) ([]model.PostRecord, error) {
	return s.query(ctx, "most recent by type",
		`SELECT `+postColumns+` FROM post_history WHERE post_type = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		postType, checkLimit(n))
}

func (s *DuckDBStore) MostRecent(ctx context.Context, n int) ([]model.PostRecord, error) {
	return s.query(ctx, "most recent",
		`SELECT `+postColumns+` FROM post_history ORDER BY created_at DESC, id DESC LIMIT ?`,
		checkLimit(n))
}

func (s *DuckDBStore) Scan(ctx context.Context, afterID int64, limit int) ([]model.PostRecord, error) {
	return s.query(ctx, "scan",
		`SELECT `+postColumns+` FROM post_history WHERE id > ? ORDER BY id LIMIT ?`,
		afterID, checkLimit(limit))
}

func (s *DuckDBStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM post_history WHERE created_at <= ?`, cutoff.UTC())
	if err != nil {
		return 0, wrapErr("delete older than", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, wrapErr("delete older than", err)
	}
	return deleted, nil
}

func (s *DuckDBStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_history`).Scan(&count); err != nil {
		return 0, wrapErr("count", err)
	}
	return count, nil
}

func (s *DuckDBStore) Close() error {
	return wrapErr("close", s.db.Close())
}

func (s *DuckDBStore) query(ctx context.Context, op, query string, args ...interface{}) ([]model.PostRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return records, nil
}

func scanRecords(rows *sql.Rows) ([]model.PostRecord, error) {
	defer rows.Close()
	records := make([]model.PostRecord, 0)
	for rows.Next() {
		var r model.PostRecord
		if err := rows.Scan(
			&r.ID,
			&r.Content,
			&r.ContentHash,
			&r.NormalizedContent,
			&r.Topic,
			&r.PostType,
			&r.Day,
			&r.CharCount,
			&r.CreatedAt,
			&r.Keywords,
			&r.MainPoints,
		); err != nil {
			return nil, err
		}
		r.CreatedAt = r.CreatedAt.UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
