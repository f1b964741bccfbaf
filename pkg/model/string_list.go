package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// StringList 以 JSON 数组形式落库的字符串序列（keywords / main_points）。
// 读出时遇到 NULL、空串或损坏的 JSON 一律解码为空列表，不向上返回错误。
type StringList []string

// DeserializationError 表示存量数据中的列表字段无法解析
type DeserializationError struct {
	Raw string
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("反序列化字符串列表失败 %q: %v", e.Raw, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// Value 实现 driver.Valuer 接口，空列表写成 "[]"
func (l StringList) Value() (driver.Value, error) {
	return l.Encode(), nil
}

// Encode 序列化为 JSON 数组文本
func (l StringList) Encode() string {
	if len(l) == 0 {
		return "[]"
	}
	// []string 序列化不会失败
	bytes, _ := json.Marshal([]string(l))
	return string(bytes)
}

// Scan 实现 sql.Scanner 接口
func (l *StringList) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		*l = StringList{}
		zap.S().Debugw("字符串列表字段类型未知，按空列表处理", "type", fmt.Sprintf("%T", value))
		return nil
	}
	*l = DecodeStringList(raw)
	return nil
}

// MarshalJSON nil 列表输出 []
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Clone 复制列表
func (l StringList) Clone() StringList {
	if l == nil {
		return StringList{}
	}
	c := make(StringList, len(l))
	copy(c, l)
	return c
}

// DecodeStringList 解析序列化后的列表，失败时返回空列表并记录日志
func DecodeStringList(raw string) StringList {
	list, err := ParseStringList(raw)
	if err != nil {
		zap.S().Debugw("列表字段损坏，按空列表处理", "error", err)
		return StringList{}
	}
	return list
}

// ParseStringList 严格解析，损坏时返回 *DeserializationError
func ParseStringList(raw string) (StringList, error) {
	if raw == "" {
		return StringList{}, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &DeserializationError{Raw: raw, Err: err}
	}
	if items == nil {
		return StringList{}, nil
	}
	return StringList(items), nil
}
