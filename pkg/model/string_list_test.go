package model

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestStringListScan(t *testing.T) {
	assert := assert.New(t)

	var l StringList
	assert.NoError(l.Scan([]byte(`["腎臓病","嘔吐"]`)))
	assert.Equal(StringList{"腎臓病", "嘔吐"}, l)

	assert.NoError(l.Scan(`["a"]`))
	assert.Equal(StringList{"a"}, l)

	// 损坏的存量数据按空列表处理
	assert.NoError(l.Scan("not json"))
	assert.NotNil(l)
	assert.Empty(l)

	assert.NoError(l.Scan(nil))
	assert.Empty(l)

	assert.NoError(l.Scan(""))
	assert.Empty(l)

	assert.NoError(l.Scan(42))
	assert.Empty(l)

	assert.NoError(l.Scan("null"))
	assert.NotNil(l)
	assert.Empty(l)
}

func TestStringListValue(t *testing.T) {
	assert := assert.New(t)

	v, err := StringList(nil).Value()
	assert.NoError(err)
	assert.Equal("[]", v)

	v, err = StringList{"✅ 水分"}.Value()
	assert.NoError(err)
	assert.Equal(`["✅ 水分"]`, v)

	bytes, err := json.Marshal(struct {
		Keywords StringList `json:"keywords"`
	}{})
	assert.NoError(err)
	assert.Equal(`{"keywords":[]}`, string(bytes))
}

func TestParseStringList(t *testing.T) {
	assert := assert.New(t)

	_, err := ParseStringList("{")
	var de *DeserializationError
	assert.True(errors.As(err, &de))
	assert.Equal("{", de.Raw)

	l, err := ParseStringList(`["x","y"]`)
	assert.NoError(err)
	assert.Equal(StringList{"x", "y"}, l)
}

func TestPostRecordClone(t *testing.T) {
	assert := assert.New(t)

	r := &PostRecord{ID: 1, Content: "a", Keywords: StringList{"k"}}
	c := r.Clone()
	c.Keywords[0] = "changed"
	assert.Equal("k", r.Keywords[0])
	assert.NotNil(c.MainPoints)

	var nilRecord *PostRecord
	assert.Nil(nilRecord.Clone())
}

func TestCountChars(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0, CountChars(""))
	assert.Equal(3, CountChars("腎臓病"))
	assert.Equal(4, CountChars("ab\ncd\r\n"))
	assert.Equal(2, CountChars("✅ "))
}
