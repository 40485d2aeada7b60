package message

import (
	"testing"
	"time"

	"quoteboard/pkg/dashboard"
	"quoteboard/pkg/quote"
	"quoteboard/pkg/testkit/providers"
	"quoteboard/pkg/timing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() dashboard.Snapshot {
	return dashboard.Snapshot{
		Indices:   []quote.Record{providers.NewRecord("sh000001", "上证指数", 3000, 3030)},
		Watch:     []quote.Record{providers.NewRecord("600519", "贵州茅台", 1500, 1485)},
		Codes:     []string{"600519"},
		Session:   timing.SessionTrading,
		UpdatedAt: time.Date(2025, 8, 21, 10, 0, 0, 0, time.UTC),
		Cycle:     3,
	}
}

func TestNewSnapshotMessage(t *testing.T) {
	msg := NewSnapshotMessage("quoteboard", "sina", testSnapshot())

	assert.NotEmpty(t, msg.Header.MessageID)
	assert.Equal(t, "1.0", msg.Header.Version)
	assert.Equal(t, "quoteboard", msg.Header.Producer)
	assert.Equal(t, "application/json", msg.Header.ContentType)
	assert.True(t, msg.Header.Timestamp > 0)

	assert.Equal(t, "sina", msg.Metadata.Provider)
	assert.Equal(t, DataTypeSnapshot, msg.Metadata.DataType)
	assert.Equal(t, 2, msg.Metadata.BatchSize)
	assert.Equal(t, "交易中", msg.Metadata.TradingSession)

	assert.Equal(t, int64(3), msg.Payload.Cycle)
	assert.Len(t, msg.Payload.Watchlist, 1)
	assert.Contains(t, msg.Checksum, "sha256:")
}

func TestMessageFormat_Validate(t *testing.T) {
	msg := NewSnapshotMessage("quoteboard", "sina", testSnapshot())
	require.NoError(t, msg.Validate())

	original := msg.Checksum
	msg.Checksum = "invalid-checksum"
	assert.Equal(t, ErrInvalidChecksum, msg.Validate())

	msg.Checksum = original
	msg.Payload.Watchlist[0].Price = 1
	assert.Equal(t, ErrInvalidChecksum, msg.Validate(), "修改内容后校验应失败")

	empty := &MessageFormat{}
	assert.Equal(t, ErrInvalidFormat, empty.Validate())
}

func TestMessageFormat_ToJSON_FromJSON(t *testing.T) {
	original := NewSnapshotMessage("quoteboard", "sina", testSnapshot())

	jsonStr, err := original.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, jsonStr, `"dataType":"quote_snapshot"`)
	assert.Contains(t, jsonStr, "贵州茅台")

	parsed, err := FromJSON(jsonStr)
	require.NoError(t, err)
	assert.Equal(t, original.Header, parsed.Header)
	assert.Equal(t, original.Metadata, parsed.Metadata)
	assert.NoError(t, parsed.Validate(), "往返后校验和应保持一致")

	_, err = FromJSON("{not json")
	assert.Error(t, err)
}

func TestGetStreamName(t *testing.T) {
	assert.Equal(t, "stream:quote:snapshot", GetStreamName(DataTypeSnapshot))
	assert.Equal(t, "stream:unknown", GetStreamName("other"))
}
