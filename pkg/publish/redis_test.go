package publish

import (
	"context"
	"errors"
	"testing"

	"quoteboard/pkg/dashboard"
	"quoteboard/pkg/message"
	"quoteboard/pkg/quote"
	"quoteboard/pkg/testkit/providers"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedPublisher(t *testing.T, client redis.Cmdable, maxLen int64) (*RedisPublisher, *message.MessageFormat, string) {
	t.Helper()
	snap := dashboard.Snapshot{
		Watch: []quote.Record{providers.NewRecord("600519", "贵州茅台", 1500, 1515)},
		Cycle: 1,
	}
	msg := message.NewSnapshotMessage(producer, "sina", snap)
	data, err := msg.ToJSON()
	require.NoError(t, err)

	p := NewRedisPublisher(client, "", maxLen, "sina")
	p.newMessage = func(dashboard.Snapshot) *message.MessageFormat { return msg }
	return p, msg, data
}

func TestRedisPublisher_Publish(t *testing.T) {
	db, mock := redismock.NewClientMock()
	p, msg, data := fixedPublisher(t, db, 1000)

	mock.ExpectXAdd(&redis.XAddArgs{
		Stream: "stream:quote:snapshot",
		MaxLen: 1000,
		Approx: true,
		Values: []interface{}{"type", message.DataTypeSnapshot, "id", msg.Header.MessageID, "data", data},
	}).SetVal("1724731200000-0")

	id, err := p.Publish(context.Background(), dashboard.Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, "1724731200000-0", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPublisher_PublishWithoutTrim(t *testing.T) {
	db, mock := redismock.NewClientMock()
	p, msg, data := fixedPublisher(t, db, 0)

	mock.ExpectXAdd(&redis.XAddArgs{
		Stream: "stream:quote:snapshot",
		Values: []interface{}{"type", message.DataTypeSnapshot, "id", msg.Header.MessageID, "data", data},
	}).SetVal("1-0")

	_, err := p.Publish(context.Background(), dashboard.Snapshot{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPublisher_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	p, msg, data := fixedPublisher(t, db, 1000)

	mock.ExpectXAdd(&redis.XAddArgs{
		Stream: "stream:quote:snapshot",
		MaxLen: 1000,
		Approx: true,
		Values: []interface{}{"type", message.DataTypeSnapshot, "id", msg.Header.MessageID, "data", data},
	}).SetErr(errors.New("READONLY"))

	_, err := p.Publish(context.Background(), dashboard.Snapshot{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xadd stream:quote:snapshot")

	// OnRefresh 不向外传播错误
	mock.ExpectXAdd(&redis.XAddArgs{
		Stream: "stream:quote:snapshot",
		MaxLen: 1000,
		Approx: true,
		Values: []interface{}{"type", message.DataTypeSnapshot, "id", msg.Header.MessageID, "data", data},
	}).SetErr(errors.New("READONLY"))
	p.OnRefresh(context.Background(), dashboard.Snapshot{}, dashboard.RefreshStats{})
	assert.NoError(t, mock.ExpectationsWereMet())
}
