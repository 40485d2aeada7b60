package publish

import (
	"context"
	"fmt"
	"time"

	"quoteboard/pkg/config"
	"quoteboard/pkg/dashboard"
	"quoteboard/pkg/logger"
	"quoteboard/pkg/message"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const producer = "quoteboard"

// RedisPublisher 把每轮快照写入 Redis Stream
type RedisPublisher struct {
	client   redis.Cmdable
	stream   string
	maxLen   int64
	provider string
	log      *logrus.Entry

	newMessage func(dashboard.Snapshot) *message.MessageFormat
}

// NewRedisPublisher 创建发布器
func NewRedisPublisher(client redis.Cmdable, stream string, maxLen int64, provider string) *RedisPublisher {
	if stream == "" {
		stream = message.GetStreamName(message.DataTypeSnapshot)
	}
	p := &RedisPublisher{
		client:   client,
		stream:   stream,
		maxLen:   maxLen,
		provider: provider,
		log:      logger.WithComponent("RedisPublisher"),
	}
	p.newMessage = func(snap dashboard.Snapshot) *message.MessageFormat {
		return message.NewSnapshotMessage(producer, p.provider, snap)
	}
	return p
}

// Dial 按配置连接 Redis 并检查连通性
func Dial(ctx context.Context, cfg config.PublishConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Publish 写入一条快照消息，返回 Stream 条目 ID
func (p *RedisPublisher) Publish(ctx context.Context, snap dashboard.Snapshot) (string, error) {
	msg := p.newMessage(snap)
	data, err := msg.ToJSON()
	if err != nil {
		return "", fmt.Errorf("marshal snapshot message: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: []interface{}{
			"type", msg.Metadata.DataType,
			"id", msg.Header.MessageID,
			"data", data,
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return id, nil
}

// OnRefresh 每轮刷新后发布快照，失败只记录日志
func (p *RedisPublisher) OnRefresh(ctx context.Context, snap dashboard.Snapshot, _ dashboard.RefreshStats) {
	id, err := p.Publish(ctx, snap)
	if err != nil {
		p.log.WithError(err).Warn("快照发布失败")
		return
	}
	p.log.WithFields(logrus.Fields{
		"stream": p.stream,
		"id":     id,
		"cycle":  snap.Cycle,
	}).Debug("快照已发布")
}

var _ dashboard.Observer = (*RedisPublisher)(nil)
