package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// StreamMessage Redis Streams 消息；Data 为 JSON 负载（data 字段）
type StreamMessage struct {
	ID   string
	Data string
	At   time.Time
}

// PublishJSONToStream 追加一条 {data, timestamp} 消息
// maxLen > 0 时使用近似裁剪（MAXLEN ~），避免 stream 无限增长
func PublishJSONToStream(ctx context.Context, client *redis.Client, stream string, maxLen int64, data interface{}) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode stream payload: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(payload),
			"timestamp": time.Now().Unix(),
		},
	}
	if maxLen > 0 {
		args.MaxLen = maxLen
		args.Approx = true
	}
	return client.XAdd(ctx, args).Result()
}

// ReadFromStream 以消费者组读取新消息；block 期间无消息时返回空切片
func ReadFromStream(ctx context.Context, client *redis.Client, stream, group, consumer string, count int64, block time.Duration) ([]StreamMessage, error) {
	streams, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return []StreamMessage{}, nil
	}
	if err != nil {
		return nil, err
	}

	var out []StreamMessage
	for _, s := range streams {
		for _, msg := range s.Messages {
			m := StreamMessage{ID: msg.ID}
			if v, ok := msg.Values["data"].(string); ok {
				m.Data = v
			}
			if ts, ok := msg.Values["timestamp"].(string); ok {
				var sec int64
				if _, err := fmt.Sscan(ts, &sec); err == nil {
					m.At = time.Unix(sec, 0)
				}
			}
			out = append(out, m)
		}
	}
	return out, nil
}

// AckStream 确认消息已处理
func AckStream(ctx context.Context, client *redis.Client, stream, group string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return client.XAck(ctx, stream, group, ids...).Err()
}

// CreateConsumerGroup 创建消费者组，stream 不存在时一并创建；组已存在时忽略
// 新建的组只接收创建之后的消息
func CreateConsumerGroup(ctx context.Context, client *redis.Client, stream, group string) error {
	err := client.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group %s on %s: %w", group, stream, err)
	}
	return nil
}
