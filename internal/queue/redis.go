package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"woostore/storefront/internal/config"
	"woostore/storefront/internal/domain/event"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const streamPrefix = "storefront:stream:"

// EventStream publishes domain events to one Redis stream per event type
type EventStream interface {
	Publish(ctx context.Context, e event.Event) (string, error) // Returns message ID
	Read(ctx context.Context, eventType, consumer string, block time.Duration) (*redis.XMessage, error)
	Ack(ctx context.Context, eventType, msgID string) error
	EnsureStream(ctx context.Context, eventType string) error
}

type RedisEventStream struct {
	redisClient *redis.Client
	groupName   string
}

func NewRedisEventStream(redisClient *redis.Client, cfg config.RedisConfig) *RedisEventStream {
	return &RedisEventStream{
		redisClient: redisClient,
		groupName:   cfg.ConsumerGroup,
	}
}

func StreamName(eventType string) string {
	return streamPrefix + eventType
}

func (q *RedisEventStream) Publish(ctx context.Context, e event.Event) (string, error) {
	eventType := e.EventType()
	streamName := StreamName(eventType)

	value, err := e.EventValue()
	if err != nil {
		return "", fmt.Errorf("failed to serialize event: %w", err)
	}

	messageID, err := q.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: streamName,
		Values: map[string]interface{}{
			"event_type": eventType,
			"event_data": string(value),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add event to Redis stream %s: %w", streamName, err)
	}

	log.Debugf("Published %s to stream %s with message ID: %s", eventType, streamName, messageID)
	return messageID, nil
}

// Read returns the next undelivered message for the consumer group, or nil when none arrived within block
func (q *RedisEventStream) Read(ctx context.Context, eventType, consumer string, block time.Duration) (*redis.XMessage, error) {
	streamName := StreamName(eventType)
	result, err := q.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.groupName,
		Consumer: consumer,
		Streams:  []string{streamName, ">"},
		Count:    1,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from Redis stream %s: %w", streamName, err)
	}

	if len(result) == 0 || len(result[0].Messages) == 0 {
		return nil, nil
	}
	return &result[0].Messages[0], nil
}

func (q *RedisEventStream) Ack(ctx context.Context, eventType, msgID string) error {
	return q.redisClient.XAck(ctx, StreamName(eventType), q.groupName, msgID).Err()
}

// EnsureStream creates the stream and its consumer group if they do not exist yet
func (q *RedisEventStream) EnsureStream(ctx context.Context, eventType string) error {
	streamName := StreamName(eventType)
	err := q.redisClient.XGroupCreateMkStream(ctx, streamName, q.groupName, "0").Err()
	if err != nil {
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			log.Debugf("Group %s already exists for stream %s", q.groupName, streamName)
			return nil
		}
		return fmt.Errorf("failed to create consumer group for %s: %w", streamName, err)
	}

	log.Infof("✅ Stream %s and consumer group %s ready", streamName, q.groupName)
	return nil
}
