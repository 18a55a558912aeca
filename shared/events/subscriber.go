package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler func(ctx context.Context, event Event) error

// Subscriber consumes one stream as a member of a consumer group. Entries
// the handler rejects stay pending and are replayed the next time the
// subscriber starts.
type Subscriber struct {
	client        redis.Cmdable
	group         string
	consumer      string
	stream        string
	handler       Handler
	batchSize     int64
	blockDuration time.Duration
	retryDelay    time.Duration
	logger        *zap.Logger
}

type SubscriberConfig struct {
	Group         string
	Consumer      string
	Stream        string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
	Logger        *zap.Logger
}

func NewSubscriber(client redis.Cmdable, config SubscriberConfig) *Subscriber {
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}
	if config.BlockDuration == 0 {
		config.BlockDuration = 5 * time.Second
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return &Subscriber{
		client:        client,
		group:         config.Group,
		consumer:      config.Consumer,
		stream:        config.Stream,
		handler:       config.Handler,
		batchSize:     config.BatchSize,
		blockDuration: config.BlockDuration,
		retryDelay:    time.Second,
		logger: config.Logger.With(
			zap.String("stream", config.Stream),
			zap.String("group", config.Group),
			zap.String("consumer", config.Consumer),
		),
	}
}

// Start blocks until ctx is done. Only events published after the group was
// first created are delivered.
func (s *Subscriber) Start(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	if err := s.drainPending(ctx); err != nil && ctx.Err() == nil {
		s.logger.Warn("replaying pending entries failed", zap.Error(err))
	}

	s.logger.Info("subscriber started")
	for {
		if ctx.Err() != nil {
			s.logger.Info("subscriber stopping")
			return ctx.Err()
		}
		if _, err := s.poll(ctx, ">"); err != nil && ctx.Err() == nil {
			s.logger.Warn("error reading messages", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(s.retryDelay):
			}
		}
	}
}

// drainPending replays entries delivered to this consumer but never
// acknowledged. A batch in which nothing could be acknowledged ends the
// replay so a poison entry cannot spin the loop.
func (s *Subscriber) drainPending(ctx context.Context) error {
	for {
		acked, err := s.poll(ctx, "0")
		if err != nil {
			return err
		}
		if acked == 0 {
			return nil
		}
	}
}

// poll reads one batch starting at id and returns how many entries were
// acknowledged.
func (s *Subscriber) poll(ctx context.Context, id string) (int, error) {
	args := &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, id},
		Count:    s.batchSize,
	}
	if id == ">" {
		args.Block = s.blockDuration
	}
	streams, err := s.client.XReadGroup(ctx, args).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read from stream: %w", err)
	}

	acked := 0
	for _, stream := range streams {
		for _, message := range stream.Messages {
			if err := s.processMessage(ctx, message); err != nil {
				s.logger.Warn("failed to process message", zap.String("messageId", message.ID), zap.Error(err))
				continue
			}
			if err := s.client.XAck(ctx, s.stream, s.group, message.ID).Err(); err != nil {
				s.logger.Warn("failed to ack message", zap.String("messageId", message.ID), zap.Error(err))
				continue
			}
			acked++
		}
	}
	return acked, nil
}

func (s *Subscriber) processMessage(ctx context.Context, message redis.XMessage) error {
	eventData, ok := message.Values["event"].(string)
	if !ok {
		return fmt.Errorf("invalid message format")
	}

	event, err := ParseEvent([]byte(eventData))
	if err != nil {
		return err
	}

	return s.handler(ctx, event)
}

// ParseEvent decodes the envelope stored under the "event" field of a stream
// entry.
func ParseEvent(data []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.Type == "" {
		return Event{}, fmt.Errorf("event type missing")
	}
	return event, nil
}
