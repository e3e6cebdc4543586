package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"guruconnect/models"
	"guruconnect/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Bus fans confirmed messages out to every hub instance.
type Bus interface {
	Publish(ctx context.Context, msg models.Message) error
	// Run delivers published messages to handler until ctx is done.
	Run(ctx context.Context, handler func(models.Message)) error
}

// LocalBus delivers within this process only.
type LocalBus struct {
	ch chan models.Message
}

func NewLocalBus() *LocalBus {
	return &LocalBus{ch: make(chan models.Message, 256)}
}

func (b *LocalBus) Publish(ctx context.Context, msg models.Message) error {
	select {
	case b.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *LocalBus) Run(ctx context.Context, handler func(models.Message)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-b.ch:
			handler(msg)
		}
	}
}

// RedisBus shares rooms across instances through Redis Pub/Sub, one channel per chat.
type RedisBus struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisBus(client *redis.Client, logger *zap.Logger) *RedisBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBus{client: client, logger: logger}
}

func (b *RedisBus) Publish(ctx context.Context, msg models.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, utils.ChatChannelPrefix+msg.ChatID, data).Err()
}

func (b *RedisBus) Run(ctx context.Context, handler func(models.Message)) error {
	sub := b.client.PSubscribe(ctx, utils.ChatChannelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg models.Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				b.logger.Warn("dropping malformed chat frame", zap.String("channel", m.Channel), zap.Error(err))
				continue
			}
			if msg.ChatID == "" {
				msg.ChatID = strings.TrimPrefix(m.Channel, utils.ChatChannelPrefix)
			}
			handler(msg)
		}
	}
}
