package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultRelayChannel = "walldecor:data_changed"

	publishTimeout      = 2 * time.Second
	defaultCloseTimeout = 5 * time.Second
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type relayMessage struct {
	Instance  string `json:"instance"`
	Timestamp int64  `json:"ts"`
}

// RedisRelay shares the change signal between API instances over Redis Pub/Sub.
// Local changes reach the hub directly; remote ones arrive through Run.
type RedisRelay struct {
	hub        *Hub
	client     *redis.Client
	ownsClient bool
	channel    string
	instance   string
	logger     *zap.Logger
	cancelFn   context.CancelFunc
	doneCh     chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	isRunning  bool
}

type RelayOption func(*RedisRelay)

func WithRelayChannel(channel string) RelayOption {
	return func(r *RedisRelay) {
		if channel != "" {
			r.channel = channel
		}
	}
}

func WithRelayLogger(logger *zap.Logger) RelayOption {
	return func(r *RedisRelay) {
		r.logger = logger
	}
}

// NewRedisRelay dials Redis and fails if it does not answer a ping
func NewRedisRelay(ctx context.Context, cfg RedisConfig, hub *Hub, opts ...RelayOption) (*RedisRelay, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	r := NewRedisRelayWithClient(client, hub, opts...)
	r.ownsClient = true
	return r, nil
}

// NewRedisRelayWithClient uses a shared client; the caller keeps ownership of it
func NewRedisRelayWithClient(client *redis.Client, hub *Hub, opts ...RelayOption) *RedisRelay {
	r := &RedisRelay{
		hub:      hub,
		client:   client,
		channel:  DefaultRelayChannel,
		instance: uuid.NewString(),
		logger:   zap.NewNop(),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NotifyChanged signals this instance first, then the others
func (r *RedisRelay) NotifyChanged() {
	r.hub.NotifyChanged()

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	_ = r.Publish(ctx)
}

func (r *RedisRelay) Publish(ctx context.Context) error {
	data, err := json.Marshal(relayMessage{Instance: r.instance, Timestamp: time.Now().UnixNano()})
	if err != nil {
		return fmt.Errorf("failed to marshal relay message: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		r.logger.Error("Failed to publish change signal",
			zap.String("channel", r.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Run relays remote signals to the hub until ctx ends or Close is called. It blocks.
func (r *RedisRelay) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return fmt.Errorf("relay already running")
	}
	r.isRunning = true
	subCtx, cancel := context.WithCancel(ctx)
	r.cancelFn = cancel
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.isRunning = false
		r.mu.Unlock()
		r.doneOnce.Do(func() { close(r.doneCh) })
	}()

	pubsub := r.client.Subscribe(subCtx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	r.logger.Info("Subscribed to change channel",
		zap.String("channel", r.channel),
		zap.String("instance", r.instance))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			r.logger.Info("Change relay stopped")
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				r.logger.Warn("Change relay channel closed")
				return nil
			}
			r.handle(msg.Payload)
		}
	}
}

// handle re-broadcasts a remote signal and drops our own echo
func (r *RedisRelay) handle(payload string) bool {
	var m relayMessage
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		r.logger.Warn("Ignoring malformed relay message", zap.String("payload", payload), zap.Error(err))
		return false
	}
	if m.Instance == r.instance {
		return false
	}
	r.logger.Debug("Change signal from peer", zap.String("instance", m.Instance))
	r.hub.NotifyChanged()
	return true
}

func (r *RedisRelay) Close() error {
	r.mu.Lock()
	cancelFn := r.cancelFn
	r.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-r.doneCh:
		case <-time.After(defaultCloseTimeout):
			r.logger.Warn("Timeout waiting for change relay to stop")
		}
	}
	if r.ownsClient {
		return r.client.Close()
	}
	return nil
}
