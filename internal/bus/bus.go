// Package bus shares countdown state with other processes over Redis and
// accepts commands published by them.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	backend "github.com/redis/go-redis/v9"

	"sleepat/internal/host"
	"sleepat/internal/timer"
)

var ErrNoState = errors.New("no state published yet")

// Dispatcher executes commands received on the bus.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd host.Command) error
}

type Bus struct {
	client *backend.Client
	prefix string
	logger *slog.Logger
}

type Option func(*Bus)

// WithPrefix sets the prefix of every key and channel.
func WithPrefix(prefix string) Option {
	return func(b *Bus) {
		b.prefix = prefix
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

func New(address, password string, db int, opts ...Option) *Bus {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

func NewFromClient(client *backend.Client, opts ...Option) *Bus {
	b := &Bus{
		client: client,
		prefix: "sleepat:",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) stateChannel() string {
	return b.prefix + "state"
}

func (b *Bus) latestKey() string {
	return b.prefix + "latest"
}

func (b *Bus) commandsChannel() string {
	return b.prefix + "commands"
}

func (b *Bus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// PublishState stores s as the latest snapshot and announces it.
func (b *Bus) PublishState(ctx context.Context, s timer.State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	pipe := b.client.Pipeline()
	pipe.Set(ctx, b.latestKey(), data, 0)
	pipe.Publish(ctx, b.stateChannel(), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish state: %w", err)
	}
	return nil
}

// Latest returns the last snapshot published by any daemon on this prefix.
func (b *Bus) Latest(ctx context.Context) (timer.State, error) {
	data, err := b.client.Get(ctx, b.latestKey()).Bytes()
	if err == backend.Nil {
		return timer.State{}, ErrNoState
	}
	if err != nil {
		return timer.State{}, err
	}

	var s timer.State
	if err := json.Unmarshal(data, &s); err != nil {
		return timer.State{}, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return s, nil
}

// SendCommand publishes cmd for whichever daemon listens on this prefix.
func (b *Bus) SendCommand(ctx context.Context, cmd host.Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}
	return b.client.Publish(ctx, b.commandsChannel(), data).Err()
}

// Listen dispatches every command published on the commands channel until
// ctx is done. Malformed or failing commands are logged and skipped.
func (b *Bus) Listen(ctx context.Context, d Dispatcher) error {
	sub := b.client.Subscribe(ctx, b.commandsChannel())
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.commandsChannel(), err)
	}
	b.logger.Info("listening for bus commands", "channel", b.commandsChannel())

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.handle(ctx, d, msg.Payload)
		}
	}
}

func (b *Bus) handle(ctx context.Context, d Dispatcher, payload string) {
	cmd, err := host.ParseCommand([]byte(payload))
	if err != nil {
		b.logger.Warn("discarding bus command", "payload", payload, "error", err)
		return
	}
	cmd.Source = "redis"
	if err := d.Dispatch(ctx, cmd); err != nil {
		b.logger.Warn("bus command failed", "action", cmd.Action, "error", err)
	}
}

func (b *Bus) Close() error {
	return b.client.Close()
}
