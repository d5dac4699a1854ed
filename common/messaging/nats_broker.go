package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/config"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

var ErrJetStreamUnavailable = errors.New("JetStream not initialized")

// Publisher is what crawl hooks and handlers need from the broker.
type Publisher interface {
	PublishSync(ctx context.Context, subject string, data []byte) error
}

// NatsBroker owns the NATS connection and its JetStream context.
type NatsBroker struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	stream string
}

// SetupNatsBroker connects to the server described by cfg.Nats.
func SetupNatsBroker(cfg config.Config) (*NatsBroker, error) {
	opts := []nats.Option{
		nats.Name("news-portal-crawler"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("Disconnected from NATS")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("server", nc.ConnectedUrl()).Msg("Reconnected to NATS")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			evt := log.Error().Err(err)
			if sub != nil {
				evt = evt.Str("subject", sub.Subject)
			}
			evt.Msg("Error handling NATS message")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS connection closed")
		}),
	}
	if cfg.Nats.Username != "" && cfg.Nats.Password != "" {
		opts = append(opts, nats.UserInfo(cfg.Nats.Username, cfg.Nats.Password))
	}

	conn, err := nats.Connect(cfg.Nats.URL(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	broker := &NatsBroker{conn: conn, stream: cfg.Nats.Stream}
	if cfg.Nats.JetStreamEnabled {
		js, err := jetstream.New(conn)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}
		broker.js = js
	}

	log.Info().Str("server", conn.ConnectedUrl()).Bool("jetstream", broker.js != nil).Msg("Connected to NATS")
	return broker, nil
}

// Stream is the configured JetStream stream name.
func (b *NatsBroker) Stream() string {
	return b.stream
}

func (b *NatsBroker) Close() error {
	if b.conn != nil && b.conn.IsConnected() {
		return b.conn.Drain()
	}
	return nil
}

// PublishSync publishes through JetStream and waits for the ack. Without
// JetStream it falls back to a core NATS publish.
func (b *NatsBroker) PublishSync(ctx context.Context, subject string, data []byte) error {
	if b.js == nil {
		if err := b.conn.Publish(subject, data); err != nil {
			return fmt.Errorf("failed to publish message to %s: %w", subject, err)
		}
		return nil
	}

	ack, err := b.js.Publish(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish message to %s: %w", subject, err)
	}

	log.Debug().Str("subject", subject).Str("stream", ack.Stream).Uint64("seq", ack.Sequence).Msg("Published message")
	return nil
}

func (b *NatsBroker) CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	if b.js == nil {
		return nil, ErrJetStreamUnavailable
	}

	stream, err := b.js.CreateOrUpdateStream(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream %s: %w", cfg.Name, err)
	}

	log.Info().Str("name", cfg.Name).Strs("subjects", cfg.Subjects).Msg("JetStream stream ready")
	return stream, nil
}

func (b *NatsBroker) GetStream(ctx context.Context, name string) (jetstream.Stream, error) {
	if b.js == nil {
		return nil, ErrJetStreamUnavailable
	}

	stream, err := b.js.Stream(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream: %w", err)
	}
	return stream, nil
}

// Ping round-trips to the server.
func (b *NatsBroker) Ping(ctx context.Context) error {
	if b.conn == nil || !b.conn.IsConnected() {
		return errors.New("not connected to NATS")
	}
	return b.conn.FlushWithContext(ctx)
}
