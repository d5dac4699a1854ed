package messaging

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// ErrMalformedMessage marks payloads that will never decode. They are
// terminated instead of redelivered.
var ErrMalformedMessage = errors.New("malformed message")

// JetStreamMessageHandler handles one JetStream message.
type JetStreamMessageHandler func(ctx context.Context, msg jetstream.Msg) error

// EnsureStream creates the stream or adds the missing subjects to it.
func EnsureStream(ctx context.Context, broker *NatsBroker, name string, subjects []string) (jetstream.Stream, error) {
	stream, err := broker.GetStream(ctx, name)
	if err != nil {
		if !errors.Is(err, jetstream.ErrStreamNotFound) {
			return nil, err
		}
		return broker.CreateStream(ctx, jetstream.StreamConfig{Name: name, Subjects: subjects})
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream info: %w", err)
	}

	cfg := info.Config
	missing := false
	for _, s := range subjects {
		if !slices.Contains(cfg.Subjects, s) {
			cfg.Subjects = append(cfg.Subjects, s)
			missing = true
		}
	}
	if !missing {
		return stream, nil
	}

	log.Info().Strs("subjects", cfg.Subjects).Str("stream_name", name).Msg("Updating stream with new subjects")
	return broker.CreateStream(ctx, cfg)
}

// Consume binds a durable pull consumer on subject and dispatches up to
// concurrency messages at once to handler. Successful messages are acked,
// malformed ones terminated and the rest nak'd for redelivery. The returned
// context stops consumption.
func Consume(ctx context.Context, broker *NatsBroker, subject string, ackWait time.Duration, concurrency int, handler JetStreamMessageHandler) (jetstream.ConsumeContext, error) {
	concurrency = max(concurrency, 1)

	setupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stream, err := EnsureStream(setupCtx, broker, broker.Stream(), []string{SubjectCrawlRun, SubjectArticleScraped})
	if err != nil {
		return nil, err
	}

	name := "consumer_" + strings.ReplaceAll(subject, ".", "-")
	consumer, err := stream.CreateOrUpdateConsumer(setupCtx, jetstream.ConsumerConfig{
		Name:          name,
		Durable:       name,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       ackWait,
		MaxDeliver:    3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer %s: %w", name, err)
	}

	sem := make(chan struct{}, concurrency)
	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			dispatch(ctx, msg, handler)
		}()
	}, jetstream.PullMaxMessages(concurrency))
	if err != nil {
		return nil, fmt.Errorf("failed to consume %s: %w", subject, err)
	}

	log.Info().Str("subject", subject).Str("consumer", name).Msg("Consuming JetStream subject")
	return cc, nil
}

func dispatch(ctx context.Context, msg jetstream.Msg, handler JetStreamMessageHandler) {
	err := handler(ctx, msg)
	switch {
	case err == nil:
		if ackErr := msg.Ack(); ackErr != nil {
			log.Warn().Err(ackErr).Str("subject", msg.Subject()).Msg("Failed to ack message")
		}
	case errors.Is(err, ErrMalformedMessage):
		log.Error().Err(err).Str("subject", msg.Subject()).Msg("Dropping malformed message")
		_ = msg.Term()
	default:
		log.Error().Err(err).Str("subject", msg.Subject()).Msg("Message handler failed")
		_ = msg.Nak()
	}
}
