package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/luxehome-backend/pkg/config"
	"github.com/angelmondragon/luxehome-backend/pkg/db/models"
	"github.com/angelmondragon/luxehome-backend/pkg/logger"
	"github.com/angelmondragon/luxehome-backend/pkg/outbox"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultBatchSize   = 50
	defaultPollMs      = 500
	defaultMaxAttempts = 10
	sendTimeout        = 15 * time.Second
	batchJob           = "outbox_publish"
	maxBackoff         = 10 * time.Second
	jitterWindow       = 250 * time.Millisecond
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

// jobRecorder observes each polled batch.
type jobRecorder interface {
	Observe(job string, took time.Duration, err error)
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*outbox.ResolvedEvent, error)
}

// sender delivers one message and waits for the broker ack.
type sender interface {
	Send(ctx context.Context, topic string, msg *gcppubsub.Message) error
	Stop()
}

type ServiceParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         dbClient
	PubSub     pubSubClient
	Repository outboxRepository
	Registry   registryResolver
	Sender     sender
	Metrics    jobRecorder
}

// Service relays committed order events from outbox_events to Pub/Sub.
type Service struct {
	logg         *logger.Logger
	db           dbClient
	pubsub       pubSubClient
	repo         outboxRepository
	registry     registryResolver
	sender       sender
	metrics      jobRecorder
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

// outcome is what happened to a single outbox row in a batch.
type outcome int

const (
	published outcome = iota
	retrying
	parked
)

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Config == nil:
		return nil, errors.New("config is required")
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("database client is required")
	case params.PubSub == nil:
		return nil, errors.New("pubsub client is required")
	case params.Repository == nil:
		return nil, errors.New("outbox repository is required")
	case params.Registry == nil:
		return nil, errors.New("event registry is required")
	}

	snd := params.Sender
	if snd == nil {
		snd = newOrderSender(params.PubSub)
	}
	cfg := params.Config.Outbox
	return &Service{
		logg:         params.Logger,
		db:           params.DB,
		pubsub:       params.PubSub,
		repo:         params.Repository,
		registry:     params.Registry,
		sender:       snd,
		metrics:      params.Metrics,
		batchSize:    positiveOr(cfg.BatchSize, defaultBatchSize),
		maxAttempts:  positiveOr(cfg.MaxAttempts, defaultMaxAttempts),
		pollInterval: time.Duration(positiveOr(cfg.PollIntervalMS, defaultPollMs)) * time.Millisecond,
	}, nil
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// Run polls until ctx is canceled. Busy batches are followed immediately by
// the next poll; batch errors back off exponentially up to maxBackoff.
func (s *Service) Run(ctx context.Context) error {
	defer s.sender.Stop()

	deps := []struct {
		name string
		ping func(context.Context) error
	}{{"database", s.db.Ping}, {"pubsub", s.pubsub.Ping}}
	for _, dep := range deps {
		if err := dep.ping(ctx); err != nil {
			s.logg.Error(ctx, dep.name+" ping failed", err)
			return fmt.Errorf("%s ping failed: %w", dep.name, err)
		}
	}

	backoff := s.pollInterval
	for {
		if err := ctx.Err(); err != nil {
			s.logg.Info(ctx, "outbox publisher context canceled")
			return err
		}

		started := time.Now()
		busy, err := s.processBatch(ctx)
		if (busy || err != nil) && s.metrics != nil {
			s.metrics.Observe(batchJob, time.Since(started), err)
		}

		wait := s.pollInterval
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox publisher batch error", err)
			backoff = nextBackoff(backoff, s.pollInterval, maxBackoff)
			wait = backoff
		case busy:
			backoff = s.pollInterval
			continue
		default:
			backoff = s.pollInterval
		}
		if err := sleep(ctx, withJitter(wait)); err != nil {
			return err
		}
	}
}

// processBatch locks up to batchSize due rows and relays them in one
// transaction. It reports whether any row was picked up.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	var counts [parked + 1]int
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return err
		}
		for _, event := range events {
			result, err := s.relay(ctx, tx, event)
			if err != nil {
				return err
			}
			counts[result]++
		}
		return nil
	})
	total := counts[published] + counts[retrying] + counts[parked]
	if err == nil && total > 0 {
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
			"published": counts[published],
			"retrying":  counts[retrying],
			"parked":    counts[parked],
		}), "outbox batch relayed")
	}
	return total > 0, err
}

// relay publishes one order event and records the result on its row. The
// returned error is only set when the row itself could not be updated.
func (s *Service) relay(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) (outcome, error) {
	fields := map[string]any{
		"outbox_id":     event.ID.String(),
		"event_type":    event.EventType,
		"order_id":      event.AggregateID.String(),
		"attempt_count": event.AttemptCount,
	}

	resolved, err := s.registry.Resolve(event)
	if err != nil {
		return parked, s.park(ctx, tx, event, fields, "undecodable", err)
	}
	fields["topic"] = resolved.Descriptor.Topic
	fields["event_id"] = resolved.Envelope.EventID

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	err = s.sender.Send(sendCtx, resolved.Descriptor.Topic, orderMessage(event, resolved))
	cancel()

	var nonRetry outbox.NonRetryableError
	switch {
	case err == nil:
		if err := s.repo.MarkPublishedTx(tx, event.ID); err != nil {
			return published, fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "order event published")
		return published, nil
	case errors.As(err, &nonRetry):
		return parked, s.park(ctx, tx, event, fields, "non_retryable", err)
	case event.AttemptCount+1 >= s.maxAttempts:
		return parked, s.park(ctx, tx, event, fields, "max_attempts", fmt.Errorf("max publish attempts reached: %w", err))
	}

	fields["attempt_count"] = event.AttemptCount + 1
	s.logg.Warn(s.logg.WithField(s.logg.WithFields(ctx, fields), "error", err.Error()), "order event publish failed")
	if err := s.repo.MarkFailedTx(tx, event.ID, err); err != nil {
		return retrying, fmt.Errorf("mark failure %s: %w", event.ID, err)
	}
	return retrying, nil
}

// park stops retries for a row. Payload and last_error stay on the row, so
// resetting attempt_count replays it.
func (s *Service) park(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, fields map[string]any, reason string, err error) error {
	fields["terminal_reason"] = reason
	s.logg.Warn(s.logg.WithField(s.logg.WithFields(ctx, fields), "error", err.Error()), "order event parked")
	if markErr := s.repo.MarkTerminalTx(tx, event.ID, err, s.maxAttempts); markErr != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, markErr)
	}
	return nil
}

// orderMessage forwards the stored envelope untouched. Attributes let
// subscribers filter by order and status without decoding the body, and the
// order id is the ordering key so one order's events arrive in sequence.
func orderMessage(event models.OutboxEvent, resolved *outbox.ResolvedEvent) *gcppubsub.Message {
	orderID := event.AggregateID.String()
	attrs := map[string]string{
		"event_id":    resolved.Envelope.EventID,
		"event_type":  string(event.EventType),
		"order_id":    orderID,
		"occurred_at": resolved.Envelope.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	switch payload := resolved.Payload.(type) {
	case *outbox.OrderPlacedEvent:
		attrs["city"] = payload.City
		attrs["total"] = payload.Total
	case *outbox.OrderStatusChangedEvent:
		attrs["status_from"] = string(payload.From)
		attrs["status_to"] = string(payload.To)
	}
	return &gcppubsub.Message{Data: event.Payload, Attributes: attrs, OrderingKey: orderID}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	return min(current*2, max)
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(jitterWindow)
}
