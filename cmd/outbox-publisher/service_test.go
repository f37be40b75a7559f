package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/luxehome-backend/pkg/config"
	"github.com/angelmondragon/luxehome-backend/pkg/db/models"
	"github.com/angelmondragon/luxehome-backend/pkg/enums"
	"github.com/angelmondragon/luxehome-backend/pkg/logger"
	"github.com/angelmondragon/luxehome-backend/pkg/outbox"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestServiceProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			orderEvent(t, enums.EventOrderPlaced, "event-one", 0),
			orderEvent(t, enums.EventOrderPlaced, "event-two", 0),
		},
	}
	pub := &fakeSender{errs: []error{errors.New("transient"), nil}}
	eventRegistry := &fakeRegistry{resolved: resolvedOrderEvent(&outbox.OrderPlacedEvent{})}
	service := newTestService(t, repo, pub, eventRegistry, nil)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if got := len(repo.failed); got != 1 {
		t.Fatalf("unexpected number of failed rows: %d", got)
	}
	if got := len(repo.published); got != 1 {
		t.Fatalf("unexpected number of published rows: %d", got)
	}
	if repo.failed[0] != repo.events[0].ID {
		t.Fatalf("failed row recorded wrong ID")
	}
	if repo.published[0] != repo.events[1].ID {
		t.Fatalf("published row recorded wrong ID")
	}
}

func TestStatusChangeCarriesOrderAttributes(t *testing.T) {
	event := orderEvent(t, enums.EventOrderStatusChanged, "status-change", 0)
	pub := &fakeSender{}
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	eventRegistry := &fakeRegistry{resolved: resolvedOrderEvent(&outbox.OrderStatusChangedEvent{
		OrderID: event.AggregateID,
		From:    enums.OrderStatusPending,
		To:      enums.OrderStatusConfirmed,
	})}
	service := newTestService(t, repo, pub, eventRegistry, nil)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(pub.topics) != 1 || pub.topics[0] != "orders-topic" {
		t.Fatalf("unexpected topics %v", pub.topics)
	}
	if len(pub.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(pub.sent))
	}
	msg := pub.sent[0]
	attrs := msg.Attributes
	if attrs["event_type"] != string(enums.EventOrderStatusChanged) {
		t.Fatalf("unexpected event_type attribute %q", attrs["event_type"])
	}
	if attrs["order_id"] != event.AggregateID.String() || msg.OrderingKey != event.AggregateID.String() {
		t.Fatalf("expected order id attribute and ordering key, got %q / %q", attrs["order_id"], msg.OrderingKey)
	}
	if attrs["status_from"] != string(enums.OrderStatusPending) || attrs["status_to"] != string(enums.OrderStatusConfirmed) {
		t.Fatalf("unexpected status attributes %v", attrs)
	}
	if string(pub.sent[0].Data) != string(event.Payload) {
		t.Fatalf("expected raw payload to be forwarded")
	}
	if len(repo.published) != 1 {
		t.Fatalf("expected published row recorded once, got %d", len(repo.published))
	}
}

func TestServiceProcessBatchMarksTerminalOnNonRetryable(t *testing.T) {
	event := orderEvent(t, enums.EventOrderPlaced, "nonretryable", 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	eventRegistry := &fakeRegistry{err: outbox.NewNonRetryableError(errors.New("invalid payload"))}
	pub := &fakeSender{}
	service := newTestService(t, repo, pub, eventRegistry, nil)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if got := len(repo.terminal); got != 1 || repo.terminal[0] != event.ID {
		t.Fatalf("expected terminal mark for %s, got %v", event.ID, repo.terminal)
	}
	if len(pub.sent) != 0 {
		t.Fatalf("unresolvable events must not be published")
	}
}

func TestServiceProcessBatchMarksTerminalOnMaxAttempts(t *testing.T) {
	event := orderEvent(t, enums.EventOrderPlaced, "max-attempts", 1)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakeSender{errs: []error{errors.New("transient")}}
	eventRegistry := &fakeRegistry{resolved: resolvedOrderEvent(&outbox.OrderPlacedEvent{})}
	service := newTestService(t, repo, pub, eventRegistry, &config.OutboxConfig{
		BatchSize:      1,
		PollIntervalMS: 100,
		MaxAttempts:    2,
	})

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if got := len(repo.terminal); got != 1 {
		t.Fatalf("expected terminal mark, got %d", got)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("terminal rows should not also be marked failed")
	}
	if repo.terminalAttempts != 2 {
		t.Fatalf("expected terminal attempts=2, got %d", repo.terminalAttempts)
	}
}

func TestServiceProcessBatchEmptyReportsIdle(t *testing.T) {
	service := newTestService(t, &fakeRepo{}, &fakeSender{}, &fakeRegistry{}, nil)
	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if processed {
		t.Fatalf("empty batch should not report processed")
	}
}

func TestRunObservesBatchesAndStopsOnCancel(t *testing.T) {
	repo := &fakeRepo{events: []models.OutboxEvent{orderEvent(t, enums.EventOrderPlaced, "run", 0)}}
	pub := &fakeSender{}
	service := newTestService(t, repo, pub, &fakeRegistry{resolved: resolvedOrderEvent(&outbox.OrderPlacedEvent{})}, nil)
	recorder := &fakeRecorder{}
	service.metrics = recorder

	ctx, cancel := context.WithCancel(context.Background())
	repo.onFetch = func(calls int) {
		if calls == 1 {
			repo.events = nil
			return
		}
		cancel()
	}

	err := service.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if recorder.jobs[batchJob] != 1 {
		t.Fatalf("expected one observed batch, got %v", recorder.jobs)
	}
	if !pub.stopped {
		t.Fatalf("expected publishers stopped on shutdown")
	}
}

func TestOrderSenderParksUnknownTopic(t *testing.T) {
	snd := newOrderSender(&fakePubSubClient{})
	defer snd.Stop()

	err := snd.Send(context.Background(), "missing-topic", &gcppubsub.Message{Data: []byte("{}")})
	var nonRetry outbox.NonRetryableError
	if !errors.As(err, &nonRetry) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
	if len(snd.publishers) != 0 {
		t.Fatalf("nil publishers must not be cached")
	}
}

func TestNextBackoffCapsAtMax(t *testing.T) {
	base := 100 * time.Millisecond
	if got := nextBackoff(0, base, time.Second); got != 200*time.Millisecond {
		t.Fatalf("unexpected first backoff %s", got)
	}
	if got := nextBackoff(800*time.Millisecond, base, time.Second); got != time.Second {
		t.Fatalf("expected cap at 1s, got %s", got)
	}
}

func orderEvent(tb testing.TB, eventType enums.OutboxEventType, eventID string, attempts int) models.OutboxEvent {
	tb.Helper()
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelopePayload(tb, eventID),
		AttemptCount:  attempts,
		CreatedAt:     time.Now(),
	}
}

func resolvedOrderEvent(payload any) *outbox.ResolvedEvent {
	return &outbox.ResolvedEvent{
		Descriptor: outbox.EventDescriptor{
			Topic:         "orders-topic",
			AggregateType: enums.AggregateOrder,
		},
		Envelope: outbox.PayloadEnvelope{
			EventID:    uuid.NewString(),
			OccurredAt: time.Now(),
		},
		Payload: payload,
	}
}

func newTestService(t *testing.T, repo outboxRepository, pub sender, registry registryResolver, outboxCfgOverride *config.OutboxConfig) *Service {
	outboxCfg := config.OutboxConfig{
		BatchSize:      2,
		PollIntervalMS: 100,
		MaxAttempts:    5,
	}
	if outboxCfgOverride != nil {
		outboxCfg = *outboxCfgOverride
	}
	cfg := &config.Config{
		Outbox: outboxCfg,
	}
	logg := logger.New(logger.Options{
		ServiceName: "outbox-publisher-test",
		Output:      io.Discard,
	})
	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logg,
		DB:         &fakeDB{},
		PubSub:     &fakePubSubClient{},
		Repository: repo,
		Registry:   registry,
		Sender:     pub,
	})
	if err != nil {
		t.Fatalf("failed to construct service: %v", err)
	}
	return service
}

func mustEnvelopePayload(tb testing.TB, eventID string) json.RawMessage {
	tb.Helper()
	env := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{}`),
	}
	payload, err := json.Marshal(env)
	if err != nil {
		tb.Fatalf("marshal envelope: %v", err)
	}
	return payload
}

type fakeRepo struct {
	events           []models.OutboxEvent
	published        []uuid.UUID
	failed           []uuid.UUID
	terminal         []uuid.UUID
	terminalAttempts int
	fetches          int
	onFetch          func(calls int)
}

func (f *fakeRepo) FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	f.fetches++
	events := f.events
	if f.onFetch != nil {
		f.onFetch(f.fetches)
	}
	return events, nil
}

func (f *fakeRepo) MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error {
	f.terminal = append(f.terminal, id)
	f.terminalAttempts = terminalAttempts
	return nil
}

type fakeDB struct{}

func (f *fakeDB) Ping(context.Context) error {
	return nil
}

func (f *fakeDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error {
	return fn(nil)
}

type fakePubSubClient struct{}

func (f *fakePubSubClient) Ping(context.Context) error {
	return nil
}

func (f *fakePubSubClient) Publisher(name string) *gcppubsub.Publisher {
	return nil
}

type fakeSender struct {
	errs    []error
	topics  []string
	sent    []*gcppubsub.Message
	stopped bool
}

func (f *fakeSender) Send(_ context.Context, topic string, msg *gcppubsub.Message) error {
	f.topics = append(f.topics, topic)
	f.sent = append(f.sent, msg)
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeSender) Stop() {
	f.stopped = true
}

type fakeRegistry struct {
	resolved *outbox.ResolvedEvent
	err      error
}

func (f *fakeRegistry) Resolve(event models.OutboxEvent) (*outbox.ResolvedEvent, error) {
	if f.resolved == nil {
		return nil, f.err
	}
	resolved := *f.resolved
	resolved.Descriptor.AggregateType = event.AggregateType
	resolved.Envelope.EventID = event.ID.String()
	resolved.Envelope.OccurredAt = time.Now()
	return &resolved, f.err
}

type fakeRecorder struct {
	jobs map[string]int
}

func (f *fakeRecorder) Observe(job string, _ time.Duration, _ error) {
	if f.jobs == nil {
		f.jobs = map[string]int{}
	}
	f.jobs[job]++
}
