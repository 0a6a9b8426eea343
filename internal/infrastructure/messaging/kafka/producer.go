// Package kafka carries visit and risk-alert events between the API and the
// risk worker.
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/FamilyCare-Analytics/internal/config"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

var (
	ErrProducerClosed = errors.New(errors.ErrCodeMessagingError, "producer closed")
	ErrPublishFailed  = errors.New(errors.ErrCodeMessagingError, "publish failed")
)

const (
	defaultMaxMessageBytes = 1 << 20
	headerEventID          = "event_id"
	headerContentType      = "content_type"
)

// Message is one record read from or written to a topic.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// ProducerStats is a point-in-time copy of the producer counters.
type ProducerStats struct {
	MessagesSent   int64
	MessagesFailed int64
	BytesSent      int64
	LastSentAt     time.Time
}

type producerMetrics struct {
	sent       atomic.Int64
	failed     atomic.Int64
	bytes      atomic.Int64
	lastSentAt atomic.Value // time.Time
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.WriterStats
}

// Producer publishes JSON events keyed for per-aggregate ordering.
type Producer struct {
	writer          WriterInterface
	maxMessageBytes int
	logger          logging.Logger
	closed          atomic.Bool
	metrics         *producerMetrics
}

// NewProducer builds a hash-balanced writer over cfg.Brokers.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.NewValidation("kafka brokers required")
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		MaxAttempts:            3,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           writeTimeout,
		RequiredAcks:           requiredAcks(cfg.RequiredAcks),
		AllowAutoTopicCreation: false,
	}
	log.Info("kafka producer configured",
		logging.Any("brokers", cfg.Brokers),
		logging.Int("required_acks", cfg.RequiredAcks))
	return NewProducerWithWriter(writer, log), nil
}

// NewProducerWithWriter wraps an existing writer. Tests pass a fake here.
func NewProducerWithWriter(w WriterInterface, log logging.Logger) *Producer {
	return &Producer{
		writer:          w,
		maxMessageBytes: defaultMaxMessageBytes,
		logger:          log.Named("kafka_producer"),
		metrics:         &producerMetrics{},
	}
}

func requiredAcks(n int) kafka.RequiredAcks {
	switch n {
	case 0:
		return kafka.RequireNone
	case 1:
		return kafka.RequireOne
	default:
		return kafka.RequireAll
	}
}

// PublishEvent encodes event as JSON and writes it to topic under key.
// Domain events carry their event ID as a header.
func (p *Producer) PublishEvent(ctx context.Context, topic, key string, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event")
	}
	msg := &Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   value,
		Headers: map[string]string{headerContentType: "application/json"},
	}
	if de, ok := event.(common.DomainEvent); ok {
		msg.Headers[headerEventID] = de.EventID()
		msg.Timestamp = de.OccurredAt()
	}
	return p.Publish(ctx, msg)
}

// Publish writes a single message.
func (p *Producer) Publish(ctx context.Context, msg *Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if msg.Topic == "" {
		return errors.NewValidation("topic required")
	}
	if len(msg.Value) == 0 {
		return errors.NewValidation("message value required")
	}
	if len(msg.Value) > p.maxMessageBytes {
		return errors.Newf(errors.ErrCodeValidation, "message of %d bytes exceeds %d", len(msg.Value), p.maxMessageBytes)
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, toKafkaMessage(msg)); err != nil {
		p.metrics.failed.Add(1)
		p.logger.Error("publish failed", logging.String("topic", msg.Topic), logging.Err(err))
		return ErrPublishFailed.WithCause(err)
	}

	p.metrics.sent.Add(1)
	p.metrics.bytes.Add(int64(len(msg.Value)))
	p.metrics.lastSentAt.Store(time.Now())
	p.logger.Debug("message published",
		logging.String("topic", msg.Topic),
		logging.String("key", string(msg.Key)),
		logging.Duration("latency", time.Since(start)))
	return nil
}

// Stats returns a snapshot of the producer counters.
func (p *Producer) Stats() ProducerStats {
	s := ProducerStats{
		MessagesSent:   p.metrics.sent.Load(),
		MessagesFailed: p.metrics.failed.Load(),
		BytesSent:      p.metrics.bytes.Load(),
	}
	if t, ok := p.metrics.lastSentAt.Load().(time.Time); ok {
		s.LastSentAt = t
	}
	return s
}

// Close flushes and closes the writer once.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("kafka producer closed", logging.Int64("sent", p.metrics.sent.Load()))
	return err
}

func toKafkaMessage(msg *Message) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return kafka.Message{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
		Time:    ts,
	}
}

func fromKafkaMessage(m kafka.Message) *Message {
	msg := &Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Timestamp: m.Time,
		Headers:   make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// Decode unmarshals the message value into dest.
func (m *Message) Decode(dest any) error {
	if len(m.Value) == 0 {
		return errors.NewValidation("empty message value")
	}
	if err := json.Unmarshal(m.Value, dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode message")
	}
	return nil
}
