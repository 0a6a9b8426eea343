package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/FamilyCare-Analytics/internal/config"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

var ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")

const (
	headerOriginalTopic = "original_topic"
	headerErrorMessage  = "error_message"

	statusProcessed    = "processed"
	statusDeadLettered = "dead_lettered"
	statusDropped      = "dropped"
	statusUnrouted     = "unrouted"
)

// Handler processes one message. A returned error triggers a retry.
type Handler func(ctx context.Context, msg *Message) error

// ConsumerConfig controls retries and dead-lettering.
type ConsumerConfig struct {
	Brokers         []string
	GroupID         string
	Topics          []string
	AutoOffsetReset string
	Concurrency     int
	HandlerTimeout  time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	DeadLetterTopic string
}

// NewConsumerConfig merges the Kafka and worker settings.
func NewConsumerConfig(k config.KafkaConfig, w config.WorkerConfig, topics ...string) ConsumerConfig {
	return ConsumerConfig{
		Brokers:         k.Brokers,
		GroupID:         k.GroupID,
		Topics:          topics,
		AutoOffsetReset: k.AutoOffsetReset,
		Concurrency:     w.Concurrency,
		HandlerTimeout:  w.HandlerTimeout,
		MaxRetries:      w.MaxRetries,
		RetryBackoff:    w.RetryBackoff,
	}
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.ReaderStats
}

// DeadLetterPublisher receives messages whose retries are exhausted.
type DeadLetterPublisher interface {
	Publish(ctx context.Context, msg *Message) error
}

// Consumer reads a consumer group and routes each message to the handler
// registered for its topic. Messages are committed once handled, retried,
// or dead-lettered.
//
// A single loop fetches messages and hands them to Concurrency lanes keyed
// by partition. A lane handles its messages one at a time, so offsets of a
// partition are committed in order and never ahead of an unfinished message.
type Consumer struct {
	reader  ReaderInterface
	config  ConsumerConfig
	logger  logging.Logger
	metrics *prometheus.AppMetrics

	handlers map[string]Handler
	mu       sync.RWMutex

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	deadLetter DeadLetterPublisher
}

// NewConsumer opens a group reader over cfg.Topics.
func NewConsumer(cfg ConsumerConfig, deadLetter DeadLetterPublisher, metrics *prometheus.AppMetrics, log logging.Logger) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}
	readerCfg := kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		GroupTopics:    cfg.Topics,
		MinBytes:       1,
		MaxBytes:       10 << 20,
		MaxWait:        time.Second,
		CommitInterval: 0,
		StartOffset:    kafka.FirstOffset,
	}
	if cfg.AutoOffsetReset == "latest" {
		readerCfg.StartOffset = kafka.LastOffset
	}
	return NewConsumerWithReader(kafka.NewReader(readerCfg), cfg, deadLetter, metrics, log), nil
}

// NewConsumerWithReader wraps an existing reader. Tests pass a fake here.
func NewConsumerWithReader(r ReaderInterface, cfg ConsumerConfig, deadLetter DeadLetterPublisher, metrics *prometheus.AppMetrics, log logging.Logger) *Consumer {
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.MaxRetryBackoff <= 0 {
		cfg.MaxRetryBackoff = 30 * time.Second
	}
	return &Consumer{
		reader:     r,
		config:     cfg,
		logger:     log.Named("kafka_consumer"),
		metrics:    metrics,
		handlers:   make(map[string]Handler),
		deadLetter: deadLetter,
	}
}

// Subscribe registers handler for topic, replacing any earlier one.
func (c *Consumer) Subscribe(topic string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	c.logger.Info("subscribed to topic", logging.String("topic", topic))
}

// Start launches the fetch loop and its lanes and returns immediately.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	lanes := make([]chan kafka.Message, c.config.Concurrency)
	for i := range lanes {
		lanes[i] = make(chan kafka.Message, 1)
		c.wg.Add(1)
		go c.laneLoop(ctx, lanes[i])
	}
	c.wg.Add(1)
	go c.fetchLoop(ctx, lanes)

	c.logger.Info("kafka consumer started",
		logging.String("group", c.config.GroupID),
		logging.Int("concurrency", c.config.Concurrency))
	return nil
}

// laneFor keeps every message of a partition on the same lane.
func laneFor(partition, lanes int) int {
	if partition < 0 {
		partition = -partition
	}
	return partition % lanes
}

func (c *Consumer) fetchLoop(ctx context.Context, lanes []chan kafka.Message) {
	defer c.wg.Done()
	defer func() {
		for _, l := range lanes {
			close(l)
		}
	}()
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch failed", logging.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		select {
		case lanes[laneFor(m.Partition, len(lanes))] <- m:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Consumer) laneLoop(ctx context.Context, lane <-chan kafka.Message) {
	defer c.wg.Done()
	for m := range lane {
		if ctx.Err() != nil {
			// Uncommitted messages are redelivered to the next owner.
			continue
		}
		if !c.handle(ctx, m) {
			// Later offsets of this lane must not be committed past m.
			for range lane {
			}
			return
		}
	}
}

// handle processes and commits m. It returns false when shutdown interrupted
// processing and m was left uncommitted.
func (c *Consumer) handle(ctx context.Context, m kafka.Message) bool {
	msg := fromKafkaMessage(m)
	c.mu.RLock()
	handler, ok := c.handlers[m.Topic]
	c.mu.RUnlock()

	status := statusUnrouted
	if ok {
		var err error
		status, err = c.processMessage(ctx, msg, handler)
		if err != nil {
			return false
		}
	} else {
		c.logger.Warn("no handler for topic", logging.String("topic", m.Topic))
	}
	c.metrics.MessagesProcessedTotal.WithLabelValues(m.Topic, status).Inc()

	if err := c.reader.CommitMessages(ctx, m); err != nil {
		c.logger.Error("commit failed",
			logging.String("topic", m.Topic),
			logging.Int("partition", m.Partition),
			logging.Int64("offset", m.Offset),
			logging.Err(err))
	}
	return true
}

// processMessage runs handler with exponential backoff between attempts.
// It only returns an error when ctx is cancelled.
func (c *Consumer) processMessage(ctx context.Context, msg *Message, handler Handler) (string, error) {
	backoff := c.config.RetryBackoff
	var err error
	for attempt := 0; ; attempt++ {
		if err = c.invoke(ctx, msg, handler); err == nil {
			return statusProcessed, nil
		}
		if attempt >= c.config.MaxRetries || !retryable(err) {
			break
		}
		c.logger.Warn("handler failed, retrying",
			logging.String("topic", msg.Topic),
			logging.Int64("offset", msg.Offset),
			logging.Int("attempt", attempt+1),
			logging.Duration("backoff", backoff),
			logging.Err(err))
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.config.MaxRetryBackoff {
			backoff = c.config.MaxRetryBackoff
		}
	}

	c.logger.Error("message processing failed after retries",
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset),
		logging.Err(err))

	if c.deadLetter == nil || c.config.DeadLetterTopic == "" {
		return statusDropped, nil
	}
	headers := make(map[string]string, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[headerOriginalTopic] = msg.Topic
	headers[headerErrorMessage] = err.Error()
	dl := &Message{
		Topic:   c.config.DeadLetterTopic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
	if dlErr := c.deadLetter.Publish(ctx, dl); dlErr != nil {
		c.logger.Error("failed to dead-letter message", logging.Err(dlErr))
		return statusDropped, nil
	}
	return statusDeadLettered, nil
}

func (c *Consumer) invoke(ctx context.Context, msg *Message, handler Handler) error {
	if c.config.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.HandlerTimeout)
		defer cancel()
	}
	return handler(ctx, msg)
}

// Close stops the loops, waits for in-flight messages, and closes the
// reader.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	err := c.reader.Close()
	stats := c.reader.Stats()
	c.logger.Info("kafka consumer closed", logging.Int64("fetched", stats.Messages))
	return err
}

// ValidateConsumerConfig checks the fields a group reader needs.
func ValidateConsumerConfig(cfg ConsumerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.NewValidation("kafka brokers required")
	}
	if cfg.GroupID == "" {
		return errors.NewValidation("kafka group id required")
	}
	if len(cfg.Topics) == 0 {
		return errors.NewValidation("at least one topic required")
	}
	if cfg.AutoOffsetReset != "" && cfg.AutoOffsetReset != "earliest" && cfg.AutoOffsetReset != "latest" {
		return errors.Newf(errors.ErrCodeValidation, "invalid auto offset reset %q", cfg.AutoOffsetReset)
	}
	if cfg.MaxRetries < 0 {
		return errors.NewValidation("max retries must be >= 0")
	}
	return nil
}

// retryable is false for payloads that no retry can fix.
func retryable(err error) bool {
	return !errors.IsValidation(err) && !errors.IsCode(err, errors.ErrCodeSerialization)
}
