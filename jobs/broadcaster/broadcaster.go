// Package broadcaster implements a background job that periodically
// scans the outbox for unacknowledged insert events and publishes
// them to Kafka.
package broadcaster

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"arbor/metrics"
	"arbor/outbox"
)

const maxRetries = 5

type Broadcaster struct {
	out      *outbox.Outbox
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
	log      *logrus.Entry
}

// New connects a SyncProducer to the given brokers. All-replica acks
// and bounded producer retries; outbox-level retries happen on top.
func New(out *outbox.Outbox, brokers []string, topic string, interval time.Duration) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithProducer(out, producer, topic, interval), nil
}

// NewWithProducer wires an existing producer; tests use this with the
// sarama mock.
func NewWithProducer(out *outbox.Outbox, producer sarama.SyncProducer, topic string, interval time.Duration) *Broadcaster {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Broadcaster{
		out:      out,
		producer: producer,
		topic:    topic,
		interval: interval,
		log:      logrus.WithField("component", "broadcaster"),
	}
}

// Start drains the outbox on a ticker until ctx is cancelled.
func (b *Broadcaster) Start(ctx context.Context) {
	b.log.WithField("interval", b.interval).Info("started")

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			b.log.Info("stopped")
			return
		case <-ticker.C:
			b.DrainOnce()
		}
	}
}

// DrainOnce publishes every NEW event, then retries FAILED ones that
// have attempts left. Errors are absorbed: the record stays FAILED
// and a later pass picks it up.
func (b *Broadcaster) DrainOnce() {
	_ = b.out.ScanByState(outbox.StateNew, b.publish)
	_ = b.out.ScanByState(outbox.StateFailed, func(rec *outbox.Record) error {
		if rec.Retries >= maxRetries {
			return nil // parked; needs operator attention
		}
		return b.publish(rec)
	})
}

func (b *Broadcaster) publish(rec *outbox.Record) error {
	// Mark SENT before the network call: a crash after a successful
	// send must not produce a second NEW publish, only a re-ack pass.
	if err := b.out.MarkSent(rec.Seq); err != nil {
		return err
	}

	_, _, err := b.producer.SendMessage(&sarama.ProducerMessage{
		Topic: b.topic,
		Value: sarama.ByteEncoder(rec.Payload),
	})
	if err != nil {
		metrics.BroadcastFailed.Inc()
		b.log.WithError(err).WithField("seq", rec.Seq).Warn("publish failed")
		return b.out.MarkFailed(rec.Seq)
	}

	metrics.BroadcastPublished.Inc()
	return b.out.MarkAcked(rec.Seq)
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
