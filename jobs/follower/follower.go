// Package follower consumes broadcast insert events from Kafka and
// applies them to a local replica index. A follower never writes its
// own WAL; the leader's event stream is the source of truth.
package follower

import (
	"context"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"arbor/index"
	"arbor/wal"
)

type Follower struct {
	reader  *kafka.Reader
	replica *index.Index
	ser     wal.Serializer
	log     *logrus.Entry
}

func New(brokers []string, topic, group string, replica *index.Index) *Follower {
	return &Follower{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  group,
			MinBytes: 1,
			MaxBytes: 1 << 20,
		}),
		replica: replica,
		ser:     wal.ProtoSerializer{},
		log:     logrus.WithField("component", "follower"),
	}
}

// Run consumes until ctx is cancelled. Offsets are committed only
// after the event is applied, so a crash re-delivers rather than
// drops; Apply tolerates the resulting duplicates via sequence checks.
func (f *Follower) Run(ctx context.Context) error {
	f.log.Info("started")
	for {
		msg, err := f.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				f.log.Info("stopped")
				return nil
			}
			return errors.Wrap(err, "follower: fetch")
		}

		if err := f.apply(msg.Value); err != nil {
			// A payload we cannot decode will never decode; log it and
			// move past rather than wedging the partition.
			f.log.WithError(err).WithField("offset", msg.Offset).Error("bad event")
		}
		if err := f.reader.CommitMessages(ctx, msg); err != nil {
			return errors.Wrap(err, "follower: commit")
		}
	}
}

// apply decodes one broadcast payload and folds it into the replica.
// Events at or below the replica's last applied sequence are
// redeliveries and are ignored.
func (f *Follower) apply(payload []byte) error {
	rec, err := f.ser.Decode(payload)
	if err != nil {
		return err
	}
	if rec.Type != wal.RecordInsert {
		return nil
	}
	if rec.Seq <= f.replica.LastSeq() {
		return nil
	}
	f.replica.Apply(rec.Seq, rec.Key)
	return nil
}

func (f *Follower) Close() error {
	return f.reader.Close()
}
