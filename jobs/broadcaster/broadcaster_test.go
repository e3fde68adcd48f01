package broadcaster

import (
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"

	"arbor/outbox"
)

func openTestOutbox(t *testing.T) *outbox.Outbox {
	t.Helper()
	out, err := outbox.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = out.Close() })
	return out
}

func TestDrainPublishesAndAcks(t *testing.T) {
	out := openTestOutbox(t)
	require.NoError(t, out.PutNew(1, []byte("a")))
	require.NoError(t, out.PutNew(2, []byte("b")))

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndSucceed()
	producer.ExpectSendMessageAndSucceed()

	b := NewWithProducer(out, producer, "arbor.inserts", time.Second)
	b.DrainOnce()

	for _, seq := range []uint64{1, 2} {
		rec, err := out.Get(seq)
		require.NoError(t, err)
		require.Equal(t, outbox.StateAcked, rec.State)
	}
	require.NoError(t, b.Close())
}

func TestDrainMarksFailedAndRetries(t *testing.T) {
	out := openTestOutbox(t)
	require.NoError(t, out.PutNew(1, []byte("a")))

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(errors.New("broker down"))
	// The failed record is retried within the same drain pass.
	producer.ExpectSendMessageAndSucceed()

	b := NewWithProducer(out, producer, "arbor.inserts", time.Second)
	b.DrainOnce()

	rec, err := out.Get(1)
	require.NoError(t, err)
	require.Equal(t, outbox.StateAcked, rec.State)
	require.Equal(t, uint32(1), rec.Retries)
	require.NoError(t, b.Close())
}

func TestDrainParksExhaustedRecords(t *testing.T) {
	out := openTestOutbox(t)
	require.NoError(t, out.PutNew(1, []byte("a")))
	for i := 0; i < maxRetries; i++ {
		require.NoError(t, out.MarkFailed(1))
	}

	producer := mocks.NewSyncProducer(t, nil) // no sends expected
	b := NewWithProducer(out, producer, "arbor.inserts", time.Second)
	b.DrainOnce()

	rec, err := out.Get(1)
	require.NoError(t, err)
	require.Equal(t, outbox.StateFailed, rec.State)
	require.Equal(t, uint32(maxRetries), rec.Retries)
	require.NoError(t, b.Close())
}
