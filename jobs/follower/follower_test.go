package follower

import (
	"testing"

	"github.com/stretchr/testify/require"

	"arbor/index"
	"arbor/wal"
)

func encode(t *testing.T, seq uint64, key int64) []byte {
	t.Helper()
	payload, err := (wal.ProtoSerializer{}).Encode(&wal.Record{
		Type: wal.RecordInsert,
		Seq:  seq,
		Key:  key,
	})
	require.NoError(t, err)
	return payload
}

func newTestFollower() *Follower {
	return &Follower{
		replica: index.New(),
		ser:     wal.ProtoSerializer{},
	}
}

func TestApplyBuildsReplica(t *testing.T) {
	f := newTestFollower()
	keys := []int64{40, 20, 70, 10, 30, 35, 37}
	for i, k := range keys {
		require.NoError(t, f.apply(encode(t, uint64(i+1), k)))
	}

	require.Equal(t, len(keys), f.replica.Len())
	require.Equal(t, uint64(len(keys)), f.replica.LastSeq())
	require.NoError(t, f.replica.Validate())

	_, ok := f.replica.Lookup(35)
	require.True(t, ok)
}

func TestApplySkipsRedeliveries(t *testing.T) {
	f := newTestFollower()
	require.NoError(t, f.apply(encode(t, 1, 10)))
	require.NoError(t, f.apply(encode(t, 2, 20)))

	// Redelivered after a commit gap: same sequence, must be a no-op.
	require.NoError(t, f.apply(encode(t, 2, 20)))
	require.NoError(t, f.apply(encode(t, 1, 10)))

	require.Equal(t, 2, f.replica.Len())
	require.Equal(t, uint64(2), f.replica.LastSeq())
}

func TestApplyRejectsGarbage(t *testing.T) {
	f := newTestFollower()
	require.Error(t, f.apply([]byte{0xff, 0xff, 0xff}))
	require.Zero(t, f.replica.Len())
}
