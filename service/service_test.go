package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"arbor/index"
	"arbor/outbox"
	"arbor/snapshot"
	"arbor/wal"
)

type harness struct {
	svc     *IndexService
	ix      *index.Index
	w       *wal.WAL
	out     *outbox.Outbox
	walDir  string
	snapDir string
}

func newHarness(t *testing.T, withOutbox bool) *harness {
	t.Helper()
	root := t.TempDir()
	walDir := filepath.Join(root, "wal")
	snapDir := filepath.Join(root, "snap")

	w, err := wal.Open(wal.Config{Dir: walDir})
	require.NoError(t, err)

	var out *outbox.Outbox
	if withOutbox {
		out, err = outbox.Open(filepath.Join(root, "outbox"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = out.Close() })
	}

	ix := index.New()
	return &harness{
		svc:     New(ix, w, out, &snapshot.Writer{Dir: snapDir}),
		ix:      ix,
		w:       w,
		out:     out,
		walDir:  walDir,
		snapDir: snapDir,
	}
}

func TestInsertAndSearch(t *testing.T) {
	h := newHarness(t, false)
	defer h.w.Close()

	seq, err := h.svc.Insert(100)
	require.NoError(t, err)
	require.Equal(t, uint64(1), seq)

	seq, err = h.svc.Insert(50)
	require.NoError(t, err)
	require.Equal(t, uint64(2), seq)

	_, found := h.svc.Search(100)
	require.True(t, found)
	_, found = h.svc.Search(999)
	require.False(t, found)

	require.Equal(t, 2, h.svc.Len())
	require.Equal(t, uint64(2), h.svc.LastSeq())
	require.NoError(t, h.ix.Validate())
}

func TestInsertQueuesOutboxEvent(t *testing.T) {
	h := newHarness(t, true)
	defer h.w.Close()

	seq, err := h.svc.Insert(-17)
	require.NoError(t, err)

	rec, err := h.out.Get(seq)
	require.NoError(t, err)
	require.Equal(t, outbox.StateNew, rec.State)

	decoded, err := (wal.ProtoSerializer{}).Decode(rec.Payload)
	require.NoError(t, err)
	require.Equal(t, int64(-17), decoded.Key)
	require.Equal(t, seq, decoded.Seq)
}

func TestReplayRebuildsIdenticalKeySequence(t *testing.T) {
	h := newHarness(t, false)

	keys := []int64{40, 20, 70, 10, 30, 35, 37, 20}
	for _, k := range keys {
		_, err := h.svc.Insert(k)
		require.NoError(t, err)
	}
	want := h.svc.Snapshot()
	require.NoError(t, h.w.Close())

	rebuilt := index.New()
	last, err := Replay(h.walDir, h.snapDir, nil, rebuilt)
	require.NoError(t, err)
	require.Equal(t, uint64(len(keys)), last)
	// Same insertion order through Apply means the identical tree,
	// colors included.
	require.Equal(t, want, rebuilt.SnapshotEntries())
}

func TestReplayResumesAfterSnapshot(t *testing.T) {
	h := newHarness(t, false)

	for _, k := range []int64{5, 3, 9} {
		_, err := h.svc.Insert(k)
		require.NoError(t, err)
	}
	require.NoError(t, h.svc.WriteSnapshot())
	_, err := h.svc.Insert(7)
	require.NoError(t, err)
	require.NoError(t, h.w.Close())

	rebuilt := index.New()
	last, err := Replay(h.walDir, h.snapDir, nil, rebuilt)
	require.NoError(t, err)
	require.Equal(t, uint64(4), last)
	require.Equal(t, 4, rebuilt.Len(), "snapshot keys plus the WAL tail, no doubles")

	_, ok := rebuilt.Lookup(7)
	require.True(t, ok)
}

func TestReplayEmptyDirs(t *testing.T) {
	root := t.TempDir()
	rebuilt := index.New()
	last, err := Replay(filepath.Join(root, "wal"), filepath.Join(root, "snap"), nil, rebuilt)
	require.NoError(t, err)
	require.Zero(t, last)
	require.Zero(t, rebuilt.Len())
}
