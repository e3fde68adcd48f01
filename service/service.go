package service

import (
	"sync"

	"github.com/sirupsen/logrus"

	"arbor/index"
	"arbor/metrics"
	"arbor/outbox"
	"arbor/rbtree"
	"arbor/snapshot"
	"arbor/wal"
)

/*
IndexService is the ONLY write entry point into the system.

All coordination between:
- index (the red-black tree)
- wal (durability)
- outbox (broadcast queue)
- snapshot
happens here. The RWMutex is what makes the single-writer tree safe to
share: rotations move several pointers non-atomically, so readers are
excluded while an insert runs.
*/

type IndexService struct {
	mu    sync.RWMutex
	ix    *index.Index
	wal   *wal.WAL
	out   *outbox.Outbox // optional
	snaps *snapshot.Writer
	log   *logrus.Entry
}

// New wires all dependencies. The outbox may be nil when broadcasting
// is disabled.
func New(ix *index.Index, w *wal.WAL, out *outbox.Outbox, snaps *snapshot.Writer) *IndexService {
	return &IndexService{
		ix:    ix,
		wal:   w,
		out:   out,
		snaps: snaps,
		log:   logrus.WithField("component", "service"),
	}
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// Insert appends the key to the WAL, applies it to the index, and
// queues the broadcast event. It returns the assigned sequence.
// If the WAL append fails the index is left untouched.
func (s *IndexService) Insert(key int64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, err := s.wal.Append(key)
	if err != nil {
		return 0, err
	}
	metrics.WALAppends.Inc()

	s.ix.Apply(seq, key)
	metrics.Inserts.Inc()
	s.publishTreeStats()

	if s.out != nil {
		payload, err := (wal.ProtoSerializer{}).Encode(&wal.Record{
			Type: wal.RecordInsert,
			Seq:  seq,
			Key:  key,
		})
		if err == nil {
			err = s.out.PutNew(seq, payload)
		}
		if err != nil {
			// Broadcast is best-effort; durability already holds via
			// the WAL, so an outbox failure must not fail the insert.
			s.log.WithError(err).WithField("seq", seq).Warn("outbox enqueue failed")
		}
	}
	return seq, nil
}

// Sync forces WAL durability for everything inserted so far.
func (s *IndexService) Sync() error {
	return s.wal.Sync()
}

// WriteSnapshot persists the current index state.
func (s *IndexService) WriteSnapshot() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snaps == nil {
		return nil
	}
	return s.snaps.Write(s.ix)
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

// Search reports whether key is present, and its node color when it
// is. Read-only; the tree is never mutated by lookups.
func (s *IndexService) Search(key int64) (rbtree.Color, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	color, ok := s.ix.Lookup(key)
	metrics.Searches.Inc()
	if ok {
		metrics.SearchHits.Inc()
	}
	return color, ok
}

// Snapshot returns all entries in ascending key order. Callers must
// treat the result as read-only.
func (s *IndexService) Snapshot() []index.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.SnapshotEntries()
}

func (s *IndexService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.Len()
}

func (s *IndexService) LastSeq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.LastSeq()
}

func (s *IndexService) Stats() rbtree.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.Stats()
}

// publishTreeStats mirrors the balancing counters into Prometheus.
// Caller holds the write lock.
func (s *IndexService) publishTreeStats() {
	st := s.ix.Stats()
	metrics.TreeSize.Set(float64(s.ix.Len()))
	metrics.TreeRotations.WithLabelValues("left").Set(float64(st.LeftRotations))
	metrics.TreeRotations.WithLabelValues("right").Set(float64(st.RightRotations))
	metrics.TreeRecolors.Set(float64(st.Recolors))
}
