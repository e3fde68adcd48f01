package service

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"arbor/index"
	"arbor/snapshot"
	"arbor/wal"
)

/*
Replay rebuilds in-memory state before the engine accepts traffic:
snapshot first (if any), then every WAL record with a sequence above
the snapshot's. The outbox is NOT replayed into the index; the
broadcaster drains it independently.
*/

func Replay(walDir, snapDir string, ser wal.Serializer, ix *index.Index) (uint64, error) {
	snapSeq, err := snapshot.Load(snapDir, ix)
	if err != nil {
		return 0, err
	}

	lastSeq, err := wal.Replay(walDir, ser, func(rec *wal.Record) error {
		if rec.Type != wal.RecordInsert {
			return nil
		}
		if rec.Seq <= snapSeq {
			return nil // already covered by the snapshot
		}
		ix.Apply(rec.Seq, rec.Key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if lastSeq < snapSeq {
		lastSeq = snapSeq
	}

	if err := ix.Validate(); err != nil {
		return 0, errors.Wrap(err, "replay: rebuilt index is invalid")
	}

	logrus.WithFields(logrus.Fields{
		"component": "service",
		"snap_seq":  snapSeq,
		"last_seq":  lastSeq,
		"keys":      ix.Len(),
	}).Info("replay completed")
	return lastSeq, nil
}
