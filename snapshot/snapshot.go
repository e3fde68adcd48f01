// Package snapshot writes and loads point-in-time copies of the
// index so WAL replay only has to cover the tail.
package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"arbor/index"
)

const fileName = "snapshot.bin"

type Snapshot struct {
	Seq     uint64
	Created time.Time
	Keys    []int64
}

type Writer struct {
	Dir string
}

// Write dumps the index keys in ascending order, atomically replacing
// any previous snapshot via temp-file rename.
func (w *Writer) Write(ix *index.Index) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return errors.Wrap(err, "snapshot: create dir")
	}

	s := Snapshot{
		Seq:     ix.LastSeq(),
		Created: time.Now(),
		Keys:    make([]int64, 0, ix.Len()),
	}
	for _, e := range ix.SnapshotEntries() {
		s.Keys = append(s.Keys, e.Key)
	}

	tmp, err := os.CreateTemp(w.Dir, fileName+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "snapshot: create temp")
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(&s); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "snapshot: encode")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "snapshot: sync")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "snapshot: close temp")
	}
	return errors.Wrap(os.Rename(tmp.Name(), filepath.Join(w.Dir, fileName)),
		"snapshot: rename")
}

// Load rebuilds ix from the snapshot in dir and returns the snapshot
// sequence. A missing snapshot is not an error; replay just starts
// from zero.
func Load(dir string, ix *index.Index) (uint64, error) {
	f, err := os.Open(filepath.Join(dir, fileName))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "snapshot: open")
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return 0, errors.Wrap(err, "snapshot: decode")
	}
	for _, k := range s.Keys {
		ix.Apply(s.Seq, k)
	}
	return s.Seq, nil
}
