// Package outbox persists insert events that still need broadcasting.
// Records live in a pebble store keyed by sequence number and move
// through NEW → SENT → ACKED (or FAILED) as the broadcaster works the
// queue, so no event is lost across restarts.
package outbox

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
)

// -------------------- State --------------------

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// -------------------- Record --------------------

type Record struct {
	Seq         uint64
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

const recordHeaderSize = 1 + 4 + 8 + 4

// binary encoding: [state:1][retries:4][lastAttempt:8][plen:4][payload]
func encodeRecord(r *Record) []byte {
	buf := make([]byte, recordHeaderSize+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	binary.BigEndian.PutUint32(buf[13:17], uint32(len(r.Payload)))
	copy(buf[recordHeaderSize:], r.Payload)
	return buf
}

func decodeRecord(b []byte) (*Record, error) {
	if len(b) < recordHeaderSize {
		return nil, errors.New("outbox: record too short")
	}
	plen := binary.BigEndian.Uint32(b[13:17])
	if len(b) != recordHeaderSize+int(plen) {
		return nil, errors.New("outbox: record length mismatch")
	}
	rec := &Record{
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
	}
	if plen > 0 {
		rec.Payload = append([]byte(nil), b[recordHeaderSize:]...)
	}
	return rec, nil
}

// -------------------- Outbox --------------------

type Outbox struct {
	db *pebble.DB
}

func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // durability is the whole point
	})
	if err != nil {
		return nil, errors.Wrap(err, "outbox: open pebble")
	}
	return &Outbox{db: db}, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// -------------------- API --------------------

// PutNew stores a fresh event awaiting broadcast.
func (o *Outbox) PutNew(seq uint64, payload []byte) error {
	rec := &Record{Seq: seq, State: StateNew, Payload: payload}
	return errors.Wrap(o.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync), "outbox: put")
}

// MarkSent flags the event as handed to the broker.
func (o *Outbox) MarkSent(seq uint64) error {
	return o.updateState(seq, StateSent, func(r *Record) {})
}

// MarkAcked flags the event as confirmed by the broker.
func (o *Outbox) MarkAcked(seq uint64) error {
	return o.updateState(seq, StateAcked, func(r *Record) {})
}

// MarkFailed records a failed attempt and bumps the retry count.
func (o *Outbox) MarkFailed(seq uint64) error {
	return o.updateState(seq, StateFailed, func(r *Record) { r.Retries++ })
}

func (o *Outbox) updateState(seq uint64, state State, mutate func(*Record)) error {
	rec, err := o.Get(seq)
	if err != nil {
		return err
	}
	rec.State = state
	rec.LastAttempt = time.Now().UnixNano()
	mutate(rec)
	return errors.Wrapf(o.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync),
		"outbox: update seq %d", seq)
}

func (o *Outbox) Get(seq uint64) (*Record, error) {
	val, closer, err := o.db.Get(keyFor(seq))
	if err != nil {
		return nil, errors.Wrapf(err, "outbox: get seq %d", seq)
	}
	defer closer.Close()

	rec, err := decodeRecord(val)
	if err != nil {
		return nil, err
	}
	rec.Seq = seq
	return rec, nil
}

func (o *Outbox) Delete(seq uint64) error {
	return errors.Wrapf(o.db.Delete(keyFor(seq), pebble.Sync), "outbox: delete seq %d", seq)
}

// -------------------- Scan --------------------

// ScanByState iterates records in the given state in sequence order.
func (o *Outbox) ScanByState(state State, fn func(*Record) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("evt/"),
		UpperBound: []byte("evt/~"),
	})
	if err != nil {
		return errors.Wrap(err, "outbox: iterator")
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeRecord(iter.Value())
		if err != nil {
			return err
		}
		if rec.State != state {
			continue
		}
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		rec.Seq = seq
		if err := fn(rec); err != nil {
			return err
		}
	}
	return errors.Wrap(iter.Error(), "outbox: scan")
}

// PruneAcked deletes every acknowledged record and returns the count.
func (o *Outbox) PruneAcked() (int, error) {
	var seqs []uint64
	if err := o.ScanByState(StateAcked, func(r *Record) error {
		seqs = append(seqs, r.Seq)
		return nil
	}); err != nil {
		return 0, err
	}
	for _, seq := range seqs {
		if err := o.Delete(seq); err != nil {
			return 0, err
		}
	}
	return len(seqs), nil
}

// -------------------- Helpers --------------------

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("evt/%020d", seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	if _, err := fmt.Sscanf(string(b), "evt/%d", &seq); err != nil {
		return 0, errors.Wrapf(err, "outbox: bad key %q", b)
	}
	return seq, nil
}
