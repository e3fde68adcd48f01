package wal

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

type Serializer interface {
	Encode(*Record) ([]byte, error)
	Decode([]byte) (*Record, error)
}

var ErrCorruptRecord = errors.New("wal: corrupted record")

const binaryRecordSize = 1 + 8 + 8 + 8

// BinarySerializer is the fixed-width little-endian codec:
// [type:1][seq:8][time:8][key:8].
type BinarySerializer struct{}

func (BinarySerializer) Encode(rec *Record) ([]byte, error) {
	buf := make([]byte, binaryRecordSize)
	buf[0] = byte(rec.Type)
	binary.LittleEndian.PutUint64(buf[1:9], rec.Seq)
	binary.LittleEndian.PutUint64(buf[9:17], uint64(rec.Time))
	binary.LittleEndian.PutUint64(buf[17:25], uint64(rec.Key))
	return buf, nil
}

func (BinarySerializer) Decode(b []byte) (*Record, error) {
	if len(b) != binaryRecordSize {
		return nil, errors.Wrapf(ErrCorruptRecord, "binary record length %d", len(b))
	}
	return &Record{
		Type: RecordType(b[0]),
		Seq:  binary.LittleEndian.Uint64(b[1:9]),
		Time: int64(binary.LittleEndian.Uint64(b[9:17])),
		Key:  int64(binary.LittleEndian.Uint64(b[17:25])),
	}, nil
}
