package wal

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Proto field numbers for the insert record message. The same payload
// is what the broadcaster publishes, so followers decode it with this
// serializer too.
const (
	fieldType = 1 // varint
	fieldSeq  = 2 // varint
	fieldTime = 3 // varint
	fieldKey  = 4 // sint64 (zig-zag varint)
)

// ProtoSerializer encodes records as protobuf wire format. Unknown
// fields are skipped on decode, so the format can grow.
type ProtoSerializer struct{}

func (ProtoSerializer) Encode(rec *Record) ([]byte, error) {
	b := make([]byte, 0, 32)
	b = protowire.AppendTag(b, fieldType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(rec.Type))
	b = protowire.AppendTag(b, fieldSeq, protowire.VarintType)
	b = protowire.AppendVarint(b, rec.Seq)
	b = protowire.AppendTag(b, fieldTime, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(rec.Time))
	b = protowire.AppendTag(b, fieldKey, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(rec.Key))
	return b, nil
}

func (ProtoSerializer) Decode(data []byte) (*Record, error) {
	rec := &Record{}
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, errors.Wrap(ErrCorruptRecord, "proto tag")
		}
		b = b[n:]

		if typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, errors.Wrap(ErrCorruptRecord, "proto varint")
			}
			b = b[n:]
			switch num {
			case fieldType:
				rec.Type = RecordType(v)
			case fieldSeq:
				rec.Seq = v
			case fieldTime:
				rec.Time = int64(v)
			case fieldKey:
				rec.Key = protowire.DecodeZigZag(v)
			}
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return nil, errors.Wrap(ErrCorruptRecord, "proto field")
		}
		b = b[n:]
	}
	return rec, nil
}
