// Package wire defines the request and response messages for the
// index RPC service, encoded directly in protobuf wire format. The
// schema is small enough that hand-rolled encoders beat a codegen
// pipeline; field numbers below are the contract.
package wire

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

var ErrBadMessage = errors.New("wire: malformed message")

// Message is anything the Codec can put on the wire.
type Message interface {
	MarshalWire() ([]byte, error)
	UnmarshalWire(data []byte) error
}

// ── InsertRequest ────────────────────────────────────────────

type InsertRequest struct {
	Key int64 // field 1, sint64
}

func (m *InsertRequest) MarshalWire() ([]byte, error) {
	b := make([]byte, 0, 16)
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(m.Key))
	return b, nil
}

func (m *InsertRequest) UnmarshalWire(data []byte) error {
	*m = InsertRequest{}
	return walkFields(data, func(num protowire.Number, v uint64) {
		if num == 1 {
			m.Key = protowire.DecodeZigZag(v)
		}
	}, nil)
}

// ── InsertResponse ───────────────────────────────────────────

type InsertResponse struct {
	Seq  uint64 // field 1, varint
	Size uint64 // field 2, varint; tree size after the insert
}

func (m *InsertResponse) MarshalWire() ([]byte, error) {
	b := make([]byte, 0, 16)
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Seq)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Size)
	return b, nil
}

func (m *InsertResponse) UnmarshalWire(data []byte) error {
	*m = InsertResponse{}
	return walkFields(data, func(num protowire.Number, v uint64) {
		switch num {
		case 1:
			m.Seq = v
		case 2:
			m.Size = v
		}
	}, nil)
}

// ── SearchRequest / SearchResponse ───────────────────────────

type SearchRequest struct {
	Key int64 // field 1, sint64
}

func (m *SearchRequest) MarshalWire() ([]byte, error) {
	b := make([]byte, 0, 16)
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(m.Key))
	return b, nil
}

func (m *SearchRequest) UnmarshalWire(data []byte) error {
	*m = SearchRequest{}
	return walkFields(data, func(num protowire.Number, v uint64) {
		if num == 1 {
			m.Key = protowire.DecodeZigZag(v)
		}
	}, nil)
}

type SearchResponse struct {
	Found bool   // field 1, varint
	Color uint32 // field 2, varint; 0=red 1=black, meaningful only when Found
}

func (m *SearchResponse) MarshalWire() ([]byte, error) {
	b := make([]byte, 0, 8)
	if m.Found {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Color))
	return b, nil
}

func (m *SearchResponse) UnmarshalWire(data []byte) error {
	*m = SearchResponse{}
	return walkFields(data, func(num protowire.Number, v uint64) {
		switch num {
		case 1:
			m.Found = v != 0
		case 2:
			m.Color = uint32(v)
		}
	}, nil)
}

// ── SnapshotRequest / SnapshotResponse ───────────────────────

type SnapshotRequest struct{}

func (m *SnapshotRequest) MarshalWire() ([]byte, error) { return nil, nil }

func (m *SnapshotRequest) UnmarshalWire(data []byte) error {
	return walkFields(data, nil, nil)
}

type SnapshotResponse struct {
	Seq    uint64   // field 1, varint
	Keys   []int64  // field 2, packed sint64, ascending
	Colors []uint32 // field 3, packed varint, parallel to Keys
}

func (m *SnapshotResponse) MarshalWire() ([]byte, error) {
	b := make([]byte, 0, 16+10*len(m.Keys))
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Seq)

	if len(m.Keys) > 0 {
		packed := make([]byte, 0, 10*len(m.Keys))
		for _, k := range m.Keys {
			packed = protowire.AppendVarint(packed, protowire.EncodeZigZag(k))
		}
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	if len(m.Colors) > 0 {
		packed := make([]byte, 0, len(m.Colors))
		for _, c := range m.Colors {
			packed = protowire.AppendVarint(packed, uint64(c))
		}
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	return b, nil
}

func (m *SnapshotResponse) UnmarshalWire(data []byte) error {
	*m = SnapshotResponse{}
	return walkFields(data, func(num protowire.Number, v uint64) {
		if num == 1 {
			m.Seq = v
		}
	}, func(num protowire.Number, packed []byte) error {
		switch num {
		case 2:
			for len(packed) > 0 {
				v, n := protowire.ConsumeVarint(packed)
				if n < 0 {
					return errors.Wrap(ErrBadMessage, "packed key")
				}
				packed = packed[n:]
				m.Keys = append(m.Keys, protowire.DecodeZigZag(v))
			}
		case 3:
			for len(packed) > 0 {
				v, n := protowire.ConsumeVarint(packed)
				if n < 0 {
					return errors.Wrap(ErrBadMessage, "packed color")
				}
				packed = packed[n:]
				m.Colors = append(m.Colors, uint32(v))
			}
		}
		return nil
	})
}

// walkFields iterates a wire-format buffer, dispatching varint fields
// to onVarint and length-delimited fields to onBytes. Unknown fields
// and wire types are skipped, never rejected.
func walkFields(
	data []byte,
	onVarint func(num protowire.Number, v uint64),
	onBytes func(num protowire.Number, b []byte) error,
) error {
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(ErrBadMessage, "tag")
		}
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return errors.Wrap(ErrBadMessage, "varint")
			}
			b = b[n:]
			if onVarint != nil {
				onVarint(num, v)
			}
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return errors.Wrap(ErrBadMessage, "bytes")
			}
			b = b[n:]
			if onBytes != nil {
				if err := onBytes(num, v); err != nil {
					return err
				}
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return errors.Wrap(ErrBadMessage, "field")
			}
			b = b[n:]
		}
	}
	return nil
}
