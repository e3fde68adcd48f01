package wal

type RecordType uint8

const (
	// RecordInsert is the only record type the engine writes today.
	// The tag stays on the wire so replay can skip unknown types from
	// newer writers.
	RecordInsert RecordType = 1
)

// Record is one durable insert event. Seq is assigned by the WAL at
// append time and is strictly increasing across segments.
type Record struct {
	Type RecordType
	Seq  uint64
	Time int64
	Key  int64
}
