// Package wal implements a minimal write-ahead log for durable insert
// events. It supports segmented files with a JSON line index, CRC
// validation, torn-tail recovery, and replay iteration.
package wal
