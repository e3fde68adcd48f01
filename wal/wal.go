package wal

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	frameHeaderSize    = 8 // length(4) + CRC(4), little-endian
	currentSegmentName = "current.wal"

	defaultSegmentSize = 2 * 1024 * 1024
	defaultSegmentAge  = time.Minute
)

type Config struct {
	Dir         string
	SegmentSize uint64
	SegmentAge  time.Duration
	Serializer  Serializer
}

// WAL appends insert records to current.wal and rotates it into
// numbered segments by size or age. It owns the sequence counter:
// Append assigns the next seq and returns it.
type WAL struct {
	cfg Config

	mu              sync.Mutex
	file            *os.File
	writer          *bufio.Writer
	seq             uint64
	segmentID       int
	segmentStartSeq uint64
	bytesWritten    uint64
	lastRotation    time.Time
}

func Open(cfg Config) (*WAL, error) {
	if cfg.SegmentSize == 0 {
		cfg.SegmentSize = defaultSegmentSize
	}
	if cfg.SegmentAge == 0 {
		cfg.SegmentAge = defaultSegmentAge
	}
	if cfg.Serializer == nil {
		cfg.Serializer = ProtoSerializer{}
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "wal: create dir")
	}

	var segID int
	var seq uint64
	if last, err := LoadLastIndex(cfg.Dir); err == nil && last != nil {
		id, _ := strconv.Atoi(strings.TrimSuffix(last.File, ".wal"))
		segID = id
		seq = last.LastSeq
	}

	path := filepath.Join(cfg.Dir, currentSegmentName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "wal: open current segment")
	}

	w := &WAL{
		cfg:             cfg,
		file:            f,
		seq:             seq,
		segmentID:       segID,
		segmentStartSeq: seq + 1,
		lastRotation:    time.Now(),
	}
	if err := w.recoverCurrent(); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := w.file.Seek(0, io.SeekEnd); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "wal: seek")
	}
	w.writer = bufio.NewWriterSize(f, 1<<20)
	return w, nil
}

// Append writes one insert record and returns its sequence number.
func (w *WAL) Append(key int64) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec := &Record{
		Type: RecordInsert,
		Seq:  w.seq + 1,
		Time: time.Now().UnixNano(),
		Key:  key,
	}
	data, err := w.cfg.Serializer.Encode(rec)
	if err != nil {
		return 0, errors.Wrap(err, "wal: encode record")
	}

	frameSize := frameHeaderSize + len(data)
	if w.shouldRotate(frameSize) {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	if err := writeFrame(w.writer, data); err != nil {
		return 0, errors.Wrap(err, "wal: write frame")
	}
	w.seq++
	w.bytesWritten += uint64(frameSize)
	return w.seq, nil
}

// LastSeq returns the sequence of the most recently appended record.
func (w *WAL) LastSeq() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seq
}

func (w *WAL) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.writer.Flush(); err != nil {
		return errors.Wrap(err, "wal: flush")
	}
	return errors.Wrap(w.file.Sync(), "wal: sync")
}

// Close flushes and finalizes current.wal into a numbered segment so
// the next Open starts clean.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_ = w.writer.Flush()
	_ = w.file.Sync()
	_ = w.file.Close()

	if w.bytesWritten == 0 {
		return os.Remove(filepath.Join(w.cfg.Dir, currentSegmentName))
	}
	return w.finalizeCurrent()
}

func (w *WAL) shouldRotate(nextSize int) bool {
	if w.bytesWritten == 0 {
		return false
	}
	return w.bytesWritten+uint64(nextSize) >= w.cfg.SegmentSize ||
		time.Since(w.lastRotation) >= w.cfg.SegmentAge
}

func (w *WAL) rotate() error {
	_ = w.writer.Flush()
	_ = w.file.Sync()
	_ = w.file.Close()

	if err := w.finalizeCurrent(); err != nil {
		return err
	}

	path := filepath.Join(w.cfg.Dir, currentSegmentName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrap(err, "wal: open fresh segment")
	}
	w.file = f
	w.writer = bufio.NewWriterSize(f, 1<<20)
	w.segmentStartSeq = w.seq + 1
	w.bytesWritten = 0
	w.lastRotation = time.Now()
	return nil
}

// finalizeCurrent renames current.wal into the next numbered segment
// and records it in the index. The caller must have closed the file.
func (w *WAL) finalizeCurrent() error {
	w.segmentID++
	name := fmt.Sprintf("%06d.wal", w.segmentID)
	oldPath := filepath.Join(w.cfg.Dir, currentSegmentName)
	newPath := filepath.Join(w.cfg.Dir, name)

	if err := os.Rename(oldPath, newPath); err != nil {
		return errors.Wrap(err, "wal: finalize segment")
	}
	entry := SegmentInfo{
		File:      name,
		FirstSeq:  w.segmentStartSeq,
		LastSeq:   w.seq,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	return AppendIndexEntry(w.cfg.Dir, entry)
}

// recoverCurrent scans current.wal frame by frame, adopts the last
// valid sequence, and truncates any torn or corrupt tail left by a
// crash.
func (w *WAL) recoverCurrent() error {
	info, err := w.file.Stat()
	if err != nil {
		return errors.Wrap(err, "wal: stat")
	}
	if info.Size() == 0 {
		return nil
	}

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "wal: seek")
	}
	r := bufio.NewReader(w.file)

	var validBytes int64
	var header [frameHeaderSize]byte
	for {
		if _, err := io.ReadFull(r, header[:]); err != nil {
			if err == io.EOF {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return w.truncateCurrent(validBytes)
			}
			return errors.Wrap(err, "wal: read frame header")
		}
		payloadLen := binary.LittleEndian.Uint32(header[:4])
		payload := make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
				return w.truncateCurrent(validBytes)
			}
			return errors.Wrap(err, "wal: read frame payload")
		}
		if crc32.ChecksumIEEE(payload) != binary.LittleEndian.Uint32(header[4:]) {
			return w.truncateCurrent(validBytes)
		}
		rec, err := w.cfg.Serializer.Decode(payload)
		if err != nil {
			return errors.Wrap(err, "wal: decode during recovery")
		}
		w.seq = rec.Seq
		validBytes += int64(frameHeaderSize) + int64(payloadLen)
	}
	w.bytesWritten = uint64(validBytes)
	return nil
}

func (w *WAL) truncateCurrent(validBytes int64) error {
	if err := w.file.Truncate(validBytes); err != nil {
		return errors.Wrap(err, "wal: truncate torn tail")
	}
	w.bytesWritten = uint64(validBytes)
	return nil
}

func writeFrame(wr io.Writer, payload []byte) error {
	var header [frameHeaderSize]byte
	binary.LittleEndian.PutUint32(header[:4], uint32(len(payload)))
	binary.LittleEndian.PutUint32(header[4:], crc32.ChecksumIEEE(payload))
	if _, err := wr.Write(header[:]); err != nil {
		return err
	}
	_, err := wr.Write(payload)
	return err
}
