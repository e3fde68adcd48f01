package wal

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const indexFileName = "wal_index.json"

// SegmentInfo is the metadata line recorded for each finalized
// segment, one JSON object per line.
type SegmentInfo struct {
	File      string `json:"file"`
	FirstSeq  uint64 `json:"first_seq"`
	LastSeq   uint64 `json:"last_seq"`
	Timestamp string `json:"timestamp"`
}

func AppendIndexEntry(dir string, entry SegmentInfo) error {
	path := filepath.Join(dir, indexFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "wal: open segment index")
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "wal: marshal index entry")
	}
	_, err = f.Write(append(data, '\n'))
	return errors.Wrap(err, "wal: append index entry")
}

func LoadAllIndex(dir string) ([]SegmentInfo, error) {
	path := filepath.Join(dir, indexFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "wal: read segment index")
	}

	var entries []SegmentInfo
	for _, line := range bytes.Split(b, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var e SegmentInfo
		if err := json.Unmarshal(line, &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func LoadLastIndex(dir string) (*SegmentInfo, error) {
	entries, err := LoadAllIndex(dir)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[len(entries)-1], nil
}
