package collapse

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNoRecord is returned by Store.Read when the slot has never been
// written. Treated by Sync as "nothing new", never as a failure.
var ErrNoRecord = errors.New("no collapse record")

// Record is the unit of truth exchanged through the shared store. Among
// all records ever observed, the greatest Timestamp (wall-clock
// milliseconds) is authoritative. Records are superseded, never mutated.
type Record struct {
	Timestamp int64 `json:"timestamp"`
	Collapsed bool  `json:"collapsed"`
}

// Store is the capability CollapseSync needs from the shared slot.
// Revision is an externally observable marker that is cheap to compare,
// so polls can skip the read when nothing changed. Implementations must
// make Write atomic: a reader never observes a half-written record.
type Store interface {
	Read() (Record, error)
	Write(Record) error
	Revision() (time.Time, error)
}

// FileStore keeps the record as a small JSON file. Writes go to a
// temporary file in the same directory followed by a rename; the file
// mtime serves as the revision marker.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Read() (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, ErrNoRecord
		}
		return Record{}, fmt.Errorf("read collapse record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parse collapse record: %w", err)
	}
	return rec, nil
}

func (s *FileStore) Write(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal collapse record: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".collapse-*.json")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp record: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace collapse record: %w", err)
	}
	return nil
}

func (s *FileStore) Revision() (time.Time, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, ErrNoRecord
		}
		return time.Time{}, fmt.Errorf("stat collapse record: %w", err)
	}
	return info.ModTime(), nil
}
