package eventstore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore is a Store persisted as JSON lines in a local file. The full log
// is loaded into memory on open; appends go to memory and the file.
type FileStore struct {
	*MemoryStore
	filePath string
	file     *os.File
}

// NewFileStore opens (or creates) the log at filePath and replays its
// contents into memory.
func NewFileStore(filePath string) (*FileStore, error) {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create event log dir: %w", err)
		}
	}

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}

	mem := NewMemoryStore()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			f.Close()
			return nil, fmt.Errorf("corrupt event log at line %d: %w", line, err)
		}
		mem.events = append(mem.events, ev)
	}
	if err := scanner.Err(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}

	return &FileStore{MemoryStore: mem, filePath: filePath, file: f}, nil
}

func (s *FileStore) Append(ctx context.Context, events ...Event) error {
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", ev.Type, err)
		}
		if _, err := s.file.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to append to event log: %w", err)
		}
	}
	return s.MemoryStore.Append(ctx, events...)
}

// Close flushes and closes the underlying file.
func (s *FileStore) Close() error {
	return s.file.Close()
}
