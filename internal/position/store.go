package position

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"tradepipe/internal/message"
)

// Store persists the open-position list as a JSON array. The monitor
// process is the only writer; the executor hands it fills over the
// executed-orders queue instead of touching this file, so cross-process
// write races cannot happen. Saves go through a temp file and rename so a
// concurrent reader never sees a torn write.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore points a store at the positions file.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the open positions. A missing file is an empty book, not an
// error.
func (s *Store) Load() ([]message.ExecutionReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]message.ExecutionReport, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	var positions []message.ExecutionReport
	if err := json.Unmarshal(data, &positions); err != nil {
		return nil, fmt.Errorf("decode positions: %w", err)
	}
	return positions, nil
}

// Save replaces the stored list wholesale.
func (s *Store) Save(positions []message.ExecutionReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(positions)
}

func (s *Store) save(positions []message.ExecutionReport) error {
	if positions == nil {
		positions = []message.ExecutionReport{}
	}
	data, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("encode positions: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".positions-*")
	if err != nil {
		return fmt.Errorf("create temp positions file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write positions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close positions file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace positions file: %w", err)
	}
	return nil
}

// Append adds a newly filled position to the book.
func (s *Store) Append(pos message.ExecutionReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	positions, err := s.load()
	if err != nil {
		return err
	}
	return s.save(append(positions, pos))
}

// Update applies fn to the current book under the lock, so a concurrent
// Append can never land between the read and the write and be lost. The
// monitor's poll cycle removes closed positions through here instead of
// saving its earlier snapshot wholesale.
func (s *Store) Update(fn func([]message.ExecutionReport) []message.ExecutionReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	positions, err := s.load()
	if err != nil {
		return err
	}
	return s.save(fn(positions))
}
