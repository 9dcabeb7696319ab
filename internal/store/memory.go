package store

import (
	"fmt"
	"sync"
)

// Memory is an in-memory Store used by tests. It records per-path write
// and remove counts so idempotency assertions can check that a second
// call performed no write.
type Memory struct {
	mu      sync.Mutex
	files   map[string][]byte
	writes  map[string]int
	removes map[string]int

	// FailReads marks paths whose reads should fail, to simulate an
	// unreadable source.
	FailReads map[string]bool
	// FailWrites marks paths whose writes should fail.
	FailWrites map[string]bool
}

// NewMemory returns an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{
		files:      make(map[string][]byte),
		writes:     make(map[string]int),
		removes:    make(map[string]int),
		FailReads:  make(map[string]bool),
		FailWrites: make(map[string]bool),
	}
}

func (m *Memory) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

func (m *Memory) Size(path string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return 0, fmt.Errorf("stat %s: file does not exist", path)
	}
	return int64(len(data)), nil
}

func (m *Memory) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads[path] {
		return nil, fmt.Errorf("read %s: forced failure", path)
	}
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("read %s: file does not exist", path)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites[path] {
		return fmt.Errorf("write %s: forced failure", path)
	}
	m.writes[path]++
	stored := make([]byte, len(data))
	copy(stored, data)
	m.files[path] = stored
	return nil
}

func (m *Memory) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removes[path]++
	delete(m.files, path)
	return nil
}

// WriteCount returns how many times path has been written.
func (m *Memory) WriteCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[path]
}

// RemoveCount returns how many times Remove was called for path.
func (m *Memory) RemoveCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removes[path]
}
