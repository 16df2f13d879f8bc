package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// KeySendTelegram toggles the scheduled Telegram notification.
const KeySendTelegram = "sendTelegramMessage"

// Store is a minimal boolean key-value store. Missing keys read as false.
type Store interface {
	Get(key string) (bool, error)
	Set(key string, value bool) error
}

// JSONFileStore keeps flags in a flat JSON object on disk.
// Every Get re-reads the file so changes made by another process are observed.
type JSONFileStore struct {
	mu       sync.Mutex
	filePath string
}

// NewJSONFileStore creates a store backed by filePath. The file is created lazily.
func NewJSONFileStore(filePath string) *JSONFileStore {
	return &JSONFileStore{filePath: filePath}
}

func (s *JSONFileStore) Get(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flags, err := s.load()
	if err != nil {
		return false, err
	}
	return flags[key], nil
}

func (s *JSONFileStore) Set(key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	flags, err := s.load()
	if err != nil {
		return err
	}
	flags[key] = value
	data, err := json.Marshal(flags)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	return os.WriteFile(s.filePath, data, 0644)
}

// load returns an empty map if the file doesn't exist.
func (s *JSONFileStore) load() (map[string]bool, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, err
	}
	flags := map[string]bool{}
	if len(data) == 0 {
		return flags, nil
	}
	if err := json.Unmarshal(data, &flags); err != nil {
		return nil, fmt.Errorf("decode state file %s: %w", s.filePath, err)
	}
	return flags, nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.Mutex
	flags map[string]bool
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{flags: map[string]bool{}} }

func (m *MemoryStore) Get(key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags[key], nil
}

func (m *MemoryStore) Set(key string, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[key] = value
	return nil
}
