package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/config"
)

const indexFile = "events.json"

// EventIndex maps record ids to the calendar event mirroring them.
type EventIndex struct {
	Mappings map[string]string `json:"mappings"`
	Path     string            `json:"-"`
	mu       sync.RWMutex
	dirty    bool
}

// NewEventIndex opens the index in the config directory.
func NewEventIndex() (*EventIndex, error) {
	dir, err := config.HomeDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(dir, indexFile))
}

// Open loads the index at path. A missing file starts an empty index.
func Open(path string) (*EventIndex, error) {
	idx := &EventIndex{
		Mappings: make(map[string]string),
		Path:     path,
	}
	if _, err := os.Stat(path); err == nil {
		if err := idx.Load(); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

func (idx *EventIndex) Load() error {
	f, err := os.Open(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	idx.mu.Lock()
	defer idx.mu.Unlock()
	mappings := make(map[string]string)
	if err := json.NewDecoder(f).Decode(&mappings); err != nil {
		return fmt.Errorf("index: decode %s: %w", idx.Path, err)
	}
	idx.Mappings = mappings
	idx.dirty = false
	return nil
}

// Save writes the index when it changed since the last load or save.
func (idx *EventIndex) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(idx.Path), 0700); err != nil {
		return fmt.Errorf("index: create dir: %w", err)
	}
	f, err := os.Create(idx.Path)
	if err != nil {
		return fmt.Errorf("index: create %s: %w", idx.Path, err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(idx.Mappings); err != nil {
		return fmt.Errorf("index: encode: %w", err)
	}
	idx.dirty = false
	return nil
}

func (idx *EventIndex) Get(recordID string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.Mappings[recordID]
}

func (idx *EventIndex) Set(recordID, eventID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.Mappings[recordID] != eventID {
		idx.Mappings[recordID] = eventID
		idx.dirty = true
	}
}

func (idx *EventIndex) Remove(recordID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.Mappings[recordID]; exists {
		delete(idx.Mappings, recordID)
		idx.dirty = true
	}
}

// RecordIDs lists the indexed records in sorted order.
func (idx *EventIndex) RecordIDs() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	ids := make([]string, 0, len(idx.Mappings))
	for id := range idx.Mappings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
