package main

import (
	"context"
	"encoding/gob"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

type memoryDump struct {
	Snapshots map[string][]byte
	Results   []Result
}

// MemoryStore keeps everything in process and dumps to a gob file on Close
// when a path is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	path      string
	snapshots map[string][]byte
	results   []Result
}

func NewMemoryStore(path string) (*MemoryStore, error) {
	s := &MemoryStore{
		path:      path,
		snapshots: make(map[string][]byte),
	}
	if path == "" {
		return s, nil
	}
	if err := s.loadFromFile(path); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, snapshot Snapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.snapshots[snapshot.ID] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) LoadSnapshot(_ context.Context, id string) (Snapshot, error) {
	s.mu.RLock()
	data, ok := s.snapshots[id]
	s.mu.RUnlock()
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	return decodeSnapshot(data)
}

func (s *MemoryStore) ListSnapshots(_ context.Context) ([]Snapshot, error) {
	s.mu.RLock()
	blobs := make([][]byte, 0, len(s.snapshots))
	for _, data := range s.snapshots {
		blobs = append(blobs, data)
	}
	s.mu.RUnlock()
	out := make([]Snapshot, 0, len(blobs))
	var decodeErrs []error
	for _, data := range blobs {
		snapshot, err := decodeSnapshot(data)
		if err != nil {
			decodeErrs = append(decodeErrs, err)
			continue
		}
		out = append(out, snapshot)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	return out, errors.Join(decodeErrs...)
}

func (s *MemoryStore) DeleteSnapshot(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snapshots[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.snapshots, id)
	return nil
}

func (s *MemoryStore) RecordResult(_ context.Context, result Result) error {
	s.mu.Lock()
	s.results = append(s.results, result)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Stats(_ context.Context) ([]StatsRow, error) {
	rows := make(map[[2]uint8]*StatsRow)
	s.mu.RLock()
	for _, result := range s.results {
		tallyResult(rows, result.Kind, result.Difficulty, result.Outcome, 1)
	}
	s.mu.RUnlock()
	return sortedStats(rows), nil
}

func (s *MemoryStore) Close() error {
	if s.path == "" {
		return nil
	}
	return s.saveToFile(s.path)
}

func (s *MemoryStore) saveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	s.mu.RLock()
	dump := memoryDump{
		Snapshots: make(map[string][]byte, len(s.snapshots)),
		Results:   append([]Result(nil), s.results...),
	}
	for id, data := range s.snapshots {
		dump.Snapshots[id] = data
	}
	s.mu.RUnlock()
	return gob.NewEncoder(file).Encode(&dump)
}

func (s *MemoryStore) loadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()
	var dump memoryDump
	if err := gob.NewDecoder(file).Decode(&dump); err != nil {
		if isEOFError(err) {
			file.Close()
			os.Remove(path)
			return nil
		}
		return err
	}
	s.mu.Lock()
	if dump.Snapshots != nil {
		s.snapshots = dump.Snapshots
	}
	s.results = dump.Results
	s.mu.Unlock()
	return nil
}

func isEOFError(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
