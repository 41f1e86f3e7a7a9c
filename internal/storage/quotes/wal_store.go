// Package quotes keeps an append-only journal of published quotes.
// The journal is an audit trail; sessions are never restored from it.
package quotes

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/vadiminshakov/swapquote/internal/domain"
)

const (
	DefaultDir   = "./wal/quotes"
	segmentLimit = 1000
	maxSegments  = 10

	quoteKeyPrefix = "quote_"
)

// WALStore persists quote records in a WAL.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed quote journal.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "quote_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init quote WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends the quote record to the journal.
func (s *WALStore) Save(record domain.QuoteRecord) error {
	if s == nil || s.wal == nil {
		return errors.New("quote store is not initialized")
	}
	if record.From == "" || record.To == "" {
		return fmt.Errorf("quote record pair is required")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "marshal quote record")
	}

	key := fmt.Sprintf("%s%s_%s", quoteKeyPrefix, record.From, record.To)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// RecordsAfter returns all quote records written after the provided WAL index.
func (s *WALStore) RecordsAfter(index uint64) ([]domain.QuoteRecordEntry, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("quote store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	entries := make([]domain.QuoteRecordEntry, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(key, quoteKeyPrefix) {
			continue
		}

		var record domain.QuoteRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, errors.Wrap(err, "decode quote record")
		}
		entries = append(entries, domain.QuoteRecordEntry{Index: idx, Record: record})
	}

	return entries, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("quote store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
