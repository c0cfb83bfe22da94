package media

import (
	"context"
	"sync"
)

// MemoryMediaStore keeps records in process memory. Records are lost on
// restart; it is meant for development and tests.
type MemoryMediaStore struct {
	mu      sync.RWMutex
	nextID  int64
	records []Record
}

func NewMemoryMediaStore() *MemoryMediaStore {
	return &MemoryMediaStore{}
}

func (ms *MemoryMediaStore) Create(ctx context.Context, fileURL string, mediaType string) (Record, error) {
	if err := ValidateRecordInput(fileURL, mediaType); err != nil {
		return Record{}, err
	}

	if err := ctx.Err(); err != nil {
		return Record{}, storageErr("create", err)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.nextID++
	rec := Record{ID: ms.nextID, FileURL: fileURL, MediaType: mediaType}
	ms.records = append(ms.records, rec)

	return rec, nil
}

func (ms *MemoryMediaStore) ListByType(ctx context.Context, mediaType string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("list", err)
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]Record, 0)
	for _, rec := range ms.records {
		if rec.MediaType == mediaType {
			out = append(out, rec)
		}
	}

	return out, nil
}

func (ms *MemoryMediaStore) Close() error {
	return nil
}
