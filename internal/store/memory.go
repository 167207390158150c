package store

import (
	"context"
	"sort"
	"sync"

	"github.com/chatvault/chatvault/internal/archive"
)

// MemoryBackend is a Backend kept entirely in process memory. It backs
// tests and ephemeral runs; nothing survives the process.
type MemoryBackend struct {
	mu       sync.RWMutex
	datasets map[string]*memoryRecord
}

type memoryRecord struct {
	ds   archive.Dataset
	meta archive.DatasetMeta
	raw  []byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{datasets: make(map[string]*memoryRecord)}
}

func (b *MemoryBackend) PutDataset(_ context.Context, ds *archive.Dataset, meta archive.DatasetMeta, raw []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.datasets[ds.FileID] = &memoryRecord{ds: cloneDataset(ds), meta: meta, raw: append([]byte(nil), raw...)}
	return nil
}

func (b *MemoryBackend) GetDataset(_ context.Context, fileID string) (*archive.Dataset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.datasets[fileID]
	if !ok {
		return nil, archive.ErrUnknownDataset
	}
	ds := cloneDataset(&rec.ds)
	return &ds, nil
}

func (b *MemoryBackend) GetRaw(_ context.Context, fileID string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.datasets[fileID]
	if !ok {
		return nil, archive.ErrUnknownDataset
	}
	return append([]byte(nil), rec.raw...), nil
}

func (b *MemoryBackend) ListMeta(_ context.Context) ([]archive.DatasetMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	metas := make([]archive.DatasetMeta, 0, len(b.datasets))
	for _, rec := range b.datasets {
		metas = append(metas, rec.meta)
	}
	sort.Slice(metas, func(i, j int) bool {
		if metas[i].CreatedAtMs != metas[j].CreatedAtMs {
			return metas[i].CreatedAtMs > metas[j].CreatedAtMs
		}
		return metas[i].FileID < metas[j].FileID
	})
	return metas, nil
}

func (b *MemoryBackend) DeleteDataset(_ context.Context, fileID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.datasets[fileID]; !ok {
		return archive.ErrUnknownDataset
	}
	delete(b.datasets, fileID)
	return nil
}

func (b *MemoryBackend) Close() error { return nil }

// cloneDataset copies a dataset so callers can never mutate the stored
// record through a shared slice or map.
func cloneDataset(ds *archive.Dataset) archive.Dataset {
	out := *ds
	out.Messages = append([]archive.Message(nil), ds.Messages...)
	if ds.Attachments != nil {
		out.Attachments = make(map[string][]byte, len(ds.Attachments))
		for k, v := range ds.Attachments {
			out.Attachments[k] = append([]byte(nil), v...)
		}
	}
	return out
}
