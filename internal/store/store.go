package store

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chatvault/chatvault/internal/archive"
)

// DefaultCacheCapacity is the number of materialized datasets kept in
// memory when the config does not say otherwise.
const DefaultCacheCapacity = 3

// Store is the record store: write-through puts to the durable backend,
// reads served from the LRU cache when warm. A Store's lifetime is owned
// by its caller; there is no ambient global instance.
type Store struct {
	backend Backend
	cache   *datasetCache
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Store over the given backend with an LRU cache of
// cacheCapacity datasets.
func New(backend Backend, cacheCapacity int, logger *slog.Logger) *Store {
	if cacheCapacity < 1 {
		cacheCapacity = DefaultCacheCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		cache:   newDatasetCache(cacheCapacity),
		logger:  logger,
		now:     time.Now,
	}
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Put creates or wholesale-replaces a dataset. An empty fileID generates a
// fresh one. The durable write happens before the cache update, so a crash
// between the two loses cache warmth, never data.
func (s *Store) Put(ctx context.Context, fileID, originalName string, raw []byte, messages []archive.Message, attachments map[string][]byte) (archive.DatasetMeta, error) {
	if fileID == "" {
		fileID = uuid.NewString()
	}

	ds := &archive.Dataset{
		FileID:       fileID,
		OriginalName: originalName,
		Messages:     messages,
		Attachments:  attachments,
		CreatedAtMs:  s.now().UnixMilli(),
	}
	meta := archive.ComputeMeta(ds.FileID, ds.OriginalName, ds.CreatedAtMs, ds.Messages)

	if err := s.backend.PutDataset(ctx, ds, meta, raw); err != nil {
		return archive.DatasetMeta{}, err
	}
	s.cache.put(fileID, ds)

	s.logger.Debug("dataset stored",
		"file_id", fileID,
		"name", originalName,
		"messages", meta.MessageCount,
		"senders", len(meta.Senders),
	)
	return meta, nil
}

// Get returns a dataset, from cache when warm, re-reading and
// re-populating from the backend otherwise.
func (s *Store) Get(ctx context.Context, fileID string) (*archive.Dataset, error) {
	if ds, ok := s.cache.get(fileID); ok {
		return ds, nil
	}
	ds, err := s.backend.GetDataset(ctx, fileID)
	if err != nil {
		return nil, err
	}
	s.cache.put(fileID, ds)
	return ds, nil
}

// GetRaw returns the original markup a dataset was extracted from.
func (s *Store) GetRaw(ctx context.Context, fileID string) ([]byte, error) {
	return s.backend.GetRaw(ctx, fileID)
}

// List returns metadata for every stored dataset, newest first.
func (s *Store) List(ctx context.Context) ([]archive.DatasetMeta, error) {
	return s.backend.ListMeta(ctx)
}

// Delete removes a dataset from the backend and drops its cached copy.
func (s *Store) Delete(ctx context.Context, fileID string) error {
	if err := s.backend.DeleteDataset(ctx, fileID); err != nil {
		return err
	}
	s.cache.remove(fileID)
	return nil
}

// ResolveFileID finds an existing dataset whose original name matches,
// trimmed and case-insensitive. Re-uploading the same export under the
// matched fileId replaces it in place instead of duplicating it.
func (s *Store) ResolveFileID(ctx context.Context, originalName string) (string, bool, error) {
	want := strings.ToLower(strings.TrimSpace(originalName))
	if want == "" {
		return "", false, nil
	}
	metas, err := s.backend.ListMeta(ctx)
	if err != nil {
		return "", false, err
	}
	for _, meta := range metas {
		if strings.ToLower(strings.TrimSpace(meta.OriginalName)) == want {
			return meta.FileID, true, nil
		}
	}
	return "", false, nil
}

// Attachment resolves an attachment by reference key: case-insensitive
// exact match first, then basename match for markup that references local
// media by full path. ok is false when no reference matches.
func (s *Store) Attachment(ctx context.Context, fileID, ref string) ([]byte, bool, error) {
	ds, err := s.Get(ctx, fileID)
	if err != nil {
		return nil, false, err
	}

	want := strings.ToLower(ref)
	for key, data := range ds.Attachments {
		if strings.ToLower(key) == want {
			return data, true, nil
		}
	}
	wantBase := strings.ToLower(path.Base(strings.ReplaceAll(ref, "\\", "/")))
	for key, data := range ds.Attachments {
		base := strings.ToLower(path.Base(strings.ReplaceAll(key, "\\", "/")))
		if base == wantBase {
			return data, true, nil
		}
	}
	return nil, false, nil
}

// CachedDatasets reports how many datasets are currently materialized.
func (s *Store) CachedDatasets() int {
	return s.cache.len()
}
