// Package store provides the keyed dataset store for chatvault: a
// capacity-bounded in-memory cache of materialized datasets in front of a
// durable keyed backend.
package store

import (
	"context"

	"github.com/chatvault/chatvault/internal/archive"
)

// Backend is the durable keyed store behind the cache. Implementations
// hold three artifacts per dataset — metadata, the full message list, and
// the original raw markup — plus attachments keyed by reference string.
// A backend works the same whether it is a file, an embedded database, or
// an in-browser object store; the engine above it never changes.
type Backend interface {
	// PutDataset persists a dataset wholesale, replacing any existing
	// record under the same fileId.
	PutDataset(ctx context.Context, ds *archive.Dataset, meta archive.DatasetMeta, raw []byte) error

	// GetDataset returns the fully materialized dataset, or
	// archive.ErrUnknownDataset.
	GetDataset(ctx context.Context, fileID string) (*archive.Dataset, error)

	// GetRaw returns the original raw markup kept for reference/replay.
	GetRaw(ctx context.Context, fileID string) ([]byte, error)

	// ListMeta returns every stored dataset's metadata, ordered by
	// CreatedAtMs descending.
	ListMeta(ctx context.Context) ([]archive.DatasetMeta, error)

	// DeleteDataset removes a dataset and its attachments. Deleting an
	// unknown fileId returns archive.ErrUnknownDataset.
	DeleteDataset(ctx context.Context, fileID string) error

	Close() error
}
