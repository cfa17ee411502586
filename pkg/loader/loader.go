package loader

import (
	"context"
)

// DatasetFile represents one uploaded dataset blob to be ingested. Path
// is a filesystem path or an object key depending on the Loader behind
// it; the file content is retrieved via the associated FileLoader.
type DatasetFile struct {
	ID     string
	Path   string
	Loader FileLoader
}

// GetBytes retrieves the raw dataset content using the file's Loader.
func (f *DatasetFile) GetBytes(ctx context.Context) ([]byte, error) {
	return f.Loader.GetFileBytes(ctx, *f)
}

// FileLoader defines the interface for loading the contents of a
// DatasetFile. Implementations may load files from disk, object
// storage, or other sources.
type FileLoader interface {
	GetFileBytes(ctx context.Context, file DatasetFile) ([]byte, error)
}

// CacheKey identifies a file for content caches.
func CacheKey(file DatasetFile) string {
	return file.ID + ":" + file.Path
}
