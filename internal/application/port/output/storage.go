package output

import "context"

// StoragePort persists named blobs and returns their public URLs.
type StoragePort interface {
	SetValue(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// DatasetPort appends structured records to the run dataset.
type DatasetPort interface {
	PushData(ctx context.Context, record any) error
}
