package ports

import (
	"context"
	"time"
)

type Clock interface {
	Now() time.Time
}

type UploadInput struct {
	Filename string
	MIMEType string
	Data     []byte
}

type UploadResult struct {
	URL      string
	Width    int
	Height   int
	MIMEType string
	Hash     string
	Size     int64
}

// Blob is a stored media object addressed by its content hash.
type Blob struct {
	Ref       string
	MIMEType  string
	Data      []byte
	CreatedAt time.Time
}

type BlobStore interface {
	Put(ctx context.Context, blob Blob) (url string, err error)
	Get(ctx context.Context, ref string) (Blob, error)
}
