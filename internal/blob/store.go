// Package blob stores raw document content behind opaque keys. The
// verification layer only ever sees the key; the encoding and placement of
// bytes is an implementation detail.
package blob

import (
	"context"
	"io"
)

// Store is the content storage contract.
type Store interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
