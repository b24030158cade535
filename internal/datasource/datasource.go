package datasource

import (
	"context"
	"io"
)

// Source yields raw bytes for a connector to parse. Implementations must not
// mutate the underlying source.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
