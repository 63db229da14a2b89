package connectors

import (
	"context"
	"io"
)

// Fetcher copies the resource at url into w and returns the number of bytes
// written.
type Fetcher interface {
	Fetch(ctx context.Context, url string, w io.Writer) (int64, error)
}
