package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
)

// FileClient serves dataset files from a local mirror addressed with
// file:// URLs. It is meant for offline use and tests.
type FileClient struct{}

// Fetch copies the file behind a file:// URL into w.
func (FileClient) Fetch(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "file" {
		return 0, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	f, err := os.Open(u.Path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()
	return io.Copy(w, f)
}
