package factory

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kilianp07/epf/connectors"
	"github.com/kilianp07/epf/connectors/source"
)

const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
	SchemeFile  = "file"
)

var (
	errUnknownScheme = "unknown source scheme: %q"
)

// NewFetcher returns the fetcher able to serve sourceURL, chosen by scheme.
// timeout only applies to network fetchers.
func NewFetcher(sourceURL string, timeout time.Duration) (connectors.Fetcher, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}
	switch u.Scheme {
	case SchemeHTTP, SchemeHTTPS:
		return source.NewHTTPClient(source.WithTimeout(timeout)), nil
	case SchemeFile:
		return source.FileClient{}, nil
	default:
		return nil, fmt.Errorf(errUnknownScheme, u.Scheme)
	}
}
