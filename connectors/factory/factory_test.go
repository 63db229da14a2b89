package factory

import (
	"testing"
	"time"

	"github.com/kilianp07/epf/connectors/source"
)

func TestNewFetcher(t *testing.T) {
	tests := []struct {
		url         string
		expectedErr bool
		want        any
	}{
		{"https://sandbox.zenodo.org/api/files/abc/", false, &source.HTTPClient{}},
		{"http://localhost:8080/", false, &source.HTTPClient{}},
		{"file:///var/lib/epf/mirror/", false, source.FileClient{}},
		{"ftp://example.org/", true, nil},
		{"://bad", true, nil},
	}

	for _, tt := range tests {
		f, err := NewFetcher(tt.url, time.Second)
		if tt.expectedErr {
			if err == nil {
				t.Errorf("expected error for %s, got nil", tt.url)
			}
			continue
		}
		if err != nil {
			t.Errorf("did not expect error for %s, got %v", tt.url, err)
			continue
		}
		switch tt.want.(type) {
		case *source.HTTPClient:
			if _, ok := f.(*source.HTTPClient); !ok {
				t.Errorf("%s: expected *source.HTTPClient, got %T", tt.url, f)
			}
		case source.FileClient:
			if _, ok := f.(source.FileClient); !ok {
				t.Errorf("%s: expected source.FileClient, got %T", tt.url, f)
			}
		}
	}
}
