package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/Tiliavir/heatlog/internal/model"
)

// Static reads the read-only bootstrap file, either over HTTP or from disk.
type Static struct {
	location   string
	httpClient *http.Client
}

// NewStatic returns a bootstrap source for location (URL or file path).
func NewStatic(location string) *Static {
	return &Static{location: location, httpClient: &http.Client{}}
}

// IsURL reports whether location should be fetched over HTTP.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Fetch returns the bootstrap records. The file may legitimately be empty.
func (s *Static) Fetch(ctx context.Context) (model.Records, error) {
	if s.location == "" {
		return nil, errors.New("no bootstrap file configured")
	}

	data, err := ReadLocation(ctx, s.httpClient, s.location)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(string(data)) == "" {
		return model.Records{}, nil
	}
	rs, err := model.DecodeRecords(data)
	if err != nil {
		return nil, &ParseError{What: "bootstrap file", Err: err}
	}
	return rs, nil
}

// ReadLocation returns the bytes at location, fetched with GET for URLs and
// read from disk otherwise. A missing file wraps fs.ErrNotExist; a missing
// URL is a 404 *NetworkError.
func ReadLocation(ctx context.Context, c *http.Client, location string) ([]byte, error) {
	if !IsURL(location) {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", location, err)
		}
		return data, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return do(c, req)
}
