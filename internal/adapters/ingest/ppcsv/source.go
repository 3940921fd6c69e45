package ppcsv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultURL is the public land registry complete dataset
const DefaultURL = "http://prod1.publicdata.landregistry.gov.uk.s3-website-eu-west-1.amazonaws.com/pp-complete.csv"

// Source opens a byte stream of the remote dataset
// total is the advertised size in bytes or -1 when unknown
type Source interface {
	Open(ctx context.Context) (body io.ReadCloser, total int64, err error)
}

// HTTPSource fetches the dataset over plain HTTP
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource creates an HTTPSource for url with the given overall timeout
// zero timeout means no limit, the file is tens of gigabytes
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if url == "" {
		url = DefaultURL
	}
	return &HTTPSource{URL: url, Client: &http.Client{Timeout: timeout}}
}

// Open issues the GET and returns the body stream and advertised length
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, -1, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, -1, err
	}
	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return nil, -1, fmt.Errorf(
				"ppcsv: unexpected status %d for %s; error closing body: %v",
				resp.StatusCode, s.URL, closeErr,
			)
		}
		return nil, -1, fmt.Errorf("ppcsv: unexpected status %d for %s", resp.StatusCode, s.URL)
	}
	return resp.Body, resp.ContentLength, nil
}
