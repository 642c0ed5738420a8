package scraper

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

type stubRoundTripper struct {
	responses map[string]string
	hits      *atomic.Int32
	mu        sync.Mutex
}

func newStubRoundTripper(responses map[string]string, hits *atomic.Int32) *stubRoundTripper {
	return &stubRoundTripper{responses: responses, hits: hits}
}

func (s *stubRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.hits.Add(1)
	body, ok := s.responses[req.URL.String()]
	s.mu.Unlock()
	if !ok {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("not found")),
			Header:     make(http.Header),
		}, nil
	}

	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}
