package testsupport

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// ExportServer serves a fixed export body and counts requests.
type ExportServer struct {
	*httptest.Server

	mu     sync.Mutex
	body   string
	status int
	hits   int
}

// NewExportServer starts a server returning body with 200 OK.
func NewExportServer(t testing.TB, body string) *ExportServer {
	t.Helper()

	s := &ExportServer{body: body, status: http.StatusOK}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits++
		status, body := s.status, s.body
		s.mu.Unlock()

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

// ExportURL returns the URL the export is served from.
func (s *ExportServer) ExportURL() string {
	return s.URL + "/pub?output=csv"
}

// SetResponse replaces the status and body returned by later requests.
func (s *ExportServer) SetResponse(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
}

// Hits returns the number of requests served.
func (s *ExportServer) Hits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits
}
