package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sheetslug/internal/delimited"
	"sheetslug/internal/records"
	"sheetslug/internal/sheet"
)

type loaderStub struct {
	recs      []records.Record
	err       error
	loads     int
	refreshes int
}

func (l *loaderStub) result(fromCache bool) (sheet.Result, error) {
	if l.err != nil {
		return sheet.Result{}, l.err
	}
	return sheet.Result{
		Records:   l.recs,
		FromCache: fromCache,
		FetchedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		LoadID:    "load-1",
	}, nil
}

func (l *loaderStub) LoadResult(context.Context) (sheet.Result, error) {
	l.loads++
	return l.result(true)
}

func (l *loaderStub) Refresh(context.Context) (sheet.Result, error) {
	l.refreshes++
	return l.result(false)
}

func sampleLoader() *loaderStub {
	rows := delimited.Parse("name,role\nAda Lovelace,Analyst\nGrace Hopper,Admiral\nAlan Turing,Mathematician\n")
	return &loaderStub{recs: records.Build(rows)}
}

func serve(t *testing.T, srv *Server, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHandleRecords(t *testing.T) {
	loader := sampleLoader()
	srv := NewServer(loader, Options{})

	w := serve(t, srv, http.MethodGet, "/api/records", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var resp struct {
		LoadID    string           `json:"loadId"`
		Count     int              `json:"count"`
		FromCache bool             `json:"fromCache"`
		FetchedAt string           `json:"fetchedAt"`
		Records   []map[string]any `json:"records"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 3 || len(resp.Records) != 3 || !resp.FromCache || resp.LoadID != "load-1" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.FetchedAt != "2026-01-02T03:04:05.000Z" {
		t.Fatalf("unexpected fetchedAt %q", resp.FetchedAt)
	}
	first := resp.Records[0]
	if first["slug"] != "ada-lovelace" || first["role"] != "Analyst" || first["_src_index"] != float64(0) {
		t.Fatalf("unexpected first record %v", first)
	}
}

func TestHandleRecordBySlug(t *testing.T) {
	srv := NewServer(sampleLoader(), Options{})

	w := serve(t, srv, http.MethodGet, "/api/records/grace-hopper", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp struct {
		Record map[string]any `json:"record"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Record["name"] != "Grace Hopper" || resp.Record["_src_index"] != float64(1) {
		t.Fatalf("unexpected record %v", resp.Record)
	}
}

func TestHandleRecordNotFoundSuggests(t *testing.T) {
	srv := NewServer(sampleLoader(), Options{})

	w := serve(t, srv, http.MethodGet, "/api/records/grace", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var resp NotFoundResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Slug != "grace" || len(resp.Suggestions) == 0 || resp.Suggestions[0] != "grace-hopper" {
		t.Fatalf("unexpected not-found payload %+v", resp)
	}
}

func TestHandleRefreshBypassesCache(t *testing.T) {
	loader := sampleLoader()
	srv := NewServer(loader, Options{})

	w := serve(t, srv, http.MethodPost, "/api/refresh", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp LoadSummary
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.FromCache || resp.Count != 3 {
		t.Fatalf("unexpected refresh summary %+v", resp)
	}
	if loader.refreshes != 1 || loader.loads != 0 {
		t.Fatalf("expected one refresh, got loads=%d refreshes=%d", loader.loads, loader.refreshes)
	}

	if w := serve(t, srv, http.MethodGet, "/api/refresh", ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET /api/refresh, got %d", w.Code)
	}
}

func TestHandleStatusReportsLastLoad(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	srv := NewServer(sampleLoader(), Options{SourceURL: "https://example.com/x.csv", Now: func() time.Time { return now }})

	w := serve(t, srv, http.MethodGet, "/api/status", "")
	var before StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &before); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if before.LastLoad != nil || before.SourceURL != "https://example.com/x.csv" {
		t.Fatalf("unexpected initial status %+v", before)
	}

	serve(t, srv, http.MethodGet, "/api/records", "")
	now = start.Add(90 * time.Second)

	w = serve(t, srv, http.MethodGet, "/api/status", "")
	var after StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &after); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if after.LastLoad == nil || after.LastLoad.Count != 3 || after.UptimeSeconds != 90 {
		t.Fatalf("unexpected status %+v", after)
	}
}

func TestLoadFailureStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"fetch", sheet.Wrap(sheet.ErrFetch, "get", "unexpected status 503", nil), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(&loaderStub{err: tt.err}, Options{})
			w := serve(t, srv, http.MethodGet, "/api/records", "")
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.err.Error()) {
				t.Fatalf("expected error message in body, got %s", w.Body.String())
			}

			w = serve(t, srv, http.MethodGet, "/api/status", "")
			var status StatusResponse
			if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
				t.Fatalf("failed to decode status: %v", err)
			}
			if status.LastError != tt.err.Error() {
				t.Fatalf("expected last error to be recorded, got %q", status.LastError)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv := NewServer(sampleLoader(), Options{Token: "secret"})

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusUnauthorized},
		{"valid", "secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, srv, http.MethodGet, "/api/status", tt.token)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := NewServer(sampleLoader(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/api/status")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
