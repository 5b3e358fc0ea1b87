package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	readinglog "github.com/zombar/readinglog"
	"github.com/zombar/readinglog/llm"
)

// fakeOrigin serves article pages for the pipeline to fetch.
func fakeOrigin(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var b strings.Builder
		b.WriteString("<html><head><title>Test Article</title></head><body><article>")
		for i := 0; i < 400; i++ {
			fmt.Fprintf(&b, "<p>paragraph number %d of the test article body text</p>", i)
		}
		b.WriteString("</article></body></html>")
		w.Write([]byte(b.String()))
	}))
	t.Cleanup(server.Close)
	return server
}

// fakeOllama answers generate calls with a fixed JSON summary.
func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"response": `{"summary": "A test summary.", "tags": ["testing"]}`,
			"done":     true,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	pipelineConfig := readinglog.DefaultConfig()
	pipelineConfig.HTTPTimeout = 5 * time.Second
	pipelineConfig.MinWordCount = 10
	pipelineConfig.RetryBackoff = time.Millisecond
	pipelineConfig.IngestTimeout = 10 * time.Second

	config := Config{
		Addr:           ":0",
		CORSEnabled:    false,
		DatabaseDriver: "memory",
		StoragePath:    t.TempDir(),
		LLM:            llm.ProviderConfig{OllamaBaseURL: fakeOllama(t).URL},
		Pipeline:       pipelineConfig,
	}

	server, err := NewServer(config)
	if err != nil {
		t.Fatalf("Failed to create test server: %v", err)
	}
	return server
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func ingestTestArticle(t *testing.T, server *Server, url string) *ArticleResponse {
	t.Helper()

	rec := doJSON(t, server.Handler(), http.MethodPost, "/api/articles", IngestRequest{URL: url})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/articles status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp ArticleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return &resp
}

func TestHandleIngest(t *testing.T) {
	server := setupTestServer(t)
	origin := fakeOrigin(t)

	resp := ingestTestArticle(t, server, origin.URL+"/post")

	if resp.ID == 0 {
		t.Error("Response should carry the stored id")
	}
	if resp.Title == nil || *resp.Title != "Test Article" {
		t.Errorf("Title = %v, want Test Article", resp.Title)
	}
	if resp.Summary == nil || *resp.Summary != "A test summary." {
		t.Errorf("Summary = %v, want the summarizer output", resp.Summary)
	}
	if resp.ReadTimeMinutes < 1 {
		t.Errorf("ReadTimeMinutes = %d, want at least 1", resp.ReadTimeMinutes)
	}

	found := false
	for _, tag := range resp.Tags {
		if tag == "testing" {
			found = true
		}
	}
	if !found {
		t.Errorf("Tags = %v, want the summarizer tag included", resp.Tags)
	}
}

func TestHandleIngestValidation(t *testing.T) {
	server := setupTestServer(t)
	origin := fakeOrigin(t)

	tests := []struct {
		name       string
		body       interface{}
		rawBody    string
		wantStatus int
	}{
		{"missing url", IngestRequest{}, "", http.StatusBadRequest},
		{"malformed body", nil, "{not json", http.StatusBadRequest},
		{"invalid url", IngestRequest{URL: "not-a-url"}, "", http.StatusBadRequest},
		{"unreachable origin", IngestRequest{URL: origin.URL + "/missing"}, "", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec *httptest.ResponseRecorder
			if tt.rawBody != "" {
				req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(tt.rawBody))
				rec = httptest.NewRecorder()
				server.Handler().ServeHTTP(rec, req)
			} else {
				rec = doJSON(t, server.Handler(), http.MethodPost, "/api/articles", tt.body)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestHandleIngestIdempotent(t *testing.T) {
	server := setupTestServer(t)
	origin := fakeOrigin(t)

	first := ingestTestArticle(t, server, origin.URL+"/post")
	second := ingestTestArticle(t, server, origin.URL+"/post")

	if second.ID != first.ID {
		t.Errorf("Re-submission returned id %d, want %d", second.ID, first.ID)
	}
}

func TestHandleList(t *testing.T) {
	server := setupTestServer(t)
	origin := fakeOrigin(t)

	for i := 0; i < 3; i++ {
		ingestTestArticle(t, server, fmt.Sprintf("%s/post-%d", origin.URL, i))
	}

	rec := doJSON(t, server.Handler(), http.MethodGet, "/api/articles?limit=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/articles status = %d", rec.Code)
	}

	var resp struct {
		Articles []*ArticleResponse `json:"articles"`
		Total    int64              `json:"total"`
		Limit    int                `json:"limit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Total != 3 {
		t.Errorf("total = %d, want 3", resp.Total)
	}
	if len(resp.Articles) != 2 {
		t.Errorf("Returned %d articles, want 2", len(resp.Articles))
	}
	if resp.Limit != 2 {
		t.Errorf("limit = %d, want 2", resp.Limit)
	}
}

func TestHandleGetAndDelete(t *testing.T) {
	server := setupTestServer(t)
	origin := fakeOrigin(t)

	stored := ingestTestArticle(t, server, origin.URL+"/post")

	rec := doJSON(t, server.Handler(), http.MethodGet, fmt.Sprintf("/api/articles/%d", stored.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET by id status = %d", rec.Code)
	}

	rec = doJSON(t, server.Handler(), http.MethodDelete, fmt.Sprintf("/api/articles/%d", stored.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d", rec.Code)
	}

	rec = doJSON(t, server.Handler(), http.MethodGet, fmt.Sprintf("/api/articles/%d", stored.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, server.Handler(), http.MethodDelete, "/api/articles/9999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("DELETE missing id status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, server.Handler(), http.MethodGet, "/api/articles/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("GET with bad id status = %d, want 400", rec.Code)
	}
}

func TestHandleSetRead(t *testing.T) {
	server := setupTestServer(t)
	origin := fakeOrigin(t)

	stored := ingestTestArticle(t, server, origin.URL+"/post")

	rec := doJSON(t, server.Handler(), http.MethodPut,
		fmt.Sprintf("/api/articles/%d/read", stored.ID), ReadRequest{HasRead: true})
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /read status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp ArticleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.HasRead {
		t.Error("has_read = false after marking read")
	}

	rec = doJSON(t, server.Handler(), http.MethodPut, "/api/articles/9999/read", ReadRequest{HasRead: true})
	if rec.Code != http.StatusNotFound {
		t.Errorf("PUT /read for missing id status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, server.Handler(), http.MethodGet,
		fmt.Sprintf("/api/articles/%d/read", stored.ID), nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET on /read status = %d, want 405", rec.Code)
	}
}

func TestHandleSetRating(t *testing.T) {
	server := setupTestServer(t)
	origin := fakeOrigin(t)

	stored := ingestTestArticle(t, server, origin.URL+"/post")

	rec := doJSON(t, server.Handler(), http.MethodPut,
		fmt.Sprintf("/api/articles/%d/rating", stored.ID), RatingRequest{Rating: 5})
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /rating status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp ArticleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Rating != 5 {
		t.Errorf("rating = %d, want 5", resp.Rating)
	}

	rec = doJSON(t, server.Handler(), http.MethodPut,
		fmt.Sprintf("/api/articles/%d/rating", stored.ID), RatingRequest{Rating: 6})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("PUT /rating with 6 status = %d, want 400", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	server := setupTestServer(t)

	rec := doJSON(t, server.Handler(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health status = %d", rec.Code)
	}

	var resp struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
}

func TestHandleMetrics(t *testing.T) {
	server := setupTestServer(t)
	origin := fakeOrigin(t)
	ingestTestArticle(t, server, origin.URL+"/post")

	rec := doJSON(t, server.Handler(), http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "readinglog_ingests_total") {
		t.Error("Metrics output is missing pipeline counters")
	}
}

func TestCORSMiddleware(t *testing.T) {
	pipelineConfig := readinglog.DefaultConfig()
	config := Config{
		Addr:           ":0",
		CORSEnabled:    true,
		DatabaseDriver: "memory",
		LLM:            llm.ProviderConfig{OllamaBaseURL: fakeOllama(t).URL},
		Pipeline:       pipelineConfig,
	}
	server, err := NewServer(config)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/articles", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("OPTIONS status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Missing CORS allow-origin header")
	}
}
