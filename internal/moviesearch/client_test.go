package moviesearch

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(server.URL, "test-key", 2*time.Second, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client
}

func TestSearchParsesResults(t *testing.T) {
	var gotKey, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":"tt1375666","title":"Inception","year":2010}]}`))
	})

	results, err := client.Search(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key header = %q", gotKey)
	}
	if gotQuery != "Inception" {
		t.Fatalf("query param = %q", gotQuery)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Title != "Inception" || results[0].ExternalID != "tt1375666" {
		t.Fatalf("unexpected result: %+v", results[0])
	}
	if results[0].ReleaseYear == nil || *results[0].ReleaseYear != 2010 {
		t.Fatalf("year = %v, want 2010", results[0].ReleaseYear)
	}
}

func TestSearchEmptyAndNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	})
	results, err := client.Search(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %d, want 0", len(results))
	}

	notFound := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})
	results, err = notFound.Search(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("search on 404: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("results on 404 = %v, want empty slice", results)
	}
}

func TestSearchUpstreamFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Search(context.Background(), "anything")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestSearchHonorsContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := client.Search(ctx, "slow"); err == nil {
		t.Fatalf("expected context deadline error")
	}
}
