package httpserver

import (
	"encoding/base64"
	"net/url"
	"testing"
	"time"

	"github.com/cinelog/cinelog/internal/config"
	"github.com/cinelog/cinelog/internal/repository"
)

func TestBuildMovieFilters(t *testing.T) {
	validCursor := func(t *testing.T) string {
		t.Helper()
		// Round-trip a real token through the repository encoding.
		cursor, err := repository.DecodeCursor("")
		if err != nil || cursor != nil {
			t.Fatalf("empty token should decode to nil, got %v/%v", cursor, err)
		}
		return base64.StdEncoding.EncodeToString([]byte(
			`{"createdAt":"2024-01-02T03:04:05Z","id":"11111111-2222-3333-4444-555555555555"}`))
	}(t)

	tests := []struct {
		name    string
		query   url.Values
		wantErr bool
		check   func(t *testing.T, filters repository.MovieListFilters)
	}{
		{
			name:  "empty query",
			query: url.Values{},
			check: func(t *testing.T, filters repository.MovieListFilters) {
				if filters.Query != nil || filters.Genre != nil || filters.Year != nil || filters.Cursor != nil {
					t.Fatalf("expected zero filters, got %+v", filters)
				}
			},
		},
		{
			name:  "trims text filters",
			query: url.Values{"q": {"  inception  "}, "genre": {" Sci-Fi "}},
			check: func(t *testing.T, filters repository.MovieListFilters) {
				if filters.Query == nil || *filters.Query != "inception" {
					t.Fatalf("query = %v", filters.Query)
				}
				if filters.Genre == nil || *filters.Genre != "Sci-Fi" {
					t.Fatalf("genre = %v", filters.Genre)
				}
			},
		},
		{
			name:  "numeric filters",
			query: url.Values{"year": {"2010"}, "limit": {"5"}},
			check: func(t *testing.T, filters repository.MovieListFilters) {
				if filters.Year == nil || *filters.Year != 2010 {
					t.Fatalf("year = %v", filters.Year)
				}
				if filters.Limit != 5 {
					t.Fatalf("limit = %d", filters.Limit)
				}
			},
		},
		{
			name:  "valid cursor",
			query: url.Values{"cursor": {validCursor}},
			check: func(t *testing.T, filters repository.MovieListFilters) {
				if filters.Cursor == nil {
					t.Fatal("cursor not decoded")
				}
				want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
				if !filters.Cursor.CreatedAt.Equal(want) {
					t.Fatalf("cursor createdAt = %v", filters.Cursor.CreatedAt)
				}
			},
		},
		{name: "bad year", query: url.Values{"year": {"twenty"}}, wantErr: true},
		{name: "bad limit", query: url.Values{"limit": {"ten"}}, wantErr: true},
		{name: "bad cursor", query: url.Values{"cursor": {"%%%not-base64%%%"}}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			filters, err := buildMovieFilters(tc.query)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.check != nil {
				tc.check(t, filters)
			}
		})
	}
}

func TestVerifyAdmin(t *testing.T) {
	srv := &Server{cfg: config.Config{AdminToken: "topsecret"}}

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"valid token", "Bearer topsecret", true},
		{"wrong token", "Bearer nope", false},
		{"missing prefix", "topsecret", false},
		{"empty header", "", false},
		{"blank token", "Bearer   ", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := srv.verifyAdmin(tc.header); got != tc.want {
				t.Fatalf("verifyAdmin(%q) = %v, want %v", tc.header, got, tc.want)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	if token, ok := bearerToken("Bearer abc.def.ghi"); !ok || token != "abc.def.ghi" {
		t.Fatalf("got %q/%v", token, ok)
	}
	if _, ok := bearerToken("Basic dXNlcjpwYXNz"); ok {
		t.Fatal("basic auth should be rejected")
	}
}

func FuzzBuildMovieFilters(f *testing.F) {
	f.Add("q=inception&year=2010")
	f.Add("genre=Drama&limit=10")
	f.Add("cursor=eyJpZCI6ImJhZCJ9")
	f.Add("year=&limit=&cursor=")
	f.Add("q=%zz")

	f.Fuzz(func(t *testing.T, raw string) {
		query, err := url.ParseQuery(raw)
		if err != nil {
			t.Skip()
		}
		filters, err := buildMovieFilters(query)
		if err != nil {
			return
		}
		if filters.Query != nil && *filters.Query == "" {
			t.Fatal("query filter must not be empty when set")
		}
		if filters.Genre != nil && *filters.Genre == "" {
			t.Fatal("genre filter must not be empty when set")
		}
	})
}
