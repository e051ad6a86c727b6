package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
)

type searchEntry struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Year     *int    `json:"year"`
	Overview *string `json:"overview"`
	Poster   *string `json:"posterUrl"`
}

func main() {
	var (
		port = flag.String("port", "9099", "port to listen on")
		data = flag.String("data", "mock-moviesearch.json", "path to mock data file")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}

	var entries []searchEntry
	if err := json.Unmarshal(file, &entries); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		query := strings.ToLower(r.URL.Query().Get("query"))
		if query == "" {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		matches := make([]searchEntry, 0)
		for _, entry := range entries {
			if strings.Contains(strings.ToLower(entry.Title), query) {
				matches = append(matches, entry)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]interface{}{"results": matches}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	addr := ":" + *port
	log.Printf("mock movie search listening on %s (%d entries)", addr, len(entries))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
