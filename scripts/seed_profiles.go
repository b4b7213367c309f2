// seed_profiles.go: standalone script that registers every profile file in a
// directory with a running scorecard server.
//
// Usage:
//
//	go run scripts/seed_profiles.go -dir ./profiles -api http://localhost:8700 -client seed
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/MikeSquared-Agency/Scorecard/internal/profile"
)

type createRequest struct {
	Name    string              `json:"name"`
	Notes   string              `json:"notes,omitempty"`
	Profile profile.Description `json:"profile"`
}

func main() {
	dir := flag.String("dir", "profiles", "directory of .json/.yaml profile files")
	apiURL := flag.String("api", "http://localhost:8700", "scorecard API base URL")
	clientID := flag.String("client", "seed", "X-Client-ID header value")
	dryRun := flag.Bool("dry-run", false, "validate files without posting")
	flag.Parse()

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("read dir: %v", err)
	}

	cats := profile.DefaultCatalogues()
	var reqs []createRequest
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(*dir, e.Name())
		if _, err := profile.FormatFromPath(path); err != nil {
			continue
		}
		p, err := profile.LoadFile(path, cats)
		if err != nil {
			log.Printf("skip %s: %v", path, err)
			continue
		}
		reqs = append(reqs, createRequest{
			Name:    strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			Notes:   "seeded from " + path,
			Profile: p.Description(),
		})
	}

	log.Printf("loaded %d profiles from %s", len(reqs), *dir)

	if *dryRun {
		for i, r := range reqs {
			fmt.Printf("[%d] %s (%d objectives, aggregation=%s)\n",
				i+1, r.Name, len(r.Profile.Objectives), r.Profile.AggregationFunction.Name)
		}
		return
	}

	client := &http.Client{}
	created, skipped := 0, 0
	for _, r := range reqs {
		body, _ := json.Marshal(r)
		req, err := http.NewRequest("POST", *apiURL+"/profiles", bytes.NewReader(body))
		if err != nil {
			log.Printf("skip %q: %v", r.Name, err)
			skipped++
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-ID", *clientID)

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip %q: %v", r.Name, err)
			skipped++
			continue
		}
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			log.Printf("skip %q: already registered", r.Name)
			skipped++
		default:
			log.Printf("skip %q: status %d", r.Name, resp.StatusCode)
			skipped++
		}
	}

	log.Printf("done: %d created, %d skipped", created, skipped)
}
