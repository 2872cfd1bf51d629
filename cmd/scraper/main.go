package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"workforce-grid/internal/scraper"
)

// The scraper runs apart from the server and talks to it over the public
// API: it pulls the taxonomy, scrapes the boards, and posts jobs back.
func main() {
	gridURL := flag.String("grid", "", "base URL of the grid node to feed (defaults to GRID_URL)")
	boards := flag.String("boards", "all", "comma separated boards: brightermonday, myjobmag")
	pages := flag.Int("pages", 2, "listing pages per board")
	workers := flag.Int("workers", 4, "detail scrape workers per board")
	flag.Parse()

	base := strings.TrimSpace(*gridURL)
	if base == "" {
		base = strings.TrimSpace(os.Getenv("GRID_URL"))
	}

	client := scraper.NewGridClient(base, log.Default())
	if client == nil {
		log.Fatalf("provide -grid or GRID_URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	skills, err := client.Skills(ctx)
	if err != nil {
		log.Fatalf("resolve taxonomy: %v", err)
	}
	extractor := scraper.NewExtractor(skills)
	log.Printf("[Scrape] taxonomy resolved skills=%d grid=%s", extractor.Size(), base)

	wanted := map[string]bool{}
	for _, b := range strings.Split(strings.ToLower(*boards), ",") {
		if b = strings.TrimSpace(b); b != "" {
			wanted[b] = true
		}
	}
	all := wanted["all"] || len(wanted) == 0

	if all || wanted["brightermonday"] {
		s := scraper.NewBrighterMondayScraper(client, extractor, log.Default())
		if err := s.Scrape(ctx, *pages, *workers); err != nil {
			log.Printf("[Scrape] brightermonday failed: %v", err)
		}
	}
	if all || wanted["myjobmag"] {
		s := scraper.NewMyJobMagScraper(client, extractor, log.Default())
		if err := s.Scrape(ctx, *pages, *workers); err != nil {
			log.Printf("[Scrape] myjobmag failed: %v", err)
		}
	}
}
