package scraper

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

const brighterMondayBase = "https://www.brightermonday.co.ke"

// BrighterMondayScraper walks the board's listing pages and scrapes each
// posting's detail page. Postings carry a schema.org JobPosting blob, so
// the detail parse prefers that and falls back to the visible markup.
type BrighterMondayScraper struct {
	sink        Sink
	extractor   *Extractor
	baseURL     string
	allowedHost string
	logger      *log.Logger
}

func NewBrighterMondayScraper(sink Sink, extractor *Extractor, logger *log.Logger) *BrighterMondayScraper {
	return NewBrighterMondayScraperWithBaseURL(sink, extractor, brighterMondayBase, logger)
}

func NewBrighterMondayScraperWithBaseURL(sink Sink, extractor *Extractor, baseURL string, logger *log.Logger) *BrighterMondayScraper {
	if logger == nil {
		logger = log.Default()
	}
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = brighterMondayBase
	}
	return &BrighterMondayScraper{
		sink:        sink,
		extractor:   extractor,
		baseURL:     strings.TrimRight(base, "/"),
		allowedHost: hostFromBaseURL(base, "www.brightermonday.co.ke"),
		logger:      logger,
	}
}

type brighterMondayListItem struct {
	Title string
	Link  string
}

type brighterMondayDetail struct {
	title       string
	company     string
	location    string
	description string
	postedAt    *time.Time
}

func (s *BrighterMondayScraper) Scrape(ctx context.Context, pages int, workers int) error {
	if s == nil || s.sink == nil {
		return fmt.Errorf("nil scraper/sink")
	}
	if pages <= 0 {
		pages = 1
	}

	pool := NewWorkerPool(workers, workers*2)
	pool.SetRateLimit(3)
	results := pool.Run(ctx)

	submitted := 0
	for page := 1; page <= pages; page++ {
		listURL := fmt.Sprintf("%s/jobs?page=%d", s.baseURL, page)
		items, err := s.scrapeListingPage(ctx, listURL)
		if err != nil {
			s.logger.Printf("[Scrape] brightermonday list page=%d: %v", page, err)
			continue
		}
		for _, it := range items {
			link := strings.TrimSpace(it.Link)
			if link == "" {
				continue
			}
			it := it
			submitted++
			pool.Submit(Task{URL: link, Fn: func(ctx context.Context) error {
				detail, err := s.scrapeDetailPage(ctx, link)
				if err != nil {
					return err
				}
				return s.sink.SubmitJob(ctx, s.buildJob(link, it, detail))
			}})
		}
	}

	pool.Close()

	failed := 0
	for res := range results {
		if res.Err != nil {
			failed++
			s.logger.Printf("[Scrape] brightermonday item url=%s: %v", res.URL, res.Err)
		}
	}

	s.logger.Printf("[Scrape] brightermonday done pages=%d submitted=%d failed=%d", pages, submitted, failed)
	return nil
}

func (s *BrighterMondayScraper) buildJob(link string, it brighterMondayListItem, d brighterMondayDetail) Job {
	title := pickNonEmpty(d.title, it.Title)
	desc := clampText(d.description)
	job := Job{
		ID:          stableJobID(link),
		Source:      "BrighterMonday",
		Title:       title,
		Company:     d.company,
		Location:    d.location,
		Description: desc,
		URL:         link,
		PostedAt:    d.postedAt,
	}
	job.Requirements = s.extractor.Extract(title + "\n" + desc)
	return job
}

func (s *BrighterMondayScraper) scrapeListingPage(ctx context.Context, listURL string) ([]brighterMondayListItem, error) {
	c := colly.NewCollector(
		colly.AllowedDomains(s.allowedHost),
	)
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*brightermonday.co.ke*", Parallelism: 2, RandomDelay: 750 * time.Millisecond, Delay: 400 * time.Millisecond})

	items := make([]brighterMondayListItem, 0)

	c.OnHTML("a", func(e *colly.HTMLElement) {
		href := strings.TrimSpace(e.Attr("href"))
		if href == "" || !strings.Contains(href, "/listings/") {
			return
		}
		abs := e.Request.AbsoluteURL(href)
		if abs == "" {
			return
		}
		items = append(items, brighterMondayListItem{Title: strings.TrimSpace(e.Text), Link: abs})
	})

	var reqErr error
	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	c.OnRequest(func(r *colly.Request) {
		for k, v := range httpHeaders() {
			r.Headers.Set(k, v)
		}
	})

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := c.Visit(listURL); err != nil {
		return nil, err
	}
	c.Wait()
	if reqErr != nil {
		return nil, reqErr
	}

	dedup := map[string]struct{}{}
	out := make([]brighterMondayListItem, 0, len(items))
	for _, it := range items {
		u := normalizeURL(it.Link)
		if u == "" {
			continue
		}
		if _, ok := dedup[u]; ok {
			continue
		}
		dedup[u] = struct{}{}
		out = append(out, brighterMondayListItem{Title: it.Title, Link: u})
	}
	return out, nil
}

func (s *BrighterMondayScraper) scrapeDetailPage(ctx context.Context, jobURL string) (brighterMondayDetail, error) {
	c := colly.NewCollector(
		colly.AllowedDomains(s.allowedHost),
	)
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*brightermonday.co.ke*", Parallelism: 2, RandomDelay: 850 * time.Millisecond, Delay: 450 * time.Millisecond})

	var out brighterMondayDetail
	var reqErr error

	c.OnRequest(func(r *colly.Request) {
		for k, v := range httpHeaders() {
			r.Headers.Set(k, v)
		}
	})

	c.OnHTML("title", func(e *colly.HTMLElement) {
		if strings.TrimSpace(out.title) == "" {
			out.title = strings.TrimSpace(e.Text)
		}
	})

	c.OnHTML("h1", func(e *colly.HTMLElement) {
		if strings.TrimSpace(out.title) == "" {
			out.title = strings.TrimSpace(e.Text)
		}
	})

	c.OnHTML("body", func(e *colly.HTMLElement) {
		if strings.TrimSpace(out.description) == "" {
			out.description = strings.TrimSpace(e.Text)
		}
	})

	// The JobPosting blob beats anything read off the markup.
	c.OnHTML(`script[type="application/ld+json"]`, func(e *colly.HTMLElement) {
		ld, ok := parseJobPostingLD(e.Text)
		if !ok {
			return
		}
		if v := stripTags(ld.Title); v != "" {
			out.title = v
		}
		if v := strings.TrimSpace(ld.HiringOrganization.Name); v != "" {
			out.company = v
		}
		if v := pickNonEmpty(ld.JobLocation.Address.AddressLocality, ld.JobLocation.Address.AddressRegion); v != "" {
			out.location = v
		}
		if v := stripTags(ld.Description); v != "" {
			out.description = v
		}
		if tm := parseTimeOrNil(ld.DatePosted); tm != nil {
			out.postedAt = tm
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if ctx.Err() != nil {
		return brighterMondayDetail{}, ctx.Err()
	}
	if err := c.Visit(jobURL); err != nil {
		return brighterMondayDetail{}, err
	}
	c.Wait()
	if reqErr != nil {
		return brighterMondayDetail{}, reqErr
	}
	return out, nil
}
