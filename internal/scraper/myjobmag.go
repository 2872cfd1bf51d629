package scraper

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"
)

const (
	myJobMagBase    = "https://www.myjobmag.co.ke"
	myJobMagPageCap = 40
)

// MyJobMagScraper reads the board's listing pages through a headless
// browser because the list is rendered client side, then scrapes each
// posting's detail page the plain way.
type MyJobMagScraper struct {
	sink        Sink
	extractor   *Extractor
	baseURL     string
	allowedHost string
	logger      *log.Logger
}

func NewMyJobMagScraper(sink Sink, extractor *Extractor, logger *log.Logger) *MyJobMagScraper {
	return NewMyJobMagScraperWithBaseURL(sink, extractor, myJobMagBase, logger)
}

func NewMyJobMagScraperWithBaseURL(sink Sink, extractor *Extractor, baseURL string, logger *log.Logger) *MyJobMagScraper {
	if logger == nil {
		logger = log.Default()
	}
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = myJobMagBase
	}
	return &MyJobMagScraper{
		sink:        sink,
		extractor:   extractor,
		baseURL:     strings.TrimRight(base, "/"),
		allowedHost: hostFromBaseURL(base, "www.myjobmag.co.ke"),
		logger:      logger,
	}
}

type myJobMagListItem struct {
	ID  string
	URL string
}

type myJobMagDetail struct {
	title       string
	company     string
	location    string
	description string
	postedAt    *time.Time
}

func (s *MyJobMagScraper) Scrape(ctx context.Context, pages int, workers int) error {
	if s == nil || s.sink == nil {
		return fmt.Errorf("nil scraper/sink")
	}
	if pages <= 0 {
		pages = 1
	}

	pool := NewWorkerPool(workers, workers*2)
	pool.SetRateLimit(2)
	results := pool.Run(ctx)

	submitted := 0
	for page := 1; page <= pages; page++ {
		items, err := s.fetchListHeadless(ctx, page)
		if err != nil {
			s.logger.Printf("[Scrape] myjobmag list page=%d: %v", page, err)
			continue
		}
		for _, it := range items {
			link := strings.TrimSpace(it.URL)
			if link == "" {
				continue
			}
			submitted++
			pool.Submit(Task{URL: link, Fn: func(ctx context.Context) error {
				detail, err := s.scrapeDetailPage(ctx, link)
				if err != nil {
					return err
				}
				return s.sink.SubmitJob(ctx, s.buildJob(link, detail))
			}})
		}
	}

	pool.Close()

	failed := 0
	for res := range results {
		if res.Err != nil {
			failed++
			s.logger.Printf("[Scrape] myjobmag item url=%s: %v", res.URL, res.Err)
		}
	}

	s.logger.Printf("[Scrape] myjobmag done pages=%d submitted=%d failed=%d", pages, submitted, failed)
	return nil
}

func (s *MyJobMagScraper) buildJob(link string, d myJobMagDetail) Job {
	desc := clampText(d.description)
	job := Job{
		ID:          stableJobID(link),
		Source:      "MyJobMag",
		Title:       d.title,
		Company:     d.company,
		Location:    d.location,
		Description: desc,
		URL:         link,
		PostedAt:    d.postedAt,
	}
	job.Requirements = s.extractor.Extract(d.title + "\n" + desc)
	return job
}

var myJobMagJobPathRe = regexp.MustCompile(`(?i)/job/(\d+)`)

func (s *MyJobMagScraper) fetchListHeadless(ctx context.Context, page int) ([]myJobMagListItem, error) {
	listURL := s.baseURL + "/jobs"
	if page > 1 {
		listURL = fmt.Sprintf("%s/jobs/page/%d", s.baseURL, page)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	reqCtx, reqCancel := context.WithTimeout(browserCtx, 25*time.Second)
	defer reqCancel()

	var hrefs []string
	err := chromedp.Run(reqCtx,
		chromedp.Navigate(listURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.EvaluateAsDevTools(`Array.from(document.querySelectorAll('a[href]'))
			.map(a => a.getAttribute('href'))
			.filter(h => h && h.includes('/job/'))`, &hrefs),
	)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	out := make([]myJobMagListItem, 0, myJobMagPageCap)

	for _, h := range hrefs {
		if len(out) >= myJobMagPageCap {
			break
		}
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		m := myJobMagJobPathRe.FindStringSubmatch(h)
		if len(m) < 2 {
			continue
		}
		id := m[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		switch {
		case strings.HasPrefix(h, "http://"), strings.HasPrefix(h, "https://"):
			// keep
		case strings.HasPrefix(h, "/"):
			h = s.baseURL + h
		default:
			h = s.baseURL + "/" + h
		}
		out = append(out, myJobMagListItem{ID: id, URL: h})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no job urls found (headless)")
	}
	return out, nil
}

func (s *MyJobMagScraper) scrapeDetailPage(ctx context.Context, jobURL string) (myJobMagDetail, error) {
	c := colly.NewCollector(
		colly.AllowedDomains(s.allowedHost),
	)
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*myjobmag.co.ke*", Parallelism: 2, RandomDelay: 850 * time.Millisecond, Delay: 500 * time.Millisecond})

	var out myJobMagDetail
	var reqErr error

	c.OnRequest(func(r *colly.Request) {
		for k, v := range httpHeaders() {
			r.Headers.Set(k, v)
		}
	})

	c.OnHTML("h1", func(e *colly.HTMLElement) {
		if strings.TrimSpace(out.title) == "" {
			out.title = strings.TrimSpace(e.Text)
		}
	})

	c.OnHTML("title", func(e *colly.HTMLElement) {
		if strings.TrimSpace(out.title) == "" {
			out.title = strings.TrimSpace(e.Text)
		}
	})

	c.OnHTML("body", func(e *colly.HTMLElement) {
		if strings.TrimSpace(out.description) == "" {
			out.description = strings.TrimSpace(e.Text)
		}
	})

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
		return myJobMagDetail{}, ctx.Err()
	}
	if err := c.Visit(jobURL); err != nil {
		return myJobMagDetail{}, err
	}
	c.Wait()
	if reqErr != nil {
		return myJobMagDetail{}, reqErr
	}
	return out, nil
}
