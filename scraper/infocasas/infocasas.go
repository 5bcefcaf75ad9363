package infocasas

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"inmobiliaria-analyzer/config"
	"inmobiliaria-analyzer/models"
	"inmobiliaria-analyzer/utils"
)

// Scraper collects sale and rent apartment listings from InfoCasas search
// pages. Pages are rendered with a headless browser and parsed from the
// captured HTML.
type Scraper struct {
	cfg        *config.Config
	logger     *utils.Logger
	parser     *Parser
	pool       *utils.WorkerPool
	visitedURL *utils.URLSet
	retry      *utils.RetryConfig

	mu         sync.Mutex
	properties []models.RawProperty
}

// New creates a ready-to-use InfoCasas Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:        cfg,
		logger:     logger,
		parser:     NewParser(config.MontevideoNeighborhoods),
		pool:       utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		visitedURL: utils.NewURLSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Scrape collects listings for both operation types and returns the merged
// raw records.
func (s *Scraper) Scrape() ([]models.RawProperty, error) {
	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	s.logger.Info("[infocasas] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(s.cfg.UserAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelSilent()
	allocCtx = silentCtx

	targets := []struct {
		op  models.Operation
		url string
	}{
		{models.OperationSale, s.cfg.SaleURL},
		{models.OperationRent, s.cfg.RentURL},
	}

	for _, t := range targets {
		t := t
		s.pool.Submit(func() {
			s.scrapeOperation(allocCtx, t.op, t.url)
		})
	}
	s.pool.Wait()

	s.logger.Info("[infocasas] Scrape complete — total raw properties: %d", len(s.properties))
	return s.properties, nil
}

// scrapeOperation walks the paginated search results for one operation type,
// stopping early when a page yields nothing.
func (s *Scraper) scrapeOperation(allocCtx context.Context, op models.Operation, baseURL string) {
	s.logger.Info("[infocasas] Starting %s scrape — up to %d pages", op, s.cfg.PagesPerOp)

	for page := 1; page <= s.cfg.PagesPerOp; page++ {
		pageURL := fmt.Sprintf("%s?pagina=%d", baseURL, page)

		props, err := s.scrapePage(allocCtx, pageURL, op, page)
		if err != nil {
			s.logger.Error("[infocasas] %s page %d failed: %v", op, page, err)
			continue
		}
		if len(props) == 0 {
			s.logger.Warn("[infocasas] %s page %d returned 0 listings — stopping", op, page)
			break
		}

		added := 0
		s.mu.Lock()
		for _, p := range props {
			if p.URL != "" && !s.visitedURL.Add(p.URL) {
				continue
			}
			s.properties = append(s.properties, p)
			added++
		}
		total := len(s.properties)
		s.mu.Unlock()

		s.logger.Info("[infocasas] %s page %d done — %d new listings (%d total)", op, page, added, total)
	}
}

// scrapePage renders one results page and parses its property cards.
func (s *Scraper) scrapePage(allocCtx context.Context, pageURL string, op models.Operation, pageNum int) ([]models.RawProperty, error) {
	var props []models.RawProperty

	err := s.retry.Do(fmt.Sprintf("scrape-%s-page-%d", op, pageNum), func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		var html string
		err := chromedp.Run(ctx,
			chromedp.Navigate(pageURL),
			chromedp.Sleep(time.Duration(s.cfg.RateLimitMs)*time.Millisecond),
			chromedp.WaitReady("body"),
			chromedp.OuterHTML("html", &html),
		)
		if err != nil {
			return fmt.Errorf("chromedp page load: %w", err)
		}

		parsed, err := s.parser.ParsePage(html, op, s.cfg.BaseURL)
		if err != nil {
			return fmt.Errorf("parse page: %w", err)
		}

		props = parsed
		return nil
	})

	return props, err
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
