package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/shiftcal/shiftcal/internal/config"
	log "github.com/sirupsen/logrus"
)

const defaultTimeoutSec = 60

// Selectors on the scheduling site. The site is a classic server-rendered
// form + results table, so these are stable.
const (
	usernameSelector = `input[name="username"]`
	passwordSelector = `input[name="password"]`
	loginSelector    = `input[type="submit"]`
	tableSelector    = `table#schedule tbody tr`
)

// collectRowsJS gathers the trimmed cell texts of every row in the schedule
// table into a string matrix.
const collectRowsJS = `
	Array.from(document.querySelectorAll('table#schedule tbody tr')).map(function (tr) {
		return Array.from(tr.querySelectorAll('td')).map(function (td) {
			return td.innerText.trim();
		});
	})
`

// ChromeExtractor drives a headless Chromium session against the scheduling
// website and reads the schedule table.
type ChromeExtractor struct {
	cfg config.Site
}

func NewChromeExtractor(cfg config.Site) *ChromeExtractor {
	return &ChromeExtractor{cfg: cfg}
}

func (e *ChromeExtractor) Rows(parentCtx context.Context) ([]RawRow, error) {
	if e.cfg.URL == "" {
		return nil, fmt.Errorf("scraper: site URL is required")
	}

	timeout := time.Duration(e.cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeoutSec * time.Second
	}

	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if e.cfg.ChromePath != "" {
		// Serverless environments ship their own Chromium binary.
		allocOpts = append(allocOpts, chromedp.ExecPath(e.cfg.ChromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(parentCtx, allocOpts...)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	defer timeoutCancel()

	log.Infof("Scraping schedule from %s", e.cfg.URL)

	var cells [][]string
	tasks := chromedp.Tasks{
		chromedp.Navigate(e.cfg.URL),
		chromedp.WaitVisible(usernameSelector, chromedp.ByQuery),
		chromedp.SendKeys(usernameSelector, e.cfg.Username, chromedp.ByQuery),
		chromedp.SendKeys(passwordSelector, e.cfg.Password, chromedp.ByQuery),
		chromedp.Click(loginSelector, chromedp.ByQuery),
		chromedp.WaitVisible(tableSelector, chromedp.ByQuery),
		chromedp.Evaluate(collectRowsJS, &cells),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("scraper: chromedp run failed: %w", err)
	}

	rows := make([]RawRow, 0, len(cells))
	for _, row := range cells {
		rows = append(rows, RawRow(row))
	}
	log.Infof("Scraped %d rows from schedule table", len(rows))
	return rows, nil
}
