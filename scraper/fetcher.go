package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"trip-search-ai/models"
)

// Interaction caps. Exceeding a cap never fails the fetch, it just means
// proceeding with whatever the page has rendered so far.
const (
	priceWaitAttempts = 10
	priceWaitInterval = time.Second

	laterClickAttempts = 5
	laterClickPause    = 1500 * time.Millisecond

	fareExpandAttempts = 4
	fareExpandInterval = 500 * time.Millisecond
)

// JS probes evaluated inside the page. The site renders fares and later
// connections asynchronously, so the fetcher behaves like a patient user:
// poll, click, wait, repeat within the caps.
const (
	priceReadyJS = `Array.from(document.querySelectorAll('.price-value')).some(e => (e.textContent || '').trim().length > 0)`

	clickLaterJS = `(() => {
		const link = Array.from(document.querySelectorAll('a'))
			.find(a => (a.textContent || '').includes('` + laterConnectionsText + `') && a.offsetParent !== null);
		if (!link) return false;
		link.click();
		return true;
	})()`

	boxCountJS = `document.querySelectorAll('` + connectionBoxSelector + `').length`
)

// FetcherConfig carries the browser-session knobs.
type FetcherConfig struct {
	Headless   bool
	ChromePath string
	Timeout    time.Duration
}

// Fetcher loads the query URL in a headless browser, coaxes the page into
// rendering fares and later connections, and returns the final markup. Each
// call owns its browser session and tears it down on every exit path.
type Fetcher struct {
	cfg FetcherConfig
	log *logrus.Logger

	// seams for tests
	newPage func(ctx context.Context) (page, context.CancelFunc, error)
	pause   func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a chromedp-backed fetcher.
func NewFetcher(cfg FetcherConfig, log *logrus.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	f := &Fetcher{cfg: cfg, log: log, pause: pauseCtx}
	f.newPage = func(ctx context.Context) (page, context.CancelFunc, error) {
		return newChromePage(ctx, cfg)
	}
	return f
}

// Fetch navigates to the built query URL and returns the fully rendered
// markup. Navigation and capture errors come back as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, query models.TripQuery) (string, error) {
	target := BuildSearchURL(query.From, query.To, query.Date, query.Time)

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	pg, closePage, err := f.newPage(ctx)
	if err != nil {
		return "", &FetchError{Detail: "browser session", Err: err}
	}
	defer closePage()

	f.log.WithField("url", target).Info("opening results page")
	if err := pg.Navigate(target); err != nil {
		return "", &FetchError{Detail: "navigate " + target, Err: err}
	}

	if err := f.waitForPrices(ctx, pg); err != nil {
		return "", err
	}
	if err := f.revealLaterConnections(ctx, pg); err != nil {
		return "", err
	}
	f.expandFareDetails(ctx, pg)

	markup, err := pg.Markup()
	if err != nil {
		return "", &FetchError{Detail: "capture markup", Err: err}
	}
	return markup, nil
}

// waitForPrices polls for at least one populated fare element, then proceeds
// regardless: some itineraries legitimately carry no fare.
func (f *Fetcher) waitForPrices(ctx context.Context, pg page) error {
	for attempt := 0; attempt < priceWaitAttempts; attempt++ {
		var ready bool
		if err := pg.Eval(priceReadyJS, &ready); err == nil && ready {
			return nil
		}
		if err := f.pause(ctx, priceWaitInterval); err != nil {
			return &FetchError{Detail: "waiting for fares", Err: err}
		}
	}
	f.log.Warn("fares did not populate within the wait cap, continuing")
	return nil
}

// revealLaterConnections activates the "Neskoršie spojenie" control while it
// stays present, pausing after each click so the page can append results.
// This is the only pagination the site offers.
func (f *Fetcher) revealLaterConnections(ctx context.Context, pg page) error {
	for attempt := 0; attempt < laterClickAttempts; attempt++ {
		var clicked bool
		if err := pg.Eval(clickLaterJS, &clicked); err != nil || !clicked {
			return nil
		}
		f.log.WithField("click", attempt+1).Debug("revealed later connections")
		if err := f.pause(ctx, laterClickPause); err != nil {
			return &FetchError{Detail: "waiting after pagination click", Err: err}
		}
	}
	return nil
}

// expandFareDetails opens each itinerary's fare disclosure and gives the
// fare element a bounded moment to appear. Entirely best-effort: a box that
// never shows a fare proceeds with whatever price data it has.
func (f *Fetcher) expandFareDetails(ctx context.Context, pg page) {
	var count int
	if err := pg.Eval(boxCountJS, &count); err != nil {
		return
	}
	for i := 0; i < count; i++ {
		var clicked bool
		if err := pg.Eval(expandFareJS(i), &clicked); err != nil || !clicked {
			continue
		}
		for attempt := 0; attempt < fareExpandAttempts; attempt++ {
			var ready bool
			if err := pg.Eval(boxPriceReadyJS(i), &ready); err == nil && ready {
				break
			}
			if f.pause(ctx, fareExpandInterval) != nil {
				return
			}
		}
	}
}

func expandFareJS(i int) string {
	return fmt.Sprintf(`(() => {
		const box = document.querySelectorAll('%s')[%d];
		if (!box) return false;
		const toggle = box.querySelector('%s');
		if (!toggle) return false;
		toggle.click();
		return true;
	})()`, connectionBoxSelector, i, fareToggleSelector)
}

func boxPriceReadyJS(i int) string {
	return fmt.Sprintf(`(() => {
		const box = document.querySelectorAll('%s')[%d];
		if (!box) return false;
		const price = box.querySelector('%s');
		return !!price && (price.textContent || '').trim().length > 0;
	})()`, connectionBoxSelector, i, priceValueSelector)
}

func pauseCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
