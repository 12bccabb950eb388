package scraper

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const (
	// networkQuietWindow is how long the page must go without network
	// activity before it counts as idle.
	networkQuietWindow = 500 * time.Millisecond
	// networkIdleMax caps the idle wait so a page with long polling or
	// analytics beacons cannot stall the fetch.
	networkIdleMax = 10 * time.Second
)

// page is the narrow browser capability the fetch loops drive. Keeping the
// imperative UI interaction behind this seam lets the loops run against a
// fake in tests, without a real browser.
type page interface {
	Navigate(url string) error
	Eval(js string, out interface{}) error
	Markup() (string, error)
}

// chromePage drives a single headless-Chrome tab through chromedp.
type chromePage struct {
	ctx context.Context
}

func newChromePage(ctx context.Context, cfg FetcherConfig) (page, context.CancelFunc, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}
	return &chromePage{ctx: browserCtx}, cancel, nil
}

func (p *chromePage) Navigate(url string) error {
	return chromedp.Run(p.ctx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		waitNetworkIdle(networkQuietWindow, networkIdleMax),
	)
}

// waitNetworkIdle blocks until no request has started or finished for the
// quiet window. Requires network events to be enabled on the target.
func waitNetworkIdle(quiet, max time.Duration) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		activity := make(chan struct{}, 1)
		lctx, cancel := context.WithCancel(ctx)
		defer cancel()
		chromedp.ListenTarget(lctx, func(ev interface{}) {
			switch ev.(type) {
			case *network.EventRequestWillBeSent, *network.EventLoadingFinished, *network.EventLoadingFailed:
				select {
				case activity <- struct{}{}:
				default:
				}
			}
		})
		return awaitQuiet(ctx, activity, quiet, max)
	}
}

// awaitQuiet returns once the activity channel stays silent for the quiet
// window. Hitting the max bound is treated as idle enough; only cancellation
// of the parent context is an error.
func awaitQuiet(ctx context.Context, activity <-chan struct{}, quiet, max time.Duration) error {
	deadline := time.NewTimer(max)
	defer deadline.Stop()
	idle := time.NewTimer(quiet)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return nil
		case <-activity:
			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(quiet)
		case <-idle.C:
			return nil
		}
	}
}

func (p *chromePage) Eval(js string, out interface{}) error {
	return chromedp.Run(p.ctx, chromedp.Evaluate(js, out))
}

func (p *chromePage) Markup() (string, error) {
	var markup string
	err := chromedp.Run(p.ctx, chromedp.OuterHTML("html", &markup, chromedp.ByQuery))
	return markup, err
}
