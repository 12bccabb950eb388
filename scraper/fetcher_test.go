package scraper

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-search-ai/models"
)

// fakePage scripts the browser's behavior so the drive loops can be
// exercised without Chrome.
type fakePage struct {
	navigated []string
	navErr    error

	priceReadyAfter int // number of probes that report "not ready" first
	priceProbes     int

	laterPresent int // how many times the pagination control exists
	laterClicks  int

	boxCount     int
	expandClicks int

	markup    string
	markupErr error
}

func (p *fakePage) Navigate(url string) error {
	p.navigated = append(p.navigated, url)
	return p.navErr
}

func (p *fakePage) Eval(js string, out interface{}) error {
	switch {
	case js == priceReadyJS:
		p.priceProbes++
		*(out.(*bool)) = p.priceProbes > p.priceReadyAfter
	case js == clickLaterJS:
		if p.laterClicks < p.laterPresent {
			p.laterClicks++
			*(out.(*bool)) = true
		} else {
			*(out.(*bool)) = false
		}
	case js == boxCountJS:
		*(out.(*int)) = p.boxCount
	case strings.Contains(js, fareToggleSelector):
		p.expandClicks++
		*(out.(*bool)) = true
	default:
		// per-box fare probe: report ready immediately
		*(out.(*bool)) = true
	}
	return nil
}

func (p *fakePage) Markup() (string, error) {
	return p.markup, p.markupErr
}

func newTestFetcher(pg *fakePage) (*Fetcher, *int) {
	pauses := 0
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	f := &Fetcher{
		cfg: FetcherConfig{Timeout: time.Minute},
		log: log,
		newPage: func(ctx context.Context) (page, context.CancelFunc, error) {
			return pg, func() {}, nil
		},
		pause: func(ctx context.Context, d time.Duration) error {
			pauses++
			return nil
		},
	}
	return f, &pauses
}

var testQuery = models.TripQuery{From: "Dubník", To: "Bratislava", Date: "2025-05-18", Time: "13:00", Adults: 1}

func TestFetchReturnsRenderedMarkup(t *testing.T) {
	pg := &fakePage{markup: "<html>rendered</html>", priceReadyAfter: 0}
	f, _ := newTestFetcher(pg)

	markup, err := f.Fetch(context.Background(), testQuery)
	require.NoError(t, err)
	assert.Equal(t, "<html>rendered</html>", markup)
	require.Len(t, pg.navigated, 1)
	assert.Equal(t, BuildSearchURL("Dubník", "Bratislava", "2025-05-18", "13:00"), pg.navigated[0])
}

func TestFetchNavigateErrorIsFetchError(t *testing.T) {
	pg := &fakePage{navErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	f, _ := newTestFetcher(pg)

	_, err := f.Fetch(context.Background(), testQuery)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestFetchPriceWaitProceedsAfterCap(t *testing.T) {
	// Prices never populate: the fetcher must give up after the cap and still
	// capture the page.
	pg := &fakePage{markup: "<html/>", priceReadyAfter: 1000}
	f, pauses := newTestFetcher(pg)

	_, err := f.Fetch(context.Background(), testQuery)
	require.NoError(t, err)
	assert.Equal(t, priceWaitAttempts, pg.priceProbes)
	assert.GreaterOrEqual(t, *pauses, priceWaitAttempts)
}

func TestFetchPaginationStopsWhenControlGone(t *testing.T) {
	pg := &fakePage{markup: "<html/>", laterPresent: 2}
	f, _ := newTestFetcher(pg)

	_, err := f.Fetch(context.Background(), testQuery)
	require.NoError(t, err)
	assert.Equal(t, 2, pg.laterClicks)
}

func TestFetchPaginationCappedAtFiveClicks(t *testing.T) {
	pg := &fakePage{markup: "<html/>", laterPresent: 100}
	f, _ := newTestFetcher(pg)

	_, err := f.Fetch(context.Background(), testQuery)
	require.NoError(t, err)
	assert.Equal(t, laterClickAttempts, pg.laterClicks)
}

func TestFetchExpandsEveryFareDisclosure(t *testing.T) {
	pg := &fakePage{markup: "<html/>", boxCount: 3}
	f, _ := newTestFetcher(pg)

	_, err := f.Fetch(context.Background(), testQuery)
	require.NoError(t, err)
	assert.Equal(t, 3, pg.expandClicks)
}

func TestFetchMarkupErrorIsFetchError(t *testing.T) {
	pg := &fakePage{markupErr: errors.New("target closed")}
	f, _ := newTestFetcher(pg)

	_, err := f.Fetch(context.Background(), testQuery)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
}
