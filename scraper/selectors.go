package scraper

import "regexp"

// Selectors and text patterns for the cp.sk results page. Everything
// DOM-coupled lives here: when the site changes its markup, this table is the
// only thing that should need touching.
const (
	connectionBoxSelector = ".box.connection.detail-box"
	dateLabelSelector     = ".date-after"
	headSelector          = ".connection-head"
	departureSelector     = "h2.reset.date"
	totalDurationSelector = ".total strong"

	segmentBlockSelector = ".connection-details .outside-of-popup, .connection-details .outside-of-popup--with-link-dist"
	walkBlockClass       = "outside-of-popup--with-link-dist"
	walkDetailSelector   = ".walk--detail"
	lineItemSelector     = ".line-item"
	lineTitleSelector    = ".line-title h3 span"
	lineIconSelector     = ".line-title img"
	carrierSelector      = ".owner span"
	stationListSelector  = "ul.stations li"
	stopTimeSelector     = ".time"
	stopNameSelector     = ".name"

	priceValueSelector  = ".price-value"
	basketPriceSelector = ".connection-expand .basket .price-value"
	anyPriceSelector    = ".price"
	fareToggleSelector  = ".connection-expand-btn"

	laterConnectionsText = "Neskoršie spojenie"
)

var (
	// "2 hod 34 min" with the minute group optional, then bare "45 min".
	hourMinRe = regexp.MustCompile(`(\d+)\s*hod(?:\s*(\d+)\s*min)?`)
	minOnlyRe = regexp.MustCompile(`(\d+)\s*min`)

	// Currency amounts: "6,80 EUR", "6.80 €".
	priceRe = regexp.MustCompile(`([\d]+(?:[.,]\d+)?)\s*(?:EUR|€)`)

	// Numeric glyph code embedded in the line icon's file name, e.g.
	// "icon-2.svg".
	iconCodeRe = regexp.MustCompile(`icon[-_](\d+)`)
)

// Icon glyph codes the site uses for the two vehicle classes.
var (
	trainIconCodes = map[int]bool{1: true, 2: true, 3: true}
	busIconCodes   = map[int]bool{4: true, 5: true}
)

// Line-title prefixes used when no icon code is recognizable. Train prefixes
// cover the Slovak category abbreviations printed on cp.sk.
var (
	busLinePrefixes   = []string{"Bus"}
	trainLinePrefixes = []string{"EC", "IC", "EN", "SC", "Ex", "REX", "RR", "Zr", "Os", "R "}
)
