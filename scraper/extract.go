package scraper

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"trip-search-ai/models"
)

// ExtractTrips parses the rendered results markup into trips, preserving the
// page's own document order (which is the site's relevance ranking).
// referenceDay is a d.M. short date; itineraries labelled with a different
// day are skipped. An empty referenceDay disables the filter, which is how
// the orchestrator accepts the nearest available day on the fallback path.
//
// A malformed individual itinerary degrades to empty/zero fields; only a
// document that cannot be read at all is an *ExtractionError.
func ExtractTrips(markup, referenceDay string) ([]models.Trip, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, &ExtractionError{Detail: "empty document"}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, &ExtractionError{Detail: "unreadable document", Err: err}
	}

	var trips []models.Trip
	doc.Find(connectionBoxSelector).Each(func(_ int, box *goquery.Selection) {
		dateLabel := strings.TrimSpace(box.Find(dateLabelSelector).First().Text())
		dayOnly := dateLabel
		if i := strings.IndexByte(dateLabel, ' '); i >= 0 {
			dayOnly = dateLabel[:i]
		}
		if referenceDay != "" && dayOnly != referenceDay {
			return
		}
		trips = append(trips, extractTrip(box, dateLabel))
	})
	return trips, nil
}

func extractTrip(box *goquery.Selection, dateLabel string) models.Trip {
	segments := extractSegments(box)
	stitchWalkSegments(segments)

	trip := models.Trip{
		DurationMinutes: parseDuration(box.Find(headSelector).Find(totalDurationSelector).Text()),
		Segments:        segments,
		Price:           resolvePrice(box),
		Date:            dateLabel,
	}

	trip.From, trip.To = tripEndpoints(box, segments)
	return trip
}

// tripEndpoints derives the itinerary's endpoints from the first stop of the
// first segment and the last stop of the last segment, falling back to the
// header departure time and the raw station lists when segment data is
// incomplete.
func tripEndpoints(box *goquery.Selection, segments []models.Segment) (models.Endpoint, models.Endpoint) {
	var from, to models.Endpoint

	for _, seg := range segments {
		if len(seg.Stops) > 0 {
			from.Time = seg.Stops[0].Time
			from.Station = seg.Stops[0].Station
			break
		}
	}
	for i := len(segments) - 1; i >= 0; i-- {
		if stops := segments[i].Stops; len(stops) > 0 {
			to.Time = stops[len(stops)-1].Time
			to.Station = stops[len(stops)-1].Station
			break
		}
	}

	if from.Time == "" {
		from.Time = headerDepartureTime(box)
	}
	if from.Station == "" {
		first := box.Find("ul.stations").First()
		from.Station = strings.TrimSpace(first.Find(stopNameSelector).First().Text())
		if from.Time == "" {
			from.Time = strings.TrimSpace(first.Find(stopTimeSelector).First().Text())
		}
	}
	if to.Station == "" {
		last := box.Find("ul.stations").Last()
		to.Station = strings.TrimSpace(last.Find(stopNameSelector).Last().Text())
		if to.Time == "" {
			to.Time = strings.TrimSpace(last.Find(stopTimeSelector).Last().Text())
		}
	}
	return from, to
}

// headerDepartureTime reads the departure time printed in the connection
// head, ignoring the nested weekday/date children of the heading.
func headerDepartureTime(box *goquery.Selection) string {
	heading := box.Find(headSelector).Find(departureSelector).First()
	var own strings.Builder
	heading.Contents().Each(func(_ int, n *goquery.Selection) {
		if node := n.Get(0); node != nil && node.Type == html.TextNode {
			own.WriteString(node.Data)
		}
	})
	return strings.TrimSpace(own.String())
}

func extractSegments(box *goquery.Selection) []models.Segment {
	var segments []models.Segment
	box.Find(segmentBlockSelector).Each(func(_ int, block *goquery.Selection) {
		if isWalkBlock(block) {
			segments = append(segments, models.Segment{
				Type: models.SegmentWalk,
				Line: collapseWhitespace(block.Find(walkDetailSelector).Text()),
			})
			return
		}

		item := block.Find(lineItemSelector).First()
		if item.Length() == 0 {
			return
		}
		title := strings.TrimSpace(item.Find(lineTitleSelector).Text())
		iconSrc, _ := item.Find(lineIconSelector).First().Attr("src")

		var stops []models.Stop
		item.Find(stationListSelector).Each(func(_ int, li *goquery.Selection) {
			stops = append(stops, models.Stop{
				Time:    strings.TrimSpace(li.Find(stopTimeSelector).Text()),
				Station: strings.TrimSpace(li.Find(stopNameSelector).Text()),
			})
		})

		seg := models.Segment{
			Type:    inferSegmentType(iconSrc, title),
			Line:    title,
			Carrier: strings.TrimSpace(item.Find(carrierSelector).Text()),
			Stops:   stops,
		}
		if len(stops) > 0 {
			seg.From = stops[0].Station
			seg.To = stops[len(stops)-1].Station
		}
		segments = append(segments, seg)
	})
	return segments
}

func isWalkBlock(block *goquery.Selection) bool {
	return block.HasClass(walkBlockClass) || block.Find(walkDetailSelector).Length() > 0
}

// stitchWalkSegments synthesizes walk endpoints from the neighboring
// segments, since the page does not label where a transfer walk starts or
// ends: a walk goes from wherever the previous leg alighted to wherever the
// next leg boards.
func stitchWalkSegments(segments []models.Segment) {
	for i := range segments {
		if segments[i].Type != models.SegmentWalk {
			continue
		}
		var stops []models.Stop
		if i > 0 {
			if prev := segments[i-1].Stops; len(prev) > 0 {
				stops = append(stops, prev[len(prev)-1])
			}
		}
		if i < len(segments)-1 {
			if next := segments[i+1].Stops; len(next) > 0 {
				stops = append(stops, next[0])
			}
		}
		segments[i].Stops = stops
		if len(stops) > 0 {
			segments[i].From = stops[0].Station
			segments[i].To = stops[len(stops)-1].Station
		}
	}
}

// inferSegmentType classifies a leg by the numeric code in its icon glyph,
// falling back to the line-title prefix keywords.
func inferSegmentType(iconSrc, title string) models.SegmentType {
	if m := iconCodeRe.FindStringSubmatch(iconSrc); m != nil {
		code, err := strconv.Atoi(m[1])
		if err == nil {
			switch {
			case trainIconCodes[code]:
				return models.SegmentTrain
			case busIconCodes[code]:
				return models.SegmentBus
			}
		}
	}
	for _, p := range busLinePrefixes {
		if strings.HasPrefix(title, p) {
			return models.SegmentBus
		}
	}
	for _, p := range trainLinePrefixes {
		if strings.HasPrefix(title, p) {
			return models.SegmentTrain
		}
	}
	return models.SegmentUnknown
}

func parseDuration(text string) int {
	text = collapseWhitespace(text)
	if m := hourMinRe.FindStringSubmatch(text); m != nil {
		hours, _ := strconv.Atoi(m[1])
		mins := 0
		if m[2] != "" {
			mins, _ = strconv.Atoi(m[2])
		}
		return hours*60 + mins
	}
	if m := minOnlyRe.FindStringSubmatch(text); m != nil {
		mins, _ := strconv.Atoi(m[1])
		return mins
	}
	return 0
}

// resolvePrice walks the fare fallback chain in order, first match wins:
// the fare summary element, the expanded-basket fare, any fare-value
// element, and finally any element whose text carries a currency-suffixed
// number.
func resolvePrice(box *goquery.Selection) *float64 {
	candidates := []string{
		box.Find(priceValueSelector).First().Text(),
		box.Find(basketPriceSelector).First().Text(),
		box.Find(anyPriceSelector).First().Text(),
	}
	for _, text := range candidates {
		if p := parsePriceText(text); p != nil {
			return p
		}
	}

	var found *float64
	box.Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if el.Children().Length() > 0 {
			return true
		}
		if p := parsePriceText(el.Text()); p != nil {
			found = p
			return false
		}
		return true
	})
	return found
}

func parsePriceText(text string) *float64 {
	m := priceRe.FindStringSubmatch(collapseWhitespace(text))
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return nil
	}
	return &v
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
