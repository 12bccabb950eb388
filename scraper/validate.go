package scraper

import (
	"strings"

	"trip-search-ai/models"
)

// FilterContinuous drops every trip whose consecutive segments do not share a
// connecting station. The page occasionally renders itineraries whose legs do
// not physically connect; those must never reach a traveler. Order is
// preserved, trips with fewer than two segments are trivially continuous.
func FilterContinuous(trips []models.Trip) []models.Trip {
	out := make([]models.Trip, 0, len(trips))
	for _, trip := range trips {
		if IsContinuous(trip) {
			out = append(out, trip)
		}
	}
	return out
}

// IsContinuous reports whether every adjacent segment pair of the trip shares
// a connecting station under name normalization.
func IsContinuous(trip models.Trip) bool {
	if len(trip.Segments) < 2 {
		return true
	}
	for i := 0; i < len(trip.Segments)-1; i++ {
		alight := lastStation(trip.Segments[i])
		board := firstStation(trip.Segments[i+1])
		if alight == "" || board == "" {
			return false
		}
		if normalizeStation(alight) != normalizeStation(board) {
			return false
		}
	}
	return true
}

func firstStation(seg models.Segment) string {
	if len(seg.Stops) > 0 {
		return seg.Stops[0].Station
	}
	return seg.From
}

func lastStation(seg models.Segment) string {
	if len(seg.Stops) > 0 {
		return seg.Stops[len(seg.Stops)-1].Station
	}
	return seg.To
}

// normalizeStation strips the locality qualifier the site appends after a
// comma ("Nové Zámky, žel. st." → "nové zámky") so the same station compares
// equal across bus and rail naming.
func normalizeStation(name string) string {
	if i := strings.IndexByte(name, ','); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(strings.TrimSpace(name))
}
