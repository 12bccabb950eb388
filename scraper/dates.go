package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	shortDateRe = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.`)
)

// FormatLocalDate converts an ISO yyyy-mm-dd date to the site's d.M.yyyy form
// (no leading zeros). Anything else is assumed to already be in local form
// and is passed through unchanged.
func FormatLocalDate(date string) string {
	if !isoDateRe.MatchString(date) {
		return date
	}
	parts := strings.Split(date, "-")
	d, _ := strconv.Atoi(parts[2])
	m, _ := strconv.Atoi(parts[1])
	return fmt.Sprintf("%d.%d.%s", d, m, parts[0])
}

// ShortDay reduces a date to the d.M. form the results page prints next to
// each itinerary. ISO input drops its year; input already carrying a d.M.
// prefix keeps it. Unrecognized input is returned unchanged.
func ShortDay(date string) string {
	if isoDateRe.MatchString(date) {
		parts := strings.Split(date, "-")
		d, _ := strconv.Atoi(parts[2])
		m, _ := strconv.Atoi(parts[1])
		return fmt.Sprintf("%d.%d.", d, m)
	}
	if m := shortDateRe.FindString(date); m != "" {
		return m
	}
	return date
}

// NextDay advances the date by exactly 24 hours and returns it as d.M.yyyy,
// accepting either ISO or d.M.yyyy input. Unparsable input comes back
// unchanged, so callers must not assume advancement happened.
func NextDay(date string) string {
	var t time.Time
	switch {
	case isoDateRe.MatchString(date):
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return date
		}
		t = parsed
	default:
		parts := strings.Split(date, ".")
		if len(parts) < 3 {
			return date
		}
		d, errD := strconv.Atoi(strings.TrimSpace(parts[0]))
		m, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
		y, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
		if errD != nil || errM != nil || errY != nil {
			return date
		}
		t = time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	}
	next := t.Add(24 * time.Hour)
	return fmt.Sprintf("%d.%d.%d", next.Day(), int(next.Month()), next.Year())
}
