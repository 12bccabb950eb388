package scraper

import (
	"net/url"
	"strings"
)

const resultsBaseURL = "https://www.cp.sk/vlakbus/spojenie/vysledky/"

// BuildSearchURL assembles the deterministic cp.sk results URL for a
// connection query. Station names are percent-encoded (diacritics survive),
// an ISO date is reformatted to the site's d.M.yyyy form, and the trailing
// submit flag forces the site to render results immediately. Empty date or
// time parameters are omitted. Pure string transformation: malformed input
// simply yields a URL the site itself will reject.
func BuildSearchURL(from, to, date, tme string) string {
	params := []string{
		"f=" + url.QueryEscape(from),
		"t=" + url.QueryEscape(to),
	}
	if date != "" {
		params = append(params, "date="+url.QueryEscape(FormatLocalDate(date)))
	}
	if tme != "" {
		params = append(params, "time="+url.QueryEscape(tme))
	}
	params = append(params, "submit=true")
	return resultsBaseURL + "?" + strings.Join(params, "&")
}
