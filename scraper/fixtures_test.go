package scraper

import (
	"fmt"
	"strings"
)

// Markup fixtures mirroring the cp.sk results structure the extractor is
// written against.

type fixtureStop struct {
	time    string
	station string
}

type fixtureLeg struct {
	title   string
	icon    string // icon file name fragment, e.g. "icon-4.svg"
	carrier string
	stops   []fixtureStop
	walk    string // non-empty renders a walk block instead
}

type fixtureTrip struct {
	date     string // the .date-after label, e.g. "18.5. nedeľa"
	depart   string
	duration string
	priceRow string // raw HTML appended inside the box, e.g. the price element
	legs     []fixtureLeg
}

func (ft fixtureTrip) html() string {
	var b strings.Builder
	b.WriteString(`<div class="box connection detail-box">`)
	fmt.Fprintf(&b, `<div class="connection-head"><h2 class="reset date">%s <span>%s</span></h2><p class="total"><strong>%s</strong></p></div>`,
		ft.depart, ft.date, ft.duration)
	fmt.Fprintf(&b, `<span class="date-after">%s</span>`, ft.date)
	b.WriteString(`<div class="connection-details">`)
	for _, leg := range ft.legs {
		if leg.walk != "" {
			fmt.Fprintf(&b, `<div class="outside-of-popup--with-link-dist"><p class="walk--detail">%s</p></div>`, leg.walk)
			continue
		}
		b.WriteString(`<div class="outside-of-popup"><div class="line-item">`)
		b.WriteString(`<div class="line-title"><h3><span>` + leg.title + `</span></h3>`)
		if leg.icon != "" {
			fmt.Fprintf(&b, `<img src="/img/%s" alt="">`, leg.icon)
		}
		b.WriteString(`</div>`)
		fmt.Fprintf(&b, `<p class="owner"><span>%s</span></p>`, leg.carrier)
		b.WriteString(`<ul class="stations">`)
		for _, stop := range leg.stops {
			fmt.Fprintf(&b, `<li><span class="time">%s</span><span class="name">%s</span></li>`, stop.time, stop.station)
		}
		b.WriteString(`</ul></div></div>`)
	}
	b.WriteString(`</div>`)
	b.WriteString(ft.priceRow)
	b.WriteString(`</div>`)
	return b.String()
}

func resultsPage(trips ...fixtureTrip) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="results">`)
	for _, t := range trips {
		b.WriteString(t.html())
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// busWalkTrainTrip is the canonical Dubník → Bratislava itinerary: bus to the
// rail junction, a short walk, then the Metropolitan express.
func busWalkTrainTrip(date, busDepart, trainArrive string) fixtureTrip {
	return fixtureTrip{
		date:     date,
		depart:   busDepart,
		duration: "2 hod 34 min",
		priceRow: `<span class="price-value">6 EUR</span>`,
		legs: []fixtureLeg{
			{
				title:   "Bus 404415 38",
				icon:    "icon-4.svg",
				carrier: "ARRIVA Nové Zámky, a.s.",
				stops: []fixtureStop{
					{busDepart, "Dubník, nám."},
					{"13:48", "Nové Zámky,,rázc.k žel.st."},
				},
			},
			{walk: "asi 6 min chôdze"},
			{
				title:   "EC 274 Metropolitan",
				icon:    "icon-1.svg",
				carrier: "ZSSK",
				stops: []fixtureStop{
					{"15:03", "Nové Zámky"},
					{trainArrive, "Bratislava hl.st."},
				},
			},
		},
	}
}
