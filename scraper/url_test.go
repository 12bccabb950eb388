package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSearchURL(t *testing.T) {
	u := BuildSearchURL("Dubník", "Bratislava", "2025-05-18", "13:00")

	assert.True(t, strings.HasPrefix(u, "https://www.cp.sk/vlakbus/spojenie/vysledky/?"))
	assert.Contains(t, u, "f=Dubn%C3%ADk")
	assert.Contains(t, u, "t=Bratislava")
	assert.Contains(t, u, "date=18.5.2025")
	assert.Contains(t, u, "time=13%3A00")
	assert.True(t, strings.HasSuffix(u, "submit=true"))
}

func TestBuildSearchURLIsDeterministic(t *testing.T) {
	first := BuildSearchURL("Nové Zámky", "Košice", "2025-12-01", "08:30")
	second := BuildSearchURL("Nové Zámky", "Košice", "2025-12-01", "08:30")
	assert.Equal(t, first, second)
}

func TestBuildSearchURLPassesLocalDateThrough(t *testing.T) {
	u := BuildSearchURL("A", "B", "18.5.2025", "13:00")
	assert.Contains(t, u, "date=18.5.2025")
}

func TestBuildSearchURLOmitsEmptyParams(t *testing.T) {
	u := BuildSearchURL("A", "B", "", "")
	assert.NotContains(t, u, "date=")
	assert.NotContains(t, u, "time=")
	assert.Contains(t, u, "submit=true")
}
