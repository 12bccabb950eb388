package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"trip-search-ai/models"
	"trip-search-ai/scraper"
)

// PageFetcher loads the results page for a query and returns its rendered
// markup.
type PageFetcher interface {
	Fetch(ctx context.Context, query models.TripQuery) (string, error)
}

// Progress is the fire-and-forget diagnostic sink the pipeline reports state
// transitions to.
type Progress interface {
	Emit(message string, status int)
}

// Progress status codes.
const (
	StatusWorking = 102
	StatusDone    = 200
	StatusNoTrips = 404
	StatusFailed  = 500
)

const (
	// Shown when scoring is unavailable; never an error to the user.
	fallbackAISummary = "AI odporúčanie je momentálne nedostupné."
	// Shown when the search worked but found nothing.
	noTripsMessage = "Žiadne spoje neboli nájdené."
)

// SearchService sequences the scraping pipeline: build URL → fetch page →
// extract trips → fall back to the nearest available day → score → validate
// continuity → assemble the response.
type SearchService struct {
	fetcher  PageFetcher
	scorer   Scorer
	progress Progress
	log      *logrus.Logger

	now func() time.Time
}

// NewSearchService wires the pipeline collaborators together.
func NewSearchService(fetcher PageFetcher, scorer Scorer, progress Progress, log *logrus.Logger) *SearchService {
	return &SearchService{
		fetcher:  fetcher,
		scorer:   scorer,
		progress: progress,
		log:      log,
		now:      time.Now,
	}
}

// Search runs one complete connection search. The returned error is non-nil
// only for the two fatal kinds (*scraper.FetchError, *scraper.ExtractionError);
// "no connections found" is a successful result with an empty trip list and a
// friendly message.
func (s *SearchService) Search(ctx context.Context, query models.TripQuery) (*models.SearchResult, error) {
	requestID := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"from":       query.From,
		"to":         query.To,
		"date":       query.Date,
	})

	query.Time = s.defaultTime(query)
	s.progress.Emit(fmt.Sprintf("⚙️SERVER: Hľadám spojenie %s → %s, dátum %s, čas %s", query.From, query.To, query.Date, query.Time), StatusWorking)

	s.progress.Emit("⚙️SERVER: Otváram stránku s výsledkami...", StatusWorking)
	markup, err := s.fetcher.Fetch(ctx, query)
	if err != nil {
		log.WithError(err).Error("page fetch failed")
		s.progress.Emit("⚙️SERVER: Načítanie stránky zlyhalo.", StatusFailed)
		return nil, err
	}

	s.progress.Emit("⚙️SERVER: Extrahujem spoje...", StatusWorking)
	requestedDay := scraper.ShortDay(query.Date)
	trips, err := scraper.ExtractTrips(markup, requestedDay)
	if err != nil {
		log.WithError(err).Error("extraction failed")
		s.progress.Emit("⚙️SERVER: Spracovanie výsledkov zlyhalo.", StatusFailed)
		return nil, err
	}

	// The page paginates by progressive disclosure, so itineraries for later
	// days are already in the captured markup. When the requested day has
	// none, re-extract without the date filter and accept the nearest day the
	// page offered. No re-fetch.
	usedFallback := false
	if len(trips) == 0 {
		s.progress.Emit(fmt.Sprintf("⚙️SERVER: Pre dátum %s neboli nájdené spoje, skúšam najbližší dostupný deň (napr. %s)...",
			scraper.FormatLocalDate(query.Date), scraper.NextDay(query.Date)), StatusWorking)
		trips, err = scraper.ExtractTrips(markup, "")
		if err != nil {
			log.WithError(err).Error("fallback extraction failed")
			s.progress.Emit("⚙️SERVER: Spracovanie výsledkov zlyhalo.", StatusFailed)
			return nil, err
		}
		usedFallback = len(trips) > 0
	}

	meta := models.SearchMeta{
		UsedFallbackDay: usedFallback,
		RequestedDate:   scraper.FormatLocalDate(query.Date),
	}

	if len(trips) == 0 {
		log.Info("no trips found, even without a date filter")
		s.progress.Emit("⚙️SERVER: "+noTripsMessage, StatusNoTrips)
		return &models.SearchResult{
			Trips:   []models.Trip{},
			AI:      models.AiResult{Scores: []models.AiScore{}, Summary: noTripsMessage},
			Meta:    meta,
			Message: noTripsMessage,
		}, nil
	}
	meta.ActualDate = scraper.ShortDay(trips[0].Date)

	finishTrips(trips, query)

	// Scoring runs over the pre-filter list; indices returned by the scorer
	// refer to it and get re-mapped after continuity filtering.
	s.progress.Emit("⚙️SERVER: Hodnotím spoje cez AI...", StatusWorking)
	ai, err := s.scorer.Score(ctx, query, trips)
	if err != nil {
		log.WithError(err).Warn("scoring unavailable, using default result")
		ai = models.AiResult{Scores: []models.AiScore{}, Summary: fallbackAISummary}
	}

	validated := scraper.FilterContinuous(trips)
	if dropped := len(trips) - len(validated); dropped > 0 {
		log.WithFields(logrus.Fields{"before": len(trips), "after": len(validated)}).
			Warn("dropped physically impossible itineraries")
	}
	ai.Scores = remapScores(ai.Scores, trips)

	if len(validated) == 0 {
		s.progress.Emit("⚙️SERVER: "+noTripsMessage, StatusNoTrips)
		return &models.SearchResult{
			Trips:   []models.Trip{},
			AI:      models.AiResult{Scores: []models.AiScore{}, Summary: ai.Summary},
			Meta:    meta,
			Message: noTripsMessage,
		}, nil
	}

	s.progress.Emit(fmt.Sprintf("⚙️SERVER: Hotovo, nájdených %d spojov.", len(validated)), StatusDone)
	return &models.SearchResult{Trips: validated, AI: ai, Meta: meta}, nil
}

// defaultTime fills an empty departure time: "now" when the query is for
// today, the start of the day otherwise.
func (s *SearchService) defaultTime(query models.TripQuery) string {
	if query.Time != "" {
		return query.Time
	}
	now := s.now()
	today := fmt.Sprintf("%d.%d.", now.Day(), int(now.Month()))
	if scraper.ShortDay(query.Date) == today {
		return now.Format("15:04")
	}
	return "00:01"
}

// finishTrips is the one finishing pass over freshly extracted trips: city
// labels, passenger counts, and the total fare
// (price × adults + price × 0.5 × children).
func finishTrips(trips []models.Trip, query models.TripQuery) {
	for i := range trips {
		trips[i].From.City = query.From
		trips[i].To.City = query.To
		trips[i].Adults = query.Adults
		trips[i].Children = query.Children
		if trips[i].Price != nil {
			total := *trips[i].Price*float64(query.Adults) + *trips[i].Price*0.5*float64(query.Children)
			trips[i].TotalPrice = &total
		}
	}
}

// remapScores rewrites scorer indices from the pre-filter trip list to the
// post-filter one, dropping scores whose trip was filtered out. This pins
// down the index convention: the scorer always sees the pre-filter list.
func remapScores(scores []models.AiScore, preFilter []models.Trip) []models.AiScore {
	newIndex := make(map[int]int, len(preFilter))
	kept := 0
	for i, trip := range preFilter {
		if scraper.IsContinuous(trip) {
			newIndex[i] = kept
			kept++
		}
	}

	out := make([]models.AiScore, 0, len(scores))
	for _, score := range scores {
		if idx, ok := newIndex[score.Index]; ok {
			score.Index = idx
			out = append(out, score)
		}
	}
	return out
}
