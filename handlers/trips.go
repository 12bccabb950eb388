package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"trip-search-ai/models"
	"trip-search-ai/scraper"
	"trip-search-ai/services"
)

// Searcher runs one connection search end to end.
type Searcher interface {
	Search(ctx context.Context, query models.TripQuery) (*models.SearchResult, error)
}

// TripHandler serves the trip search endpoint.
type TripHandler struct {
	searcher Searcher
	limiter  *services.SearchLimiter
	log      *logrus.Logger
}

// NewTripHandler wires the handler's collaborators.
func NewTripHandler(searcher Searcher, limiter *services.SearchLimiter, log *logrus.Logger) *TripHandler {
	return &TripHandler{searcher: searcher, limiter: limiter, log: log}
}

// SearchTrips handles POST /trip/search. "No connections found" is a 404 with
// a friendly message, distinct from the 5xx technical failures.
func (h *TripHandler) SearchTrips(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input.", "error": err.Error()})
		return
	}

	if !h.limiter.Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "Denný limit vyhľadávaní bol prekročený, skúste to zajtra."})
		return
	}

	query := models.TripQuery{
		From:     req.From,
		To:       req.To,
		Date:     req.Date,
		Time:     req.Time,
		Adults:   req.Adults,
		Children: req.Children,
	}
	h.log.WithFields(logrus.Fields{"from": query.From, "to": query.To, "date": query.Date}).Info("search request")

	result, err := h.searcher.Search(c.Request.Context(), query)
	if err != nil {
		var fetchErr *scraper.FetchError
		var extractErr *scraper.ExtractionError
		switch {
		case errors.As(err, &fetchErr):
			c.JSON(http.StatusBadGateway, gin.H{"message": "Failed to load cp.sk results", "error": err.Error()})
		case errors.As(err, &extractErr):
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to parse cp.sk results", "error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Search failed", "error": err.Error()})
		}
		return
	}

	if result.NoTrips() {
		c.JSON(http.StatusNotFound, gin.H{"message": result.Message, "ai": result.AI})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Scraped trips",
		"data":    result.Trips,
		"ai":      result.AI,
		"meta":    result.Meta,
	})
}
