package models

// SegmentType classifies one leg of an itinerary.
type SegmentType string

const (
	SegmentTrain   SegmentType = "TRAIN"
	SegmentBus     SegmentType = "BUS"
	SegmentWalk    SegmentType = "WALK"
	SegmentUnknown SegmentType = "UNKNOWN"
)

// Stop is a single station/time pair on a segment's path. Ordering is
// significant: the first stop is boarding, the last is alighting.
type Stop struct {
	Time    string `json:"time"`
	Station string `json:"station"`
}

// Segment is one leg of an itinerary ridden on a single mode of transport.
type Segment struct {
	Type    SegmentType `json:"type"`
	Line    string      `json:"line"`
	Carrier string      `json:"provider"`
	From    string      `json:"from"`
	To      string      `json:"to"`
	Stops   []Stop      `json:"stops"`
}

// Endpoint describes where and when an itinerary starts or ends.
type Endpoint struct {
	Time    string `json:"time"`
	Station string `json:"station"`
	City    string `json:"city"`
}

// Trip is one complete end-to-end journey option scraped from the results
// page. Price and TotalPrice stay nil when no fare could be resolved.
type Trip struct {
	From            Endpoint  `json:"from"`
	To              Endpoint  `json:"to"`
	DurationMinutes int       `json:"duration"`
	Segments        []Segment `json:"segments"`
	Price           *float64  `json:"price,omitempty"`
	TotalPrice      *float64  `json:"totalPrice,omitempty"`
	Date            string    `json:"date"`
	Adults          int       `json:"adults"`
	Children        int       `json:"children"`
}

// TripQuery is the immutable input to the search pipeline.
type TripQuery struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Adults   int    `json:"adults"`
	Children int    `json:"children"`
}

// AiScore grades a single trip on three 0-100 axes. Index refers into the
// trip list the scorer was given.
type AiScore struct {
	Index int `json:"index"`
	Fast  int `json:"fast"`
	Cheap int `json:"cheap"`
	Comfy int `json:"comfy"`
}

// AiResult is the scoring adapter's verdict over a trip list.
type AiResult struct {
	Scores  []AiScore `json:"scores"`
	Summary string    `json:"summary"`
}

// SearchRequest is the payload of POST /trip/search.
type SearchRequest struct {
	From     string `json:"from" binding:"required"`
	To       string `json:"to" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time"`
	Adults   int    `json:"adults" binding:"required,min=1"`
	Children int    `json:"children" binding:"min=0"`
}

// SearchMeta tells the client whether the results are for the requested date
// or for the next date the page actually offered.
type SearchMeta struct {
	UsedFallbackDay bool   `json:"usedFallbackDay"`
	RequestedDate   string `json:"requestedDate"`
	ActualDate      string `json:"actualDate"`
}

// SearchResult is the orchestrator's successful outcome. An empty Trips slice
// means "no connections found", which is a first-class outcome, not an error;
// Message then carries the user-facing explanation.
type SearchResult struct {
	Trips   []Trip     `json:"data"`
	AI      AiResult   `json:"ai"`
	Meta    SearchMeta `json:"meta"`
	Message string     `json:"message,omitempty"`
}

// NoTrips reports whether the search completed without finding any usable
// connection.
func (r *SearchResult) NoTrips() bool {
	return len(r.Trips) == 0
}
