package scraper

import "fmt"

// FetchError means the browser session could not navigate or timed out
// irrecoverably. Fatal to the request.
type FetchError struct {
	Detail string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch failed: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("fetch failed: %s", e.Detail)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError means the rendered document was fundamentally unparsable,
// not merely missing a few fields. Fatal to the request.
type ExtractionError struct {
	Detail string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s", e.Detail)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
