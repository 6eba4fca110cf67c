package calendar

import "time"

// Event statuses understood by the remote calendar.
const (
	StatusConfirmed = "confirmed"
	StatusTentative = "tentative"
	StatusCancelled = "cancelled"
)

// Event is the desired, API-ready representation of one shift.
type Event struct {
	Summary     string
	Location    string
	Description string

	// Start and End are local wall-clock times; the remote calendar
	// interprets them in the configured named timezone.
	Start time.Time
	End   time.Time

	Status string

	// NaturalKey is the business identity of the shift, built from the raw
	// scraped fields. Two entries with the same key are the same real-world
	// shift even when status or notes differ between scrapes.
	NaturalKey string
}
