package schedule

import "time"

// Cell offsets in a scraped schedule row. Rows shorter than minRowCells are
// malformed and dropped.
const (
	cellDate = iota
	cellCallTime
	cellShow
	cellVenue
	cellLocation
	cellClient
	cellType
	cellPosition
	cellDetails
	cellStatus
	cellNotes
	cellCallCancelled

	minRowCells = 12
)

// Entry is one normalized shift record. Entries are constructed once per
// scrape and never mutated.
type Entry struct {
	Date     time.Time
	CallTime time.Time

	// RawDate and RawTime keep the original cell text; the natural key is
	// built from these, not from the parsed values.
	RawDate string
	RawTime string

	Show     string
	Venue    string
	Location string
	Client   string
	Type     string
	Position string
	Details  string
	Status   string
	Notes    string

	CallCancelled bool
}
