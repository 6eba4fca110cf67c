package schedule

import (
	"strings"
	"time"

	"github.com/shiftcal/shiftcal/internal/utils"
	"github.com/shiftcal/shiftcal/pkg/scraper"
	log "github.com/sirupsen/logrus"
)

const (
	dateLayout = "1/2/2006"
	timeLayout = "15:04"
)

// Normalizer turns raw scraped rows into future, non-cancelled schedule
// entries. Malformed rows are dropped, never reported: the site pads its
// table with header and filler rows that are not shifts.
type Normalizer struct {
	location *time.Location
	clock    utils.Clock
}

func NewNormalizer(location *time.Location, clock utils.Clock) *Normalizer {
	return &Normalizer{location: location, clock: clock}
}

// Normalize parses and filters rows. It never fails; rows that cannot be
// parsed or that describe cancelled or past shifts are skipped.
func (n *Normalizer) Normalize(rows []scraper.RawRow) []Entry {
	now := n.clock.Now()
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entry, ok := n.parseRow(row)
		if !ok {
			continue
		}
		if isEntryCancelled(entry) {
			log.Debugf("Skipping cancelled shift: %s %s %s", entry.RawDate, entry.RawTime, entry.Show)
			continue
		}
		if !entry.CallTime.After(now) {
			log.Debugf("Skipping past shift: %s %s %s", entry.RawDate, entry.RawTime, entry.Show)
			continue
		}
		entries = append(entries, entry)
	}
	log.Infof("Normalized %d of %d scraped rows", len(entries), len(rows))
	return entries
}

func (n *Normalizer) parseRow(row scraper.RawRow) (Entry, bool) {
	if len(row) < minRowCells {
		return Entry{}, false
	}

	date, err := time.ParseInLocation(dateLayout, row[cellDate], n.location)
	if err != nil {
		return Entry{}, false
	}
	callTime, err := time.Parse(timeLayout, row[cellCallTime])
	if err != nil {
		return Entry{}, false
	}

	return Entry{
		Date: date,
		CallTime: time.Date(date.Year(), date.Month(), date.Day(),
			callTime.Hour(), callTime.Minute(), 0, 0, n.location),
		RawDate:       row[cellDate],
		RawTime:       row[cellCallTime],
		Show:          row[cellShow],
		Venue:         row[cellVenue],
		Location:      row[cellLocation],
		Client:        row[cellClient],
		Type:          row[cellType],
		Position:      row[cellPosition],
		Details:       row[cellDetails],
		Status:        row[cellStatus],
		Notes:         row[cellNotes],
		CallCancelled: strings.EqualFold(strings.TrimSpace(row[cellCallCancelled]), "call cancelled"),
	}, true
}

// isEntryCancelled applies all three cancellation signals the site is known
// to use: the dedicated cancellation cell, a "cancelled" marker pasted into
// the show name, and a "called out" status.
func isEntryCancelled(entry Entry) bool {
	if entry.CallCancelled {
		return true
	}
	if strings.Contains(strings.ToLower(entry.Show), "cancelled") {
		return true
	}
	if strings.Contains(strings.ToLower(entry.Status), "called out") {
		return true
	}
	return false
}
