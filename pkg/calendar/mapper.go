package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/shiftcal/shiftcal/pkg/schedule"
)

const (
	startBuffer      = 30 * time.Minute
	shiftDuration    = 5 * time.Hour
	naturalKeyJoiner = " | "
)

// ToEvent converts a normalized schedule entry into its calendar event
// representation. Pure: no side effects and no failure modes.
func ToEvent(entry schedule.Entry) Event {
	// The 30 minute buffer only moves the start; the end is derived from
	// the call time itself.
	start := entry.CallTime.Add(-startBuffer)
	end := entry.CallTime.Add(shiftDuration)

	summary := FormatClockTime(start) + " " + entry.Show
	if strings.EqualFold(entry.Status, "called") {
		summary = "UNCONFIRMED => " + entry.Show
	}

	return Event{
		Summary:     summary,
		Location:    joinNonEmpty(" - ", entry.Venue, entry.Location),
		Description: joinNonEmpty(" | ", entry.Details, entry.Notes),
		Start:       start,
		End:         end,
		Status:      normalizeStatus(entry.Status),
		NaturalKey: strings.Join([]string{
			entry.RawDate,
			entry.RawTime,
			entry.Show,
			entry.Venue,
			entry.Position,
			entry.Type,
		}, naturalKeyJoiner),
	}
}

// ToEvents maps a batch of entries.
func ToEvents(entries []schedule.Entry) []Event {
	events := make([]Event, 0, len(entries))
	for _, entry := range entries {
		events = append(events, ToEvent(entry))
	}
	return events
}

// normalizeStatus maps the site's free-text status to a calendar status.
// Anything unrecognized, including an empty status, means the shift is
// confirmed.
func normalizeStatus(status string) string {
	switch strings.ToLower(status) {
	case "called", "tentative":
		return StatusTentative
	case "cancelled", "canceled":
		return StatusCancelled
	default:
		return StatusConfirmed
	}
}

// FormatClockTime renders a wall-clock time as e.g. "7:30am", "8am", "12pm".
// Minutes are omitted when they are exactly :00; midnight renders as 12am.
func FormatClockTime(t time.Time) string {
	hour := t.Hour()
	suffix := "am"
	if hour >= 12 {
		suffix = "pm"
	}
	hour = hour % 12
	if hour == 0 {
		hour = 12
	}
	if t.Minute() == 0 {
		return fmt.Sprintf("%d%s", hour, suffix)
	}
	return fmt.Sprintf("%d:%02d%s", hour, t.Minute(), suffix)
}

func joinNonEmpty(sep string, parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, sep)
}
