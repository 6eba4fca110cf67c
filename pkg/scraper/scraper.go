package scraper

import "context"

// RawRow is one scraped table row: the trimmed text of each cell, in
// column order. Rows are ephemeral and carry no invariants beyond what the
// normalizer enforces.
type RawRow []string

// Extractor reads the scheduling site's results table.
type Extractor interface {
	// Rows authenticates against the site and returns every row of the
	// schedule table. Navigation, selector and timeout failures are fatal.
	Rows(ctx context.Context) ([]RawRow, error)
}
