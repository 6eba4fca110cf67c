package sync

import "time"

// EventError captures one failed upsert. Per-event failures never abort the
// batch, but they must never be silently swallowed either; every report
// carries them.
type EventError struct {
	NaturalKey string `json:"naturalKey"`
	Summary    string `json:"summary"`
	Error      string `json:"error"`
}

// Report summarizes a single sync run.
type Report struct {
	RunID      string       `json:"runId"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
	Success    bool         `json:"success"`
	Purged     int          `json:"purged"`
	Created    int          `json:"created"`
	Updated    int          `json:"updated"`
	Failed     int          `json:"failed"`
	Errors     []EventError `json:"errors"`
}

// DedupeReport lists what a dedupe pass deleted, or would delete in dry-run
// mode.
type DedupeReport struct {
	DryRun     bool     `json:"dryRun"`
	Groups     int      `json:"groups"`
	DeletedIds []string `json:"deletedIds"`
}
