package domain

import "time"

// SyncUnitState is the terminal state of a per-currency sync unit.
type SyncUnitState string

const (
	SyncSucceeded         SyncUnitState = "succeeded"
	SyncSkipped           SyncUnitState = "skipped"
	SyncFailedPermanently SyncUnitState = "failed"
)

// SyncUnitResult describes how a single currency's fetch-and-store unit
// ended within one sweep.
type SyncUnitResult struct {
	Currency    string
	State       SyncUnitState
	Attempts    int
	RowsWritten int64
	Err         error
}

// SyncStats summarizes one sync run. When a sweep covers the whole catalog,
// BaseCurrency is empty and the counters aggregate over all units.
type SyncStats struct {
	RunID        string
	BaseCurrency string
	Successful   int
	Failed       int
	Skipped      int
	Total        int
	StartedAt    time.Time
	CompletedAt  time.Time
	Duration     time.Duration
	Units        []SyncUnitResult
}
