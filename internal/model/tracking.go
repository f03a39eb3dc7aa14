package model

import "time"

// Run statuses stored in the ledger.
const (
	RunStatusRunning     = "running"
	RunStatusCompleted   = "completed"
	RunStatusInterrupted = "interrupted"
)

// RunSummary aggregates the month results of one loader run
type RunSummary struct {
	ID            string        `json:"id"`
	Year          string        `json:"year"`
	SampleCap     int           `json:"sampleCap"`
	Seed          int64         `json:"seed"`
	Status        string        `json:"status"`
	TableExisted  bool          `json:"tableExisted"`
	ResetError    string        `json:"resetError,omitempty"`
	StartedAt     time.Time     `json:"startedAt"`
	FinishedAt    *time.Time    `json:"finishedAt,omitempty"`
	Months        []MonthResult `json:"months,omitempty"`
	MonthsLoaded  int           `json:"monthsLoaded"`
	MonthsSkipped int           `json:"monthsSkipped"`
	RowsAppended  int64         `json:"rowsAppended"`
}

// Add folds a month result into the summary.
func (s *RunSummary) Add(res MonthResult) {
	s.Months = append(s.Months, res)
	if res.Outcome == OutcomeLoaded {
		s.MonthsLoaded++
	} else {
		s.MonthsSkipped++
	}
	s.RowsAppended += res.Appended
}
