package model

import "time"

// MonthState is a step of the per-month state machine.
type MonthState string

const (
	StatePending   MonthState = "pending"
	StateFetched   MonthState = "fetched"
	StateFiltered  MonthState = "filtered"
	StateSampled   MonthState = "sampled"
	StatePersisted MonthState = "persisted"
	StateCleaned   MonthState = "cleaned"
)

// Outcome is the classification of a finished month.
type Outcome string

const (
	OutcomeLoaded  Outcome = "loaded"
	OutcomeSkipped Outcome = "skipped"
)

// SkipReason tells which step abandoned a month.
type SkipReason string

const (
	ReasonNone          SkipReason = ""
	ReasonFetchFailed   SkipReason = "fetch_failed"
	ReasonDecodeFailed  SkipReason = "decode_failed"
	ReasonPersistFailed SkipReason = "persist_failed"
)

// MonthResult is the outcome of one pass of the monthly pipeline
type MonthResult struct {
	Month       string        `json:"month"`
	State       MonthState    `json:"state"`
	Trail       []MonthState  `json:"trail"`
	Outcome     Outcome       `json:"outcome"`
	Reason      SkipReason    `json:"reason,omitempty"`
	Err         string        `json:"error,omitempty"`
	Decoded     int64         `json:"decoded"`     // rows read from the file
	Qualifying  int64         `json:"qualifying"`  // rows passing the filters
	Kept        int64         `json:"kept"`        // rows after subsampling
	Appended    int64         `json:"appended"`    // rows written to the table
	FullSetKept bool          `json:"fullSetKept"` // qualifying <= sample cap
	Seed        int64         `json:"seed"`
	Duration    time.Duration `json:"duration"`

	MissingColumns    []string `json:"missingColumns,omitempty"`    // standard columns absent from the file, loaded as NULL
	AdditionalColumns []string `json:"additionalColumns,omitempty"` // non-standard columns carried through
}

// Advance moves the month to the next state and records it in the trail.
func (r *MonthResult) Advance(s MonthState) {
	r.State = s
	r.Trail = append(r.Trail, s)
}

// Skip classifies the month as abandoned by a step.
func (r *MonthResult) Skip(reason SkipReason, err error) {
	r.Outcome = OutcomeSkipped
	r.Reason = reason
	if err != nil {
		r.Err = err.Error()
	}
}
