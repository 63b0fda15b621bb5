package models

// OutcomeStatus is the per-article result of a batch ingestion run.
type OutcomeStatus string

const (
	OutcomeAdmitted      OutcomeStatus = "admitted"
	OutcomeDuplicateID   OutcomeStatus = "skipped_duplicate_id"
	OutcomeDuplicateHash OutcomeStatus = "skipped_duplicate_hash"
	OutcomeError         OutcomeStatus = "error"
)

// IngestionOutcome records what happened to one input article. Never mutated
// after the batch completes; one per input article, in input order.
type IngestionOutcome struct {
	ID          int64         `json:"id"`
	ContentHash string        `json:"content_hash,omitempty"`
	Status      OutcomeStatus `json:"status"`
	Error       string        `json:"error,omitempty"`
}

// IngestReport is the per-batch ingestion report.
type IngestReport struct {
	RunID          string             `json:"run_id"`
	Total          int                `json:"total"`
	Admitted       int                `json:"admitted"`
	DuplicateIDs   int                `json:"skipped_duplicate_id"`
	DuplicateHash  int                `json:"skipped_duplicate_hash"`
	Errors         int                `json:"errors"`
	Outcomes       []IngestionOutcome `json:"outcomes"`
	ElapsedMillis  int64              `json:"elapsed_ms"`
}

// Tally recomputes the per-status counters from the outcome list.
func (r *IngestReport) Tally() {
	r.Total = len(r.Outcomes)
	r.Admitted, r.DuplicateIDs, r.DuplicateHash, r.Errors = 0, 0, 0, 0
	for _, o := range r.Outcomes {
		switch o.Status {
		case OutcomeAdmitted:
			r.Admitted++
		case OutcomeDuplicateID:
			r.DuplicateIDs++
		case OutcomeDuplicateHash:
			r.DuplicateHash++
		case OutcomeError:
			r.Errors++
		}
	}
}
