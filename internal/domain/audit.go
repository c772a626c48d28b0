package domain

import "time"

// Audit outcomes recorded next to every event appended to Transaction.Metadata.
const (
	OutcomeApplied         = "applied"
	OutcomeDuplicate       = "duplicate"
	OutcomeFailureRecorded = "failure_recorded"
	OutcomeFailed          = "failed"
	OutcomeRecorded        = "recorded"
	OutcomeNeedsReview     = "needs_review"
)

// TransactionEvent is one entry of a transaction's audit trail. Entries are
// only ever appended.
type TransactionEvent struct {
	Source     string    `json:"source"`
	Type       string    `json:"type"`
	EventID    string    `json:"event_id,omitempty"`
	ExternalID string    `json:"external_id,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	At         time.Time `json:"at"`
}

type AuditLog []TransactionEvent

func (l AuditLog) Last() (TransactionEvent, bool) {
	if len(l) == 0 {
		return TransactionEvent{}, false
	}
	return l[len(l)-1], true
}
