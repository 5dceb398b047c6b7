// internal/models/tracker.go
package models

import "time"

// TrackerState is the signing lifecycle of one dispatched document/signer.
type TrackerState string

const (
	StatePending         TrackerState = "PENDING"
	StateSent            TrackerState = "SENT"
	StatePartiallySigned TrackerState = "PARTIALLY_SIGNED"
	StateSigned          TrackerState = "SIGNED"
	StateFiled           TrackerState = "FILED"
	StateDeclined        TrackerState = "DECLINED"
	StateExpired         TrackerState = "EXPIRED"
	StateFailed          TrackerState = "FAILED"
)

// terminal states admit no further transitions.
var terminalStates = map[TrackerState]bool{
	StateFiled:    true,
	StateDeclined: true,
	StateExpired:  true,
	StateFailed:   true,
}

// forward defines the allowed forward transitions. Transitions are driven
// only by inbound provider events (plus the expiry sweep); re-applying the
// current state is always a no-op, never an error.
var forward = map[TrackerState][]TrackerState{
	StatePending:         {StateSent, StatePartiallySigned, StateSigned, StateFiled, StateDeclined, StateExpired, StateFailed},
	StateSent:            {StatePartiallySigned, StateSigned, StateFiled, StateDeclined, StateExpired, StateFailed},
	StatePartiallySigned: {StateSigned, StateFiled, StateDeclined, StateExpired, StateFailed},
	StateSigned:          {StateFiled, StateFailed},
}

// IsTerminal reports whether s admits no further transitions.
func (s TrackerState) IsTerminal() bool { return terminalStates[s] }

// CanTransition reports whether moving from s to next is allowed. A
// self-transition is allowed (idempotent re-delivery of the same event).
func (s TrackerState) CanTransition(next TrackerState) bool {
	if s == next {
		return true
	}
	for _, t := range forward[s] {
		if t == next {
			return true
		}
	}
	return false
}

// NoSignerIndex marks a tracker row for a document-level (legacy) name that
// carries no signer segment.
const NoSignerIndex = -1

// SigningTracker is the durable record of signing progress for one
// dispatched document/signer. Rows are created at dispatch time, mutated
// only by the webhook reconciler and the expiry sweep, and never deleted.
type SigningTracker struct {
	ID          int64        `json:"id"`
	CaseNumber  string       `json:"caseNumber"`
	DocumentID  string       `json:"documentId"`
	DocumentKey string       `json:"documentKey"`
	SignerIndex int          `json:"signerIndex"`
	SignerRole  string       `json:"signerRole"`
	State       TrackerState `json:"state"`
	DocName     string       `json:"docName"`
	FileURL     string       `json:"fileUrl,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
