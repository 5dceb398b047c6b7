// internal/webhook/event.go
package webhook

// EventSource classifies where an inbound callback came from.
type EventSource string

const (
	// SourceProvider is the e-signature provider's event callback.
	SourceProvider EventSource = "provider"
	// SourceAutomation is the office automation that posts action
	// commands to the same endpoint.
	SourceAutomation EventSource = "automation"
	SourceUnknown    EventSource = "unknown"
)

// EventPayload is the union of the provider's callback body and the
// automation's action body; both arrive on the same endpoint.
type EventPayload struct {
	// Provider callback fields.
	Event        string `json:"event,omitempty"`
	DocumentID   string `json:"document_id,omitempty"`
	DocumentName string `json:"document_name,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	Timestamp    int64  `json:"timestamp,omitempty"`

	// Automation action fields.
	Action     string `json:"action,omitempty"`
	CaseNumber string `json:"caseNumber,omitempty"`
}

// Source detects the payload's origin. A document id without an event
// name still means the provider; only a bare action means automation.
func (p *EventPayload) Source() EventSource {
	if p.Event != "" || p.DocumentID != "" {
		return SourceProvider
	}
	if p.Action != "" {
		return SourceAutomation
	}
	return SourceUnknown
}

// Provider event names the reconciler understands.
const (
	EventInviteSigned   = "document.fieldinvite.signed"
	EventInviteDeclined = "document.fieldinvite.declined"
	EventComplete       = "document.complete"
)

// Automation actions.
const (
	ActionResend  = "resend"
	ActionPending = "pending"
)
