// internal/webhook/reconciler.go
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bondpacket/internal/common/config"
	"bondpacket/internal/common/logger"
	"bondpacket/internal/common/observability"
	"bondpacket/internal/docname"
	"bondpacket/internal/models"
	"bondpacket/internal/notify"
	"bondpacket/internal/signnow"
)

// TrackerStore is the tracker surface the reconciler mutates.
type TrackerStore interface {
	ListByDocument(ctx context.Context, documentID string) ([]*models.SigningTracker, error)
	ListByCase(ctx context.Context, caseNumber string) ([]*models.SigningTracker, error)
	UpdateState(ctx context.Context, id int64, next models.TrackerState) error
	UpdateStateWithFile(ctx context.Context, id int64, next models.TrackerState, fileURL string) error
}

// Provider is the e-signature surface the reconciler reads from.
type Provider interface {
	GetDocument(ctx context.Context, documentID string) (*signnow.Document, error)
	Download(ctx context.Context, documentID string) ([]byte, error)
}

// Filer archives signed artifacts.
type Filer interface {
	File(ctx context.Context, folder, docName string, data []byte) (string, error)
}

// Notifier delivers staff notifications.
type Notifier interface {
	NotifySigned(ctx context.Context, ev notify.Event) error
}

// Locker provides per-key locks and idempotency markers; the Redis
// client satisfies it.
type Locker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// Auditor appends audit events; the Elasticsearch client satisfies it.
type Auditor interface {
	Index(ctx context.Context, index string, body []byte) error
}

const (
	lockTTL        = 30 * time.Second
	idempotencyTTL = 24 * time.Hour
)

// Outcome is what the HTTP handler reports back. Every processed
// payload is acknowledged; Success is false only for failures the
// provider should retry.
type Outcome struct {
	Success  bool                     `json:"success"`
	Message  string                   `json:"message,omitempty"`
	Error    string                   `json:"error,omitempty"`
	Trackers []*models.SigningTracker `json:"trackers,omitempty"`
}

type Reconciler struct {
	trackers TrackerStore
	provider Provider
	filer    Filer
	notifier Notifier
	locker   Locker
	auditor  Auditor
	esCfg    config.ElasticsearchConfig
	obs      *observability.Observability
	log      logger.Logger
}

func NewReconciler(trackers TrackerStore, provider Provider, filer Filer, notifier Notifier,
	locker Locker, auditor Auditor, esCfg config.ElasticsearchConfig,
	obs *observability.Observability, log logger.Logger) *Reconciler {
	return &Reconciler{
		trackers: trackers,
		provider: provider,
		filer:    filer,
		notifier: notifier,
		locker:   locker,
		auditor:  auditor,
		esCfg:    esCfg,
		obs:      obs,
		log:      log,
	}
}

// Process reconciles one inbound payload against the tracker store.
// Unknown events and unrecognized documents are acknowledged as
// success so the provider stops redelivering them.
func (r *Reconciler) Process(ctx context.Context, payload *EventPayload) *Outcome {
	source := payload.Source()
	if r.obs != nil {
		r.obs.RecordWebhookEvent(ctx, payload.Event, string(source))
	}
	r.audit(ctx, payload, source)

	switch source {
	case SourceProvider:
		return r.processProviderEvent(ctx, payload)
	case SourceAutomation:
		return r.processAutomationAction(ctx, payload)
	default:
		r.log.Info("unrecognized webhook payload acknowledged", nil)
		return &Outcome{Success: true, Message: "ignored: unrecognized payload"}
	}
}

func (r *Reconciler) processProviderEvent(ctx context.Context, payload *EventPayload) *Outcome {
	if payload.DocumentID == "" {
		return &Outcome{Success: true, Message: "ignored: event without document id"}
	}

	// Per-document lock: concurrent deliveries for the same document
	// are serialized by asking the provider to retry the loser.
	lockKey := "webhook:lock:" + payload.DocumentID
	acquired, err := r.locker.SetNX(ctx, lockKey, 1, lockTTL)
	if err != nil {
		r.log.WithError(err).Warn("webhook lock unavailable, proceeding without it", nil)
	} else if !acquired {
		return &Outcome{Success: false, Error: "document busy, retry"}
	} else {
		defer r.locker.Del(ctx, lockKey)
	}

	// Idempotency: the same event delivered twice is acknowledged
	// without reprocessing.
	idemKey := fmt.Sprintf("webhook:event:%s:%s:%d", payload.Event, payload.DocumentID, payload.Timestamp)
	fresh, err := r.locker.SetNX(ctx, idemKey, 1, idempotencyTTL)
	if err == nil && !fresh {
		return &Outcome{Success: true, Message: "duplicate event ignored"}
	}

	name := payload.DocumentName
	if name == "" {
		doc, err := r.provider.GetDocument(ctx, payload.DocumentID)
		if err != nil {
			return &Outcome{Success: false, Error: "document lookup failed"}
		}
		name = doc.DocumentName
	}

	decoded, err := docname.Decode(name)
	if err != nil {
		r.log.Info("webhook for unrecognized document acknowledged", map[string]interface{}{
			"documentName": name,
		})
		return &Outcome{Success: true, Message: "ignored: document not managed by this service"}
	}

	rows, err := r.trackers.ListByDocument(ctx, payload.DocumentID)
	if err != nil {
		return &Outcome{Success: false, Error: "tracker lookup failed"}
	}
	if len(rows) == 0 {
		return &Outcome{Success: true, Message: "ignored: no trackers for document"}
	}

	switch payload.Event {
	case EventInviteSigned:
		return r.applySigned(ctx, payload, decoded, rows)
	case EventInviteDeclined:
		return r.applyToAll(ctx, decoded, rows, models.StateDeclined)
	case EventComplete:
		return r.applyComplete(ctx, payload, decoded, rows)
	default:
		r.log.Info("unknown provider event acknowledged", map[string]interface{}{
			"event": payload.Event,
		})
		return &Outcome{Success: true, Message: "ignored: unknown event " + payload.Event}
	}
}

// applySigned marks each signer whose invite the provider reports
// fulfilled as SIGNED and moves the document's remaining active rows to
// PARTIALLY_SIGNED. The packet uploads under a name without a signer
// slot, so the signers are resolved by reading the document's field
// invite statuses back from the provider; a signer-tagged name (one
// document per signer) keeps the direct slot match.
func (r *Reconciler) applySigned(ctx context.Context, payload *EventPayload, decoded *docname.Decoded, rows []*models.SigningTracker) *Outcome {
	signedRoles := make(map[string]bool)
	if decoded.SignerIndex == models.NoSignerIndex {
		doc, err := r.provider.GetDocument(ctx, payload.DocumentID)
		if err != nil {
			r.log.WithError(err).Warn("invite status lookup failed", map[string]interface{}{
				"documentId": payload.DocumentID,
			})
		} else {
			for _, inv := range doc.FieldInvites {
				if inv.Status == signnow.InviteStatusFulfilled {
					signedRoles[inv.Role] = true
				}
			}
		}
	}

	for _, row := range rows {
		if row.State.IsTerminal() {
			continue
		}
		next := models.StatePartiallySigned
		if row.SignerIndex == decoded.SignerIndex || signedRoles[row.SignerRole] {
			next = models.StateSigned
		}
		if !row.State.CanTransition(next) {
			continue
		}
		if err := r.trackers.UpdateState(ctx, row.ID, next); err != nil {
			r.log.WithError(err).Error("tracker update failed", map[string]interface{}{
				"trackerId": row.ID,
			})
			return &Outcome{Success: false, Error: "tracker update failed"}
		}
	}
	return &Outcome{Success: true, Message: "signature recorded"}
}

func (r *Reconciler) applyToAll(ctx context.Context, decoded *docname.Decoded, rows []*models.SigningTracker, next models.TrackerState) *Outcome {
	for _, row := range rows {
		if row.State.IsTerminal() || !row.State.CanTransition(next) {
			continue
		}
		if err := r.trackers.UpdateState(ctx, row.ID, next); err != nil {
			return &Outcome{Success: false, Error: "tracker update failed"}
		}
	}
	return &Outcome{Success: true, Message: "state recorded"}
}

// applyComplete fans out the completion work: file the signed artifact,
// move trackers to FILED, and notify staff. The three legs are
// isolated; one failing leg is logged and the rest still run.
func (r *Reconciler) applyComplete(ctx context.Context, payload *EventPayload, decoded *docname.Decoded, rows []*models.SigningTracker) *Outcome {
	fileURL := ""
	data, err := r.provider.Download(ctx, payload.DocumentID)
	if err != nil {
		r.log.WithError(err).Error("signed artifact download failed", map[string]interface{}{
			"documentId": payload.DocumentID,
		})
	} else {
		url, err := r.filer.File(ctx, decoded.CaseNumber, docname.Encode(decoded.Prefix, decoded.DocKey, decoded.CaseNumber)+"_signed", data)
		if err != nil {
			r.log.WithError(err).Error("signed artifact filing failed", map[string]interface{}{
				"documentId": payload.DocumentID,
			})
		} else {
			fileURL = url
		}
	}

	trackerOK := true
	for _, row := range rows {
		if row.State.IsTerminal() {
			continue
		}
		// A completing document implies every signer signed.
		if row.State.CanTransition(models.StateSigned) && row.State != models.StateSigned {
			if err := r.trackers.UpdateState(ctx, row.ID, models.StateSigned); err != nil {
				trackerOK = false
				continue
			}
		}
		if err := r.trackers.UpdateStateWithFile(ctx, row.ID, models.StateFiled, fileURL); err != nil {
			r.log.WithError(err).Error("tracker completion update failed", map[string]interface{}{
				"trackerId": row.ID,
			})
			trackerOK = false
		}
	}

	roles := make([]string, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, row.SignerRole)
	}
	if err := r.notifier.NotifySigned(ctx, notify.Event{
		CaseNumber: decoded.CaseNumber,
		DocName:    payload.DocumentName,
		SignerRole: strings.Join(roles, ", "),
		State:      models.StateFiled,
		FileURL:    fileURL,
	}); err != nil {
		r.log.WithError(err).Warn("completion notification failed", nil)
	}

	if !trackerOK {
		return &Outcome{Success: false, Error: "tracker update failed"}
	}
	return &Outcome{Success: true, Message: "document completed and filed"}
}

// processAutomationAction serves the office automation's queries on the
// same endpoint.
func (r *Reconciler) processAutomationAction(ctx context.Context, payload *EventPayload) *Outcome {
	if payload.CaseNumber == "" {
		return &Outcome{Success: true, Message: "ignored: action without case number"}
	}

	switch payload.Action {
	case ActionPending, ActionResend:
		rows, err := r.trackers.ListByCase(ctx, payload.CaseNumber)
		if err != nil {
			return &Outcome{Success: false, Error: "tracker lookup failed"}
		}
		var open []*models.SigningTracker
		for _, row := range rows {
			if !row.State.IsTerminal() {
				open = append(open, row)
			}
		}
		msg := fmt.Sprintf("%d open trackers", len(open))
		return &Outcome{Success: true, Message: msg, Trackers: open}
	default:
		return &Outcome{Success: true, Message: "ignored: unknown action " + payload.Action}
	}
}

// audit appends the raw event to the audit index, best effort.
func (r *Reconciler) audit(ctx context.Context, payload *EventPayload, source EventSource) {
	if r.auditor == nil || !r.esCfg.Enabled {
		return
	}
	doc, err := json.Marshal(map[string]interface{}{
		"source":       string(source),
		"event":        payload.Event,
		"action":       payload.Action,
		"documentId":   payload.DocumentID,
		"documentName": payload.DocumentName,
		"caseNumber":   payload.CaseNumber,
		"receivedAt":   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	if err := r.auditor.Index(ctx, r.esCfg.AuditIndex, doc); err != nil {
		r.log.WithError(err).Warn("audit index write failed", nil)
	}
}
