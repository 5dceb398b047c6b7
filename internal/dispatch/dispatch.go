// Package dispatch routes a signable packet to the e-signature
// provider: upload, signature field registration, invites in the
// requested delivery mode, and the per-signer tracker rows that the
// webhook reconciler later resolves against.
package dispatch

import (
	"context"
	"fmt"

	"bondpacket/internal/common/config"
	"bondpacket/internal/common/errors"
	"bondpacket/internal/common/logger"
	"bondpacket/internal/docname"
	"bondpacket/internal/models"
	"bondpacket/internal/signnow"
)

// Mode selects how signers receive their invites. Modes are mutually
// exclusive per dispatch.
type Mode string

const (
	ModeEmail    Mode = "email"
	ModeSMS      Mode = "sms"
	ModeEmbedded Mode = "embedded" // in-office kiosk links
)

// PacketDocKey names the merged signable packet inside document names
// and tracker rows.
const PacketDocKey = "signable-packet"

// Provider is the e-signature surface the dispatcher needs.
type Provider interface {
	Upload(ctx context.Context, path, documentName string) (string, error)
	RegisterFields(ctx context.Context, documentID string, fields []models.SignatureField) error
	SendEmailInvites(ctx context.Context, documentID, from string, signers []models.Signer) []signnow.SignerError
	SendSMSInvites(ctx context.Context, documentID, from string, signers []models.Signer) []signnow.SignerError
	EmbeddedLink(ctx context.Context, documentID string, signer models.Signer) (string, error)
}

// TrackerStore persists per-signer signing progress.
type TrackerStore interface {
	Create(ctx context.Context, t *models.SigningTracker) error
}

type Dispatcher struct {
	provider Provider
	trackers TrackerStore
	cfg      config.ProviderConfig
	from     string
	log      logger.Logger
}

func New(provider Provider, trackers TrackerStore, cfg config.ProviderConfig, fromEmail string, log logger.Logger) *Dispatcher {
	return &Dispatcher{provider: provider, trackers: trackers, cfg: cfg, from: fromEmail, log: log}
}

// Result reports one dispatch. DeliveryErrors carries per-signer
// failures; the dispatch as a whole still succeeded for the rest.
type Result struct {
	DocumentID     string                `json:"documentId"`
	DocName        string                `json:"docName"`
	Mode           Mode                  `json:"mode"`
	SigningLinks   map[string]string     `json:"signingLinks,omitempty"` // role -> embedded link
	DeliveryErrors []signnow.SignerError `json:"-"`
	Trackers       []*models.SigningTracker
}

// Dispatch uploads the packet, registers its signature fields, and
// invites every signer. Upload and field registration failures are
// fatal; a delivery failure for one signer never blocks the others.
func (d *Dispatcher) Dispatch(ctx context.Context, caseNumber string, packet *models.Packet, fields []models.SignatureField, signers []models.Signer, mode Mode) (*Result, error) {
	if packet == nil {
		return nil, fmt.Errorf("dispatch: no signable packet")
	}

	name := docname.Encode(d.cfg.NamePrefix, PacketDocKey, caseNumber)
	documentID, err := d.provider.Upload(ctx, packet.Path, name)
	if err != nil {
		return nil, errors.NewUploadFailedError(err)
	}

	if len(fields) > 0 {
		if err := d.provider.RegisterFields(ctx, documentID, fields); err != nil {
			return nil, errors.NewFieldRegistrationFailedError(documentID, err)
		}
	}

	result := &Result{DocumentID: documentID, DocName: name, Mode: mode}

	invitable, precheckFailed := d.precheck(signers, mode)
	result.DeliveryErrors = append(result.DeliveryErrors, precheckFailed...)

	switch mode {
	case ModeEmail:
		result.DeliveryErrors = append(result.DeliveryErrors,
			d.provider.SendEmailInvites(ctx, documentID, d.from, invitable)...)
	case ModeSMS:
		result.DeliveryErrors = append(result.DeliveryErrors,
			d.provider.SendSMSInvites(ctx, documentID, d.from, invitable)...)
	case ModeEmbedded:
		result.SigningLinks = make(map[string]string, len(invitable))
		for _, s := range invitable {
			link, err := d.provider.EmbeddedLink(ctx, documentID, s)
			if err != nil {
				result.DeliveryErrors = append(result.DeliveryErrors, signnow.SignerError{Signer: s, Err: err})
				continue
			}
			result.SigningLinks[s.Role] = link
		}
	default:
		return nil, fmt.Errorf("dispatch: unknown delivery mode %q", mode)
	}

	failed := make(map[int]bool, len(result.DeliveryErrors))
	for _, fe := range result.DeliveryErrors {
		failed[fe.Signer.Order] = true
		d.log.Warn("invite delivery failed", map[string]interface{}{
			"documentId": documentID,
			"role":       fe.Signer.Role,
			"error":      fe.Err.Error(),
		})
	}

	for _, s := range signers {
		state := models.StateSent
		if failed[s.Order] {
			state = models.StatePending
		}
		tr := &models.SigningTracker{
			CaseNumber:  caseNumber,
			DocumentID:  documentID,
			DocumentKey: PacketDocKey,
			SignerIndex: s.Order,
			SignerRole:  s.Role,
			State:       state,
			DocName:     docname.EncodeSigner(d.cfg.NamePrefix, PacketDocKey, s.Order, caseNumber),
		}
		if err := d.trackers.Create(ctx, tr); err != nil {
			return nil, err
		}
		result.Trackers = append(result.Trackers, tr)
	}

	d.log.Info("packet dispatched", map[string]interface{}{
		"caseNumber":     caseNumber,
		"documentId":     documentID,
		"mode":           string(mode),
		"signers":        len(signers),
		"deliveryErrors": len(result.DeliveryErrors),
	})
	return result, nil
}

// precheck drops signers missing the contact channel the mode needs,
// recording each as a delivery error.
func (d *Dispatcher) precheck(signers []models.Signer, mode Mode) ([]models.Signer, []signnow.SignerError) {
	var ok []models.Signer
	var failed []signnow.SignerError
	for _, s := range signers {
		switch {
		case mode == ModeEmail && s.Email == "":
			failed = append(failed, signnow.SignerError{Signer: s, Err: fmt.Errorf("signer %s has no email address", s.Role)})
		case mode == ModeSMS && s.Phone == "":
			failed = append(failed, signnow.SignerError{Signer: s, Err: fmt.Errorf("signer %s has no phone number", s.Role)})
		default:
			ok = append(ok, s)
		}
	}
	return ok, failed
}
