// internal/server/handler.go
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/google/uuid"

	"bondpacket/internal/common/errors"
	"bondpacket/internal/common/logger"
	"bondpacket/internal/common/validation"
	"bondpacket/internal/dispatch"
	"bondpacket/internal/models"
	"bondpacket/internal/packet"
)

// Dispatcher sends a generated run for signature.
type Dispatcher interface {
	Dispatch(ctx context.Context, caseNumber string, pkt *models.Packet, fields []models.SignatureField, signers []models.Signer, mode dispatch.Mode) (*dispatch.Result, error)
}

// TrackerReader serves the tracker query endpoint.
type TrackerReader interface {
	ListByCase(ctx context.Context, caseNumber string) ([]*models.SigningTracker, error)
}

// ArtifactFiler archives the filing-only packet at generation time.
type ArtifactFiler interface {
	File(ctx context.Context, folder, docName string, data []byte) (string, error)
}

// HealthChecker reports one dependency's liveness.
type HealthChecker func(ctx context.Context) error

type Handler struct {
	generator *packet.Generator
	dispatch  Dispatcher
	trackers  TrackerReader
	filer     ArtifactFiler
	checks    map[string]HealthChecker
	log       logger.Logger
}

func NewHandler(generator *packet.Generator, dispatcher Dispatcher, trackers TrackerReader,
	filer ArtifactFiler, checks map[string]HealthChecker, log logger.Logger) *Handler {
	return &Handler{
		generator: generator,
		dispatch:  dispatcher,
		trackers:  trackers,
		filer:     filer,
		checks:    checks,
		log:       log,
	}
}

// GenerateRequest is the case intake body plus run options.
type GenerateRequest struct {
	models.CaseInput
	TemplateKeys []string      `json:"templateKeys,omitempty"`
	Mode         dispatch.Mode `json:"mode,omitempty"`
}

// GenerateResponse reports one generation and dispatch.
type GenerateResponse struct {
	RunID          string                   `json:"runId"`
	CaseNumber     string                   `json:"caseNumber"`
	DocumentID     string                   `json:"documentId,omitempty"`
	Mode           dispatch.Mode            `json:"mode"`
	Pages          int                      `json:"pages"`
	Instances      int                      `json:"instances"`
	SigningLinks   map[string]string        `json:"signingLinks,omitempty"`
	FilingURL      string                   `json:"filingUrl,omitempty"`
	Trackers       []*models.SigningTracker `json:"trackers,omitempty"`
	DeliveryErrors []string                 `json:"deliveryErrors,omitempty"`
	Warnings       []string                 `json:"warnings,omitempty"`
}

// Generate runs the packet pipeline and dispatches the signable packet.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 4<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}
	if err := validation.ValidateCasePayload(body); err != nil {
		writeStandardError(w, http.StatusUnprocessableEntity, errors.NewCaseValidationFailedError(err.Error()))
		return
	}

	var req GenerateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if req.Mode == "" {
		req.Mode = dispatch.ModeEmail
	}

	runID := uuid.NewString()
	h.log.Info("packet generation started", map[string]interface{}{
		"runId":      runID,
		"caseNumber": req.CaseNumber,
		"mode":       string(req.Mode),
	})

	run, err := h.generator.Generate(r.Context(), &req.CaseInput, req.TemplateKeys)
	if err != nil {
		h.writeRunError(w, err)
		return
	}
	defer run.Cleanup()

	resp := &GenerateResponse{
		RunID:      runID,
		CaseNumber: run.CaseNumber,
		Mode:       req.Mode,
		Instances:  len(run.Instances),
	}
	for _, fi := range run.Filled {
		if fi.Fallback {
			resp.Warnings = append(resp.Warnings, "unfilled original substituted for "+fi.Instance.Key)
		}
	}

	if run.FilingOnly != nil {
		url, err := h.fileFilingPacket(r.Context(), run)
		if err != nil {
			// The filing packet is re-derivable; keep going.
			h.log.WithError(err).Warn("filing packet archive failed", map[string]interface{}{
				"caseNumber": run.CaseNumber,
			})
			resp.Warnings = append(resp.Warnings, "filing packet archive failed")
		} else {
			resp.FilingURL = url
		}
	}

	if run.Signable != nil {
		resp.Pages = run.Signable.Pages
		result, err := h.dispatch.Dispatch(r.Context(), run.CaseNumber, run.Signable, run.Fields, run.Signers, req.Mode)
		if err != nil {
			h.writeRunError(w, err)
			return
		}
		resp.DocumentID = result.DocumentID
		resp.SigningLinks = result.SigningLinks
		resp.Trackers = result.Trackers
		for _, de := range result.DeliveryErrors {
			resp.DeliveryErrors = append(resp.DeliveryErrors, de.Signer.Role+": "+de.Err.Error())
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) fileFilingPacket(ctx context.Context, run *packet.Run) (string, error) {
	data, err := os.ReadFile(run.FilingOnly.Path)
	if err != nil {
		return "", err
	}
	return h.filer.File(ctx, run.CaseNumber, "filing-packet_"+run.CaseNumber, data)
}

// ListTrackers serves signing progress for one case.
func (h *Handler) ListTrackers(w http.ResponseWriter, r *http.Request) {
	caseNumber := r.PathValue("caseNumber")
	if caseNumber == "" {
		writeError(w, http.StatusBadRequest, "missing case number")
		return
	}

	rows, err := h.trackers.ListByCase(r.Context(), caseNumber)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "tracker lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"caseNumber": caseNumber,
		"trackers":   rows,
	})
}

// Health runs every registered dependency check.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	result := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			result[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			result[name] = "ok"
		}
	}
	writeJSON(w, status, map[string]interface{}{
		"status": http.StatusText(status),
		"checks": result,
	})
}

func (h *Handler) writeRunError(w http.ResponseWriter, err error) {
	if stdErr, ok := err.(*errors.StandardError); ok {
		status := http.StatusUnprocessableEntity
		if stdErr.Retryable {
			status = http.StatusBadGateway
		}
		writeStandardError(w, status, stdErr)
		return
	}
	h.log.WithError(err).Error("generation failed", nil)
	writeError(w, http.StatusInternalServerError, "generation failed")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeStandardError(w http.ResponseWriter, status int, err *errors.StandardError) {
	writeJSON(w, status, err)
}

