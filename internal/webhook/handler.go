// internal/webhook/handler.go
package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"bondpacket/internal/common/config"
	"bondpacket/internal/common/logger"
)

// Handler terminates the provider callback endpoint. A bad signature
// is the only rejection; every syntactically valid, authenticated
// payload is answered 200 with a JSON outcome so the provider's retry
// policy is driven by the body, not the status code.
type Handler struct {
	reconciler *Reconciler
	secret     string
	log        logger.Logger
}

func NewHandler(reconciler *Reconciler, cfg config.ProviderConfig, log logger.Logger) *Handler {
	return &Handler{reconciler: reconciler, secret: cfg.WebhookSecret, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusOK, &Outcome{Success: false, Error: "unreadable body"})
		return
	}

	if !VerifySignature(h.secret, body, r.Header.Get(SignatureHeader)) {
		h.log.Warn("webhook signature verification failed", map[string]interface{}{
			"remoteAddr": r.RemoteAddr,
		})
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}

	var payload EventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeJSON(w, http.StatusOK, &Outcome{Success: true, Message: "ignored: malformed payload"})
		return
	}

	outcome := h.reconciler.Process(r.Context(), &payload)
	writeJSON(w, http.StatusOK, outcome)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
