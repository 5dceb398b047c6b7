package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signHex(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func signBase64(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event":"document.complete","document_id":"doc-123"}`)

	assert.True(t, VerifySignature("s3cret", body, signHex("s3cret", body)))
	assert.True(t, VerifySignature("s3cret", body, "sha256="+signHex("s3cret", body)))
	assert.True(t, VerifySignature("s3cret", body, signBase64("s3cret", body)))

	assert.False(t, VerifySignature("s3cret", body, signHex("wrong", body)))
	assert.False(t, VerifySignature("s3cret", body, ""))
	assert.False(t, VerifySignature("s3cret", body, "not-a-digest"))

	// Legacy mode: empty secret skips verification entirely.
	assert.True(t, VerifySignature("", body, ""))
	assert.True(t, VerifySignature("", body, "anything"))
}

func TestEventPayload_Source(t *testing.T) {
	tests := []struct {
		name     string
		payload  EventPayload
		expected EventSource
	}{
		{"provider event", EventPayload{Event: EventComplete, DocumentID: "doc-1"}, SourceProvider},
		{"provider by document id only", EventPayload{DocumentID: "doc-1"}, SourceProvider},
		{"automation action", EventPayload{Action: ActionPending, CaseNumber: "24-001"}, SourceAutomation},
		{"empty payload", EventPayload{}, SourceUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.payload.Source())
		})
	}
}
