package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondpacket/internal/catalog"
	"bondpacket/internal/common/config"
	"bondpacket/internal/common/logger"
	"bondpacket/internal/dispatch"
	"bondpacket/internal/models"
	"bondpacket/internal/packet"
	"bondpacket/internal/packet/fill"
	"bondpacket/internal/packet/merge"
)

// fileEngine writes real placeholder files so the filing archive path
// can read them back.
type fileEngine struct{}

func (fileEngine) Fill(templatePath, outPath string, fields []models.FieldValue) (int, []string, error) {
	return len(fields), nil, os.WriteFile(outPath, []byte("%PDF-stub"), 0o644)
}

func (fileEngine) PageCount(path string) (int, error) { return 1, nil }

func (fileEngine) Merge(inputs []string, outPath string) error {
	return os.WriteFile(outPath, []byte("%PDF-merged"), 0o644)
}

type fakeDispatcher struct {
	result *dispatch.Result
	err    error
	gotSig int
}

func (f *fakeDispatcher) Dispatch(_ context.Context, caseNumber string, pkt *models.Packet, fields []models.SignatureField, signers []models.Signer, mode dispatch.Mode) (*dispatch.Result, error) {
	f.gotSig = len(fields)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeTrackerReader struct {
	rows []*models.SigningTracker
	err  error
}

func (f *fakeTrackerReader) ListByCase(_ context.Context, _ string) ([]*models.SigningTracker, error) {
	return f.rows, f.err
}

type fakeFiler struct {
	filed map[string]int
	err   error
}

func (f *fakeFiler) File(_ context.Context, folder, docName string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.filed == nil {
		f.filed = make(map[string]int)
	}
	f.filed[folder+"/"+docName] = len(data)
	return "gs://bucket/" + folder + "/" + docName + ".pdf", nil
}

func newTestHandler(t *testing.T, d Dispatcher, tr TrackerReader, filer ArtifactFiler) *Handler {
	t.Helper()
	cat := catalog.Load("/opt/templates")
	log := logger.NewTestLogger(t)
	gen := packet.NewGenerator(cat,
		fill.New(cat, fileEngine{}, log),
		merge.New(cat, fileEngine{}),
		config.AgencyConfig{Name: "Shamrock Bonding", Email: "office@example.com"},
		nil, log)
	return NewHandler(gen, d, tr, filer, nil, log)
}

func generateBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"caseNumber": "24-001",
		"fields": map[string]string{
			"defendantName": "John Doe",
			"email":         "john@example.com",
			"totalBond":     "25000",
		},
		"indemnitors": []map[string]string{
			{"firstName": "Jane", "lastName": "Smith", "email": "jane@example.com"},
		},
		"charges": []map[string]string{
			{"description": "Battery", "powerNumbers": "PN-100"},
		},
	})
	require.NoError(t, err)
	return body
}

func TestGenerate(t *testing.T) {
	dispatcher := &fakeDispatcher{result: &dispatch.Result{
		DocumentID: "doc-123",
		Trackers: []*models.SigningTracker{
			{ID: 1, CaseNumber: "24-001", DocumentID: "doc-123", SignerIndex: 1, State: models.StateSent},
		},
	}}
	filer := &fakeFiler{}
	h := newTestHandler(t, dispatcher, &fakeTrackerReader{}, filer)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/generate", bytes.NewReader(generateBody(t)))
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "24-001", resp.CaseNumber)
	assert.Equal(t, "doc-123", resp.DocumentID)
	assert.Equal(t, dispatch.ModeEmail, resp.Mode, "email is the default delivery mode")
	assert.NotZero(t, resp.Instances)
	assert.NotZero(t, dispatcher.gotSig, "signature fields passed to dispatch")
	assert.Contains(t, resp.FilingURL, "gs://bucket/24-001/filing-packet_24-001")
	assert.Len(t, resp.Trackers, 1)
}

func TestGenerate_SchemaRejection(t *testing.T) {
	h := newTestHandler(t, &fakeDispatcher{}, &fakeTrackerReader{}, &fakeFiler{})

	body := []byte(`{"fields": {"defendantName": "No Case Number"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/generate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "CASE_VALIDATION_FAILED")
}

func TestGenerate_DispatchFailure(t *testing.T) {
	h := newTestHandler(t, &fakeDispatcher{err: errors.New("provider down")}, &fakeTrackerReader{}, &fakeFiler{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/generate", bytes.NewReader(generateBody(t)))
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGenerate_FilingArchiveFailureIsWarning(t *testing.T) {
	dispatcher := &fakeDispatcher{result: &dispatch.Result{DocumentID: "doc-123"}}
	h := newTestHandler(t, dispatcher, &fakeTrackerReader{}, &fakeFiler{err: errors.New("bucket gone")})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/generate", bytes.NewReader(generateBody(t)))
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Warnings, "filing packet archive failed")
	assert.Equal(t, "doc-123", resp.DocumentID, "dispatch still happened")
}

func TestListTrackers(t *testing.T) {
	rows := []*models.SigningTracker{
		{ID: 1, CaseNumber: "24-001", State: models.StateSent},
		{ID: 2, CaseNumber: "24-001", State: models.StateFiled},
	}
	h := newTestHandler(t, &fakeDispatcher{}, &fakeTrackerReader{rows: rows}, &fakeFiler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/24-001/trackers", nil)
	req.SetPathValue("caseNumber", "24-001")
	rec := httptest.NewRecorder()
	h.ListTrackers(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"caseNumber":"24-001"`)
	assert.Contains(t, rec.Body.String(), "FILED")
}

func TestHealth(t *testing.T) {
	checks := map[string]HealthChecker{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}
	h := NewHandler(nil, nil, nil, nil, checks, logger.NewNoOpLogger())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postgres":"ok"`)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
