package webhook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondpacket/internal/common/config"
	"bondpacket/internal/common/database"
	"bondpacket/internal/common/logger"
	"bondpacket/internal/models"
	"bondpacket/internal/notify"
	"bondpacket/internal/signnow"
)

type memTrackers struct {
	rows       map[int64]*models.SigningTracker
	updateErr  error
	transcript []string
}

func newMemTrackers(rows ...*models.SigningTracker) *memTrackers {
	m := &memTrackers{rows: make(map[int64]*models.SigningTracker)}
	for _, r := range rows {
		m.rows[r.ID] = r
	}
	return m
}

func (m *memTrackers) ListByDocument(_ context.Context, documentID string) ([]*models.SigningTracker, error) {
	var out []*models.SigningTracker
	for _, r := range m.rows {
		if r.DocumentID == documentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memTrackers) ListByCase(_ context.Context, caseNumber string) ([]*models.SigningTracker, error) {
	var out []*models.SigningTracker
	for _, r := range m.rows {
		if r.CaseNumber == caseNumber {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memTrackers) UpdateState(_ context.Context, id int64, next models.TrackerState) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.rows[id].State = next
	return nil
}

func (m *memTrackers) UpdateStateWithFile(_ context.Context, id int64, next models.TrackerState, fileURL string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.rows[id].State = next
	m.rows[id].FileURL = fileURL
	return nil
}

type fakeProvider struct {
	doc         *signnow.Document
	downloadErr error
	artifact    []byte
}

func (f *fakeProvider) GetDocument(_ context.Context, _ string) (*signnow.Document, error) {
	if f.doc == nil {
		return nil, errors.New("not found")
	}
	return f.doc, nil
}

func (f *fakeProvider) Download(_ context.Context, _ string) ([]byte, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return f.artifact, nil
}

type fakeFiler struct {
	filed map[string][]byte
	err   error
}

func (f *fakeFiler) File(_ context.Context, folder, docName string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.filed == nil {
		f.filed = make(map[string][]byte)
	}
	key := folder + "/" + docName
	f.filed[key] = data
	return "gs://bucket/" + key + ".pdf", nil
}

type fakeNotifier struct {
	events []notify.Event
	err    error
}

func (f *fakeNotifier) NotifySigned(_ context.Context, ev notify.Event) error {
	f.events = append(f.events, ev)
	return f.err
}

func testLocker(t *testing.T) *database.RedisClient {
	t.Helper()
	mr := miniredis.RunT(t)
	return &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
}

func newTestReconciler(t *testing.T, trackers TrackerStore, provider Provider, filer Filer, notifier Notifier) *Reconciler {
	t.Helper()
	return NewReconciler(trackers, provider, filer, notifier, testLocker(t), nil,
		config.ElasticsearchConfig{}, nil, logger.NewTestLogger(t))
}

func sentRow(id int64, signerIndex int) *models.SigningTracker {
	return &models.SigningTracker{
		ID:          id,
		CaseNumber:  "24-001",
		DocumentID:  "doc-123",
		DocumentKey: "signable-packet",
		SignerIndex: signerIndex,
		State:       models.StateSent,
		DocName:     "Shamrock_signable-packet_24-001",
	}
}

func TestProcess_SignedEvent(t *testing.T) {
	trackers := newMemTrackers(sentRow(1, 1), sentRow(2, 2), sentRow(3, 3))
	r := newTestReconciler(t, trackers, &fakeProvider{}, &fakeFiler{}, &fakeNotifier{})

	outcome := r.Process(context.Background(), &EventPayload{
		Event:        EventInviteSigned,
		DocumentID:   "doc-123",
		DocumentName: "Shamrock_signable-packet_signer2_24-001",
		Timestamp:    time.Now().Unix(),
	})

	require.True(t, outcome.Success)
	assert.Equal(t, models.StateSigned, trackers.rows[2].State, "named signer marked SIGNED")
	assert.Equal(t, models.StatePartiallySigned, trackers.rows[1].State)
	assert.Equal(t, models.StatePartiallySigned, trackers.rows[3].State)
}

func TestProcess_SignedEvent_SharedPacketName(t *testing.T) {
	// The dispatcher uploads one packet for all signers under a name
	// with no signer slot; the signer is resolved from the provider's
	// field invite statuses.
	ind := sentRow(1, 1)
	ind.SignerRole = "Indemnitor1"
	def := sentRow(2, 2)
	def.SignerRole = "Defendant"
	agent := sentRow(3, 3)
	agent.SignerRole = "Agent"
	trackers := newMemTrackers(ind, def, agent)

	provider := &fakeProvider{doc: &signnow.Document{
		ID:           "doc-123",
		DocumentName: "Shamrock_signable-packet_24-001",
		FieldInvites: []signnow.FieldInvite{
			{Role: "Indemnitor1", Status: "pending"},
			{Role: "Defendant", Status: signnow.InviteStatusFulfilled},
			{Role: "Agent", Status: "pending"},
		},
	}}
	r := newTestReconciler(t, trackers, provider, &fakeFiler{}, &fakeNotifier{})

	outcome := r.Process(context.Background(), &EventPayload{
		Event:        EventInviteSigned,
		DocumentID:   "doc-123",
		DocumentName: "Shamrock_signable-packet_24-001",
		Timestamp:    time.Now().Unix(),
	})

	require.True(t, outcome.Success)
	assert.Equal(t, models.StateSigned, trackers.rows[2].State, "fulfilled invite's row marked SIGNED")
	assert.Equal(t, models.StatePartiallySigned, trackers.rows[1].State)
	assert.Equal(t, models.StatePartiallySigned, trackers.rows[3].State)
}

func TestProcess_SignedEvent_InviteLookupFailureDegrades(t *testing.T) {
	trackers := newMemTrackers(sentRow(1, 1), sentRow(2, 2))
	r := newTestReconciler(t, trackers, &fakeProvider{}, &fakeFiler{}, &fakeNotifier{})

	outcome := r.Process(context.Background(), &EventPayload{
		Event:        EventInviteSigned,
		DocumentID:   "doc-123",
		DocumentName: "Shamrock_signable-packet_24-001",
		Timestamp:    time.Now().Unix(),
	})

	require.True(t, outcome.Success)
	assert.Equal(t, models.StatePartiallySigned, trackers.rows[1].State,
		"without invite statuses every active row still records progress")
	assert.Equal(t, models.StatePartiallySigned, trackers.rows[2].State)
}

func TestProcess_DeclinedEvent(t *testing.T) {
	trackers := newMemTrackers(sentRow(1, 1), sentRow(2, 2))
	r := newTestReconciler(t, trackers, &fakeProvider{}, &fakeFiler{}, &fakeNotifier{})

	outcome := r.Process(context.Background(), &EventPayload{
		Event:        EventInviteDeclined,
		DocumentID:   "doc-123",
		DocumentName: "Shamrock_signable-packet_24-001",
	})

	require.True(t, outcome.Success)
	assert.Equal(t, models.StateDeclined, trackers.rows[1].State)
	assert.Equal(t, models.StateDeclined, trackers.rows[2].State)
}

func TestProcess_CompleteEvent_FanOut(t *testing.T) {
	def := sentRow(1, 1)
	def.SignerRole = "Defendant"
	agent := sentRow(2, 2)
	agent.SignerRole = "Agent"
	trackers := newMemTrackers(def, agent)
	provider := &fakeProvider{artifact: []byte("%PDF-signed")}
	filer := &fakeFiler{}
	notifier := &fakeNotifier{}
	r := newTestReconciler(t, trackers, provider, filer, notifier)

	outcome := r.Process(context.Background(), &EventPayload{
		Event:        EventComplete,
		DocumentID:   "doc-123",
		DocumentName: "Shamrock_signable-packet_24-001",
	})

	require.True(t, outcome.Success)
	for _, row := range trackers.rows {
		assert.Equal(t, models.StateFiled, row.State)
		assert.Contains(t, row.FileURL, "gs://bucket/24-001/")
	}
	assert.Len(t, filer.filed, 1)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, "24-001", notifier.events[0].CaseNumber)
	assert.Equal(t, models.StateFiled, notifier.events[0].State)
	assert.Contains(t, notifier.events[0].SignerRole, "Defendant")
	assert.Contains(t, notifier.events[0].SignerRole, "Agent")
}

func TestProcess_CompleteEvent_FilingFailureIsIsolated(t *testing.T) {
	trackers := newMemTrackers(sentRow(1, 1))
	notifier := &fakeNotifier{}
	r := newTestReconciler(t, trackers, &fakeProvider{artifact: []byte("x")},
		&fakeFiler{err: errors.New("bucket unavailable")}, notifier)

	outcome := r.Process(context.Background(), &EventPayload{
		Event:        EventComplete,
		DocumentID:   "doc-123",
		DocumentName: "Shamrock_signable-packet_24-001",
	})

	require.True(t, outcome.Success, "filing failure does not fail the event")
	assert.Equal(t, models.StateFiled, trackers.rows[1].State, "tracker still advances")
	assert.Empty(t, trackers.rows[1].FileURL)
	assert.Len(t, notifier.events, 1, "notification still sent")
}

func TestProcess_CompleteEvent_NotifyFailureIsIsolated(t *testing.T) {
	trackers := newMemTrackers(sentRow(1, 1))
	r := newTestReconciler(t, trackers, &fakeProvider{artifact: []byte("x")},
		&fakeFiler{}, &fakeNotifier{err: errors.New("ses throttled")})

	outcome := r.Process(context.Background(), &EventPayload{
		Event:        EventComplete,
		DocumentID:   "doc-123",
		DocumentName: "Shamrock_signable-packet_24-001",
	})
	require.True(t, outcome.Success)
	assert.Equal(t, models.StateFiled, trackers.rows[1].State)
}

func TestProcess_DuplicateEventIgnored(t *testing.T) {
	trackers := newMemTrackers(sentRow(1, 1))
	r := newTestReconciler(t, trackers, &fakeProvider{}, &fakeFiler{}, &fakeNotifier{})

	payload := &EventPayload{
		Event:        EventInviteSigned,
		DocumentID:   "doc-123",
		DocumentName: "Shamrock_signable-packet_signer1_24-001",
		Timestamp:    1700000000,
	}
	first := r.Process(context.Background(), payload)
	require.True(t, first.Success)
	assert.Equal(t, models.StateSigned, trackers.rows[1].State)

	// Manually regress to prove the duplicate is not reprocessed.
	trackers.rows[1].State = models.StateSent
	second := r.Process(context.Background(), payload)
	require.True(t, second.Success)
	assert.Contains(t, second.Message, "duplicate")
	assert.Equal(t, models.StateSent, trackers.rows[1].State)
}

func TestProcess_UnknownEventAcked(t *testing.T) {
	trackers := newMemTrackers(sentRow(1, 1))
	r := newTestReconciler(t, trackers, &fakeProvider{}, &fakeFiler{}, &fakeNotifier{})

	outcome := r.Process(context.Background(), &EventPayload{
		Event:        "document.fieldinvite.opened",
		DocumentID:   "doc-123",
		DocumentName: "Shamrock_signable-packet_24-001",
	})
	require.True(t, outcome.Success)
	assert.Equal(t, models.StateSent, trackers.rows[1].State, "state untouched")
}

func TestProcess_UnrecognizedDocumentAcked(t *testing.T) {
	r := newTestReconciler(t, newMemTrackers(), &fakeProvider{}, &fakeFiler{}, &fakeNotifier{})

	outcome := r.Process(context.Background(), &EventPayload{
		Event:        EventComplete,
		DocumentID:   "doc-999",
		DocumentName: "RandomUpload.pdf",
	})
	require.True(t, outcome.Success)
	assert.Contains(t, outcome.Message, "not managed")
}

func TestProcess_NameLookupFromProvider(t *testing.T) {
	trackers := newMemTrackers(sentRow(1, 1))
	provider := &fakeProvider{doc: &signnow.Document{
		ID: "doc-123", DocumentName: "Shamrock_signable-packet_signer1_24-001",
	}}
	r := newTestReconciler(t, trackers, provider, &fakeFiler{}, &fakeNotifier{})

	outcome := r.Process(context.Background(), &EventPayload{
		Event:      EventInviteSigned,
		DocumentID: "doc-123",
	})
	require.True(t, outcome.Success)
	assert.Equal(t, models.StateSigned, trackers.rows[1].State)
}

func TestProcess_AutomationPendingQuery(t *testing.T) {
	filed := sentRow(3, 3)
	filed.State = models.StateFiled
	trackers := newMemTrackers(sentRow(1, 1), sentRow(2, 2), filed)
	r := newTestReconciler(t, trackers, &fakeProvider{}, &fakeFiler{}, &fakeNotifier{})

	outcome := r.Process(context.Background(), &EventPayload{
		Action:     ActionPending,
		CaseNumber: "24-001",
	})
	require.True(t, outcome.Success)
	assert.Len(t, outcome.Trackers, 2, "terminal rows excluded")
}

func TestProcess_TerminalRowsUntouched(t *testing.T) {
	declined := sentRow(1, 1)
	declined.State = models.StateDeclined
	trackers := newMemTrackers(declined, sentRow(2, 2))
	r := newTestReconciler(t, trackers, &fakeProvider{}, &fakeFiler{}, &fakeNotifier{})

	outcome := r.Process(context.Background(), &EventPayload{
		Event:        EventInviteSigned,
		DocumentID:   "doc-123",
		DocumentName: "Shamrock_signable-packet_signer2_24-001",
	})
	require.True(t, outcome.Success)
	assert.Equal(t, models.StateDeclined, trackers.rows[1].State)
	assert.Equal(t, models.StateSigned, trackers.rows[2].State)
}
