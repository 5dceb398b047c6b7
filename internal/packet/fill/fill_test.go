package fill

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondpacket/internal/catalog"
	"bondpacket/internal/common/logger"
	"bondpacket/internal/models"
	"bondpacket/internal/packet/expand"
	"bondpacket/internal/packet/mapfields"
)

// fakeEngine records fills and fails where told to. Fills run
// concurrently, so the map is guarded.
type fakeEngine struct {
	mu      sync.Mutex
	failOn  string // substring of outPath that triggers a fill error
	fills   map[string][]models.FieldValue
	skipped []string
}

func (f *fakeEngine) Fill(templatePath, outPath string, fields []models.FieldValue) (int, []string, error) {
	if f.failOn != "" && strings.Contains(outPath, f.failOn) && len(fields) > 0 {
		return 0, nil, assert.AnError
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fills == nil {
		f.fills = make(map[string][]models.FieldValue)
	}
	f.fills[outPath] = fields
	return len(fields), f.skipped, nil
}

func testInput() *models.CaseInput {
	return &models.CaseInput{
		CaseNumber: "24-001",
		Fields: map[string]string{
			"defendantName": "John Doe",
			"totalBond":     "25000",
		},
		Indemnitors: []models.Indemnitor{{FirstName: "Jane", LastName: "Smith", SSN: "123-45-6789"}},
	}
}

func TestFillAll(t *testing.T) {
	cat := catalog.Load("/opt/templates")
	engine := &fakeEngine{}
	filler := New(cat, engine, logger.NewNoOpLogger())

	input := testInput()
	master := mapfields.BuildMasterData(input, time.Now())
	templates, err := cat.Select([]string{catalog.KeyIndemnityAgreement, catalog.KeySSARelease})
	require.NoError(t, err)
	instances := expand.Expand(templates, input)

	filled, err := filler.FillAll(t.TempDir(), instances, input, master)
	require.NoError(t, err)
	require.Len(t, filled, 3) // agreement + ssa defendant + ssa indemnitor

	// Results keep instance order.
	assert.Equal(t, "indemnity-agreement", filled[0].Instance.Key)
	assert.Equal(t, "ssa-release-defendant", filled[1].Instance.Key)
	assert.Equal(t, "ssa-release-indemnitor1", filled[2].Instance.Key)

	for _, fi := range filled {
		assert.False(t, fi.Fallback)
		assert.Contains(t, fi.Path, fi.Instance.Key+".pdf")
	}

	// The SSA instances carry per-person signer values.
	defendantFill := engine.fills[filled[1].Path]
	indemnitorFill := engine.fills[filled[2].Path]
	assert.Equal(t, fieldValue(defendantFill, "SignerName"), "John Doe")
	assert.Equal(t, fieldValue(indemnitorFill, "SignerName"), "Jane Smith")
	assert.Equal(t, fieldValue(indemnitorFill, "SignerSSN"), "123-45-6789")
}

func fieldValue(fields []models.FieldValue, name string) string {
	for _, f := range fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

func TestFillAll_FallbackOnInstanceFailure(t *testing.T) {
	cat := catalog.Load("/opt/templates")
	engine := &fakeEngine{failOn: "indemnity-agreement"}
	filler := New(cat, engine, logger.NewNoOpLogger())

	input := testInput()
	master := mapfields.BuildMasterData(input, time.Now())
	templates, err := cat.Select([]string{catalog.KeyIndemnityAgreement, catalog.KeyPaperworkHeader})
	require.NoError(t, err)
	instances := expand.Expand(templates, input)

	filled, err := filler.FillAll(t.TempDir(), instances, input, master)
	require.NoError(t, err, "one failed instance never fails the run")
	require.Len(t, filled, 2)

	var agreement, header *models.FilledInstance
	for i := range filled {
		switch filled[i].Instance.Key {
		case "indemnity-agreement":
			agreement = &filled[i]
		case "paperwork-header":
			header = &filled[i]
		}
	}
	require.NotNil(t, agreement)
	require.NotNil(t, header)
	assert.True(t, agreement.Fallback, "failed instance degraded to the unfilled original")
	assert.False(t, header.Fallback)
}

func TestFillAll_UnknownTemplateIsFatal(t *testing.T) {
	cat := catalog.Load("/opt/templates")
	filler := New(cat, &fakeEngine{}, logger.NewNoOpLogger())

	instances := []models.DocumentInstance{{Key: "x", TemplateKey: "missing"}}
	_, err := filler.FillAll(t.TempDir(), instances, testInput(), map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEMPLATE_NOT_FOUND")
}

func TestFillAll_SkippedFieldDiagnostics(t *testing.T) {
	cat := catalog.Load("/opt/templates")
	filler := New(cat, &fakeEngine{}, logger.NewNoOpLogger())

	// No premium anywhere in the input.
	input := &models.CaseInput{
		CaseNumber: "24-001",
		Fields:     map[string]string{"defendantName": "John Doe"},
	}
	master := mapfields.BuildMasterData(input, time.Now())
	templates, err := cat.Select([]string{catalog.KeyPromissoryNote})
	require.NoError(t, err)

	filled, err := filler.FillAll(t.TempDir(), expand.Expand(templates, input), input, master)
	require.NoError(t, err)
	require.Len(t, filled, 1)

	joined := strings.Join(filled[0].Skipped, ",")
	assert.Contains(t, joined, "Premium")
	assert.Contains(t, joined, "TotalBond")
}
