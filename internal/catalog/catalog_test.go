package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondpacket/internal/models"
)

func TestLoad_AllTemplatesPresent(t *testing.T) {
	c := Load("/opt/templates")

	expected := []string{
		KeyPaperworkHeader, KeyFAQCosigners, KeyFAQDefendants,
		KeyIndemnityAgreement, KeyDefendantApplication, KeyPromissoryNote,
		KeyDisclosureForm, KeySuretyTerms, KeyMasterWaiver,
		KeySSARelease, KeyAppearanceBond,
	}
	assert.Equal(t, expected, c.Keys(), "declaration order defines packet order")
}

func TestTemplate_Expansions(t *testing.T) {
	c := Load("/opt/templates")

	ssa, err := c.Get(KeySSARelease)
	require.NoError(t, err)
	assert.Equal(t, ExpandPerPerson, ssa.Expansion)

	bond, err := c.Get(KeyAppearanceBond)
	require.NoError(t, err)
	assert.Equal(t, ExpandPerChargePower, bond.Expansion)
	assert.True(t, bond.FilingOnly)
	assert.Empty(t, bond.SignatureFields, "filing-only templates carry no signature fields")

	_, err = c.Get("nonexistent")
	assert.Error(t, err)
}

func TestTemplate_FieldMapsUseCanonicalKeys(t *testing.T) {
	canonical := make(map[string]bool)
	for k := range FallbackChains {
		canonical[k] = true
	}
	// Derived keys resolved outside the fallback chains.
	for _, k := range []string{KeySignerName, KeySignerDOB, KeySignerSSN, KeyChargeDesc} {
		canonical[k] = true
	}

	for _, tmpl := range defaultTemplates() {
		for field, key := range tmpl.FieldMap {
			assert.True(t, canonical[key], "template %s field %s maps to unknown key %s", tmpl.Key, field, key)
		}
	}
}

func TestSignatureLayout_Defaults(t *testing.T) {
	c := Load("/opt/templates")

	for _, key := range c.Keys() {
		for _, f := range c.SignatureLayout(key) {
			assert.True(t, f.Required, "%s: fields default to required", key)
			assert.Greater(t, f.Width, 0, "%s: width always set", key)
			assert.Greater(t, f.Height, 0, "%s: height always set", key)
			assert.Contains(t, []string{models.RoleDefendant, models.RoleIndemnitor, models.RoleAgent}, f.Role)
		}
	}
}

func TestSelect(t *testing.T) {
	c := Load("/opt/templates")

	// Request order does not matter; catalog order wins.
	got, err := c.Select([]string{KeyMasterWaiver, KeyPaperworkHeader})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, KeyPaperworkHeader, got[0].Key)
	assert.Equal(t, KeyMasterWaiver, got[1].Key)

	_, err = c.Select([]string{"bogus"})
	assert.Error(t, err)
}

func TestFilePath(t *testing.T) {
	c := Load("/opt/templates")
	tmpl, err := c.Get(KeyIndemnityAgreement)
	require.NoError(t, err)
	assert.Equal(t, "/opt/templates/indemnity-agreement.pdf", c.FilePath(tmpl))
}
