package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondpacket/internal/catalog"
	"bondpacket/internal/models"
)

func item(key, templateKey string, startPage, pageCount int) models.PacketItem {
	return models.PacketItem{
		Instance:  models.DocumentInstance{Key: key, TemplateKey: templateKey},
		StartPage: startPage,
		PageCount: pageCount,
	}
}

func TestBuild_RebasesPages(t *testing.T) {
	cat := catalog.Load("/opt/templates")
	packet := &models.Packet{
		Pages: 3,
		Items: []models.PacketItem{
			item("indemnity-agreement", catalog.KeyIndemnityAgreement, 0, 1),
			item("defendant-application", catalog.KeyDefendantApplication, 1, 2),
		},
	}

	fields := Build(cat, packet, 1)
	require.Len(t, fields, 2)

	// Indemnity agreement: relative page 0 at packet start.
	assert.Equal(t, 0, fields[0].Page)
	assert.Equal(t, models.IndemnitorRole(1), fields[0].Role)

	// Defendant application: relative page 1 rebased past the first item.
	assert.Equal(t, 2, fields[1].Page)
	assert.Equal(t, models.RoleDefendant, fields[1].Role)
}

func TestBuild_PerPersonBindsSubject(t *testing.T) {
	cat := catalog.Load("/opt/templates")
	packet := &models.Packet{
		Pages: 3,
		Items: []models.PacketItem{
			{
				Instance: models.DocumentInstance{
					Key: "ssa-release-defendant", TemplateKey: catalog.KeySSARelease,
					PersonType: models.PersonTypeDefendant, PersonIndex: models.DefendantPersonIndex,
				},
				StartPage: 0, PageCount: 1,
			},
			{
				Instance: models.DocumentInstance{
					Key: "ssa-release-indemnitor1", TemplateKey: catalog.KeySSARelease,
					PersonType: models.PersonTypeIndemnitor, PersonIndex: 0,
				},
				StartPage: 1, PageCount: 1,
			},
			{
				Instance: models.DocumentInstance{
					Key: "ssa-release-indemnitor2", TemplateKey: catalog.KeySSARelease,
					PersonType: models.PersonTypeIndemnitor, PersonIndex: 1,
				},
				StartPage: 2, PageCount: 1,
			},
		},
	}

	fields := Build(cat, packet, 2)
	require.Len(t, fields, 3)
	assert.Equal(t, models.RoleDefendant, fields[0].Role)
	assert.Equal(t, 0, fields[0].Page)
	assert.Equal(t, "Indemnitor1", fields[1].Role)
	assert.Equal(t, 1, fields[1].Page)
	assert.Equal(t, "Indemnitor2", fields[2].Role)
	assert.Equal(t, 2, fields[2].Page)
}

func TestBuild_DropsIndemnitorFieldsWhenNoCosigners(t *testing.T) {
	cat := catalog.Load("/opt/templates")
	packet := &models.Packet{
		Pages: 1,
		Items: []models.PacketItem{
			item("disclosure-form", catalog.KeyDisclosureForm, 0, 1),
		},
	}

	fields := Build(cat, packet, 0)
	for _, f := range fields {
		assert.NotContains(t, f.Role, models.RoleIndemnitor)
	}
	// Defendant and agent fields survive.
	roles := make(map[string]int)
	for _, f := range fields {
		roles[f.Role]++
	}
	assert.Equal(t, 1, roles[models.RoleDefendant])
	assert.Equal(t, 1, roles[models.RoleAgent])
}

func TestBuild_NilPacket(t *testing.T) {
	cat := catalog.Load("/opt/templates")
	assert.Nil(t, Build(cat, nil, 1))
}

func TestBuild_FilingOnlyContributesNothing(t *testing.T) {
	cat := catalog.Load("/opt/templates")
	packet := &models.Packet{
		Pages: 1,
		Items: []models.PacketItem{
			item("appearance-bond-1", catalog.KeyAppearanceBond, 0, 1),
		},
	}
	assert.Empty(t, Build(cat, packet, 1))
}
