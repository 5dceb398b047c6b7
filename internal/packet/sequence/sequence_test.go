package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondpacket/internal/catalog"
	"bondpacket/internal/models"
)

var testAgency = Agency{Name: "Shamrock Bonding", Email: "office@example.com", Phone: "555-0199"}

func TestBuild_Order(t *testing.T) {
	input := &models.CaseInput{
		CaseNumber: "24-001",
		Indemnitors: []models.Indemnitor{
			{FirstName: "Jane", LastName: "Smith", Email: "jane@example.com"},
			{FirstName: "Bob", LastName: "Jones", Phone: "555-0102"},
		},
	}
	master := map[string]string{
		catalog.KeyDefName:  "John Doe",
		catalog.KeyDefEmail: "john@example.com",
	}

	signers := Build(input, master, testAgency)
	require.Len(t, signers, 4)

	// Indemnitors first, then defendant, then agency; 1-based contiguous.
	for i, s := range signers {
		assert.Equal(t, i+1, s.Order)
	}
	assert.Equal(t, "Indemnitor1", signers[0].Role)
	assert.Equal(t, "jane@example.com", signers[0].Email)
	assert.Equal(t, "Indemnitor2", signers[1].Role)
	assert.Equal(t, models.RoleDefendant, signers[2].Role)
	assert.Equal(t, "John", signers[2].FirstName)
	assert.Equal(t, "Doe", signers[2].LastName)
	assert.Equal(t, models.RoleAgent, signers[3].Role)
	assert.Equal(t, "Shamrock", signers[3].FirstName)
	assert.Equal(t, "Bonding", signers[3].LastName)
}

func TestBuild_NoIndemnitors(t *testing.T) {
	input := &models.CaseInput{CaseNumber: "24-001"}
	master := map[string]string{catalog.KeyDefName: "Cher"}

	signers := Build(input, master, testAgency)
	require.Len(t, signers, 2)
	assert.Equal(t, models.RoleDefendant, signers[0].Role)
	assert.Equal(t, 1, signers[0].Order)
	assert.Equal(t, "Cher", signers[0].LastName, "single-word names land in the last name")
	assert.Equal(t, models.RoleAgent, signers[1].Role)
	assert.Equal(t, 2, signers[1].Order)
}

func TestBuild_ExplicitNamePartsWin(t *testing.T) {
	input := &models.CaseInput{CaseNumber: "24-001"}
	master := map[string]string{
		catalog.KeyDefName:      "John Q. Public",
		catalog.KeyDefFirstName: "John",
		catalog.KeyDefLastName:  "Public",
	}

	signers := Build(input, master, testAgency)
	assert.Equal(t, "John", signers[0].FirstName)
	assert.Equal(t, "Public", signers[0].LastName)
}
