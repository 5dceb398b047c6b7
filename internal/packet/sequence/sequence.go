// Package sequence builds the ordered signer roster for one dispatch:
// every indemnitor in payload order, then the defendant, then the
// agency countersigner. Order numbers are 1-based and contiguous.
package sequence

import (
	"strings"

	"bondpacket/internal/catalog"
	"bondpacket/internal/models"
)

// Agency is the countersigning bail agency.
type Agency struct {
	Name  string
	Email string
	Phone string
}

// Build produces the roster. Parties without any contact channel are
// still listed; the dispatcher decides per delivery mode whether a
// missing email or phone is an error.
func Build(input *models.CaseInput, master map[string]string, agency Agency) []models.Signer {
	signers := make([]models.Signer, 0, len(input.Indemnitors)+2)
	order := 0

	for i, ind := range input.Indemnitors {
		order++
		signers = append(signers, models.Signer{
			Role:      models.IndemnitorRole(i + 1),
			Order:     order,
			FirstName: ind.FirstName,
			LastName:  ind.LastName,
			Email:     ind.Email,
			Phone:     ind.Phone,
		})
	}

	order++
	defFirst, defLast := splitName(master[catalog.KeyDefName])
	if master[catalog.KeyDefFirstName] != "" {
		defFirst = master[catalog.KeyDefFirstName]
	}
	if master[catalog.KeyDefLastName] != "" {
		defLast = master[catalog.KeyDefLastName]
	}
	signers = append(signers, models.Signer{
		Role:      models.RoleDefendant,
		Order:     order,
		FirstName: defFirst,
		LastName:  defLast,
		Email:     master[catalog.KeyDefEmail],
		Phone:     master[catalog.KeyDefPhone],
	})

	order++
	agFirst, agLast := splitName(agency.Name)
	signers = append(signers, models.Signer{
		Role:      models.RoleAgent,
		Order:     order,
		FirstName: agFirst,
		LastName:  agLast,
		Email:     agency.Email,
		Phone:     agency.Phone,
	})

	return signers
}

// splitName splits a display name at the last space. Single-word names
// become the last name.
func splitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	i := strings.LastIndex(name, " ")
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+1:]
}
