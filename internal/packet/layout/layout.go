// Package layout rebases template-relative signature fields onto a
// merged signable packet's absolute page numbering and binds generic
// template roles to concrete signer slots.
package layout

import (
	"bondpacket/internal/catalog"
	"bondpacket/internal/models"
)

// Build produces the packet's full signature field list. Fields follow
// packet order, then each template's declaration order, so registration
// with the provider is deterministic.
//
// Role binding: a per-person instance binds every field to its own
// subject. In shared templates the generic indemnitor role means the
// primary co-signer; when the case has no indemnitors those fields are
// dropped so no field references a party that will never be invited.
func Build(cat *catalog.Catalog, packet *models.Packet, indemnitorCount int) []models.SignatureField {
	if packet == nil {
		return nil
	}

	var out []models.SignatureField
	for _, item := range packet.Items {
		for _, f := range cat.SignatureLayout(item.Instance.TemplateKey) {
			role, ok := bindRole(f.Role, item.Instance, indemnitorCount)
			if !ok {
				continue
			}
			f.Role = role
			f.Page = item.StartPage + f.Page
			out = append(out, f)
		}
	}
	return out
}

func bindRole(templateRole string, inst models.DocumentInstance, indemnitorCount int) (string, bool) {
	switch inst.PersonType {
	case models.PersonTypeDefendant:
		return models.RoleDefendant, true
	case models.PersonTypeIndemnitor:
		return models.IndemnitorRole(inst.PersonIndex + 1), true
	}

	if templateRole == models.RoleIndemnitor {
		if indemnitorCount == 0 {
			return "", false
		}
		return models.IndemnitorRole(1), true
	}
	return templateRole, true
}
