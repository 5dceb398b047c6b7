// Package expand materializes catalog templates into concrete document
// instances for one case: passthrough templates yield one instance,
// per-person templates yield one per defendant and indemnitor, and
// per-charge-power templates yield one per (charge, power number) pair.
package expand

import (
	"fmt"
	"regexp"
	"strings"

	"bondpacket/internal/catalog"
	"bondpacket/internal/models"
)

// powerTokenRe splits the free-text power-number field. Staff enter
// these separated by commas, semicolons, or any whitespace.
var powerTokenRe = regexp.MustCompile(`[,;\s]+`)

// Expand walks the given templates in catalog order and produces the
// case's full instance list. The bond index assigned to per-charge-power
// instances is 1-based and contiguous across the whole case, regardless
// of how many such templates the catalog carries.
func Expand(templates []catalog.Template, input *models.CaseInput) []models.DocumentInstance {
	var out []models.DocumentInstance
	bondIndex := 0

	for i := range templates {
		tmpl := &templates[i]
		switch tmpl.Expansion {
		case catalog.ExpandPerPerson:
			out = append(out, expandPerPerson(tmpl, input)...)
		case catalog.ExpandPerChargePower:
			instances := expandPerChargePower(tmpl, input, &bondIndex)
			out = append(out, instances...)
		default:
			out = append(out, models.DocumentInstance{
				Key:         tmpl.Key,
				TemplateKey: tmpl.Key,
				DisplayName: tmpl.DisplayName,
				PersonIndex: models.DefendantPersonIndex,
				ChargeIndex: -1,
				PowerIndex:  -1,
			})
		}
	}
	return out
}

// expandPerPerson emits the defendant copy first, then one copy per
// indemnitor in payload order.
func expandPerPerson(tmpl *catalog.Template, input *models.CaseInput) []models.DocumentInstance {
	out := make([]models.DocumentInstance, 0, 1+len(input.Indemnitors))

	out = append(out, models.DocumentInstance{
		Key:         tmpl.Key + "-defendant",
		TemplateKey: tmpl.Key,
		DisplayName: tmpl.DisplayName + " (Defendant)",
		PersonType:  models.PersonTypeDefendant,
		PersonIndex: models.DefendantPersonIndex,
		ChargeIndex: -1,
		PowerIndex:  -1,
	})

	for i, ind := range input.Indemnitors {
		out = append(out, models.DocumentInstance{
			Key:         fmt.Sprintf("%s-indemnitor%d", tmpl.Key, i+1),
			TemplateKey: tmpl.Key,
			DisplayName: fmt.Sprintf("%s (%s)", tmpl.DisplayName, ind.FullName()),
			PersonType:  models.PersonTypeIndemnitor,
			PersonIndex: i,
			ChargeIndex: -1,
			PowerIndex:  -1,
		})
	}
	return out
}

// expandPerChargePower emits one instance per power-number token of
// each charge. A charge whose power field yields no usable tokens still
// gets exactly one instance, carrying an empty power number. A case
// with no charges at all gets a single placeholder instance occupying
// charge slot 0, power slot 0, so the filing packet is never silently
// missing its bond form.
func expandPerChargePower(tmpl *catalog.Template, input *models.CaseInput, bondIndex *int) []models.DocumentInstance {
	if len(input.Charges) == 0 {
		*bondIndex++
		return []models.DocumentInstance{{
			Key:         fmt.Sprintf("%s-%d", tmpl.Key, *bondIndex),
			TemplateKey: tmpl.Key,
			DisplayName: tmpl.DisplayName,
			PersonIndex: models.DefendantPersonIndex,
			ChargeIndex: 0,
			PowerIndex:  0,
			BondIndex:   *bondIndex,
		}}
	}

	var out []models.DocumentInstance
	for ci, charge := range input.Charges {
		tokens := splitPowerNumbers(charge.PowerNumbers)
		for pi, token := range tokens {
			*bondIndex++
			name := tmpl.DisplayName
			if token != "" {
				name = fmt.Sprintf("%s (%s)", tmpl.DisplayName, token)
			}
			out = append(out, models.DocumentInstance{
				Key:         fmt.Sprintf("%s-%d", tmpl.Key, *bondIndex),
				TemplateKey: tmpl.Key,
				DisplayName: name,
				PersonIndex: models.DefendantPersonIndex,
				ChargeIndex: ci,
				PowerIndex:  pi,
				PowerNumber: token,
				BondIndex:   *bondIndex,
			})
		}
	}
	return out
}

// splitPowerNumbers tokenizes the free-text power field. A blank or
// delimiter-only field yields one empty token, never zero.
func splitPowerNumbers(raw string) []string {
	var tokens []string
	for _, t := range powerTokenRe.Split(raw, -1) {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) == 0 {
		return []string{""}
	}
	return tokens
}
