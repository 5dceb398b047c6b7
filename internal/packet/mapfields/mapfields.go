// Package mapfields resolves a case intake payload into the canonical
// master-data dictionary and maps it onto each template's PDF form
// fields.
package mapfields

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"bondpacket/internal/catalog"
	"bondpacket/internal/models"
)

const defaultState = "FL"

// BuildMasterData resolves every canonical key from the raw intake
// fields via its fallback chain, then applies derived values and
// defaults. Keys that resolve to nothing are absent from the result.
func BuildMasterData(input *models.CaseInput, now time.Time) map[string]string {
	master := make(map[string]string)

	for key, chain := range catalog.FallbackChains {
		for _, fieldName := range chain {
			if v, ok := input.Fields[fieldName]; ok && strings.TrimSpace(v) != "" {
				master[key] = strings.TrimSpace(v)
				break
			}
		}
	}

	master[catalog.KeyCaseNum] = input.CaseNumber

	// Defendant name falls back to first + last when no full name came in.
	if master[catalog.KeyDefName] == "" {
		first := master[catalog.KeyDefFirstName]
		last := master[catalog.KeyDefLastName]
		if joined := strings.TrimSpace(first + " " + last); joined != "" {
			master[catalog.KeyDefName] = joined
		}
	}

	// Primary indemnitor backfills the Ind* keys when the payload
	// carried structured indemnitors instead of flat fields.
	if len(input.Indemnitors) > 0 {
		ind := input.Indemnitors[0]
		setIfEmpty(master, catalog.KeyIndName, ind.FullName())
		setIfEmpty(master, catalog.KeyIndPhone, ind.Phone)
		setIfEmpty(master, catalog.KeyIndEmail, ind.Email)
		setIfEmpty(master, catalog.KeyIndSSN, ind.SSN)
		setIfEmpty(master, catalog.KeyIndDOB, ind.DOB)
		setIfEmpty(master, catalog.KeyIndAddress, ind.Address)
		setIfEmpty(master, catalog.KeyIndCity, ind.City)
		setIfEmpty(master, catalog.KeyIndState, ind.State)
		setIfEmpty(master, catalog.KeyIndZip, ind.Zip)
	}

	// Charge summary falls back to the structured charge list.
	if master[catalog.KeyDefCharges] == "" && len(input.Charges) > 0 {
		descs := make([]string, 0, len(input.Charges))
		for _, c := range input.Charges {
			if c.Description != "" {
				descs = append(descs, c.Description)
			}
		}
		master[catalog.KeyDefCharges] = strings.Join(descs, "; ")
	}

	setIfEmpty(master, catalog.KeyDefState, defaultState)
	setIfEmpty(master, catalog.KeyIndState, defaultState)
	setIfEmpty(master, catalog.KeyDate, now.Format("01/02/2006"))

	return master
}

func setIfEmpty(m map[string]string, key, value string) {
	if m[key] == "" && value != "" {
		m[key] = value
	}
}

// InstanceOverrides builds the per-instance master-data overlay for an
// expanded document instance. Passthrough instances get no overlay.
func InstanceOverrides(inst models.DocumentInstance, input *models.CaseInput, master map[string]string) map[string]string {
	overrides := make(map[string]string)

	switch {
	case inst.PersonType == models.PersonTypeDefendant:
		overrides[catalog.KeySignerName] = master[catalog.KeyDefName]
		overrides[catalog.KeySignerDOB] = master[catalog.KeyDefDOB]
		overrides[catalog.KeySignerSSN] = master[catalog.KeyDefSSN]

	case inst.PersonType == models.PersonTypeIndemnitor:
		if inst.PersonIndex >= 0 && inst.PersonIndex < len(input.Indemnitors) {
			ind := input.Indemnitors[inst.PersonIndex]
			overrides[catalog.KeySignerName] = ind.FullName()
			overrides[catalog.KeySignerDOB] = ind.DOB
			overrides[catalog.KeySignerSSN] = ind.SSN
		}

	case inst.ChargeIndex >= 0:
		if inst.ChargeIndex < len(input.Charges) {
			charge := input.Charges[inst.ChargeIndex]
			if charge.CaseNumber != "" {
				overrides[catalog.KeyCaseNum] = charge.CaseNumber
			}
			if charge.BondAmount != "" {
				overrides[catalog.KeyTotalBond] = charge.BondAmount
			}
			if charge.Description != "" {
				overrides[catalog.KeyChargeDesc] = charge.Description
			}
		}
		if inst.PowerNumber != "" {
			overrides[catalog.KeyPowerNum] = inst.PowerNumber
		}
	}

	return overrides
}

// MapTemplate resolves a template's form fields against master data
// plus a per-instance overlay. Fields whose canonical key resolves to
// an empty value are omitted, and the result is ordered by field name
// so repeated runs fill identically.
func MapTemplate(tmpl *catalog.Template, master, overrides map[string]string) ([]models.FieldValue, []string) {
	names := make([]string, 0, len(tmpl.FieldMap))
	for name := range tmpl.FieldMap {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]models.FieldValue, 0, len(names))
	var skipped []string
	for _, name := range names {
		key := tmpl.FieldMap[name]
		v, ok := overrides[key]
		if !ok || v == "" {
			v = master[key]
		}
		if v == "" {
			skipped = append(skipped, fmt.Sprintf("%s (%s)", name, key))
			continue
		}
		values = append(values, models.FieldValue{Name: name, Value: v})
	}
	return values, skipped
}
