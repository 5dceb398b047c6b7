// internal/catalog/templates.go
package catalog

import "bondpacket/internal/models"

// Template keys.
const (
	KeyPaperworkHeader      = "paperwork-header"
	KeyFAQCosigners         = "faq-cosigners"
	KeyFAQDefendants        = "faq-defendants"
	KeyIndemnityAgreement   = "indemnity-agreement"
	KeyDefendantApplication = "defendant-application"
	KeyPromissoryNote       = "promissory-note"
	KeyDisclosureForm       = "disclosure-form"
	KeySuretyTerms          = "surety-terms"
	KeyMasterWaiver         = "master-waiver"
	KeySSARelease           = "ssa-release"
	KeyAppearanceBond       = "appearance-bond"
)

// Default signature box size when a layout omits dimensions.
const (
	defaultFieldWidth  = 200
	defaultFieldHeight = 50
)

func sig(role string, page, x, y, w, h int) models.SignatureField {
	return field(models.FieldTypeSignature, role, page, x, y, w, h)
}

func initials(role string, page, x, y, w, h int) models.SignatureField {
	return field(models.FieldTypeInitials, role, page, x, y, w, h)
}

func field(typ, role string, page, x, y, w, h int) models.SignatureField {
	if w == 0 {
		w = defaultFieldWidth
	}
	if h == 0 {
		h = defaultFieldHeight
	}
	return models.SignatureField{
		Type:     typ,
		Role:     role,
		Page:     page,
		X:        x,
		Y:        y,
		Width:    w,
		Height:   h,
		Required: true,
	}
}

// defaultTemplates is the fixed bond-packet catalog. Coordinates are
// top-left origin points (72 DPI), matching the provider API. Field names
// are the literal form-field names embedded in each PDF.
func defaultTemplates() []Template {
	return []Template{
		{
			Key:         KeyPaperworkHeader,
			DisplayName: "Paperwork Cover Page",
			File:        "paperwork-header.pdf",
			Expansion:   ExpandPassthrough,
			FieldMap: map[string]string{
				"DefendantName": KeyDefName,
				"CaseNumber":    KeyCaseNum,
				"Date":          KeyDate,
			},
			// Cover page only, no signatures.
		},
		{
			Key:         KeyFAQCosigners,
			DisplayName: "FAQ for Co-Signers",
			File:        "faq-cosigners.pdf",
			Expansion:   ExpandPassthrough,
			// Flat PDF: both parties initial every page.
			SignatureFields: []models.SignatureField{
				initials(models.RoleDefendant, 0, 50, 748, 60, 22),
				initials(models.RoleIndemnitor, 0, 490, 748, 60, 22),
				initials(models.RoleDefendant, 1, 50, 748, 60, 22),
				initials(models.RoleIndemnitor, 1, 490, 748, 60, 22),
			},
		},
		{
			Key:         KeyFAQDefendants,
			DisplayName: "FAQ for Defendants",
			File:        "faq-defendants.pdf",
			Expansion:   ExpandPassthrough,
			SignatureFields: []models.SignatureField{
				initials(models.RoleDefendant, 0, 50, 748, 60, 22),
				initials(models.RoleIndemnitor, 0, 490, 748, 60, 22),
				initials(models.RoleDefendant, 1, 50, 748, 60, 22),
				initials(models.RoleIndemnitor, 1, 490, 748, 60, 22),
			},
		},
		{
			Key:         KeyIndemnityAgreement,
			DisplayName: "Indemnity Agreement",
			File:        "indemnity-agreement.pdf",
			Expansion:   ExpandPassthrough,
			FieldMap: map[string]string{
				"IndemnitorName":    KeyIndName,
				"IndemnitorAddress": KeyIndAddress,
				"IndemnitorCity":    KeyIndCity,
				"IndemnitorState":   KeyIndState,
				"IndemnitorZip":     KeyIndZip,
				"IndemnitorPhone":   KeyIndPhone,
				"IndemnitorSSN":     KeyIndSSN,
				"IndemnitorDOB":     KeyIndDOB,
				"DefendantName":     KeyDefName,
				"TotalBond":         KeyTotalBond,
				"Premium":           KeyPremium,
				"CaseNumber":        KeyCaseNum,
				"Date":              KeyDate,
			},
			SignatureFields: []models.SignatureField{
				sig(models.RoleIndemnitor, 0, 315, 935, 249, 27),
			},
		},
		{
			Key:         KeyDefendantApplication,
			DisplayName: "Application for Appearance Bond",
			File:        "defendant-application.pdf",
			Expansion:   ExpandPassthrough,
			FieldMap: map[string]string{
				"DefendantName":    KeyDefName,
				"DefendantDOB":     KeyDefDOB,
				"DefendantSSN":     KeyDefSSN,
				"DefendantAddress": KeyDefAddress,
				"DefendantCity":    KeyDefCity,
				"DefendantState":   KeyDefState,
				"DefendantZip":     KeyDefZip,
				"DefendantPhone":   KeyDefPhone,
				"DefendantDL":      KeyDefDL,
				"BookingNumber":    KeyDefBookingNum,
				"JailFacility":     KeyDefFacility,
				"County":           KeyDefCounty,
				"Charges":          KeyDefCharges,
				"ArrestDate":       KeyDefArrestDate,
				"CourtDate":        KeyDefCourtDate,
				"CaseNumber":       KeyCaseNum,
				"TotalBond":        KeyTotalBond,
			},
			SignatureFields: []models.SignatureField{
				sig(models.RoleDefendant, 1, 39, 752, 247, 29),
			},
		},
		{
			Key:         KeyPromissoryNote,
			DisplayName: "Promissory Note",
			File:        "promissory-note.pdf",
			Expansion:   ExpandPassthrough,
			FieldMap: map[string]string{
				"DefendantName":  KeyDefName,
				"IndemnitorName": KeyIndName,
				"TotalBond":      KeyTotalBond,
				"Premium":        KeyPremium,
				"PremiumPaid":    KeyPremiumPaid,
				"BalanceDue":     KeyBalanceDue,
				"Date":           KeyDate,
			},
			SignatureFields: []models.SignatureField{
				sig(models.RoleDefendant, 0, 33, 888, 235, 32),
				sig(models.RoleIndemnitor, 0, 342, 888, 234, 32),
			},
		},
		{
			Key:         KeyDisclosureForm,
			DisplayName: "Disclosure Form",
			File:        "disclosure-form.pdf",
			Expansion:   ExpandPassthrough,
			FieldMap: map[string]string{
				"DefendantName":  KeyDefName,
				"IndemnitorName": KeyIndName,
				"CaseNumber":     KeyCaseNum,
				"Date":           KeyDate,
			},
			SignatureFields: []models.SignatureField{
				sig(models.RoleIndemnitor, 0, 82, 575, 213, 24),
				sig(models.RoleIndemnitor, 0, 324, 575, 232, 24),
				sig(models.RoleDefendant, 0, 82, 844, 213, 24),
				sig(models.RoleIndemnitor, 0, 324, 844, 232, 24),
				sig(models.RoleIndemnitor, 0, 83, 889, 213, 24),
				sig(models.RoleAgent, 0, 324, 889, 232, 24),
			},
		},
		{
			Key:         KeySuretyTerms,
			DisplayName: "Surety Terms and Conditions",
			File:        "surety-terms.pdf",
			Expansion:   ExpandPassthrough,
			FieldMap: map[string]string{
				"DefendantName":  KeyDefName,
				"IndemnitorName": KeyIndName,
				"Date":           KeyDate,
			},
			SignatureFields: []models.SignatureField{
				sig(models.RoleDefendant, 0, 29, 820, 266, 22),
				sig(models.RoleIndemnitor, 0, 333, 820, 247, 22),
				sig(models.RoleIndemnitor, 0, 29, 897, 266, 22),
				sig(models.RoleIndemnitor, 0, 333, 897, 247, 22),
			},
		},
		{
			Key:         KeyMasterWaiver,
			DisplayName: "Master Waiver",
			File:        "master-waiver.pdf",
			Expansion:   ExpandPassthrough,
			FieldMap: map[string]string{
				"DefendantName":  KeyDefName,
				"IndemnitorName": KeyIndName,
				"CaseNumber":     KeyCaseNum,
				"Date":           KeyDate,
			},
			// 4 pages, signing on the last one.
			SignatureFields: []models.SignatureField{
				sig(models.RoleAgent, 3, 28, 453, 290, 27),
				sig(models.RoleDefendant, 3, 28, 482, 290, 27),
				sig(models.RoleIndemnitor, 3, 28, 510, 290, 27),
				sig(models.RoleIndemnitor, 3, 28, 537, 290, 27),
			},
		},
		{
			Key:         KeySSARelease,
			DisplayName: "SSA Release",
			File:        "ssa-release.pdf",
			Expansion:   ExpandPerPerson,
			FieldMap: map[string]string{
				"SignerName": KeySignerName,
				"SignerDOB":  KeySignerDOB,
				"SignerSSN":  KeySignerSSN,
				"Date":       KeyDate,
			},
			// Signed by the instance's own subject; the layout engine
			// rebinds the role per person.
			SignatureFields: []models.SignatureField{
				sig(models.RoleDefendant, 0, 72, 690, 240, 28),
			},
		},
		{
			Key:         KeyAppearanceBond,
			DisplayName: "Appearance Bond",
			File:        "appearance-bond.pdf",
			Expansion:   ExpandPerChargePower,
			FilingOnly:  true,
			FieldMap: map[string]string{
				"DefendantName": KeyDefName,
				"CaseNumber":    KeyCaseNum,
				"PowerNumber":   KeyPowerNum,
				"Charge":        KeyChargeDesc,
				"BondAmount":    KeyTotalBond,
				"County":        KeyDefCounty,
				"Date":          KeyDate,
			},
			// Filing-only: executed on paper, never routed for e-signature.
		},
	}
}
