// internal/models/case.go
package models

// CaseInput is the raw case payload handed to the packet pipeline by the
// intake layer. Top-level defendant and financial fields arrive loosely keyed
// (multiple historical spellings exist); indemnitors and charges are
// structured lists identified by their position index, which is stable for
// the life of the case.
type CaseInput struct {
	CaseNumber  string            `json:"caseNumber"`
	Fields      map[string]string `json:"fields"`
	Indemnitors []Indemnitor      `json:"indemnitors"`
	Charges     []Charge          `json:"charges"`
}

// Indemnitor is a co-signer who guarantees the defendant's appearance.
type Indemnitor struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	MiddleName string `json:"middleName,omitempty"`
	DOB        string `json:"dob,omitempty"`
	SSN        string `json:"ssn,omitempty"`
	DLNumber   string `json:"dlNumber,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Zip        string `json:"zip,omitempty"`
	Relation   string `json:"relation,omitempty"`
}

// FullName returns "First Last" for display and signer-override fields.
func (i Indemnitor) FullName() string {
	if i.FirstName == "" {
		return i.LastName
	}
	if i.LastName == "" {
		return i.FirstName
	}
	return i.FirstName + " " + i.LastName
}

// Charge is one count the defendant is bonded on. PowerNumbers is free text
// as entered by staff: one or more surety power-of-attorney numbers separated
// by commas, semicolons, whitespace, or newlines.
type Charge struct {
	Description  string `json:"description"`
	Statute      string `json:"statute,omitempty"`
	CaseNumber   string `json:"caseNumber,omitempty"`
	BondAmount   string `json:"bondAmount,omitempty"`
	PowerNumbers string `json:"powerNumbers,omitempty"`
}
