// internal/catalog/keys.go
package catalog

// Canonical master-data keys. Every template FieldMap value must be one
// of these; the mapping layer resolves each key from the intake payload
// through its fallback chain.
const (
	KeyDefName       = "DefName"
	KeyDefFirstName  = "DefFirstName"
	KeyDefLastName   = "DefLastName"
	KeyDefDOB        = "DefDOB"
	KeyDefSSN        = "DefSSN"
	KeyDefAddress    = "DefAddress"
	KeyDefCity       = "DefCity"
	KeyDefState      = "DefState"
	KeyDefZip        = "DefZip"
	KeyDefPhone      = "DefPhone"
	KeyDefEmail      = "DefEmail"
	KeyDefDL         = "DefDL"
	KeyDefBookingNum = "DefBookingNum"
	KeyDefFacility   = "DefFacility"
	KeyDefCounty     = "DefCounty"
	KeyDefCharges    = "DefCharges"
	KeyDefArrestDate = "DefArrestDate"
	KeyDefCourtDate  = "DefCourtDate"
	KeyDefEmployer   = "DefEmployer"

	KeyIndName    = "IndName"
	KeyIndAddress = "IndAddress"
	KeyIndCity    = "IndCity"
	KeyIndState   = "IndState"
	KeyIndZip     = "IndZip"
	KeyIndPhone   = "IndPhone"
	KeyIndEmail   = "IndEmail"
	KeyIndSSN     = "IndSSN"
	KeyIndDOB     = "IndDOB"

	KeySignerName = "SignerName"
	KeySignerDOB  = "SignerDOB"
	KeySignerSSN  = "SignerSSN"

	KeyTotalBond   = "TotalBond"
	KeyPremium     = "Premium"
	KeyPremiumPaid = "PremiumPaid"
	KeyBalanceDue  = "BalanceDue"
	KeyCaseNum     = "CaseNum"
	KeyPowerNum    = "PowerNum"
	KeyChargeDesc  = "ChargeDesc"
	KeyDate        = "Date"
)

// FallbackChains maps each canonical key to the payload field names that
// can supply it, tried in order. Intake sources disagree on naming, so
// most keys accept several spellings.
var FallbackChains = map[string][]string{
	KeyDefName:       {"defendantName", "defendant_name", "fullName", "name"},
	KeyDefFirstName:  {"defendantFirstName", "firstName", "first_name"},
	KeyDefLastName:   {"defendantLastName", "lastName", "last_name"},
	KeyDefDOB:        {"defendantDOB", "dob", "dateOfBirth", "date_of_birth"},
	KeyDefSSN:        {"defendantSSN", "ssn", "social"},
	KeyDefAddress:    {"defendantAddress", "address", "streetAddress", "street"},
	KeyDefCity:       {"defendantCity", "city"},
	KeyDefState:      {"defendantState", "state"},
	KeyDefZip:        {"defendantZip", "zip", "zipCode", "postalCode"},
	KeyDefPhone:      {"defendantPhone", "phone", "phoneNumber", "cell"},
	KeyDefEmail:      {"defendantEmail", "email"},
	KeyDefDL:         {"defendantDL", "driversLicense", "dlNumber"},
	KeyDefBookingNum: {"bookingNumber", "booking", "bookingNum"},
	KeyDefFacility:   {"jailFacility", "facility", "jail"},
	KeyDefCounty:     {"county", "arrestCounty"},
	KeyDefCharges:    {"charges", "chargeSummary"},
	KeyDefArrestDate: {"arrestDate", "dateOfArrest"},
	KeyDefCourtDate:  {"courtDate", "nextCourtDate"},
	KeyDefEmployer:   {"employer", "employerName"},

	KeyIndName:    {"indemnitorName", "cosignerName", "cosigner"},
	KeyIndAddress: {"indemnitorAddress", "cosignerAddress"},
	KeyIndCity:    {"indemnitorCity", "cosignerCity"},
	KeyIndState:   {"indemnitorState", "cosignerState"},
	KeyIndZip:     {"indemnitorZip", "cosignerZip"},
	KeyIndPhone:   {"indemnitorPhone", "cosignerPhone"},
	KeyIndEmail:   {"indemnitorEmail", "cosignerEmail"},
	KeyIndSSN:     {"indemnitorSSN", "cosignerSSN"},
	KeyIndDOB:     {"indemnitorDOB", "cosignerDOB"},

	KeyTotalBond:   {"totalBond", "bondAmount", "totalBondAmount"},
	KeyPremium:     {"premium", "premiumAmount", "totalPremium"},
	KeyPremiumPaid: {"premiumPaid", "amountPaid", "paidToday"},
	KeyBalanceDue:  {"balanceDue", "balance", "amountOwed"},
	KeyCaseNum:     {"caseNumber", "case_number", "caseNum"},
	KeyPowerNum:    {"powerNumber", "powerNum"},
	KeyDate:        {"date", "executionDate"},
}
