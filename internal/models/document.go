// internal/models/document.go
package models

// Person types for per-person duplicated instances.
const (
	PersonTypeDefendant  = "defendant"
	PersonTypeIndemnitor = "indemnitor"
)

// DefendantPersonIndex marks the defendant copy of a per-person instance.
const DefendantPersonIndex = -1

// DocumentInstance is one materialized copy of a catalog template for a
// concrete subject. Passthrough templates produce exactly one instance with
// the template's own key; duplicated templates carry either a person index
// (per-person) or a charge/power pair and a case-wide bond index
// (per-charge-power). Instances are immutable after expansion and live only
// for the duration of one packet run.
type DocumentInstance struct {
	Key         string `json:"key"`
	TemplateKey string `json:"templateKey"`
	DisplayName string `json:"displayName"`

	PersonType  string `json:"personType,omitempty"`
	PersonIndex int    `json:"personIndex,omitempty"`

	ChargeIndex int    `json:"chargeIndex,omitempty"`
	PowerIndex  int    `json:"powerIndex,omitempty"`
	PowerNumber string `json:"powerNumber,omitempty"` // empty when the charge has no usable power number
	BondIndex   int    `json:"bondIndex,omitempty"`   // 1-based, contiguous across the whole case
}

// FieldValue is one mapped template field ready to be written into a form.
type FieldValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FilledInstance pairs an expanded instance with its filled (or, after a
// fill failure, original) document file and fill diagnostics.
type FilledInstance struct {
	Instance DocumentInstance
	Path     string
	Filled   int
	Skipped  []string
	Fallback bool // true when the unfilled template was substituted
}

// PacketItem records where one instance landed inside a merged packet.
// StartPage is 0-based: the first instance always starts at page 0.
type PacketItem struct {
	Instance  DocumentInstance
	StartPage int
	PageCount int
}

// Packet is one merged output of a generation run, either the signable
// packet or the filing-only packet. It is not persisted; the durable record
// is the provider document id plus the filing location.
type Packet struct {
	Path  string
	Pages int
	Items []PacketItem
}

// Signer roles, in signing order.
const (
	RoleIndemnitor = "Indemnitor"
	RoleDefendant  = "Defendant"
	RoleAgent      = "Agent"
)

// Signature field types.
const (
	FieldTypeSignature = "signature"
	FieldTypeInitials  = "initials"
)

// SignatureField is a signature or initials box. In the catalog, Page is
// relative to the owning template; the layout engine rebases it onto the
// merged packet's absolute page numbering.
type SignatureField struct {
	Type     string `json:"type"`
	Role     string `json:"role"`
	Page     int    `json:"page_number"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Required bool   `json:"required"`
}

// Signer is one invited signing party. Order is 1-based, unique, and
// contiguous within one dispatch: indemnitors first, then the defendant,
// then the agency.
type Signer struct {
	Role      string `json:"role"`
	Order     int    `json:"order"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}
