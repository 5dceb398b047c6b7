// Package docname encodes and decodes provider document names.
//
// A document uploaded for signature is named so that a later webhook
// event, which carries only the document's name, can be resolved back
// to the case, document key, and signer slot it belongs to:
//
//	<prefix>_<docKey>_signer<N>_<caseNumber>
//
// A legacy form without the signer segment is still accepted on decode:
//
//	<prefix>_<docKey>_<caseNumber>
package docname

import (
	"fmt"
	"regexp"
	"strconv"

	"bondpacket/internal/models"
)

// Decoded is the result of parsing a provider document name.
type Decoded struct {
	Prefix      string
	DocKey      string
	SignerIndex int // models.NoSignerIndex for legacy names
	CaseNumber  string
}

var (
	signerNameRe = regexp.MustCompile(`^([A-Za-z0-9]+)_(.+)_signer(\d+)_([A-Za-z0-9-]+)$`)
	legacyNameRe = regexp.MustCompile(`^([A-Za-z0-9]+)_(.+)_([A-Za-z0-9-]+)$`)
)

// Encode builds a legacy-form document name without a signer segment.
func Encode(prefix, docKey, caseNumber string) string {
	return fmt.Sprintf("%s_%s_%s", prefix, docKey, caseNumber)
}

// EncodeSigner builds a document name carrying a 1-based signer slot.
func EncodeSigner(prefix, docKey string, signerIndex int, caseNumber string) string {
	return fmt.Sprintf("%s_%s_signer%d_%s", prefix, docKey, signerIndex, caseNumber)
}

// Decode parses a document name in either form. The signer-tagged form
// is tried first; names matching neither form return an error.
func Decode(name string) (*Decoded, error) {
	if m := signerNameRe.FindStringSubmatch(name); m != nil {
		idx, err := strconv.Atoi(m[3])
		if err != nil {
			return nil, fmt.Errorf("docname: bad signer index in %q: %w", name, err)
		}
		return &Decoded{
			Prefix:      m[1],
			DocKey:      m[2],
			SignerIndex: idx,
			CaseNumber:  m[4],
		}, nil
	}
	if m := legacyNameRe.FindStringSubmatch(name); m != nil {
		return &Decoded{
			Prefix:      m[1],
			DocKey:      m[2],
			SignerIndex: models.NoSignerIndex,
			CaseNumber:  m[3],
		}, nil
	}
	return nil, fmt.Errorf("docname: %q does not match any known naming convention", name)
}
