// Package catalog holds the fixed document template catalog: for every
// template key, its PDF file, expansion rule, field-name map, and signature
// layout. The catalog is loaded once at process start and immutable after.
package catalog

import (
	"fmt"
	"path/filepath"

	"bondpacket/internal/models"
)

// ExpansionRule selects how a requested template key expands into concrete
// document instances.
type ExpansionRule int

const (
	// ExpandPassthrough produces exactly one instance per request.
	ExpandPassthrough ExpansionRule = iota
	// ExpandPerPerson produces one instance for the defendant plus one per
	// indemnitor.
	ExpandPerPerson
	// ExpandPerChargePower produces one instance per (charge, power number)
	// pair, numbered contiguously across the whole case.
	ExpandPerChargePower
)

// Template is one catalog entry. FieldMap maps the literal field name
// embedded in the PDF to a canonical key in the master dictionary.
// SignatureFields are template-relative; filing-only templates have none.
type Template struct {
	Key             string
	DisplayName     string
	File            string
	Expansion       ExpansionRule
	FilingOnly      bool
	FieldMap        map[string]string
	SignatureFields []models.SignatureField
}

// Catalog is the loaded template set, preserving declaration order.
type Catalog struct {
	dir       string
	templates map[string]Template
	order     []string
}

// Load builds the catalog against the given template directory.
func Load(dir string) *Catalog {
	c := &Catalog{
		dir:       dir,
		templates: make(map[string]Template),
	}
	for _, t := range defaultTemplates() {
		c.templates[t.Key] = t
		c.order = append(c.order, t.Key)
	}
	return c
}

// Get returns the template for key.
func (c *Catalog) Get(key string) (Template, error) {
	t, ok := c.templates[key]
	if !ok {
		return Template{}, fmt.Errorf("unknown template key: %s", key)
	}
	return t, nil
}

// Keys returns all template keys in declaration order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Select returns the templates for the requested keys, reordered to the
// catalog's declaration order so packets always assemble the same way.
// An unknown key is an error.
func (c *Catalog) Select(keys []string) ([]Template, error) {
	requested := make(map[string]bool, len(keys))
	for _, k := range keys {
		if _, ok := c.templates[k]; !ok {
			return nil, fmt.Errorf("unknown template key: %s", k)
		}
		requested[k] = true
	}
	var out []Template
	for _, k := range c.order {
		if requested[k] {
			out = append(out, c.templates[k])
		}
	}
	return out, nil
}

// FilePath resolves a template's PDF file under the catalog directory.
func (c *Catalog) FilePath(t Template) string {
	return filepath.Join(c.dir, t.File)
}

// SignatureLayout returns the template-relative signer fields for key, or
// nil when the template has none configured.
func (c *Catalog) SignatureLayout(key string) []models.SignatureField {
	t, ok := c.templates[key]
	if !ok {
		return nil
	}
	return t.SignatureFields
}
