// Package merge assembles filled document instances into the two run
// outputs: the signable packet routed for e-signature and the
// filing-only packet kept for the court file.
package merge

import (
	"path/filepath"

	"bondpacket/internal/catalog"
	"bondpacket/internal/common/errors"
	"bondpacket/internal/models"
)

// Engine is the PDF merge backend.
type Engine interface {
	PageCount(path string) (int, error)
	Merge(inputs []string, outPath string) error
}

type Merger struct {
	catalog *catalog.Catalog
	engine  Engine
}

func New(cat *catalog.Catalog, engine Engine) *Merger {
	return &Merger{catalog: cat, engine: engine}
}

// Build splits the filled instances by filing disposition and merges
// each group in instance order. Either packet may be nil when no
// instance belongs to it. Page offsets are recorded per item so the
// layout engine can rebase template-relative signature fields.
func (m *Merger) Build(workDir string, filled []models.FilledInstance) (signable, filing *models.Packet, err error) {
	var signableGroup, filingGroup []models.FilledInstance
	for _, fi := range filled {
		tmpl, err := m.catalog.Get(fi.Instance.TemplateKey)
		if err != nil {
			return nil, nil, errors.NewTemplateNotFoundError(fi.Instance.TemplateKey)
		}
		if tmpl.FilingOnly {
			filingGroup = append(filingGroup, fi)
		} else {
			signableGroup = append(signableGroup, fi)
		}
	}

	signable, err = m.mergeGroup(signableGroup, filepath.Join(workDir, "signable-packet.pdf"))
	if err != nil {
		return nil, nil, errors.NewMergeFailedError("signable", err)
	}
	filing, err = m.mergeGroup(filingGroup, filepath.Join(workDir, "filing-packet.pdf"))
	if err != nil {
		return nil, nil, errors.NewMergeFailedError("filing", err)
	}
	return signable, filing, nil
}

func (m *Merger) mergeGroup(group []models.FilledInstance, outPath string) (*models.Packet, error) {
	if len(group) == 0 {
		return nil, nil
	}

	items := make([]models.PacketItem, 0, len(group))
	inputs := make([]string, 0, len(group))
	offset := 0
	for _, fi := range group {
		pages, err := m.engine.PageCount(fi.Path)
		if err != nil {
			return nil, err
		}
		items = append(items, models.PacketItem{
			Instance:  fi.Instance,
			StartPage: offset,
			PageCount: pages,
		})
		inputs = append(inputs, fi.Path)
		offset += pages
	}

	if err := m.engine.Merge(inputs, outPath); err != nil {
		return nil, err
	}
	return &models.Packet{Path: outPath, Pages: offset, Items: items}, nil
}
