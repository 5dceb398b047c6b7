// Package fill renders each expanded document instance into a filled
// PDF inside the run's working directory.
package fill

import (
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"bondpacket/internal/catalog"
	"bondpacket/internal/common/errors"
	"bondpacket/internal/common/logger"
	"bondpacket/internal/models"
	"bondpacket/internal/packet/mapfields"
)

// Engine is the PDF form-fill backend.
type Engine interface {
	Fill(templatePath, outPath string, fields []models.FieldValue) (filled int, skipped []string, err error)
}

// Concurrent instance fills per run. Fills are CPU- and IO-light per
// document; a small bound keeps memory flat on large cases.
const fillConcurrency = 4

type Filler struct {
	catalog *catalog.Catalog
	engine  Engine
	log     logger.Logger
}

func New(cat *catalog.Catalog, engine Engine, log logger.Logger) *Filler {
	return &Filler{catalog: cat, engine: engine, log: log}
}

// FillAll fills every instance concurrently and returns results in
// instance order. A fill failure on one instance does not fail the
// run: the unfilled template is substituted and the instance is marked
// as a fallback. An unknown template key is fatal, since it means the
// expansion and the catalog disagree.
func (f *Filler) FillAll(workDir string, instances []models.DocumentInstance, input *models.CaseInput, master map[string]string) ([]models.FilledInstance, error) {
	results := make([]models.FilledInstance, len(instances))

	var g errgroup.Group
	g.SetLimit(fillConcurrency)

	for i, inst := range instances {
		g.Go(func() error {
			filled, err := f.fillOne(workDir, inst, input, master)
			if err != nil {
				return err
			}
			results[i] = *filled
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (f *Filler) fillOne(workDir string, inst models.DocumentInstance, input *models.CaseInput, master map[string]string) (*models.FilledInstance, error) {
	tmpl, err := f.catalog.Get(inst.TemplateKey)
	if err != nil {
		return nil, errors.NewTemplateNotFoundError(inst.TemplateKey)
	}

	overrides := mapfields.InstanceOverrides(inst, input, master)
	values, mapSkipped := mapfields.MapTemplate(&tmpl, master, overrides)

	templatePath := f.catalog.FilePath(tmpl)
	outPath := filepath.Join(workDir, inst.Key+".pdf")

	filled, fillSkipped, err := f.engine.Fill(templatePath, outPath, values)
	if err != nil {
		f.log.Warn("instance fill failed, substituting unfilled template", map[string]interface{}{
			"instance": inst.Key,
			"template": inst.TemplateKey,
			"error":    err.Error(),
		})
		// Copy the original so the packet still carries the page.
		if _, _, copyErr := f.engine.Fill(templatePath, outPath, nil); copyErr != nil {
			return nil, errors.NewInstanceFillFailedError(inst.Key, copyErr)
		}
		return &models.FilledInstance{
			Instance: inst,
			Path:     outPath,
			Skipped:  mapSkipped,
			Fallback: true,
		}, nil
	}

	return &models.FilledInstance{
		Instance: inst,
		Path:     outPath,
		Filled:   filled,
		Skipped:  append(mapSkipped, fillSkipped...),
	}, nil
}
