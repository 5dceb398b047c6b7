// Package packet orchestrates one generation run: master-data mapping,
// template expansion, concurrent form fill, packet merge, signature
// layout, and the signer roster.
package packet

import (
	"context"
	"os"
	"time"

	"bondpacket/internal/catalog"
	"bondpacket/internal/common/config"
	"bondpacket/internal/common/errors"
	"bondpacket/internal/common/logger"
	"bondpacket/internal/common/observability"
	"bondpacket/internal/models"
	"bondpacket/internal/packet/expand"
	"bondpacket/internal/packet/fill"
	"bondpacket/internal/packet/layout"
	"bondpacket/internal/packet/mapfields"
	"bondpacket/internal/packet/merge"
	"bondpacket/internal/packet/sequence"
)

// Run is one completed generation: both merged packets, the absolute
// signature layout for the signable one, and the ordered signer roster.
// WorkDir holds every intermediate file; the caller removes it after
// dispatch and archival.
type Run struct {
	CaseNumber string
	Master     map[string]string
	Instances  []models.DocumentInstance
	Filled     []models.FilledInstance
	Signable   *models.Packet
	FilingOnly *models.Packet
	Fields     []models.SignatureField
	Signers    []models.Signer
	WorkDir    string
}

// Cleanup removes the run's working directory.
func (r *Run) Cleanup() {
	if r.WorkDir != "" {
		os.RemoveAll(r.WorkDir)
	}
}

type Generator struct {
	catalog *catalog.Catalog
	filler  *fill.Filler
	merger  *merge.Merger
	agency  config.AgencyConfig
	obs     *observability.Observability
	log     logger.Logger
	now     func() time.Time
}

func NewGenerator(cat *catalog.Catalog, filler *fill.Filler, merger *merge.Merger,
	agency config.AgencyConfig, obs *observability.Observability, log logger.Logger) *Generator {
	return &Generator{
		catalog: cat,
		filler:  filler,
		merger:  merger,
		agency:  agency,
		obs:     obs,
		log:     log,
		now:     time.Now,
	}
}

// Generate runs the full pipeline for one case. templateKeys selects a
// subset of the catalog; empty means the whole catalog. The run fails
// only on structural problems (bad case number, unknown template key,
// merge failure); a per-instance fill problem degrades that instance to
// its unfilled original instead.
func (g *Generator) Generate(ctx context.Context, input *models.CaseInput, templateKeys []string) (*Run, error) {
	started := g.now()
	run, err := g.generate(ctx, input, templateKeys)
	if g.obs != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		g.obs.RecordRun(ctx, status)
		g.obs.RecordRunDuration(ctx, time.Since(started), status)
	}
	return run, err
}

func (g *Generator) generate(ctx context.Context, input *models.CaseInput, templateKeys []string) (*Run, error) {
	if input == nil || input.CaseNumber == "" {
		return nil, errors.NewMissingCaseFieldError("caseNumber")
	}

	if len(templateKeys) == 0 {
		templateKeys = g.catalog.Keys()
	}
	templates, err := g.catalog.Select(templateKeys)
	if err != nil {
		return nil, errors.NewCaseValidationFailedError(err.Error())
	}

	master := mapfields.BuildMasterData(input, g.now())
	instances := expand.Expand(templates, input)

	workDir, err := os.MkdirTemp("", "packet-"+input.CaseNumber+"-")
	if err != nil {
		return nil, err
	}

	run := &Run{
		CaseNumber: input.CaseNumber,
		Master:     master,
		Instances:  instances,
		WorkDir:    workDir,
	}

	run.Filled, err = g.filler.FillAll(workDir, instances, input, master)
	if err != nil {
		run.Cleanup()
		return nil, err
	}
	if g.obs != nil {
		for _, fi := range run.Filled {
			g.obs.RecordDocumentFilled(ctx, fi.Instance.TemplateKey, fi.Fallback)
		}
	}

	run.Signable, run.FilingOnly, err = g.merger.Build(workDir, run.Filled)
	if err != nil {
		run.Cleanup()
		return nil, err
	}

	run.Fields = layout.Build(g.catalog, run.Signable, len(input.Indemnitors))
	run.Signers = sequence.Build(input, master, sequence.Agency{
		Name:  g.agency.Name,
		Email: g.agency.Email,
		Phone: g.agency.Phone,
	})

	g.log.Info("packet run completed", map[string]interface{}{
		"caseNumber": input.CaseNumber,
		"instances":  len(instances),
		"fields":     len(run.Fields),
		"signers":    len(run.Signers),
	})
	return run, nil
}
