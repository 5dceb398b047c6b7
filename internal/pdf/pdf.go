// Package pdf wraps pdfcpu for the three operations the packet
// pipeline needs: filling AcroForm fields, counting pages, and merging
// documents.
package pdf

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"bondpacket/internal/common/logger"
	"bondpacket/internal/models"
)

// Engine performs PDF operations with a relaxed-validation
// configuration; the template stock includes scans from older tooling
// that strict validation rejects.
type Engine struct {
	conf *model.Configuration
	log  logger.Logger
}

func New(log logger.Logger) *Engine {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Engine{conf: conf, log: log}
}

// PageCount returns the number of pages in the PDF at path.
func (e *Engine) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("pdf: page count for %s: %w", filepath.Base(path), err)
	}
	return n, nil
}

// Merge concatenates the inputs, in order, into outPath.
func (e *Engine) Merge(inputs []string, outPath string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("pdf: merge called with no inputs")
	}
	if err := api.MergeCreateFile(inputs, outPath, false, e.conf); err != nil {
		return fmt.Errorf("pdf: merge %d files: %w", len(inputs), err)
	}
	return nil
}

// formData is pdfcpu's form-fill JSON shape.
type formData struct {
	Forms []form `json:"forms"`
}

type form struct {
	TextField []textField `json:"textfield"`
}

type textField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Fill writes the given field values into the template's form and
// saves the result at outPath. It first attempts a single batch fill;
// if the batch is rejected it retries field by field so one bad value
// cannot sink the whole document. Returns the number of fields
// written and the names of fields that could not be written.
func (e *Engine) Fill(templatePath, outPath string, fields []models.FieldValue) (int, []string, error) {
	if len(fields) == 0 {
		if err := copyFile(templatePath, outPath); err != nil {
			return 0, nil, err
		}
		return 0, nil, nil
	}

	if err := e.fillBatch(templatePath, outPath, fields); err == nil {
		return len(fields), nil, nil
	} else {
		e.log.Warn("batch form fill failed, retrying per field", map[string]interface{}{
			"template": filepath.Base(templatePath),
			"error":    err.Error(),
		})
	}

	return e.fillPerField(templatePath, outPath, fields)
}

func (e *Engine) fillBatch(templatePath, outPath string, fields []models.FieldValue) error {
	jsonPath, err := writeFormJSON(fields)
	if err != nil {
		return err
	}
	defer os.Remove(jsonPath)
	return api.FillFormFile(templatePath, jsonPath, outPath, e.conf)
}

// fillPerField fills one field at a time, chaining intermediate files,
// so a single unfillable field is skipped instead of failing the run.
func (e *Engine) fillPerField(templatePath, outPath string, fields []models.FieldValue) (int, []string, error) {
	tmpDir, err := os.MkdirTemp("", "pdffill")
	if err != nil {
		return 0, nil, fmt.Errorf("pdf: temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	current := templatePath
	filled := 0
	var skipped []string

	for i, f := range fields {
		next := filepath.Join(tmpDir, fmt.Sprintf("step-%d.pdf", i))
		if err := e.fillBatch(current, next, []models.FieldValue{f}); err != nil {
			skipped = append(skipped, f.Name)
			continue
		}
		current = next
		filled++
	}

	if err := copyFile(current, outPath); err != nil {
		return filled, skipped, err
	}
	return filled, skipped, nil
}

func writeFormJSON(fields []models.FieldValue) (string, error) {
	tf := make([]textField, 0, len(fields))
	for _, f := range fields {
		tf = append(tf, textField{Name: f.Name, Value: f.Value})
	}
	data, err := json.Marshal(formData{Forms: []form{{TextField: tf}}})
	if err != nil {
		return "", fmt.Errorf("pdf: encode form data: %w", err)
	}

	tmp, err := os.CreateTemp("", "formdata-*.json")
	if err != nil {
		return "", fmt.Errorf("pdf: temp form file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("pdf: write form data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("pdf: open %s: %w", filepath.Base(src), err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("pdf: create %s: %w", filepath.Base(dst), err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("pdf: copy to %s: %w", filepath.Base(dst), err)
	}
	return nil
}
