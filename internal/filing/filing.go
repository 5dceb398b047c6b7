// Package filing archives signed artifacts and filing-only packets in
// the agency's document store, one folder per defendant per bond date.
package filing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"bondpacket/internal/common/config"
	"bondpacket/internal/common/errors"
	"bondpacket/internal/common/logger"
)

// ObjectWriter is the storage surface the store needs; satisfied by
// *storage.Client via gcsWriter and by in-memory fakes in tests.
type ObjectWriter interface {
	Write(ctx context.Context, objectName string, data io.Reader) error
}

type gcsWriter struct {
	client *storage.Client
	bucket string
}

func (g *gcsWriter) Write(ctx context.Context, objectName string, data io.Reader) error {
	w := g.client.Bucket(g.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

type Store struct {
	writer ObjectWriter
	cfg    config.FilingConfig
	log    logger.Logger
}

// NewStore builds a GCS-backed filing store.
func NewStore(ctx context.Context, cfg config.FilingConfig, log logger.Logger) (*Store, error) {
	client, err := storage.NewClient(ctx, option.WithScopes(storage.ScopeReadWrite))
	if err != nil {
		return nil, fmt.Errorf("filing: storage client: %w", err)
	}
	return &Store{
		writer: &gcsWriter{client: client, bucket: cfg.Bucket},
		cfg:    cfg,
		log:    log,
	}, nil
}

// NewStoreWithWriter builds a store over a custom writer.
func NewStoreWithWriter(writer ObjectWriter, cfg config.FilingConfig, log logger.Logger) *Store {
	return &Store{writer: writer, cfg: cfg, log: log}
}

// Folder derives the per-defendant folder name: last name, first three
// letters of the first name, and the bond date. Re-filing the same
// document for the same defendant and date lands on the same object, so
// repeated webhook deliveries overwrite rather than duplicate.
func Folder(lastName, firstName string, when time.Time) string {
	first := firstName
	if len(first) > 3 {
		first = first[:3]
	}
	return sanitize(lastName) + sanitize(first) + when.Format("20060102")
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// File stores one artifact under the defendant's folder and returns its
// gs:// location.
func (s *Store) File(ctx context.Context, folder, docName string, data []byte) (string, error) {
	objectName := docName + ".pdf"
	if folder != "" {
		objectName = folder + "/" + objectName
	}
	if s.cfg.Prefix != "" {
		objectName = strings.TrimSuffix(s.cfg.Prefix, "/") + "/" + objectName
	}

	if err := s.writer.Write(ctx, objectName, bytes.NewReader(data)); err != nil {
		return "", errors.NewArtifactFilingFailedError(docName, err)
	}

	url := fmt.Sprintf("gs://%s/%s", s.cfg.Bucket, objectName)
	s.log.Info("artifact filed", map[string]interface{}{
		"object": objectName,
		"bytes":  len(data),
	})
	return url, nil
}
