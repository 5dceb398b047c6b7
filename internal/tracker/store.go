// Package tracker persists signing progress. One row exists per
// dispatched document/signer; the webhook reconciler and the expiry
// sweep are the only writers after dispatch.
package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bondpacket/internal/common/database"
	"bondpacket/internal/common/errors"
	"bondpacket/internal/common/logger"
	"bondpacket/internal/models"
)

const trackerColumns = `id, case_number, document_id, document_key, signer_index, signer_role, state, doc_name, file_url, created_at, updated_at`

// Schema is the signing_trackers DDL, applied by the migration tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS signing_trackers (
    id           BIGSERIAL PRIMARY KEY,
    case_number  TEXT        NOT NULL,
    document_id  TEXT        NOT NULL,
    document_key TEXT        NOT NULL,
    signer_index INT         NOT NULL DEFAULT -1,
    signer_role  TEXT        NOT NULL DEFAULT '',
    state        TEXT        NOT NULL DEFAULT 'PENDING',
    doc_name     TEXT        NOT NULL,
    file_url     TEXT        NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (document_id, signer_index)
);
CREATE INDEX IF NOT EXISTS idx_signing_trackers_case ON signing_trackers (case_number);
CREATE INDEX IF NOT EXISTS idx_signing_trackers_state ON signing_trackers (state);
`

type Store struct {
	db  *database.PostgresClient
	log logger.Logger
}

func NewStore(db *database.PostgresClient, log logger.Logger) *Store {
	return &Store{db: db, log: log}
}

// Create inserts a PENDING tracker row at dispatch time.
func (s *Store) Create(ctx context.Context, t *models.SigningTracker) error {
	if t.State == "" {
		t.State = models.StatePending
	}
	query := `
		INSERT INTO signing_trackers
			(case_number, document_id, document_key, signer_index, signer_role, state, doc_name, file_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	err := s.db.QueryRow(ctx, query,
		t.CaseNumber, t.DocumentID, t.DocumentKey, t.SignerIndex,
		t.SignerRole, t.State, t.DocName, t.FileURL,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return errors.NewQueryExecutionFailedError("insert signing_tracker", err)
	}
	return nil
}

// UpdateState moves a tracker to next, guarded by the state machine.
// Re-applying the current state is a no-op. An illegal transition,
// including any transition out of a terminal state, is rejected.
func (s *Store) UpdateState(ctx context.Context, id int64, next models.TrackerState) error {
	return s.update(ctx, id, next, "")
}

// UpdateStateWithFile moves a tracker to next and records the filed
// artifact location.
func (s *Store) UpdateStateWithFile(ctx context.Context, id int64, next models.TrackerState, fileURL string) error {
	return s.update(ctx, id, next, fileURL)
}

func (s *Store) update(ctx context.Context, id int64, next models.TrackerState, fileURL string) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.State == next && fileURL == "" {
		return nil
	}
	if !current.State.CanTransition(next) {
		return errors.NewTrackerUpdateFailedError(current.DocumentID,
			fmt.Errorf("illegal transition %s -> %s", current.State, next))
	}

	query := `UPDATE signing_trackers SET state = $1, updated_at = now() WHERE id = $2`
	args := []interface{}{next, id}
	if fileURL != "" {
		query = `UPDATE signing_trackers SET state = $1, file_url = $2, updated_at = now() WHERE id = $3`
		args = []interface{}{next, fileURL, id}
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return errors.NewTrackerUpdateFailedError(current.DocumentID, err)
	}
	s.log.Info("tracker state updated", map[string]interface{}{
		"trackerId": id,
		"from":      string(current.State),
		"to":        string(next),
	})
	return nil
}

// Get loads one tracker by id.
func (s *Store) Get(ctx context.Context, id int64) (*models.SigningTracker, error) {
	row := s.db.QueryRow(ctx, `SELECT `+trackerColumns+` FROM signing_trackers WHERE id = $1`, id)
	return scanTracker(row)
}

// FindByDocument resolves the tracker for a provider document and
// signer slot. Legacy rows carry NoSignerIndex.
func (s *Store) FindByDocument(ctx context.Context, documentID string, signerIndex int) (*models.SigningTracker, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+trackerColumns+` FROM signing_trackers WHERE document_id = $1 AND signer_index = $2`,
		documentID, signerIndex)
	return scanTracker(row)
}

// ListByDocument returns every tracker row for a provider document.
func (s *Store) ListByDocument(ctx context.Context, documentID string) ([]*models.SigningTracker, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+trackerColumns+` FROM signing_trackers WHERE document_id = $1 ORDER BY signer_index`,
		documentID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list signing_trackers by document", err)
	}
	defer rows.Close()
	return scanTrackers(rows)
}

// ListByCase returns every tracker for a case, oldest first.
func (s *Store) ListByCase(ctx context.Context, caseNumber string) ([]*models.SigningTracker, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+trackerColumns+` FROM signing_trackers WHERE case_number = $1 ORDER BY id`,
		caseNumber)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list signing_trackers by case", err)
	}
	defer rows.Close()
	return scanTrackers(rows)
}

// ListByState returns every tracker currently in the given state.
func (s *Store) ListByState(ctx context.Context, state models.TrackerState) ([]*models.SigningTracker, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+trackerColumns+` FROM signing_trackers WHERE state = $1 ORDER BY id`,
		state)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list signing_trackers by state", err)
	}
	defer rows.Close()
	return scanTrackers(rows)
}

// ExpireStale marks every non-terminal, pre-signature tracker older
// than cutoff as EXPIRED and returns the number of rows moved.
func (s *Store) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(ctx, `
		UPDATE signing_trackers
		SET state = $1, updated_at = now()
		WHERE state IN ($2, $3, $4) AND updated_at < $5`,
		models.StateExpired,
		models.StatePending, models.StateSent, models.StatePartiallySigned,
		cutoff)
	if err != nil {
		return 0, errors.NewQueryExecutionFailedError("expire stale signing_trackers", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("expired stale trackers", map[string]interface{}{"count": n})
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTracker(row rowScanner) (*models.SigningTracker, error) {
	var t models.SigningTracker
	err := row.Scan(&t.ID, &t.CaseNumber, &t.DocumentID, &t.DocumentKey,
		&t.SignerIndex, &t.SignerRole, &t.State, &t.DocName, &t.FileURL,
		&t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("scan signing_tracker", err)
	}
	return &t, nil
}

func scanTrackers(rows *sql.Rows) ([]*models.SigningTracker, error) {
	var out []*models.SigningTracker
	for rows.Next() {
		t, err := scanTracker(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
