package ingestion

import (
	"crypto/sha256"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kioskops/ledger/internal/domain"
	"github.com/kioskops/ledger/internal/repository"
)

// previewRows is how many rows the upload phase parses for the operator's
// review step. The full file is parsed only at process time.
const previewRows = 5

// ImportResult summarises one committed batch.
type ImportResult struct {
	ImportID        string `json:"import_id"`
	Preset          string `json:"preset,omitempty"`
	RowsAccepted    int    `json:"rows_accepted"`
	RowsSkipped     int    `json:"rows_skipped"`
	Locations       int    `json:"locations"`
	Terminals       int    `json:"terminals"`
	Transactions    int    `json:"transactions"`
	AlreadyImported bool   `json:"already_imported,omitempty"`
}

// Service drives the import workflow: session lifecycle, format detection,
// canonicalization and the atomic merge.
type Service struct {
	store    *repository.Store
	imports  *repository.ImportRepo
	sessions *Sessions
}

func NewService(store *repository.Store, imports *repository.ImportRepo, sessionTTL time.Duration) *Service {
	return &Service{
		store:    store,
		imports:  imports,
		sessions: NewSessions(sessionTTL),
	}
}

func (s *Service) CreateSession(source domain.Source, period string) *Session {
	return s.sessions.Create(source, period)
}

func (s *Service) Session(id string) (*Session, bool) {
	return s.sessions.Get(id)
}

// AttachFile parses the batch header and preview rows, runs preset
// detection and advances the session. Nothing is persisted here.
func (s *Service) AttachFile(id string, data []byte) (*Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("import session %s not found", id)
	}

	headers, preview, err := Parse(data, previewRows)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}

	preset, _ := Detect(headers)
	if err := sess.attachFile(data, headers, preview, preset); err != nil {
		return nil, err
	}

	if preset != nil {
		log.Printf("[ingestion] session %s: detected preset %s (%d preview rows)",
			sess.ID, preset.ID, len(preview))
	} else {
		log.Printf("[ingestion] session %s: no preset matched, manual mapping required",
			sess.ID)
	}
	return sess, nil
}

// SetMapping installs the operator's field→column assignments for a file no
// preset matched.
func (s *Service) SetMapping(id string, m ManualMapping) (*Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("import session %s not found", id)
	}
	if err := sess.setMapping(m); err != nil {
		return nil, err
	}
	return sess, nil
}

// Process parses the full file, canonicalizes it and applies the batch as a
// single atomic unit. A persistence failure rolls back everything and
// returns the session to the review step.
func (s *Service) Process(id string) (*Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("import session %s not found", id)
	}
	if err := sess.beginProcess(); err != nil {
		return nil, err
	}

	result, err := s.process(sess)
	if err != nil {
		sess.failProcess(err)
		return nil, err
	}
	sess.completeProcess(result)
	return sess, nil
}

func (s *Service) process(sess *Session) (*ImportResult, error) {
	// Batch-level idempotency: an identical file is a no-op before parsing.
	hash := fmt.Sprintf("%x", sha256.Sum256(sess.fileData))
	exists, err := s.imports.ExistsByHash(hash)
	if err != nil {
		return nil, fmt.Errorf("check file hash: %w", err)
	}
	if exists {
		log.Printf("[ingestion] session %s: file already imported (hash %.12s)", sess.ID, hash)
		return &ImportResult{AlreadyImported: true, Preset: sess.PresetID}, nil
	}

	_, rows, err := Parse(sess.fileData, 0)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}

	ctx := BatchContext{Source: sess.Source, Period: sess.Period, Now: time.Now().UTC()}

	var mapper MapperFunc
	switch {
	case sess.preset != nil:
		mapper = sess.preset.Map
	case sess.Mapping != nil:
		mapper = ManualMapper(sess.Mapping)
	default:
		return nil, fmt.Errorf("no preset detected and no manual mapping set")
	}

	c := NewCanonicalizer(ctx)
	for _, row := range rows {
		res, err := mapper(row, ctx)
		if err != nil {
			// Malformed rows are skipped, never fatal to the batch.
			c.Skip()
			continue
		}
		c.Add(res)
	}
	batch := c.Finish()

	record := &domain.ImportRecord{
		ID:           uuid.NewString(),
		Source:       sess.Source,
		Period:       sess.Period,
		FileHash:     hash,
		Preset:       sess.PresetID,
		RowsAccepted: batch.Accepted,
		RowsSkipped:  batch.Skipped,
		ImportedAt:   ctx.Now,
	}

	if err := s.store.SyncBatch(record, batch.Locations, batch.Terminals, batch.Transactions); err != nil {
		return nil, fmt.Errorf("sync batch: %w", err)
	}

	log.Printf("[ingestion] session %s: imported %d transactions (%d skipped) across %d locations / %d terminals via %s",
		sess.ID, batch.Accepted, batch.Skipped, len(batch.Locations), len(batch.Terminals),
		mapperName(sess))

	return &ImportResult{
		ImportID:     record.ID,
		Preset:       sess.PresetID,
		RowsAccepted: batch.Accepted,
		RowsSkipped:  batch.Skipped,
		Locations:    len(batch.Locations),
		Terminals:    len(batch.Terminals),
		Transactions: len(batch.Transactions),
	}, nil
}

func mapperName(sess *Session) string {
	if sess.PresetID != "" {
		return sess.PresetID + " preset"
	}
	return "manual mapping"
}
