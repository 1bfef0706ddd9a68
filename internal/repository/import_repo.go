package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kioskops/ledger/internal/domain"
)

type ImportRepo struct {
	db *sql.DB
}

func NewImportRepo(db *sql.DB) *ImportRepo {
	return &ImportRepo{db: db}
}

// ExistsByHash checks whether a batch with the given file hash has already
// been imported (idempotency check).
func (r *ImportRepo) ExistsByHash(hash string) (bool, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM imports WHERE file_hash = ?", hash,
	).Scan(&count)
	return count > 0, err
}

func (r *ImportRepo) List() ([]domain.ImportRecord, error) {
	rows, err := r.db.Query(
		`SELECT id, source, period, file_hash, preset, rows_accepted, rows_skipped, imported_at
		FROM imports ORDER BY imported_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var recs []domain.ImportRecord
	for rows.Next() {
		var rec domain.ImportRecord
		var source, importedAt string
		var preset sql.NullString
		if err := rows.Scan(&rec.ID, &source, &rec.Period, &rec.FileHash,
			&preset, &rec.RowsAccepted, &rec.RowsSkipped, &importedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		rec.Source = domain.Source(source)
		rec.Preset = preset.String
		rec.ImportedAt, _ = time.Parse(time.RFC3339, importedAt)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
