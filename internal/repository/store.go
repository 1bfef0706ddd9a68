package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/kioskops/ledger/internal/domain"
)

// Store is the merge/upsert gateway. SyncBatch applies one canonical batch
// as a single atomic unit; the mutex serializes concurrent imports so
// partial writes can never interleave.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Snapshot is the full persisted entity state.
type Snapshot struct {
	Locations    []domain.Location    `json:"locations"`
	Terminals    []domain.Terminal    `json:"terminals"`
	Transactions []domain.Transaction `json:"transactions"`
}

// SyncBatch upserts locations and terminals by primary key, inserts
// transactions with insert-ignore semantics and records the import audit
// row, all inside one SQLite transaction. On any failure the whole batch is
// rolled back and no partial subset becomes visible.
func (s *Store) SyncBatch(rec *domain.ImportRecord, locations []domain.Location, terminals []domain.Terminal, txns []domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for i := range locations {
		l := &locations[i]
		_, err := tx.Exec(
			`INSERT INTO locations (id, name, city, state, zip, rent_model, base_rent)
			VALUES (?,?,?,?,?,?,?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				city = excluded.city,
				state = excluded.state,
				rent_model = excluded.rent_model`,
			l.ID, l.Name, l.City, l.State, l.Zip, string(l.RentModel), l.BaseRent,
		)
		if err != nil {
			return fmt.Errorf("upsert location %s: %w", l.ID, err)
		}
	}

	for i := range terminals {
		t := &terminals[i]
		_, err := tx.Exec(
			`INSERT INTO terminals (sn, atm_id, location_id, cash_on_hand, last_online, status)
			VALUES (?,?,?,?,?,?)
			ON CONFLICT(sn) DO UPDATE SET
				cash_on_hand = excluded.cash_on_hand,
				last_online = excluded.last_online,
				status = excluded.status`,
			t.SN, t.ATMID, t.LocationID, t.CashOnHand,
			t.LastOnline.UTC().Format(time.RFC3339), string(t.Status),
		)
		if err != nil {
			return fmt.Errorf("upsert terminal %s: %w", t.SN, err)
		}
	}

	if len(txns) > 0 {
		stmt, err := tx.Prepare(
			`INSERT OR IGNORE INTO transactions
			(id, terminal_sn, timestamp, type, amount_cash, amount_crypto,
			 exchange_price, markup_percent, fixed_fee, status, gross_profit,
			 source, period, metadata)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		)
		if err != nil {
			return fmt.Errorf("prepare: %w", err)
		}
		defer stmt.Close()

		for i := range txns {
			t := &txns[i]
			meta, err := json.Marshal(t.Metadata)
			if err != nil {
				return fmt.Errorf("marshal metadata for %s: %w", t.ID, err)
			}
			_, err = stmt.Exec(
				t.ID, t.TerminalSN, t.Timestamp.UTC().Format(time.RFC3339),
				string(t.Type), t.AmountCash, t.AmountCrypto, t.ExchangePrice,
				t.MarkupPercent, t.FixedFee, string(t.Status), t.GrossProfit,
				string(t.Source), t.Period, string(meta),
			)
			if err != nil {
				return fmt.Errorf("insert transaction %s: %w", t.ID, err)
			}
		}
	}

	if rec != nil {
		_, err := tx.Exec(
			`INSERT INTO imports
			(id, source, period, file_hash, preset, rows_accepted, rows_skipped, imported_at)
			VALUES (?,?,?,?,?,?,?,?)`,
			rec.ID, string(rec.Source), rec.Period, rec.FileHash, rec.Preset,
			rec.RowsAccepted, rec.RowsSkipped, rec.ImportedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("insert import record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// FetchAll returns the three full persisted entity sets.
func (s *Store) FetchAll() (*Snapshot, error) {
	locs, err := NewLocationRepo(s.db).List()
	if err != nil {
		return nil, fmt.Errorf("locations: %w", err)
	}
	terms, err := NewTerminalRepo(s.db).List()
	if err != nil {
		return nil, fmt.Errorf("terminals: %w", err)
	}
	txns, _, err := NewTransactionRepo(s.db).List(TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}
	return &Snapshot{Locations: locs, Terminals: terms, Transactions: txns}, nil
}
