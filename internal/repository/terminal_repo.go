package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kioskops/ledger/internal/domain"
)

type TerminalRepo struct {
	db *sql.DB
}

func NewTerminalRepo(db *sql.DB) *TerminalRepo {
	return &TerminalRepo{db: db}
}

func (r *TerminalRepo) List() ([]domain.Terminal, error) {
	rows, err := r.db.Query(
		`SELECT sn, atm_id, location_id, cash_on_hand, last_online, status
		FROM terminals ORDER BY sn`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var terms []domain.Terminal
	for rows.Next() {
		t, err := scanTerminal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		terms = append(terms, *t)
	}
	return terms, rows.Err()
}

func (r *TerminalRepo) GetBySN(sn string) (*domain.Terminal, error) {
	rows, err := r.db.Query(
		`SELECT sn, atm_id, location_id, cash_on_hand, last_online, status
		FROM terminals WHERE sn = ?`, sn,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}
	return scanTerminal(rows)
}

// StateSummary aggregates fleet presence per state/region code for the
// geographic views.
type StateSummary struct {
	State           string  `json:"state"`
	TotalVolume     float64 `json:"total_volume"`
	ActiveTerminals int     `json:"active_terminals"`
	CashOnHand      float64 `json:"cash_on_hand"`
}

// SummarizeByState joins terminals to their locations and completed
// transactions. period narrows the volume figure only; fleet counts are
// current state.
func (r *TerminalRepo) SummarizeByState(period string) ([]StateSummary, error) {
	rows, err := r.db.Query(
		`SELECT l.state,
			COALESCE(SUM(CASE WHEN tm.status = 'ONLINE' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(tm.cash_on_hand), 0)
		FROM terminals tm
		JOIN locations l ON l.id = tm.location_id
		GROUP BY l.state ORDER BY l.state`,
	)
	if err != nil {
		return nil, fmt.Errorf("query fleet: %w", err)
	}
	defer rows.Close()

	var summaries []StateSummary
	index := make(map[string]int)
	for rows.Next() {
		var s StateSummary
		if err := rows.Scan(&s.State, &s.ActiveTerminals, &s.CashOnHand); err != nil {
			return nil, fmt.Errorf("scan fleet: %w", err)
		}
		index[s.State] = len(summaries)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	volQuery := `SELECT l.state, COALESCE(SUM(t.amount_cash), 0)
		FROM transactions t
		JOIN terminals tm ON tm.sn = t.terminal_sn
		JOIN locations l ON l.id = tm.location_id
		WHERE t.status = 'COMPLETED'`
	args := []any{}
	if period != "" {
		volQuery += " AND t.period = ?"
		args = append(args, period)
	}
	volQuery += " GROUP BY l.state"

	volRows, err := r.db.Query(volQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("query volume: %w", err)
	}
	defer volRows.Close()

	for volRows.Next() {
		var state string
		var volume float64
		if err := volRows.Scan(&state, &volume); err != nil {
			return nil, fmt.Errorf("scan volume: %w", err)
		}
		if i, ok := index[state]; ok {
			summaries[i].TotalVolume = volume
		}
	}
	return summaries, volRows.Err()
}

func scanTerminal(rows *sql.Rows) (*domain.Terminal, error) {
	var t domain.Terminal
	var status, lastOnline string
	if err := rows.Scan(&t.SN, &t.ATMID, &t.LocationID, &t.CashOnHand, &lastOnline, &status); err != nil {
		return nil, err
	}
	t.Status = domain.TerminalStatus(status)
	t.LastOnline, _ = time.Parse(time.RFC3339, lastOnline)
	return &t, nil
}
