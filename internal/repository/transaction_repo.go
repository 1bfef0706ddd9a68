package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kioskops/ledger/internal/domain"
)

type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

type TransactionFilter struct {
	Source     string
	Period     string
	Status     string
	TerminalSN string
	Page       int
	Limit      int
}

// List returns transactions matching the filter plus the unpaginated total.
// Limit <= 0 disables pagination (used by FetchAll).
func (r *TransactionRepo) List(f TransactionFilter) ([]domain.Transaction, int, error) {
	where, args := buildTransactionWhere(f)

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM transactions"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	query := `SELECT id, terminal_sn, timestamp, type, amount_cash, amount_crypto,
		exchange_price, markup_percent, fixed_fee, status, gross_profit,
		source, period, metadata
		FROM transactions` + where + " ORDER BY timestamp DESC"
	if f.Limit > 0 {
		if f.Page <= 0 {
			f.Page = 1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, (f.Page-1)*f.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		txns = append(txns, *tx)
	}
	return txns, total, rows.Err()
}

func (r *TransactionRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count)
	return count, err
}

// DailyStat is one day's completed volume, transaction count and profit.
type DailyStat struct {
	Date         string  `json:"date"`
	Volume       float64 `json:"volume"`
	Transactions int     `json:"transactions"`
	Profit       float64 `json:"profit"`
}

func (r *TransactionRepo) DailyStats(period string) ([]DailyStat, error) {
	query := `SELECT date(timestamp),
		COALESCE(SUM(amount_cash), 0), COUNT(*), COALESCE(SUM(gross_profit), 0)
		FROM transactions WHERE status = 'COMPLETED'`
	args := []any{}
	if period != "" {
		query += " AND period = ?"
		args = append(args, period)
	}
	query += " GROUP BY date(timestamp) ORDER BY date(timestamp)"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var stats []DailyStat
	for rows.Next() {
		var s DailyStat
		if err := rows.Scan(&s.Date, &s.Volume, &s.Transactions, &s.Profit); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// VolumeTotals aggregates completed and pending volume for the dashboard.
// Pending covers non-completed transactions; they never count toward
// profit.
type VolumeTotals struct {
	CompletedCount  int     `json:"completed_count"`
	CompletedVolume float64 `json:"completed_volume"`
	GrossProfit     float64 `json:"gross_profit"`
	PendingCount    int     `json:"pending_count"`
	PendingVolume   float64 `json:"pending_volume"`
}

func (r *TransactionRepo) Totals(period string) (*VolumeTotals, error) {
	query := `SELECT
		COALESCE(SUM(CASE WHEN status = 'COMPLETED' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'COMPLETED' THEN amount_cash ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'COMPLETED' THEN gross_profit ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status != 'COMPLETED' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status != 'COMPLETED' THEN amount_cash ELSE 0 END), 0)
		FROM transactions`
	args := []any{}
	if period != "" {
		query += " WHERE period = ?"
		args = append(args, period)
	}

	t := &VolumeTotals{}
	err := r.db.QueryRow(query, args...).Scan(
		&t.CompletedCount, &t.CompletedVolume, &t.GrossProfit,
		&t.PendingCount, &t.PendingVolume,
	)
	return t, err
}

// --- helpers ---

func buildTransactionWhere(f TransactionFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, f.Source)
	}
	if f.Period != "" {
		clauses = append(clauses, "period = ?")
		args = append(args, f.Period)
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if f.TerminalSN != "" {
		clauses = append(clauses, "terminal_sn = ?")
		args = append(args, f.TerminalSN)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanTransaction(rows *sql.Rows) (*domain.Transaction, error) {
	var t domain.Transaction
	var ts, tradeType, status, source string
	var meta sql.NullString

	err := rows.Scan(
		&t.ID, &t.TerminalSN, &ts, &tradeType, &t.AmountCash, &t.AmountCrypto,
		&t.ExchangePrice, &t.MarkupPercent, &t.FixedFee, &status, &t.GrossProfit,
		&source, &t.Period, &meta,
	)
	if err != nil {
		return nil, err
	}

	t.Type = domain.TradeType(tradeType)
	t.Status = domain.TransactionStatus(status)
	t.Source = domain.Source(source)
	t.Timestamp, _ = time.Parse(time.RFC3339, ts)

	if meta.Valid && meta.String != "" && meta.String != "null" {
		if err := json.Unmarshal([]byte(meta.String), &t.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata for %s: %w", t.ID, err)
		}
	}
	return &t, nil
}
