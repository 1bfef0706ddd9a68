package ingestion

import (
	"fmt"
	"strings"

	"github.com/kioskops/ledger/internal/domain"
)

// ManualMapping assigns canonical field names to source column names when
// no preset signature matched the file. Only the fields below are
// recognized; unmapped fields fall back to generic defaults.
type ManualMapping map[string]string

// Canonical field keys accepted in a ManualMapping.
const (
	FieldSN     = "sn"
	FieldDate   = "date"
	FieldType   = "type"
	FieldAmount = "amount"
	FieldCity   = "city"
	FieldState  = "state"
)

// ManualFields lists the mappable canonical fields for the operator UI.
func ManualFields() []string {
	return []string{FieldSN, FieldDate, FieldType, FieldAmount, FieldCity, FieldState}
}

// Validate rejects mappings without an amount column; every other field is
// optional and defaulted.
func (m ManualMapping) Validate() error {
	if m[FieldAmount] == "" {
		return fmt.Errorf("manual mapping requires an amount column")
	}
	return nil
}

// ManualMapper adapts a user-supplied column assignment into the same
// MapperFunc shape used by the presets.
func ManualMapper(mapping ManualMapping) MapperFunc {
	return func(row Row, ctx BatchContext) (*RowResult, error) {
		get := func(field string) string {
			col := mapping[field]
			if col == "" {
				return ""
			}
			return row[col]
		}

		amount := parseLooseAmount(get(FieldAmount))
		if amount <= 0 {
			return nil, fmt.Errorf("non-positive amount %.2f", amount)
		}

		tradeType := domain.TradeBuy
		if strings.Contains(strings.ToLower(get(FieldType)), "sell") {
			tradeType = domain.TradeSell
		}

		city := get(FieldCity)
		if city == "" {
			city = UnknownCity
		}
		state := get(FieldState)
		if state == "" {
			state = DefaultState
		}

		raw := make(map[string]any, len(row))
		for k, v := range row {
			raw[k] = v
		}

		return &RowResult{
			TerminalSN:  get(FieldSN),
			Timestamp:   parseTimestamp(get(FieldDate), ctx.Now),
			Type:        tradeType,
			AmountCash:  amount,
			GrossProfit: amount * ManualProfitRate,
			Status:      domain.StatusCompleted,
			Metadata: map[string]any{
				"manualImport": true,
				"rowData":      raw,
			},
			Location: &domain.Location{
				ID:        "LOC-" + strings.ToUpper(city),
				Name:      city + " Store",
				City:      city,
				State:     state,
				Zip:       DefaultZip,
				RentModel: domain.RentFixed,
				BaseRent:  StandardBaseRent,
			},
		}, nil
	}
}
