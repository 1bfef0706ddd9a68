package ingestion

import (
	"fmt"
	"strings"

	"github.com/kioskops/ledger/internal/domain"
)

// gbPreset handles General Bytes exports. GB files carry terminal identity
// but no location columns, so rows fall through to the shared generic
// location.
//
// Expected signature columns:
//
//	Terminal SN, Server Time, Cash Amount, Crypto Amount
var gbPreset = Preset{
	ID:        "GB",
	Source:    domain.SourceGB,
	Signature: []string{"Terminal SN", "Server Time", "Cash Amount", "Crypto Amount"},
	Map:       mapGBRow,
}

func mapGBRow(row Row, ctx BatchContext) (*RowResult, error) {
	amount, err := parseAmount(row["Cash Amount"])
	if err != nil {
		return nil, fmt.Errorf("cash amount: %w", err)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("non-positive cash amount %.2f", amount)
	}

	tradeType := domain.TradeBuy
	if strings.Contains(strings.ToLower(row["Type"]), "sell") {
		tradeType = domain.TradeSell
	}

	// Prefer the reported profit column; fall back to the flat-rate
	// calculation when it is absent or not numeric.
	profit := amount * GBFallbackProfitRate
	if v, err := parseAmount(row["Expected Profit Value"]); err == nil {
		profit = v
	}

	// Anything but an explicit "confirmed" is treated as not completed so
	// unknown vocabulary never inflates reported profit.
	status := domain.StatusError
	if strings.EqualFold(row["Status"], "confirmed") {
		status = domain.StatusCompleted
	}

	return &RowResult{
		TerminalSN:   row["Terminal SN"],
		Timestamp:    parseTimestamp(row["Server Time"], ctx.Now),
		Type:         tradeType,
		AmountCash:   amount,
		AmountCrypto: parseAmountDefault(row["Crypto Amount"], 0),
		GrossProfit:  profit,
		Status:       status,
		Metadata: map[string]any{
			"serverTimeRaw": row["Server Time"],
			"originalTxId":  row["Transaction ID"],
		},
	}, nil
}
