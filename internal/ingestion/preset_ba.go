package ingestion

import (
	"fmt"
	"strings"

	"github.com/kioskops/ledger/internal/domain"
)

// baPreset handles BitAccess exports. BA splits the cash amount across
// deposit and withdrawal columns selected by the transaction kind, and
// reports margin rather than profit.
//
// Expected signature columns:
//
//	BTM Machine Name, Amount Deposited, Actual Withdrawal Amount, Kind
var baPreset = Preset{
	ID:        "BA",
	Source:    domain.SourceBA,
	Signature: []string{"BTM Machine Name", "Amount Deposited", "Actual Withdrawal Amount", "Kind"},
	Map:       mapBARow,
}

func mapBARow(row Row, ctx BatchContext) (*RowResult, error) {
	kind := strings.ToLower(row["Kind"])
	tradeType := domain.TradeSell
	amountCol := "Actual Withdrawal Amount"
	if strings.Contains(kind, "buy") {
		tradeType = domain.TradeBuy
		amountCol = "Amount Deposited"
	}

	amount, err := parseAmount(row[amountCol])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", strings.ToLower(amountCol), err)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("non-positive amount %.2f", amount)
	}

	// No explicit profit column: flat fee plus margin-rate share of the
	// cash amount.
	flatFee := parseAmountDefault(row["Flat Fee"], 0)
	marginPct := parseAmountDefault(row["Margin Percentage"], 0)
	profit := flatFee + amount*(marginPct/100)

	// BA reports lifecycle in a "State" column ("served", "confirmed", ...).
	stateRaw := strings.ToLower(row["State"])
	status := domain.StatusError
	if stateRaw == "served" || stateRaw == "confirmed" {
		status = domain.StatusCompleted
	}

	// Simple BA exports identify the site by an opaque Location ID only;
	// synthesize a placeholder location around it.
	locID := row["Location ID"]
	if locID == "" {
		locID = "UNK"
	}

	return &RowResult{
		TerminalSN:  row["BTM Machine Name"],
		Timestamp:   parseTimestamp(row["Created At"], ctx.Now),
		Type:        tradeType,
		AmountCash:  amount,
		GrossProfit: profit,
		Status:      status,
		Metadata: map[string]any{
			"rawKind":       row["Kind"],
			"rawState":      row["State"],
			"marginPercent": row["Margin Percentage"],
		},
		Location: &domain.Location{
			ID:        "LOC-" + locID,
			Name:      "BA Location " + locID,
			City:      UnknownCity,
			State:     DefaultState,
			Zip:       DefaultZip,
			RentModel: domain.RentFixed,
			BaseRent:  0,
		},
	}, nil
}
