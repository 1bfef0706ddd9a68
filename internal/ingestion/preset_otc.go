package ingestion

import (
	"fmt"
	"strings"

	"github.com/kioskops/ledger/internal/domain"
)

// otcPreset handles over-the-counter desk trades. OTC rows have no machine;
// the terminal is synthesized from the desk's city so desk volume still
// rolls up per location.
//
// Expected signature columns:
//
//	CUST ID, Receiving Bank, $ TX Value, WALLET
var otcPreset = Preset{
	ID:        "OTC",
	Source:    domain.SourceOTC,
	Signature: []string{"CUST ID", "Receiving Bank", "$ TX Value", "WALLET"},
	Map:       mapOTCRow,
}

func mapOTCRow(row Row, ctx BatchContext) (*RowResult, error) {
	city := row["Location City"]
	if city == "" {
		city = "OTC-DESK"
	}
	sn := "OTC-" + strings.ToUpper(strings.ReplaceAll(city, " ", "-"))

	amountStr := row["Cash Value"]
	if amountStr == "" {
		amountStr = row["$ TX Value"]
	}
	amount, err := parseAmount(amountStr)
	if err != nil {
		return nil, fmt.Errorf("tx value: %w", err)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("non-positive tx value %.2f", amount)
	}

	tradeType := domain.TradeBuy
	if strings.Contains(strings.ToLower(row["Transaction Type"]), "sell") {
		tradeType = domain.TradeSell
	}

	status := domain.StatusCancelled
	if strings.EqualFold(row["Status"], "complete") {
		status = domain.StatusCompleted
	}

	name := row["Customer Name"]
	if name == "" {
		name = "OTC Client"
	}
	state := row["Location State"]
	if state == "" {
		state = DefaultState
	}

	return &RowResult{
		TerminalSN:   sn,
		Timestamp:    parseTimestamp(row["Datetime"], ctx.Now),
		Type:         tradeType,
		AmountCash:   amount,
		AmountCrypto: parseAmountDefault(row["Coin Quantity"], 0),
		GrossProfit:  parseAmountDefault(row["Gross Profit"], 0),
		Status:       status,
		Metadata: map[string]any{
			"receivingBank": row["Receiving Bank"],
			"walletAddress": row["WALLET"],
			"customerId":    row["CUST ID"],
		},
		Location: &domain.Location{
			ID:        "LOC-OTC-" + strings.ToUpper(city),
			Name:      name,
			City:      city,
			State:     state,
			Zip:       row["Location Postal Code"],
			RentModel: domain.RentFixed,
			BaseRent:  0,
		},
	}, nil
}
