package ingestion

import (
	"fmt"
	"strings"

	"github.com/kioskops/ledger/internal/domain"
)

// bpPreset handles BitPay exports. BP files report profit directly and
// carry full store location data.
//
// Expected signature columns:
//
//	ATM ID, Transaction Type, Cash Value, Gross Profit
var bpPreset = Preset{
	ID:        "BP",
	Source:    domain.SourceBP,
	Signature: []string{"ATM ID", "Transaction Type", "Cash Value", "Gross Profit"},
	Map:       mapBPRow,
}

func mapBPRow(row Row, ctx BatchContext) (*RowResult, error) {
	amount, err := parseAmount(row["Cash Value"])
	if err != nil {
		return nil, fmt.Errorf("cash value: %w", err)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("non-positive cash value %.2f", amount)
	}

	tradeType := domain.TradeBuy
	if strings.Contains(strings.ToLower(row["Transaction Type"]), "sell") {
		tradeType = domain.TradeSell
	}

	status := domain.StatusCancelled
	if strings.EqualFold(row["Status"], "complete") {
		status = domain.StatusCompleted
	}

	city := row["Location City"]
	if city == "" {
		city = "UNK"
	}
	name := row["Location Store Name"]
	if name == "" {
		name = "Unknown Store"
	}

	return &RowResult{
		TerminalSN:    row["ATM ID"],
		Timestamp:     parseTimestamp(row["Datetime"], ctx.Now),
		Type:          tradeType,
		AmountCash:    amount,
		AmountCrypto:  parseAmountDefault(row["Coin Quantity"], 0),
		ExchangePrice: parseAmountDefault(row["Exchange Feed Price"], 0),
		GrossProfit:   parseAmountDefault(row["Gross Profit"], 0),
		Status:        status,
		Metadata: map[string]any{
			"cryptoAddress": row["Crypto Address"],
			"networkFee":    row["Network Fee"],
		},
		Location: &domain.Location{
			ID:        "LOC-" + strings.ToUpper(city),
			Name:      name,
			City:      row["Location City"],
			State:     row["Location State"],
			Zip:       row["Location Postal Code"],
			RentModel: domain.RentFixed,
			BaseRent:  StandardBaseRent,
		},
	}, nil
}
