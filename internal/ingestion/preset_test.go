package ingestion

import (
	"math"
	"testing"
	"time"

	"github.com/kioskops/ledger/internal/domain"
)

func testCtx() BatchContext {
	return BatchContext{
		Source: domain.SourceGB,
		Period: "2024-Q1",
		Now:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDetectBySignature(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		wantID  string
		wantOK  bool
	}{
		{
			name:    "gb exact signature",
			headers: []string{"Terminal SN", "Server Time", "Cash Amount", "Crypto Amount"},
			wantID:  "GB",
			wantOK:  true,
		},
		{
			name: "gb with extra columns",
			headers: []string{"Status", "Terminal SN", "Server Time", "Cash Amount",
				"Crypto Amount", "Expected Profit Value", "Some 3rd Party Column"},
			wantID: "GB",
			wantOK: true,
		},
		{
			name:    "bp signature",
			headers: []string{"ATM ID", "Transaction Type", "Cash Value", "Gross Profit", "Datetime"},
			wantID:  "BP",
			wantOK:  true,
		},
		{
			name:    "ba signature",
			headers: []string{"BTM Machine Name", "Amount Deposited", "Actual Withdrawal Amount", "Kind"},
			wantID:  "BA",
			wantOK:  true,
		},
		{
			name:    "otc signature",
			headers: []string{"CUST ID", "Receiving Bank", "$ TX Value", "WALLET"},
			wantID:  "OTC",
			wantOK:  true,
		},
		{
			name:    "partial signature does not match",
			headers: []string{"Terminal SN", "Server Time", "Cash Amount"},
			wantOK:  false,
		},
		{
			name:    "unknown headers",
			headers: []string{"Machine", "Date", "USD Total"},
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preset, ok := Detect(tt.headers)
			if ok != tt.wantOK {
				t.Fatalf("Detect() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && preset.ID != tt.wantID {
				t.Errorf("Detect() = %s, want %s", preset.ID, tt.wantID)
			}
		})
	}
}

// Signature sets must be pairwise disjoint: a header set satisfying one
// preset's full signature must never satisfy another's, otherwise
// registration order silently shadows formats.
func TestPresetSignaturesDisjoint(t *testing.T) {
	all := Presets()
	for i, a := range all {
		have := make(map[string]bool)
		for _, col := range a.Signature {
			have[col] = true
		}
		for j, b := range all {
			if i == j {
				continue
			}
			matched := true
			for _, col := range b.Signature {
				if !have[col] {
					matched = false
					break
				}
			}
			if matched {
				t.Errorf("preset %s's signature fully satisfies preset %s's signature", a.ID, b.ID)
			}
		}
	}
}

func TestGBMapperReportedProfit(t *testing.T) {
	row := Row{
		"Terminal SN":           "BT300001",
		"Server Time":           "2024-02-10 14:30:00",
		"Type":                  "BUY",
		"Cash Amount":           "200.00",
		"Crypto Amount":         "0.00307",
		"Expected Profit Value": "25.50",
		"Status":                "confirmed",
	}
	res, err := mapGBRow(row, testCtx())
	if err != nil {
		t.Fatalf("mapGBRow: %v", err)
	}
	if !almostEqual(res.GrossProfit, 25.50) {
		t.Errorf("gross profit = %v, want reported 25.50", res.GrossProfit)
	}
	if res.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", res.Status)
	}
	if res.Location != nil {
		t.Error("GB rows should not carry a location")
	}
}

func TestGBMapperFallbackProfit(t *testing.T) {
	row := Row{
		"Terminal SN":   "BT300001",
		"Server Time":   "2024-02-10 14:30:00",
		"Type":          "sell order",
		"Cash Amount":   "100",
		"Crypto Amount": "0.0015",
		"Status":        "in progress",
	}
	res, err := mapGBRow(row, testCtx())
	if err != nil {
		t.Fatalf("mapGBRow: %v", err)
	}
	if !almostEqual(res.GrossProfit, 100*GBFallbackProfitRate) {
		t.Errorf("gross profit = %v, want fallback %v", res.GrossProfit, 100*GBFallbackProfitRate)
	}
	if res.Type != domain.TradeSell {
		t.Errorf("type = %s, want SELL", res.Type)
	}
	// Unknown status text maps conservatively, never to COMPLETED.
	if res.Status == domain.StatusCompleted {
		t.Error("unknown status mapped to COMPLETED")
	}
}

func TestGBMapperRejectsBadAmount(t *testing.T) {
	for _, amount := range []string{"", "abc", "0", "-50"} {
		row := Row{
			"Terminal SN": "BT300001",
			"Server Time": "2024-02-10 14:30:00",
			"Cash Amount": amount,
		}
		if _, err := mapGBRow(row, testCtx()); err == nil {
			t.Errorf("amount %q: expected error", amount)
		}
	}
}

func TestBPMapperLocation(t *testing.T) {
	row := Row{
		"ATM ID":               "BP-ATM-004",
		"Datetime":             "2024-02-11T09:00:00Z",
		"Transaction Type":     "Buy",
		"Cash Value":           "400.00",
		"Coin Quantity":        "0.00625",
		"Exchange Feed Price":  "64000.00",
		"Gross Profit":         "52.00",
		"Status":               "complete",
		"Location Store Name":  "Sunset Liquors",
		"Location City":        "Tampa",
		"Location State":       "FL",
		"Location Postal Code": "33601",
	}
	res, err := mapBPRow(row, testCtx())
	if err != nil {
		t.Fatalf("mapBPRow: %v", err)
	}
	if res.Location == nil {
		t.Fatal("BP row should carry an embedded location")
	}
	if res.Location.ID != "LOC-TAMPA" {
		t.Errorf("location id = %s, want LOC-TAMPA", res.Location.ID)
	}
	if !almostEqual(res.Location.BaseRent, StandardBaseRent) {
		t.Errorf("base rent = %v, want %v", res.Location.BaseRent, StandardBaseRent)
	}
	if !almostEqual(res.GrossProfit, 52.00) {
		t.Errorf("gross profit = %v, want 52.00", res.GrossProfit)
	}
}

func TestBAMapperDirectionDependentAmount(t *testing.T) {
	tests := []struct {
		name       string
		kind       string
		wantType   domain.TradeType
		wantAmount float64
	}{
		{"buy uses deposited", "buy", domain.TradeBuy, 300},
		{"sell uses withdrawal", "sell", domain.TradeSell, 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := Row{
				"BTM Machine Name":         "BA-MACHINE-01",
				"Created At":               "2024-02-12 10:00:00",
				"Kind":                     tt.kind,
				"Amount Deposited":         "300.00",
				"Actual Withdrawal Amount": "120.00",
				"Flat Fee":                 "3.00",
				"Margin Percentage":        "10",
				"State":                    "served",
				"Location ID":              "101",
			}
			res, err := mapBARow(row, testCtx())
			if err != nil {
				t.Fatalf("mapBARow: %v", err)
			}
			if res.Type != tt.wantType {
				t.Errorf("type = %s, want %s", res.Type, tt.wantType)
			}
			if !almostEqual(res.AmountCash, tt.wantAmount) {
				t.Errorf("amount = %v, want %v", res.AmountCash, tt.wantAmount)
			}
			// flat fee + amount * margin rate
			wantProfit := 3.00 + tt.wantAmount*0.10
			if !almostEqual(res.GrossProfit, wantProfit) {
				t.Errorf("profit = %v, want %v", res.GrossProfit, wantProfit)
			}
		})
	}
}

func TestBAMapperUnknownStateNotCompleted(t *testing.T) {
	row := Row{
		"BTM Machine Name": "BA-MACHINE-01",
		"Created At":       "2024-02-12 10:00:00",
		"Kind":             "buy",
		"Amount Deposited": "50.00",
		"State":            "expired",
	}
	res, err := mapBARow(row, testCtx())
	if err != nil {
		t.Fatalf("mapBARow: %v", err)
	}
	if res.Status == domain.StatusCompleted {
		t.Error("unknown state mapped to COMPLETED")
	}
}

func TestOTCMapperSynthesizedTerminal(t *testing.T) {
	row := Row{
		"CUST ID":        "CUST-1001",
		"Customer Name":  "Desk Client 1",
		"Receiving Bank": "First National",
		"$ TX Value":     "25000.00",
		"WALLET":         "0x00012345",
		"Datetime":       "2024-02-13T15:00:00Z",
		"Status":         "complete",
		"Location City":  "New Orleans",
		"Location State": "LA",
	}
	res, err := mapOTCRow(row, testCtx())
	if err != nil {
		t.Fatalf("mapOTCRow: %v", err)
	}
	if res.TerminalSN != "OTC-NEW-ORLEANS" {
		t.Errorf("terminal sn = %s, want OTC-NEW-ORLEANS", res.TerminalSN)
	}
	if res.Location == nil || res.Location.ID != "LOC-OTC-NEW ORLEANS" {
		t.Fatalf("location = %+v, want LOC-OTC-NEW ORLEANS", res.Location)
	}
	if !almostEqual(res.AmountCash, 25000) {
		t.Errorf("amount = %v, want 25000", res.AmountCash)
	}
}

func TestOTCMapperDeskFallback(t *testing.T) {
	row := Row{
		"CUST ID":        "CUST-1002",
		"Receiving Bank": "First National",
		"$ TX Value":     "5000",
		"WALLET":         "0x0002",
	}
	res, err := mapOTCRow(row, testCtx())
	if err != nil {
		t.Fatalf("mapOTCRow: %v", err)
	}
	if res.TerminalSN != "OTC-OTC-DESK" {
		t.Errorf("terminal sn = %s, want OTC-OTC-DESK", res.TerminalSN)
	}
}
