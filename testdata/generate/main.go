// Command generate regenerates the sample provider extracts and the seed
// snapshot under testdata/. Output is deterministic (fixed rng seed) so the
// files can be committed.
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/kioskops/ledger/internal/domain"
)

func main() {
	rng := rand.New(rand.NewSource(42))
	baseDir := findTestdataDir()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	writeSeed(rng, baseDir, start)
	writeGBSample(rng, baseDir, start)
	writeBPSample(rng, baseDir, start)
	writeBASample(rng, baseDir, start)
	writeOTCSample(rng, baseDir, start)
	writeGenericSample(rng, baseDir, start)

	fmt.Println("Test data generation complete.")
}

func randomAmount(rng *rand.Rand, lo, hi float64) float64 {
	return math.Round((lo+rng.Float64()*(hi-lo))*100) / 100
}

func randomTime(rng *rand.Rand, start time.Time) time.Time {
	return start.AddDate(0, 0, rng.Intn(85)).Add(time.Duration(rng.Intn(86400)) * time.Second)
}

func writeSeed(rng *rand.Rand, baseDir string, start time.Time) {
	locations := []domain.Location{
		{ID: "LOC-ATLANTA", Name: "Peachtree Mart", City: "Atlanta", State: "GA", Zip: "30303", RentModel: domain.RentVolumeTier, BaseRent: 500},
		{ID: "LOC-MIAMI", Name: "Biscayne Deli", City: "Miami", State: "FL", Zip: "33101", RentModel: domain.RentFixed, BaseRent: 750},
		{ID: "LOC-HOUSTON", Name: "Bayou Gas & Go", City: "Houston", State: "TX", Zip: "77002", RentModel: domain.RentVolumeTier, BaseRent: 400},
	}

	var terminals []domain.Terminal
	var txns []domain.Transaction
	for li, loc := range locations {
		for ti := 0; ti < 2; ti++ {
			sn := fmt.Sprintf("KSK-%d%02d", li+1, ti+1)
			terminals = append(terminals, domain.Terminal{
				SN:         sn,
				ATMID:      sn,
				LocationID: loc.ID,
				CashOnHand: randomAmount(rng, 2000, 12000),
				LastOnline: start.AddDate(0, 0, 80),
				Status:     domain.TerminalOnline,
			})

			for i := 0; i < 25; i++ {
				amount := randomAmount(rng, 20, 1200)
				status := domain.StatusCompleted
				if rng.Float64() > 0.92 {
					status = domain.StatusCancelled
				}
				txns = append(txns, domain.Transaction{
					ID:            fmt.Sprintf("TX-SEED-%s-%03d", sn, i+1),
					TerminalSN:    sn,
					Timestamp:     randomTime(rng, start),
					Type:          domain.TradeBuy,
					AmountCash:    amount,
					AmountCrypto:  math.Round(amount/65000*1e8) / 1e8,
					ExchangePrice: 65000,
					MarkupPercent: 0.12,
					FixedFee:      2.5,
					Status:        status,
					GrossProfit:   math.Round(amount*0.12*100) / 100,
					Source:        domain.SourceGB,
					Period:        "2024-Q1",
				})
			}
		}
	}

	writeJSONFile(filepath.Join(baseDir, "seed.json"), map[string]any{
		"locations":    locations,
		"terminals":    terminals,
		"transactions": txns,
	})
	fmt.Printf("Generated seed snapshot -> seed.json (%d txns)\n", len(txns))
}

func writeGBSample(rng *rand.Rand, baseDir string, start time.Time) {
	rows := [][]string{{
		"Terminal SN", "Server Time", "Type", "Cash Amount", "Crypto Amount",
		"Expected Profit Value", "Status", "Transaction ID",
	}}
	for i := 1; i <= 40; i++ {
		amount := randomAmount(rng, 20, 900)
		status := "confirmed"
		if rng.Float64() > 0.9 {
			status = "cancelled"
		}
		profit := ""
		if rng.Float64() > 0.3 {
			profit = fmt.Sprintf("%.2f", math.Round(amount*0.11*100)/100)
		}
		rows = append(rows, []string{
			fmt.Sprintf("BT%06d", 300000+rng.Intn(1000)),
			randomTime(rng, start).Format("2006-01-02 15:04:05"),
			"BUY",
			fmt.Sprintf("%.2f", amount),
			fmt.Sprintf("%.8f", amount/65000),
			profit,
			status,
			fmt.Sprintf("GBTX%08d", i),
		})
	}
	writeCSVFile(filepath.Join(baseDir, "gb_sample.csv"), rows)
}

func writeBPSample(rng *rand.Rand, baseDir string, start time.Time) {
	stores := []struct{ name, city, state, zip string }{
		{"Sunset Liquors", "Tampa", "FL", "33601"},
		{"Quick Stop 21", "Savannah", "GA", "31401"},
		{"Lone Star Mart", "Austin", "TX", "73301"},
	}
	rows := [][]string{{
		"ATM ID", "Datetime", "Transaction Type", "Cash Value", "Coin Quantity",
		"Exchange Feed Price", "Gross Profit", "Status", "Crypto Address",
		"Network Fee", "Location Store Name", "Location City", "Location State",
		"Location Postal Code",
	}}
	for i := 1; i <= 30; i++ {
		st := stores[rng.Intn(len(stores))]
		amount := randomAmount(rng, 40, 1500)
		status := "complete"
		if rng.Float64() > 0.93 {
			status = "refunded"
		}
		rows = append(rows, []string{
			fmt.Sprintf("BP-ATM-%03d", 1+rng.Intn(6)),
			randomTime(rng, start).Format(time.RFC3339),
			"Buy",
			fmt.Sprintf("%.2f", amount),
			fmt.Sprintf("%.8f", amount/64000),
			"64000.00",
			fmt.Sprintf("%.2f", math.Round(amount*0.13*100)/100),
			status,
			fmt.Sprintf("bc1q%010d", rng.Intn(1_000_000_000)),
			"1.20",
			st.name, st.city, st.state, st.zip,
		})
	}
	writeCSVFile(filepath.Join(baseDir, "bp_sample.csv"), rows)
}

func writeBASample(rng *rand.Rand, baseDir string, start time.Time) {
	rows := [][]string{{
		"BTM Machine Name", "Created At", "Kind", "Amount Deposited",
		"Actual Withdrawal Amount", "Flat Fee", "Margin Percentage", "State",
		"Location ID",
	}}
	for i := 1; i <= 30; i++ {
		buy := rng.Float64() > 0.3
		kind, dep, wd := "buy", fmt.Sprintf("%.2f", randomAmount(rng, 20, 800)), "0"
		if !buy {
			kind, dep, wd = "sell", "0", fmt.Sprintf("%.2f", randomAmount(rng, 20, 800))
		}
		state := "served"
		if rng.Float64() > 0.9 {
			state = "expired"
		}
		rows = append(rows, []string{
			fmt.Sprintf("BA-MACHINE-%02d", 1+rng.Intn(4)),
			randomTime(rng, start).Format("2006-01-02 15:04:05"),
			kind, dep, wd,
			"3.00",
			fmt.Sprintf("%.1f", 8+rng.Float64()*6),
			state,
			fmt.Sprintf("%d", 100+rng.Intn(3)),
		})
	}
	writeCSVFile(filepath.Join(baseDir, "ba_sample.csv"), rows)
}

func writeOTCSample(rng *rand.Rand, baseDir string, start time.Time) {
	rows := [][]string{{
		"CUST ID", "Customer Name", "Receiving Bank", "$ TX Value", "WALLET",
		"Datetime", "Transaction Type", "Coin Quantity", "Gross Profit",
		"Status", "Location City", "Location State", "Location Postal Code",
	}}
	for i := 1; i <= 12; i++ {
		amount := randomAmount(rng, 5000, 60000)
		rows = append(rows, []string{
			fmt.Sprintf("CUST-%04d", 1000+i),
			fmt.Sprintf("Desk Client %d", i),
			"First National",
			fmt.Sprintf("%.2f", amount),
			fmt.Sprintf("0x%012d", rng.Intn(1_000_000_000)),
			randomTime(rng, start).Format(time.RFC3339),
			"Buy",
			fmt.Sprintf("%.6f", amount/64500),
			fmt.Sprintf("%.2f", math.Round(amount*0.02*100)/100),
			"complete",
			"Atlanta", "GA", "30303",
		})
	}
	writeCSVFile(filepath.Join(baseDir, "otc_sample.csv"), rows)
}

// writeGenericSample emits a file matching no preset signature, for
// exercising the manual mapping path.
func writeGenericSample(rng *rand.Rand, baseDir string, start time.Time) {
	rows := [][]string{{"Machine", "Date", "Direction", "USD Total", "Town", "Region"}}
	for i := 1; i <= 15; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("GEN-%02d", 1+rng.Intn(3)),
			randomTime(rng, start).Format("2006-01-02"),
			"purchase",
			fmt.Sprintf("$%.2f", randomAmount(rng, 50, 600)),
			"Birmingham", "AL",
		})
	}
	writeCSVFile(filepath.Join(baseDir, "generic_sample.csv"), rows)
}

// --- file helpers ---

func findTestdataDir() string {
	candidates := []string{"testdata", filepath.Join("..", "..", "testdata"), "."}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			if filepath.Base(mustAbs(c)) == "testdata" {
				return c
			}
		}
	}
	return "."
}

func mustAbs(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

func writeJSONFile(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		panic(err)
	}
}

func writeCSVFile(path string, rows [][]string) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		panic(err)
	}
	fmt.Printf("Generated %d rows -> %s\n", len(rows)-1, filepath.Base(path))
}
