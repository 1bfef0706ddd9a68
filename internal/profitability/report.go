// Package profitability computes the per-location profit-and-loss report:
// volume and gross-profit rollups minus fixed or volume-tiered rent. The
// computation is pure and always recomputes fresh from the persisted sets;
// nothing here is cached.
package profitability

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kioskops/ledger/internal/domain"
)

// Tiered rent: above this completed-volume threshold a VOLUME_TIER location
// pays a share of the excess on top of its base rent. At exactly the
// threshold no variable rent applies.
var (
	tierThreshold = decimal.NewFromInt(10000)
	tierRate      = decimal.RequireFromString("0.01")
	hundred       = decimal.NewFromInt(100)
)

// LocationPnL is one location's line in the profitability report. Monetary
// figures are rounded to cents.
type LocationPnL struct {
	Location     domain.Location `json:"location"`
	TxCount      int             `json:"tx_count"`
	TotalVolume  float64         `json:"total_volume"`
	GrossProfit  float64         `json:"gross_profit"`
	RentExpense  float64         `json:"rent_expense"`
	VariableRent float64         `json:"variable_rent"`
	NetIncome    float64         `json:"net_income"`
	Margin       float64         `json:"margin"`
}

// Report is the sorted per-location P&L plus the network total.
type Report struct {
	Period         string        `json:"period,omitempty"`
	Locations      []LocationPnL `json:"locations"`
	TotalNetIncome float64       `json:"total_net_income"`
}

// Compute joins the persisted sets and rolls up per-location P&L. Only
// COMPLETED transactions count; when period is non-empty, transactions
// tagged with another period are excluded. Transactions referencing an
// unknown terminal, and terminals referencing an unknown location, are
// orphans and excluded from every rollup. Locations are ordered ascending
// by net income so the worst performers surface first.
func Compute(locations []domain.Location, terminals []domain.Terminal, txns []domain.Transaction, period string) *Report {
	terminalLoc := make(map[string]string, len(terminals))
	locKnown := make(map[string]bool, len(locations))
	for _, l := range locations {
		locKnown[l.ID] = true
	}
	for _, t := range terminals {
		if locKnown[t.LocationID] {
			terminalLoc[t.SN] = t.LocationID
		}
	}

	type acc struct {
		count  int
		volume decimal.Decimal
		profit decimal.Decimal
	}
	byLoc := make(map[string]*acc, len(locations))

	for _, tx := range txns {
		if tx.Status != domain.StatusCompleted {
			continue
		}
		if period != "" && tx.Period != period {
			continue
		}
		locID, ok := terminalLoc[tx.TerminalSN]
		if !ok {
			continue
		}
		a := byLoc[locID]
		if a == nil {
			a = &acc{}
			byLoc[locID] = a
		}
		a.count++
		a.volume = a.volume.Add(decimal.NewFromFloat(tx.AmountCash))
		a.profit = a.profit.Add(decimal.NewFromFloat(tx.GrossProfit))
	}

	report := &Report{Period: period}
	total := decimal.Zero

	for _, loc := range locations {
		a := byLoc[loc.ID]
		if a == nil {
			a = &acc{}
		}

		rent := decimal.NewFromFloat(loc.BaseRent)
		variable := decimal.Zero
		if loc.RentModel == domain.RentVolumeTier && a.volume.GreaterThan(tierThreshold) {
			variable = a.volume.Sub(tierThreshold).Mul(tierRate)
			rent = rent.Add(variable)
		}

		net := a.profit.Sub(rent)
		margin := decimal.Zero
		if a.volume.IsPositive() {
			margin = net.Div(a.volume).Mul(hundred)
		}
		total = total.Add(net)

		report.Locations = append(report.Locations, LocationPnL{
			Location:     loc,
			TxCount:      a.count,
			TotalVolume:  a.volume.Round(2).InexactFloat64(),
			GrossProfit:  a.profit.Round(2).InexactFloat64(),
			RentExpense:  rent.Round(2).InexactFloat64(),
			VariableRent: variable.Round(2).InexactFloat64(),
			NetIncome:    net.Round(2).InexactFloat64(),
			Margin:       margin.Round(2).InexactFloat64(),
		})
	}

	sort.SliceStable(report.Locations, func(i, j int) bool {
		return report.Locations[i].NetIncome < report.Locations[j].NetIncome
	})
	report.TotalNetIncome = total.Round(2).InexactFloat64()
	return report
}
