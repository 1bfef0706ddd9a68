package ingestion

import (
	"time"

	"github.com/kioskops/ledger/internal/domain"
)

// BatchContext carries the operator-selected settings for one import.
type BatchContext struct {
	Source domain.Source
	Period string
	Now    time.Time
}

// RowResult is the partial canonical transaction produced by a mapper.
// Missing numeric fields are filled with batch defaults by the
// canonicalizer. Location is set only when the row carries enough data to
// construct one.
type RowResult struct {
	TerminalSN    string
	Timestamp     time.Time
	Type          domain.TradeType
	AmountCash    float64
	AmountCrypto  float64
	ExchangePrice float64
	GrossProfit   float64
	Status        domain.TransactionStatus
	Metadata      map[string]any
	Location      *domain.Location
}

// MapperFunc converts one raw row into a partial canonical transaction.
// A non-nil error means the row is not parseable and must be skipped;
// mappers never panic across this boundary.
type MapperFunc func(row Row, ctx BatchContext) (*RowResult, error)

// Preset is a statically registered provider format: a signature of
// required column names plus the row mapper for that provider.
type Preset struct {
	ID        string
	Source    domain.Source
	Signature []string
	Map       MapperFunc
}

// presets is evaluated in this fixed order during detection. Signature sets
// must stay pairwise disjoint so no header set can satisfy two presets;
// TestPresetSignaturesDisjoint enforces this.
var presets = []Preset{
	gbPreset,
	bpPreset,
	baPreset,
	otcPreset,
}

// Presets returns the registered presets in detection order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// PresetByID looks up a preset by its identifier.
func PresetByID(id string) (*Preset, bool) {
	for i := range presets {
		if presets[i].ID == id {
			return &presets[i], true
		}
	}
	return nil, false
}

// Detect returns the first registered preset whose full signature is
// contained in the header set. Extra columns are ignored. The second return
// is false when no preset matches and the caller must fall back to manual
// mapping.
func Detect(headers []string) (*Preset, bool) {
	have := make(map[string]bool, len(headers))
	for _, h := range headers {
		have[h] = true
	}
	for i := range presets {
		matched := true
		for _, col := range presets[i].Signature {
			if !have[col] {
				matched = false
				break
			}
		}
		if matched {
			return &presets[i], true
		}
	}
	return nil, false
}
