package ingestion

// Defaulting policy for canonicalization and the mapper fallbacks. Kept as
// named constants so tests can assert on them directly instead of chasing
// inline literals through the mapping logic.
const (
	// Batch-level fill-ins for numeric transaction fields no provider column
	// supplied.
	DefaultExchangePrice = 65000.0
	DefaultMarkupPercent = 0.12
	DefaultFixedFee      = 2.50

	// Starting cash balance for a terminal first seen during ingestion.
	DefaultCashOnHand = 5000.0

	// GB exports often omit the explicit profit column; fall back to a flat
	// 12% of the cash amount.
	GBFallbackProfitRate = 0.12

	// Manually mapped rows have no profit column at all; assume 10%.
	ManualProfitRate = 0.10

	// Base rent assigned to locations synthesized by the BP mapper and the
	// manual mapper.
	StandardBaseRent = 500.0

	// Placeholder geography for rows that carry no location data.
	DefaultState = "GA"
	DefaultZip   = "00000"
	UnknownCity  = "Unknown"

	// Shared placeholder location for batches whose provider supplies
	// terminal identity only.
	GenericLocationID   = "LOC-GENERIC"
	GenericLocationName = "Generic Location"
)
