package domain

import "time"

type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusCancelled TransactionStatus = "CANCELLED"
	StatusError     TransactionStatus = "ERROR"
)

type TradeType string

const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

type Source string

const (
	SourceGB    Source = "GB"
	SourceBP    Source = "BP"
	SourceBA    Source = "BA"
	SourceOTC   Source = "OTC"
	SourceOther Source = "OTHER"
)

// Transaction is the canonical, provider-independent transaction record.
// Transactions are append-only: once persisted they are never mutated.
type Transaction struct {
	ID            string            `json:"id"`
	TerminalSN    string            `json:"terminal_sn"`
	Timestamp     time.Time         `json:"timestamp"`
	Type          TradeType         `json:"type"`
	AmountCash    float64           `json:"amount_cash"`
	AmountCrypto  float64           `json:"amount_crypto"`
	ExchangePrice float64           `json:"exchange_price"`
	MarkupPercent float64           `json:"markup_percent"`
	FixedFee      float64           `json:"fixed_fee"`
	Status        TransactionStatus `json:"status"`
	GrossProfit   float64           `json:"gross_profit"`
	Source        Source            `json:"source"`
	Period        string            `json:"period"`
	// Metadata retains provider-specific raw fields opaquely.
	Metadata map[string]any `json:"metadata,omitempty"`
}
