package ingestion

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"time"

	"github.com/kioskops/ledger/internal/domain"
)

// Batch is the deduplicated output of canonicalizing one import, ready for
// the atomic merge step.
type Batch struct {
	Locations    []domain.Location
	Terminals    []domain.Terminal
	Transactions []domain.Transaction
	Accepted     int
	Skipped      int
}

// Canonicalizer assembles deduplicated Location, Terminal and Transaction
// entities from the stream of per-row mapper results. Exactly one Location
// and one Terminal exist per distinct key within a batch; later rows only
// refresh mutable display fields.
type Canonicalizer struct {
	ctx       BatchContext
	locations map[string]*domain.Location
	terminals map[string]*domain.Terminal
	txns      []domain.Transaction
	skipped   int
	row       int
}

func NewCanonicalizer(ctx BatchContext) *Canonicalizer {
	if ctx.Now.IsZero() {
		ctx.Now = time.Now().UTC()
	}
	return &Canonicalizer{
		ctx:       ctx,
		locations: make(map[string]*domain.Location),
		terminals: make(map[string]*domain.Terminal),
	}
}

// Skip records a rejected row for operator feedback.
func (c *Canonicalizer) Skip() {
	c.row++
	c.skipped++
}

// Add canonicalizes one accepted mapper result. Rows with a non-positive
// cash amount are rejected here as a final guard for both mapping paths.
func (c *Canonicalizer) Add(res *RowResult) {
	c.row++
	if res == nil || res.AmountCash <= 0 {
		c.skipped++
		return
	}

	sn := res.TerminalSN
	if sn == "" {
		sn = fmt.Sprintf("UNK-%d", c.row)
	}

	loc := c.resolveLocation(res.Location)
	c.resolveTerminal(sn, loc.ID)

	tx := domain.Transaction{
		ID:            transactionID(c.ctx, res, sn, c.row),
		TerminalSN:    sn,
		Timestamp:     res.Timestamp,
		Type:          res.Type,
		AmountCash:    res.AmountCash,
		AmountCrypto:  res.AmountCrypto,
		ExchangePrice: res.ExchangePrice,
		MarkupPercent: DefaultMarkupPercent,
		FixedFee:      DefaultFixedFee,
		Status:        res.Status,
		GrossProfit:   res.GrossProfit,
		Source:        c.ctx.Source,
		Period:        c.ctx.Period,
		Metadata:      res.Metadata,
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = c.ctx.Now
	}
	if tx.Type == "" {
		tx.Type = domain.TradeBuy
	}
	if tx.Status == "" {
		tx.Status = domain.StatusCompleted
	}
	if tx.ExchangePrice == 0 {
		tx.ExchangePrice = DefaultExchangePrice
	}

	c.txns = append(c.txns, tx)
}

func (c *Canonicalizer) resolveLocation(loc *domain.Location) *domain.Location {
	if loc == nil {
		loc = &domain.Location{
			ID:        GenericLocationID,
			Name:      GenericLocationName,
			City:      UnknownCity,
			State:     DefaultState,
			Zip:       DefaultZip,
			RentModel: domain.RentFixed,
			BaseRent:  0,
		}
	}
	if existing, ok := c.locations[loc.ID]; ok {
		// Key already seen: refresh display fields only.
		existing.Name = loc.Name
		existing.City = loc.City
		existing.State = loc.State
		return existing
	}
	cp := *loc
	c.locations[cp.ID] = &cp
	return &cp
}

func (c *Canonicalizer) resolveTerminal(sn, locationID string) {
	if _, ok := c.terminals[sn]; ok {
		return
	}
	c.terminals[sn] = &domain.Terminal{
		SN:         sn,
		ATMID:      sn,
		LocationID: locationID,
		CashOnHand: DefaultCashOnHand,
		LastOnline: c.ctx.Now,
		Status:     domain.TerminalOnline,
	}
}

// Finish returns the deduplicated collections. Entity slices are sorted by
// key for stable output; transactions keep row order.
func (c *Canonicalizer) Finish() *Batch {
	b := &Batch{
		Transactions: c.txns,
		Accepted:     len(c.txns),
		Skipped:      c.skipped,
	}
	for _, l := range c.locations {
		b.Locations = append(b.Locations, *l)
	}
	for _, t := range c.terminals {
		b.Terminals = append(b.Terminals, *t)
	}
	sort.Slice(b.Locations, func(i, j int) bool { return b.Locations[i].ID < b.Locations[j].ID })
	sort.Slice(b.Terminals, func(i, j int) bool { return b.Terminals[i].SN < b.Terminals[j].SN })
	return b
}

// transactionID derives a deterministic id from the row content, so
// re-importing an identical file reproduces identical ids and the
// insert-ignore merge semantic makes the re-import a no-op. The row index
// keeps genuinely duplicated rows within one file distinct.
func transactionID(ctx BatchContext, res *RowResult, sn string, row int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s|%.8f|%d",
		ctx.Source, ctx.Period, sn, res.Timestamp.UTC().Format(time.RFC3339),
		res.Type, res.AmountCash, row)
	return fmt.Sprintf("TX-%s-%x", ctx.Source, h.Sum(nil)[:8])
}
