package ledger

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Totals holds the incoming, outgoing and net aggregates of a currency
type Totals struct {
	Incoming decimal.Decimal `json:"incoming"`
	Outgoing decimal.Decimal `json:"outgoing"`
	Net      decimal.Decimal `json:"net"`
}

// CurrencyTotals accumulates flows keyed by currency code.
// The zero value is ready to use.
type CurrencyTotals struct {
	totals map[string]*Totals
}

// NewCurrencyTotals creates an empty accumulator
func NewCurrencyTotals() *CurrencyTotals {
	return &CurrencyTotals{totals: make(map[string]*Totals)}
}

// Add records an incoming and an outgoing amount for a currency
func (c *CurrencyTotals) Add(currency string, incoming, outgoing decimal.Decimal) {
	if c.totals == nil {
		c.totals = make(map[string]*Totals)
	}

	key := strings.ToUpper(strings.TrimSpace(currency))
	t, ok := c.totals[key]
	if !ok {
		t = &Totals{}
		c.totals[key] = t
	}
	t.Incoming = t.Incoming.Add(incoming)
	t.Outgoing = t.Outgoing.Add(outgoing)
	t.Net = t.Incoming.Sub(t.Outgoing)
}

// Get returns the totals of a currency, zero if nothing was recorded
func (c *CurrencyTotals) Get(currency string) Totals {
	if c.totals == nil {
		return Totals{}
	}
	if t, ok := c.totals[strings.ToUpper(strings.TrimSpace(currency))]; ok {
		return *t
	}
	return Totals{}
}

// Currencies returns the recorded currencies in sorted order
func (c *CurrencyTotals) Currencies() []string {
	currencies := make([]string, 0, len(c.totals))
	for k := range c.totals {
		currencies = append(currencies, k)
	}
	sort.Strings(currencies)
	return currencies
}

// Map returns a copy of the accumulated totals
func (c *CurrencyTotals) Map() map[string]Totals {
	out := make(map[string]Totals, len(c.totals))
	for k, v := range c.totals {
		out[k] = *v
	}
	return out
}

// Len returns the number of currencies recorded
func (c *CurrencyTotals) Len() int {
	return len(c.totals)
}
