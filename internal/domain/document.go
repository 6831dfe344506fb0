package domain

import "time"

// Game is a coin-operated game and its cumulative coin counters.
type Game struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	CoinsSpent       int64  `json:"coinsSpent"`
	CoinsEarned      int64  `json:"coinsEarned"`
	CoinsRecharged   int64  `json:"coinsRecharged"`
	LastRechargeDate string `json:"lastRechargeDate,omitempty"`
}

// Payment is a single immutable ledger entry.
type Payment struct {
	ID        string    `json:"id"`
	Amount    float64   `json:"amount"`
	Method    Method    `json:"method"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

// Totals maps each payment method to its cumulative sum.
type Totals map[Method]float64

// Clone returns an independent copy of t.
func (t Totals) Clone() Totals {
	out := make(Totals, len(t))
	for m, v := range t {
		out[m] = v
	}

	return out
}

// Document is the single persisted state shared by the ledger and the game roster.
type Document struct {
	Games    []Game    `json:"games"`
	Payments []Payment `json:"payments"`
	Totals   Totals    `json:"totals"`
}

// NewDocument returns empty collections with every method zeroed.
func NewDocument(methods MethodSet) Document {
	return Document{
		Games:    []Game{},
		Payments: []Payment{},
		Totals:   methods.ZeroTotals(),
	}
}

// Normalize fills collections a fresh or hand-edited document may lack:
// nil slices become empty and every configured method gets a totals slot.
func (d *Document) Normalize(methods MethodSet) {
	if d.Games == nil {
		d.Games = []Game{}
	}

	if d.Payments == nil {
		d.Payments = []Payment{}
	}

	if d.Totals == nil {
		d.Totals = make(Totals, len(methods.Methods()))
	}

	for _, m := range methods.Methods() {
		if _, ok := d.Totals[m]; !ok {
			d.Totals[m] = 0
		}
	}
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := Document{
		Games:    append([]Game(nil), d.Games...),
		Payments: make([]Payment, len(d.Payments)),
		Totals:   d.Totals.Clone(),
	}

	for i, p := range d.Payments {
		if p.Note != nil {
			note := *p.Note
			p.Note = &note
		}

		out.Payments[i] = p
	}

	if out.Games == nil {
		out.Games = []Game{}
	}

	return out
}
