package ledger

import "github.com/saminkc999/coinledger/internal/domain"

// Receipt is the outcome of a recorded payment: the stored entry and the
// totals right after it was applied.
type Receipt struct {
	Payment domain.Payment `json:"payment"`
	Totals  domain.Totals  `json:"totals"`
}

type totalsEvent struct {
	Totals domain.Totals `json:"totals"`
}
