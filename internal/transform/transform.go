// Package transform enriches raw transaction records with derived fields:
// cleaned description, category, temporal buckets, the income/expense
// split and the academic period.
package transform

import (
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/categorize"
	"finboard/internal/core"
)

// DefaultFiscalStartMonth anchors the academic calendar: the fall
// semester starts in August.
const DefaultFiscalStartMonth = time.August

// Transformer derives the enriched fields of a transaction. All
// derivations are pure functions of the raw fields.
type Transformer struct {
	categorizer *categorize.Categorizer
	startMonth  time.Month
}

// New builds a transformer. A nil categorizer falls back to the default
// rule table; a zero startMonth falls back to August.
func New(c *categorize.Categorizer, startMonth time.Month) *Transformer {
	if c == nil {
		c = categorize.Default()
	}
	if startMonth < time.January || startMonth > time.December {
		startMonth = DefaultFiscalStartMonth
	}
	return &Transformer{categorizer: c, startMonth: startMonth}
}

// Enrich returns enriched copies of the input records, in the same
// order. The input slice is never mutated; sorting is the consolidator's
// job and happens after enrichment.
func (tr *Transformer) Enrich(raw []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(raw))
	for i, t := range raw {
		out[i] = tr.enrichOne(t)
	}
	return out
}

func (tr *Transformer) enrichOne(t core.Transaction) core.Transaction {
	t.Description = categorize.Clean(t.Description)
	t.Category = tr.categorizer.Categorize(t.Description)
	t.Month = t.Date.Format("2006-01")
	t.Year = t.Date.Year()
	t.DayOfWeek = t.Date.Weekday()
	t.Income = decimal.Zero
	t.Expense = decimal.Zero
	if t.Amount.IsPositive() {
		t.Income = t.Amount
	} else if t.Amount.IsNegative() {
		t.Expense = t.Amount.Neg()
	}
	t.AcademicPeriod = tr.academicPeriod(t.Date)
	return t
}

// academicPeriod maps the fiscal quarter of the date (quarters counted
// from the configured start month) onto a semester: Q1 and Q2 both map
// to Fall, Q3 to Spring, Q4 to Summer. The two-quarters-to-Fall collapse
// comes from the legacy rule set and is kept for compatibility.
func (tr *Transformer) academicPeriod(date time.Time) core.AcademicPeriod {
	monthsIn := (int(date.Month()) - int(tr.startMonth) + 12) % 12
	switch monthsIn / 3 {
	case 0, 1:
		return core.PeriodFall
	case 2:
		return core.PeriodSpring
	default:
		return core.PeriodSummer
	}
}
