// Package analyze computes aggregate financial views over an immutable
// ledger snapshot. All computations are pure; the ledger is never
// mutated.
package analyze

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

func init() {
	// Monetary values go over the wire as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// DateRange is the inclusive span covered by the ledger.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CategoryExpense is one row of an expense-by-category view. Order in
// the containing slice is part of the contract (descending expense,
// then label ascending), which is why these views are slices and not
// maps.
type CategoryExpense struct {
	Category core.Category   `json:"category"`
	Expense  decimal.Decimal `json:"expense"`
}

// PeriodExpense is one row of the expenses-by-academic-period view.
type PeriodExpense struct {
	Period  core.AcademicPeriod `json:"academic_period"`
	Expense decimal.Decimal     `json:"expense"`
}

// DayAverage is the mean expense per transaction for one day of week.
type DayAverage struct {
	Day     string          `json:"day"`
	Average decimal.Decimal `json:"average"`
}

// Summary is the aggregate financial picture of a ledger.
type Summary struct {
	TotalTransactions        int               `json:"total_transactions"`
	DateRange                DateRange         `json:"date_range"`
	TotalIncome              decimal.Decimal   `json:"total_income"`
	TotalExpenses            decimal.Decimal   `json:"total_expenses"`
	NetSavings               decimal.Decimal   `json:"net_savings"`
	TopExpenseCategories     []CategoryExpense `json:"top_expense_categories"`
	ExpensesByAcademicPeriod []PeriodExpense   `json:"expenses_by_academic_period"`
	AverageMonthlySpending   decimal.Decimal   `json:"average_monthly_spending"`
	FinancialAidReceived     decimal.Decimal   `json:"financial_aid_received"`
	TuitionFeesPaid          decimal.Decimal   `json:"tuition_fees_paid"`
	AverageSpendingByDay     []DayAverage      `json:"average_spending_by_day"`
	HighestSpendingDay       string            `json:"highest_spending_day"`
}

const dateLayout = "2006-01-02"

// weekOrder is the fixed Mon..Sun enumeration used for tie-breaking.
var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Analyze computes the financial summary of a ledger. An empty ledger
// fails with core.ErrEmptyLedger.
func Analyze(ledger []core.Transaction) (Summary, error) {
	if len(ledger) == 0 {
		return Summary{}, core.ErrEmptyLedger
	}

	s := Summary{TotalTransactions: len(ledger)}

	minDate, maxDate := ledger[0].Date, ledger[0].Date
	totalIncome, totalExpenses := decimal.Zero, decimal.Zero
	aid, tuition := decimal.Zero, decimal.Zero
	byCategory := map[core.Category]decimal.Decimal{}
	byPeriod := map[core.AcademicPeriod]decimal.Decimal{}

	type bucket struct {
		sum   decimal.Decimal
		count int64
	}
	byMonth := map[string]*bucket{}
	byDay := map[time.Weekday]*bucket{}

	for _, t := range ledger {
		if t.Date.Before(minDate) {
			minDate = t.Date
		}
		if t.Date.After(maxDate) {
			maxDate = t.Date
		}
		totalIncome = totalIncome.Add(t.Income)
		totalExpenses = totalExpenses.Add(t.Expense)
		if t.Category == core.CategoryFinancialAid {
			aid = aid.Add(t.Income)
		}
		if t.Category == core.CategoryTuitionFees {
			tuition = tuition.Add(t.Expense)
		}
		byCategory[t.Category] = byCategory[t.Category].Add(t.Expense)
		byPeriod[t.AcademicPeriod] = byPeriod[t.AcademicPeriod].Add(t.Expense)

		mb := byMonth[t.Month]
		if mb == nil {
			mb = &bucket{}
			byMonth[t.Month] = mb
		}
		mb.sum = mb.sum.Add(t.Expense)
		mb.count++

		db := byDay[t.DayOfWeek]
		if db == nil {
			db = &bucket{}
			byDay[t.DayOfWeek] = db
		}
		db.sum = db.sum.Add(t.Expense)
		db.count++
	}

	s.DateRange = DateRange{Start: minDate.Format(dateLayout), End: maxDate.Format(dateLayout)}
	s.TotalIncome = totalIncome.Round(2)
	s.TotalExpenses = totalExpenses.Round(2)
	s.NetSavings = totalIncome.Sub(totalExpenses).Round(2)
	s.FinancialAidReceived = aid.Round(2)
	s.TuitionFeesPaid = tuition.Round(2)

	s.TopExpenseCategories = sortedCategories(byCategory)
	if len(s.TopExpenseCategories) > 5 {
		s.TopExpenseCategories = s.TopExpenseCategories[:5]
	}

	for period, sum := range byPeriod {
		s.ExpensesByAcademicPeriod = append(s.ExpensesByAcademicPeriod, PeriodExpense{Period: period, Expense: sum.Round(2)})
	}
	sort.Slice(s.ExpensesByAcademicPeriod, func(i, j int) bool {
		a, b := s.ExpensesByAcademicPeriod[i], s.ExpensesByAcademicPeriod[j]
		if !a.Expense.Equal(b.Expense) {
			return a.Expense.GreaterThan(b.Expense)
		}
		return a.Period < b.Period
	})

	// Mean across months of the per-month mean expense per transaction.
	// Deliberately a mean of means, not a flat average over all records.
	monthlyMeans := decimal.Zero
	for _, mb := range byMonth {
		monthlyMeans = monthlyMeans.Add(mb.sum.Div(decimal.NewFromInt(mb.count)))
	}
	s.AverageMonthlySpending = monthlyMeans.Div(decimal.NewFromInt(int64(len(byMonth)))).Round(2)

	// Days with no transactions are omitted rather than reported as zero.
	for _, day := range weekOrder {
		db := byDay[day]
		if db == nil {
			continue
		}
		s.AverageSpendingByDay = append(s.AverageSpendingByDay, DayAverage{
			Day:     day.String(),
			Average: db.sum.Div(decimal.NewFromInt(db.count)).Round(2),
		})
	}
	// Descending by average; SliceStable over the Mon..Sun base order
	// makes ties resolve to the first weekday in that enumeration.
	sort.SliceStable(s.AverageSpendingByDay, func(i, j int) bool {
		return s.AverageSpendingByDay[i].Average.GreaterThan(s.AverageSpendingByDay[j].Average)
	})
	s.HighestSpendingDay = s.AverageSpendingByDay[0].Day

	return s, nil
}

// TimeseriesPoint is the per-date income/expense aggregate.
type TimeseriesPoint struct {
	Date       string          `json:"date"`
	IncomeSum  decimal.Decimal `json:"income_sum"`
	ExpenseSum decimal.Decimal `json:"expense_sum"`
}

// Timeseries groups the ledger by date, ascending, summing income and
// expense per date.
func Timeseries(ledger []core.Transaction) []TimeseriesPoint {
	type sums struct{ income, expense decimal.Decimal }
	byDate := map[string]*sums{}
	var order []string
	for _, t := range ledger {
		key := t.Date.Format(dateLayout)
		b := byDate[key]
		if b == nil {
			b = &sums{}
			byDate[key] = b
			order = append(order, key)
		}
		b.income = b.income.Add(t.Income)
		b.expense = b.expense.Add(t.Expense)
	}
	sort.Strings(order)
	points := make([]TimeseriesPoint, 0, len(order))
	for _, key := range order {
		b := byDate[key]
		points = append(points, TimeseriesPoint{
			Date:       key,
			IncomeSum:  b.income.Round(2),
			ExpenseSum: b.expense.Round(2),
		})
	}
	return points
}

// CategoryBreakdown sums expenses per category, descending, with ties
// broken by category label ascending.
func CategoryBreakdown(ledger []core.Transaction) []CategoryExpense {
	byCategory := map[core.Category]decimal.Decimal{}
	for _, t := range ledger {
		byCategory[t.Category] = byCategory[t.Category].Add(t.Expense)
	}
	return sortedCategories(byCategory)
}

func sortedCategories(byCategory map[core.Category]decimal.Decimal) []CategoryExpense {
	out := make([]CategoryExpense, 0, len(byCategory))
	for cat, sum := range byCategory {
		out = append(out, CategoryExpense{Category: cat, Expense: sum.Round(2)})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Expense.Equal(out[j].Expense) {
			return out[i].Expense.GreaterThan(out[j].Expense)
		}
		return out[i].Category < out[j].Category
	})
	return out
}
