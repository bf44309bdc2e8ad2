package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies the export system a transaction originated from.
// It is set once by the loader and never mutated afterwards.
type Source string

const (
	SourceBank      Source = "Bank"
	SourceGooglePay Source = "Google Pay"
	SourcePaytm     Source = "Paytm"
)

// Sources lists all known sources in discovery order.
func Sources() []Source {
	return []Source{SourceBank, SourceGooglePay, SourcePaytm}
}

// Category is the closed set of spending labels assigned by the categorizer.
type Category string

const (
	CategoryFoodGroceries     Category = "Food & Groceries"
	CategoryEatingOut         Category = "Eating Out"
	CategoryUtilities         Category = "Utilities"
	CategoryTransportation    Category = "Transportation"
	CategoryFinancialAid      Category = "Financial Aid"
	CategoryIncome            Category = "Income"
	CategoryHousing           Category = "Housing"
	CategoryEntertainment     Category = "Entertainment"
	CategoryHealthcare        Category = "Healthcare"
	CategoryEducationSupplies Category = "Education Supplies"
	CategoryTuitionFees       Category = "Tuition & Fees"
	CategoryCampusActivities  Category = "Campus Activities"
	CategoryOther             Category = "Other"
)

// Categories lists all categories in categorizer priority order, fallback last.
func Categories() []Category {
	return []Category{
		CategoryFoodGroceries,
		CategoryEatingOut,
		CategoryUtilities,
		CategoryTransportation,
		CategoryFinancialAid,
		CategoryIncome,
		CategoryHousing,
		CategoryEntertainment,
		CategoryHealthcare,
		CategoryEducationSupplies,
		CategoryTuitionFees,
		CategoryCampusActivities,
		CategoryOther,
	}
}

// ValidCategory reports whether c belongs to the closed category set.
func ValidCategory(c Category) bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// AcademicPeriod groups dates into semesters derived from a
// fiscal-year-anchored quarter.
type AcademicPeriod string

const (
	PeriodFall   AcademicPeriod = "Fall"
	PeriodSpring AcademicPeriod = "Spring"
	PeriodSummer AcademicPeriod = "Summer"
)

// Transaction is the central record of the ledger. Date, Description, Amount
// and Source are raw fields populated by a loader; the remaining fields are
// derived by the transformer as pure functions of the raw ones.
type Transaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Source      Source

	Category       Category
	Month          string // YYYY-MM
	Year           int
	DayOfWeek      time.Weekday
	Income         decimal.Decimal
	Expense        decimal.Decimal
	AcademicPeriod AcademicPeriod
}

var (
	ErrZeroDate    = errors.New("transaction date cannot be zero")
	ErrEmptySource = errors.New("transaction source cannot be empty")
)

// Validate checks the invariants an enriched transaction must hold.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if strings.TrimSpace(string(t.Source)) == "" {
		return ErrEmptySource
	}
	if !ValidCategory(t.Category) {
		return errors.New("unknown category: " + string(t.Category))
	}
	if t.Income.IsPositive() && t.Expense.IsPositive() {
		return errors.New("income and expense cannot both be nonzero")
	}
	if t.Amount.IsZero() && (!t.Income.IsZero() || !t.Expense.IsZero()) {
		return errors.New("zero-amount transaction must have zero income and expense")
	}
	return nil
}
