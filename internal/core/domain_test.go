package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:        date(2024, time.September, 15),
		Description: "trader joes grocery",
		Amount:      decimal.RequireFromString("-45.20"),
		Source:      SourceBank,
		Category:    CategoryFoodGroceries,
		Expense:     decimal.RequireFromString("45.20"),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Source: SourceBank, Category: CategoryOther}, // zero date
		{Date: date(2024, 1, 1), Category: CategoryOther},                             // empty source
		{Date: date(2024, 1, 1), Source: SourceBank, Category: Category("Gambling")},  // unknown category
		{ // both income and expense set
			Date: date(2024, 1, 1), Source: SourceBank, Category: CategoryOther,
			Amount:  decimal.NewFromInt(5),
			Income:  decimal.NewFromInt(5),
			Expense: decimal.NewFromInt(5),
		},
		{ // zero amount with nonzero income
			Date: date(2024, 1, 1), Source: SourceBank, Category: CategoryOther,
			Income: decimal.NewFromInt(1),
		},
	}
	for i, txn := range bads {
		if err := txn.Validate(); err == nil {
			t.Errorf("case %d expected error", i)
		}
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories() {
		if !ValidCategory(c) {
			t.Errorf("%q should be valid", c)
		}
	}
	if ValidCategory(Category("Gambling")) {
		t.Error("unknown category accepted")
	}
	if len(Categories()) != 13 {
		t.Errorf("expected 13 categories, got %d", len(Categories()))
	}
}
