// Command consolidate runs one batch ingestion: discover exports, build
// the unified ledger, persist it, and print the financial analysis
// report to stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"finboard/internal/analyze"
	"finboard/internal/categorize"
	"finboard/internal/config"
	"finboard/internal/consolidate"
	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/transform"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(slog.LevelInfo, "consolidate")
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	rules, err := categorize.LoadRules(cfg.RulesFile)
	if err != nil {
		logger.Error("Failed to load categorizer rules", "error", err, "file", cfg.RulesFile)
		os.Exit(1)
	}

	transformer := transform.New(categorize.New(rules), time.Month(cfg.FiscalStartMonth))
	consolidator := consolidate.New(consolidate.Options{
		InputDir:         cfg.InputDir,
		OutputPath:       cfg.LedgerPath,
		Strict:           cfg.StrictIngest,
		PersistMandatory: true,
	}, transformer)

	result, err := consolidator.Consolidate(context.Background())
	if err != nil {
		logger.Error("Consolidation failed", "error", err)
		os.Exit(1)
	}

	for _, rej := range result.Rejected {
		logger.Warn("Rejected row", "file", rej.File, "row", rej.Row, "reason", rej.Reason)
	}
	fmt.Printf("Consolidated data saved to %s\n", cfg.LedgerPath)

	summary, err := analyze.Analyze(result.Ledger)
	if err != nil {
		if errors.Is(err, core.ErrEmptyLedger) {
			fmt.Println("Ledger is empty; nothing to analyze.")
			return
		}
		logger.Error("Analysis failed", "error", err)
		os.Exit(1)
	}
	printReport(summary)
}

func printReport(s analyze.Summary) {
	fmt.Println("\nCollege Student Financial Analysis:")
	fmt.Printf("Total Transactions: %d\n", s.TotalTransactions)
	fmt.Printf("Date Range: %s to %s\n", s.DateRange.Start, s.DateRange.End)
	fmt.Printf("\nTotal Income: $%s\n", s.TotalIncome.StringFixed(2))
	fmt.Printf("Total Expenses: $%s\n", s.TotalExpenses.StringFixed(2))
	fmt.Printf("Net Savings: $%s\n", s.NetSavings.StringFixed(2))

	fmt.Println("\nTop 5 Expense Categories:")
	for _, row := range s.TopExpenseCategories {
		fmt.Printf("  %-20s %s\n", row.Category, row.Expense.StringFixed(2))
	}

	fmt.Println("\nExpenses by Academic Period:")
	for _, row := range s.ExpensesByAcademicPeriod {
		fmt.Printf("  %-8s %s\n", row.Period, row.Expense.StringFixed(2))
	}

	fmt.Printf("\nAverage Monthly Spending: %s\n", s.AverageMonthlySpending.StringFixed(2))
	fmt.Printf("Financial Aid Received: %s\n", s.FinancialAidReceived.StringFixed(2))
	fmt.Printf("Tuition & Fees Paid: %s\n", s.TuitionFeesPaid.StringFixed(2))

	fmt.Println("\nAverage Spending by Day of Week:")
	for _, row := range s.AverageSpendingByDay {
		fmt.Printf("  %-10s %s\n", row.Day, row.Average.StringFixed(2))
	}
	fmt.Printf("\nHighest average spending on: %s\n", s.HighestSpendingDay)
}
