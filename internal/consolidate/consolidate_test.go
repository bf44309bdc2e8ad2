package consolidate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestConsolidator(t *testing.T, inputDir string, strict bool) (*Consolidator, string) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "ledger.csv")
	c := New(Options{InputDir: inputDir, OutputPath: out, Strict: strict}, nil)
	return c, out
}

func TestConsolidateMergesSortsAndPersists(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bank_2024.csv",
		"Date,Description,Amount\n"+
			"2024-09-20,Payment to Trader Joes Grocery,-45.20\n"+
			"2024-09-15,dorm rent,-500\n")
	writeFile(t, dir, "google_pay_sept.csv",
		"Date,Description,Amount\n"+
			"2024-09-10,uber ride,-12\n")
	// Discovery is case-insensitive on the filename.
	writeFile(t, dir, "PayTM_sept.CSV",
		"Date,Description,Amount\n"+
			"2024-09-01,scholarship credit,1000\n")
	writeFile(t, dir, "notes.txt", "not an export")

	c, out := newTestConsolidator(t, dir, false)
	result, err := c.Consolidate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Ledger) != 4 {
		t.Fatalf("expected 4 records, got %d", len(result.Ledger))
	}

	// Ascending by date across all sources.
	for i := 1; i < len(result.Ledger); i++ {
		if result.Ledger[i].Date.Before(result.Ledger[i-1].Date) {
			t.Fatal("ledger not sorted ascending by date")
		}
	}
	if result.Ledger[0].Source != core.SourcePaytm {
		t.Errorf("earliest record source = %q", result.Ledger[0].Source)
	}

	// Records are enriched before persisting.
	last := result.Ledger[3]
	if last.Description != "trader joes grocery" || last.Category != core.CategoryFoodGroceries {
		t.Errorf("enrichment missing: %q / %q", last.Description, last.Category)
	}

	if _, err := os.Stat(out); err != nil {
		t.Fatalf("ledger file not written: %v", err)
	}
}

func TestConsolidateStableSortKeepsInputOrderOnTies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bank.csv",
		"Date,Description,Amount\n"+
			"2024-05-01,first,-1\n"+
			"2024-05-01,second,-2\n"+
			"2024-05-01,third,-3\n")

	c, _ := newTestConsolidator(t, dir, false)
	result, err := c.Consolidate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second", "third"}
	for i, txn := range result.Ledger {
		if txn.Description != want[i] {
			t.Errorf("position %d = %q, want %q", i, txn.Description, want[i])
		}
	}
}

func TestConsolidateNoInputFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "unrelated.txt", "nothing")
	writeFile(t, dir, "statement.csv", "no source tag in name")

	c, _ := newTestConsolidator(t, dir, false)
	_, err := c.Consolidate(context.Background())
	if !errors.Is(err, core.ErrNoInputFiles) {
		t.Fatalf("expected ErrNoInputFiles, got %v", err)
	}
}

func TestConsolidateRejectedRowsReported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bank.csv",
		"Date,Description,Amount\n"+
			"2024-01-01,good,-1\n"+
			"garbage,bad,-1\n")

	c, _ := newTestConsolidator(t, dir, false)
	result, err := c.Consolidate(context.Background())
	if err != nil {
		t.Fatalf("non-strict run must not fail on a bad row: %v", err)
	}
	if len(result.Ledger) != 1 || len(result.Rejected) != 1 {
		t.Fatalf("records=%d rejected=%d", len(result.Ledger), len(result.Rejected))
	}
	if result.Rejected[0].Row != 3 {
		t.Errorf("rejected row = %d, want 3", result.Rejected[0].Row)
	}
}

func TestConsolidateSkipsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bank_good.csv",
		"Date,Description,Amount\n"+
			"2024-01-01,good,-1\n")
	// Header is missing the Description column entirely.
	writeFile(t, dir, "bank_bad.csv",
		"Date,Memo,Amount\n"+
			"2024-01-02,whatever,-2\n")

	c, _ := newTestConsolidator(t, dir, false)
	result, err := c.Consolidate(context.Background())
	if err != nil {
		t.Fatalf("non-strict run must not fail on one bad file: %v", err)
	}
	if len(result.Ledger) != 1 {
		t.Fatalf("good file lost alongside the bad one: %d records", len(result.Ledger))
	}
	if len(result.Rejected) != 1 {
		t.Fatalf("rejected = %d, want 1", len(result.Rejected))
	}
	rej := result.Rejected[0]
	if filepath.Base(rej.File) != "bank_bad.csv" || rej.Row != 0 {
		t.Errorf("rejection = %+v, want file bank_bad.csv row 0", rej)
	}
}

func TestConsolidateStrictFailsOnMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bank_good.csv",
		"Date,Description,Amount\n"+
			"2024-01-01,good,-1\n")
	writeFile(t, dir, "bank_bad.csv", "Date,Memo,Amount\n")

	c, _ := newTestConsolidator(t, dir, true)
	_, err := c.Consolidate(context.Background())
	var malformed *core.MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedInputError, got %v", err)
	}
	if filepath.Base(malformed.File) != "bank_bad.csv" {
		t.Errorf("error file = %q", malformed.File)
	}
}

func TestConsolidateStrictFailsOnRejectedRow(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bank.csv",
		"Date,Description,Amount\n"+
			"garbage,bad,-1\n")

	c, _ := newTestConsolidator(t, dir, true)
	_, err := c.Consolidate(context.Background())
	var malformed *core.MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedInputError, got %v", err)
	}
	if malformed.Row != 2 {
		t.Errorf("error row = %d, want 2", malformed.Row)
	}
}

func TestConsolidateEmptyFilesYieldEmptyLedger(t *testing.T) {
	dir := t.TempDir()
	// A discovered but empty export is a valid zero-record terminal state,
	// distinct from discovering nothing at all.
	writeFile(t, dir, "bank.csv", "Date,Description,Amount\n")

	c, _ := newTestConsolidator(t, dir, false)
	result, err := c.Consolidate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Ledger) != 0 {
		t.Fatalf("expected empty ledger, got %d records", len(result.Ledger))
	}
}

func TestConsolidatePersistenceFailureKeepsLedger(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bank.csv", "Date,Description,Amount\n2024-01-01,x,-1\n")

	// A plain file where the ledger directory should be blocks the write.
	outDir := t.TempDir()
	writeFile(t, outDir, "blocked", "")
	out := filepath.Join(outDir, "blocked", "ledger.csv")
	c := New(Options{InputDir: dir, OutputPath: out}, nil)
	result, err := c.Consolidate(context.Background())

	var perr *core.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if len(result.Ledger) != 1 {
		t.Fatalf("in-memory ledger lost on persistence failure: %d records", len(result.Ledger))
	}
}

func TestConsolidatePersistMandatory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bank.csv", "Date,Description,Amount\n2024-01-01,x,-1\n")

	outDir := t.TempDir()
	writeFile(t, outDir, "blocked", "")
	out := filepath.Join(outDir, "blocked", "ledger.csv")
	c := New(Options{InputDir: dir, OutputPath: out, PersistMandatory: true}, nil)
	result, err := c.Consolidate(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(result.Ledger) != 0 {
		t.Fatal("mandatory persistence must not return a partial result")
	}
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bank.csv",
		"Date,Description,Amount\n"+
			"2024-09-15,Payment to Trader Joes Grocery,-45.20\n"+
			"2024-09-01,scholarship credit,1000\n"+
			"2024-09-15,salary deposit,250.75\n")

	c, out := newTestConsolidator(t, dir, false)
	result, err := c.Consolidate(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	reloaded, err := LoadLedger(out, nil)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(reloaded) != len(result.Ledger) {
		t.Fatalf("round-trip changed record count: %d vs %d", len(reloaded), len(result.Ledger))
	}
	for i := range reloaded {
		a, b := result.Ledger[i], reloaded[i]
		if !a.Date.Equal(b.Date) || a.Description != b.Description || a.Source != b.Source {
			t.Errorf("row %d raw fields differ: %+v vs %+v", i, a, b)
		}
		if !a.Amount.Equal(b.Amount) || !a.Income.Equal(b.Income) || !a.Expense.Equal(b.Expense) {
			t.Errorf("row %d amounts differ", i)
		}
		if a.Category != b.Category || a.AcademicPeriod != b.AcademicPeriod || a.Month != b.Month {
			t.Errorf("row %d derived fields differ", i)
		}
	}
}

func TestSortIdempotence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bank.csv",
		"Date,Description,Amount\n"+
			"2024-02-01,b,-1\n"+
			"2024-01-01,a,-1\n"+
			"2024-02-01,c,-1\n")

	c, _ := newTestConsolidator(t, dir, false)
	result, err := c.Consolidate(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	resorted := append([]core.Transaction(nil), result.Ledger...)
	sort.SliceStable(resorted, func(i, j int) bool {
		return resorted[i].Date.Before(resorted[j].Date)
	})
	for i := range resorted {
		if resorted[i].Description != result.Ledger[i].Description {
			t.Fatalf("re-sorting a sorted ledger changed order at %d", i)
		}
	}
}

func TestPersistCreatesMissingDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data", "ledger.csv")
	if err := Persist(out, nil); err != nil {
		t.Fatalf("persist to a missing directory: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("ledger not written: %v", err)
	}
}

func TestPersistLeavesPriorLedgerOnFailure(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "ledger.csv")
	prior := []core.Transaction{{
		Date:        mustDate("2024-01-01"),
		Description: "prior",
		Amount:      decimal.NewFromInt(-1),
		Source:      core.SourceBank,
		Category:    core.CategoryOther,
		Expense:     decimal.NewFromInt(1),
	}}
	if err := Persist(out, prior); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	// A failed write elsewhere leaves the original untouched.
	writeFile(t, dir, "blocked", "")
	bad := filepath.Join(dir, "blocked", "ledger.csv")
	if err := Persist(bad, prior); err == nil {
		t.Fatal("expected persistence error")
	}
	after, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatal("prior ledger modified by failed persist")
	}
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
