package consolidate

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"finboard/internal/core"
	"finboard/internal/transform"
)

// ledgerHeader is the persisted column set: the raw fields followed by
// every derived field, one row per transaction.
var ledgerHeader = []string{
	"Date", "Description", "Amount", "Source",
	"Category", "Month", "Year", "DayOfWeek",
	"Income", "Expense", "AcademicPeriod",
}

const dateLayout = "2006-01-02"

// Persist writes the ledger to path as CSV, creating the target
// directory if needed. The write goes to a temporary file in the target
// directory first and is renamed into place, so a failure never
// corrupts a previously persisted ledger.
func Persist(path string, ledger []core.Transaction) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &core.PersistenceError{Path: path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.csv")
	if err != nil {
		return &core.PersistenceError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &core.PersistenceError{Path: path, Err: err}
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(ledgerHeader); err != nil {
		return cleanup(err)
	}
	for _, t := range ledger {
		row := []string{
			t.Date.Format(dateLayout),
			t.Description,
			t.Amount.String(),
			string(t.Source),
			string(t.Category),
			t.Month,
			strconv.Itoa(t.Year),
			t.DayOfWeek.String(),
			t.Income.String(),
			t.Expense.String(),
			string(t.AcademicPeriod),
		}
		if err := w.Write(row); err != nil {
			return cleanup(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &core.PersistenceError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &core.PersistenceError{Path: path, Err: err}
	}
	return nil
}

// LoadLedger reads a previously persisted ledger. Only the raw columns
// are trusted; derived fields are recomputed through the transformer so
// a reload always reflects the current derivation rules.
func LoadLedger(path string, tr *transform.Transformer) ([]core.Transaction, error) {
	if tr == nil {
		tr = transform.New(nil, 0)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, &core.MalformedInputError{File: path, Reason: "missing header: " + err.Error()}
	}
	if len(header) < 4 {
		return nil, &core.MalformedInputError{File: path, Reason: "not a ledger file"}
	}

	var raw []core.Transaction
	rowNum := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			return nil, &core.MalformedInputError{File: path, Row: rowNum, Reason: err.Error()}
		}
		t, perr := parseLedgerRow(row)
		if perr != nil {
			return nil, &core.MalformedInputError{File: path, Row: rowNum, Reason: perr.Error()}
		}
		raw = append(raw, t)
	}
	return tr.Enrich(raw), nil
}
