package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

// dateLayouts are the accepted input date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-Jan-2006",
}

// csvLoader reads a tabular export whose header names map onto the
// Date/Description/Amount triple. Column aliases differ per source;
// everything else is shared.
type csvLoader struct {
	source        core.Source
	dateAliases   []string
	descAliases   []string
	amountAliases []string
}

func newBankLoader() *csvLoader {
	return &csvLoader{
		source:        core.SourceBank,
		dateAliases:   []string{"date"},
		descAliases:   []string{"description"},
		amountAliases: []string{"amount"},
	}
}

func newGooglePayLoader() *csvLoader {
	return &csvLoader{
		source:        core.SourceGooglePay,
		dateAliases:   []string{"date", "transaction date"},
		descAliases:   []string{"description", "details"},
		amountAliases: []string{"amount"},
	}
}

func newPaytmLoader() *csvLoader {
	return &csvLoader{
		source:        core.SourcePaytm,
		dateAliases:   []string{"date", "txn date"},
		descAliases:   []string{"description", "narration"},
		amountAliases: []string{"amount", "txn amount"},
	}
}

func (l *csvLoader) Source() core.Source { return l.source }

// Load parses the file row by row, preserving file order. Rows that fail
// to parse become rejected rows; the file itself only fails when it cannot
// be read or its header lacks a required column.
func (l *csvLoader) Load(path string) ([]core.Transaction, []RejectedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &core.MalformedInputError{File: path, Reason: err.Error()}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // row width is validated against the header below
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, &core.MalformedInputError{File: path, Reason: "missing header: " + err.Error()}
	}

	dateIdx, err := l.columnIndex(header, l.dateAliases, "Date")
	if err != nil {
		return nil, nil, &core.MalformedInputError{File: path, Reason: err.Error()}
	}
	descIdx, err := l.columnIndex(header, l.descAliases, "Description")
	if err != nil {
		return nil, nil, &core.MalformedInputError{File: path, Reason: err.Error()}
	}
	amountIdx, err := l.columnIndex(header, l.amountAliases, "Amount")
	if err != nil {
		return nil, nil, &core.MalformedInputError{File: path, Reason: err.Error()}
	}

	var (
		txns     []core.Transaction
		rejected []RejectedRow
		rowNum   = 1 // header consumed
	)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			rejected = append(rejected, RejectedRow{File: path, Row: rowNum, Reason: err.Error()})
			continue
		}
		txn, perr := l.parseRow(row, dateIdx, descIdx, amountIdx)
		if perr != nil {
			rejected = append(rejected, RejectedRow{File: path, Row: rowNum, Reason: perr.Error()})
			continue
		}
		txns = append(txns, txn)
	}
	return txns, rejected, nil
}

func (l *csvLoader) parseRow(row []string, dateIdx, descIdx, amountIdx int) (core.Transaction, error) {
	maxIdx := dateIdx
	if descIdx > maxIdx {
		maxIdx = descIdx
	}
	if amountIdx > maxIdx {
		maxIdx = amountIdx
	}
	if len(row) <= maxIdx {
		return core.Transaction{}, fmt.Errorf("expected at least %d columns, got %d", maxIdx+1, len(row))
	}

	date, err := parseDate(row[dateIdx])
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := parseAmount(row[amountIdx])
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Date:        date,
		Description: strings.TrimSpace(row[descIdx]),
		Amount:      amount,
		Source:      l.source,
	}, nil
}

func (l *csvLoader) columnIndex(header, aliases []string, canonical string) (int, error) {
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		for _, alias := range aliases {
			if name == alias {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("missing %s column (accepted names: %s)", canonical, strings.Join(aliases, ", "))
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed date %q", s)
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	// Exports commonly group thousands with commas.
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("malformed amount %q", s)
	}
	return d, nil
}
