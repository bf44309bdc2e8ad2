package consolidate

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

func parseLedgerRow(row []string) (core.Transaction, error) {
	if len(row) < 4 {
		return core.Transaction{}, fmt.Errorf("expected at least 4 columns, got %d", len(row))
	}
	date, err := time.Parse(dateLayout, row[0])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("malformed date %q", row[0])
	}
	amount, err := decimal.NewFromString(row[2])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("malformed amount %q", row[2])
	}
	return core.Transaction{
		Date:        date,
		Description: row[1],
		Amount:      amount,
		Source:      core.Source(row[3]),
	}, nil
}
