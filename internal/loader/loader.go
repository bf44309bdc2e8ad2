// Package loader parses raw source exports into transaction records.
// Each supported source has its own loader knowing that source's column
// naming; all of them produce records with the raw fields populated and
// the source tag fixed to the loader's identity.
package loader

import (
	"fmt"

	"finboard/internal/core"
)

// RejectedRow describes one input row that failed to parse. Rows are
// collected instead of silently dropped so ingestion can report them.
type RejectedRow struct {
	File   string
	Row    int
	Reason string
}

// Loader parses one source's export format.
type Loader interface {
	// Source returns the provenance tag stamped on every record.
	Source() core.Source
	// Load parses the file at path. Row-level failures are returned as
	// rejected rows; a file-level failure (unreadable, missing column)
	// returns a *core.MalformedInputError.
	Load(path string) ([]core.Transaction, []RejectedRow, error)
}

// ForSource returns the loader for the given source.
func ForSource(s core.Source) (Loader, error) {
	switch s {
	case core.SourceBank:
		return newBankLoader(), nil
	case core.SourceGooglePay:
		return newGooglePayLoader(), nil
	case core.SourcePaytm:
		return newPaytmLoader(), nil
	default:
		return nil, fmt.Errorf("unsupported source: %q", s)
	}
}
