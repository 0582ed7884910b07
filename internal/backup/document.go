// Package backup implements the export/import protocol: the full
// dataset serialized to a single JSON document and restored from it,
// ids preserved so supplier references survive the round trip.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fornitori/internal/core"
)

// FormatVersion tags exported documents. Informational only: import
// never branches on it.
const FormatVersion = "1"

var ErrInvalidDocument = errors.New("invalid backup document")

// Document is the sole backup artifact. It must be sufficient to
// reconstruct the dataset in full.
type Document struct {
	Suppliers []core.Supplier `json:"suppliers"`
	Invoices  []core.Invoice  `json:"invoices"`
	Timestamp time.Time       `json:"timestamp"`
	Version   string          `json:"version"`
}

// Validate checks the structure an import requires: both collections
// present as sequences. encoding/json leaves a slice nil when the key
// is absent or null and non-nil for [], which is exactly the
// distinction needed here.
func (d Document) Validate() error {
	if d.Suppliers == nil {
		return fmt.Errorf("%w: suppliers missing or not a sequence", ErrInvalidDocument)
	}
	if d.Invoices == nil {
		return fmt.Errorf("%w: invoices missing or not a sequence", ErrInvalidDocument)
	}
	return nil
}

// Encode renders the document as indented JSON, the form written to
// backup files and served by the export endpoint.
func (d Document) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup document: %w", err)
	}
	return data, nil
}

// Decode parses and structurally validates a candidate document.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}
