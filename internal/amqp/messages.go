package amqp

import (
	"encoding/json"
	"time"
)

// ChangeKind identifies what happened to the ledger.
type ChangeKind string

const (
	SupplierUpserted ChangeKind = "supplier_upserted"
	SupplierDeleted  ChangeKind = "supplier_deleted"
	InvoiceUpserted  ChangeKind = "invoice_upserted"
	InvoiceDeleted   ChangeKind = "invoice_deleted"
	DatasetReplaced  ChangeKind = "dataset_replaced"
)

// IsValid returns true if the kind is one the worker knows.
func (k ChangeKind) IsValid() bool {
	switch k {
	case SupplierUpserted, SupplierDeleted, InvoiceUpserted, InvoiceDeleted, DatasetReplaced:
		return true
	default:
		return false
	}
}

// ChangeMessage is a lightweight notification that the ledger changed.
// It carries only the kind and the affected id; consumers fetch current
// state from the gateway, so duplicate or stale deliveries are harmless.
type ChangeMessage struct {
	Kind      ChangeKind `json:"kind"`
	ID        string     `json:"id,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewChangeMessage creates a change notification stamped now. The id is
// empty for dataset-wide events.
func NewChangeMessage(kind ChangeKind, id string) *ChangeMessage {
	return &ChangeMessage{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
