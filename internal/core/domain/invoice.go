package domain

import "time"

// InvoiceStatus represents the lifecycle state reported by the payment
// network. Invoices are immutable once returned; status changes are tracked
// upstream, not mutated locally.
type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "PENDING"
	InvoiceCreated InvoiceStatus = "CREATED"
	InvoiceFailed  InvoiceStatus = "FAILED"
)

// Invoice is the normalised result of an invoice-creation call, identical
// in shape regardless of which gateway path produced it.
type Invoice struct {
	ID                    string        `json:"id"`
	Status                InvoiceStatus `json:"status"`
	EncodedPaymentRequest string        `json:"encoded_payment_request"`
	BitcoinAddress        string        `json:"bitcoin_address,omitempty"`
	AmountMsats           int64         `json:"amount_msats"`
	Memo                  string        `json:"memo,omitempty"`
	PaymentHash           string        `json:"payment_hash,omitempty"`
	CreatedAt             time.Time     `json:"created_at"`
}

// NodeStatus is one entry of the network's node listing, normalised across
// gateway paths.
type NodeStatus struct {
	Typename string `json:"typename"`
	ID       string `json:"id"`
	Status   string `json:"status"`
}
