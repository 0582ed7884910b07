package log

// Common field names for structured logging.
const (
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldSupplierID = "supplier_id"
	FieldInvoiceID  = "invoice_id"
	FieldCount      = "count"
)
