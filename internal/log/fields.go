package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldDocument   = "document"
	FieldBillID     = "bill_id"
	FieldTxHash     = "tx_hash"
	FieldCreditor   = "creditor"
	FieldBillDate   = "bill_date"
	FieldAmount     = "amount"
	FieldInserted   = "inserted"
	FieldRule       = "rule"
	FieldRows       = "rows"
	FieldJobID      = "job_id"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentExtract   = "extract"
	ComponentStorage   = "storage"
	ComponentAssistant = "assistant"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentBackend   = "backend"
	ComponentTabular   = "tabular"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpIngest   = "ingest"
	OpImport   = "import"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpAsk      = "ask"
	OpReport   = "report"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithClientIP adds client IP field
func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithDocument adds the source document name
func (f LogFields) WithDocument(name string) LogFields {
	f[FieldDocument] = name
	return f
}

// WithBill adds bill identity fields. Null fields are logged as empty.
func (f LogFields) WithBill(id, creditor, date, amount string) LogFields {
	f[FieldBillID] = id
	f[FieldCreditor] = creditor
	f[FieldBillDate] = date
	f[FieldAmount] = amount
	return f
}

// WithInserted records the outcome of an insert-if-absent write
func (f LogFields) WithInserted(inserted bool) LogFields {
	f[FieldInserted] = inserted
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
