package log

// Field names shared by log call sites across packages. Keys used in a
// single place stay inline at the call site.
const (
	FieldComponent  = "component"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatus     = "status"
	FieldDuration   = "duration_ms"
	FieldClientIP   = "client_ip"
	FieldError      = "error"
	FieldOp         = "op"
	FieldLine       = "line"
	FieldReason     = "reason"
	FieldCount      = "count"
	FieldAccepted   = "accepted"
	FieldRejected   = "rejected"
	FieldDuplicates = "duplicates"
)

// Component names passed to WithComponent
const (
	ComponentApp    = "app"
	ComponentIngest = "ingest"
)
