// Package gate decides whether a requested table operation may run.
// Reads always pass; writes pass only when the caller explicitly turns
// dry-run off. Omission means deny.
package gate

// Decision reasons.
const (
	ReasonUnknownOperation = "unknown-operation"
	ReasonLiveConfirmed    = "write-operation-live-mode-confirmed"
	ReasonRequiresLiveMode = "write-operation-requires-explicit-live-mode"
)

// ReadOperations never mutate the source or target.
var ReadOperations = map[string]bool{
	"readTable":     true,
	"queryEntities": true,
	"systemInfo":    true,
	"healthCheck":   true,
	"extract":       true,
	"validate":      true,
	"preview":       true,
}

// WriteOperations mutate the target and require explicit live mode.
var WriteOperations = map[string]bool{
	"load":          true,
	"createRecords": true,
	"updateRecords": true,
	"deleteRecords": true,
	"truncateTable": true,
	"postDocuments": true,
}

// Decision is the gate's verdict.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Options carries the caller's flags. DryRun is a pointer on purpose:
// only an explicit false confirms live mode, a missing flag denies.
type Options struct {
	DryRun *bool
}

// Decide is a pure function of the operation and options.
func Decide(op string, opts Options) Decision {
	switch {
	case ReadOperations[op]:
		return Decision{Allowed: true}
	case WriteOperations[op]:
		if opts.DryRun != nil && !*opts.DryRun {
			return Decision{Allowed: true, Reason: ReasonLiveConfirmed}
		}
		return Decision{Allowed: false, Reason: ReasonRequiresLiveMode}
	default:
		return Decision{Allowed: false, Reason: ReasonUnknownOperation}
	}
}

// DecideValue is Decide for callers holding a decoded JSON payload
// where dryRun may be absent, boolean, or junk. Only the JSON literal
// false confirms live mode.
func DecideValue(op string, dryRun any) Decision {
	if b, ok := dryRun.(bool); ok {
		return Decide(op, Options{DryRun: &b})
	}
	return Decide(op, Options{})
}
