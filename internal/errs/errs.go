package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Kind classifies an error. Codes are stable and appear verbatim in
// serialized payloads, so they must never be renamed.
type Kind string

const (
	KindConnection      Kind = "CONNECTION_ERROR"
	KindAuthentication  Kind = "AUTHENTICATION_ERROR"
	KindRemoteProtocol  Kind = "REMOTE_PROTOCOL_ERROR"
	KindTimeout         Kind = "TRANSPORT_TIMEOUT"
	KindValidation      Kind = "RULE_VALIDATION_ERROR"
	KindTransform       Kind = "TRANSFORM_ERROR"
	KindMigrationObject Kind = "MIGRATION_OBJECT_ERROR"
	KindUnknownOp       Kind = "UNKNOWN_OPERATION"
)

// E is the common error shape for everything that crosses a component
// boundary. Details must never contain credential material.
type E struct {
	Kind      Kind
	Message   string
	Details   map[string]any
	Timestamp time.Time
	cause     error
}

func (e *E) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.cause }

// MarshalJSON emits a stable serialized form: code, message, timestamp,
// then details. Timestamps use RFC 3339 UTC.
func (e *E) MarshalJSON() ([]byte, error) {
	out := struct {
		Code      string         `json:"code"`
		Message   string         `json:"message"`
		Timestamp string         `json:"timestamp"`
		Details   map[string]any `json:"details,omitempty"`
	}{
		Code:      string(e.Kind),
		Message:   e.Message,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
		Details:   e.Details,
	}
	return json.Marshal(out)
}

func newE(kind Kind, msg string, cause error, details map[string]any) *E {
	return &E{
		Kind:      kind,
		Message:   msg,
		Details:   details,
		Timestamp: time.Now(),
		cause:     cause,
	}
}

// Connection reports a transport failure against a named profile.
func Connection(profile string, cause error) *E {
	return newE(KindConnection, "connection failed", cause, map[string]any{"profile": profile})
}

// Authentication reports a rejected credential. The rejected secret itself
// is never recorded.
func Authentication(profile string) *E {
	return newE(KindAuthentication, "credentials rejected", nil, map[string]any{"profile": profile})
}

// RemoteProtocol reports a structured error returned by the remote system.
func RemoteProtocol(statusCode int, response string) *E {
	return newE(KindRemoteProtocol, "remote returned an error", nil, map[string]any{
		"statusCode": statusCode,
		"response":   response,
	})
}

// Timeout reports an adapter operation exceeding its profile timeout.
func Timeout(op string, limit time.Duration) *E {
	return newE(KindTimeout, fmt.Sprintf("%s exceeded %s", op, limit), nil, map[string]any{"operation": op})
}

// Validation reports input that failed schema or rule validation.
func Validation(msg string, errList []string) *E {
	details := map[string]any{}
	if len(errList) > 0 {
		details["errors"] = errList
	}
	return newE(KindValidation, msg, nil, details)
}

// Transform reports a mapping or conversion producing an invalid value.
func Transform(objectID, mapping string, cause error) *E {
	return newE(KindTransform, "field mapping failed", cause, map[string]any{
		"objectId": objectID,
		"mapping":  mapping,
	})
}

// MigrationObject wraps a lifecycle failure with the phase it occurred in.
func MigrationObject(objectID, phase string, cause error) *E {
	return newE(KindMigrationObject, fmt.Sprintf("%s phase failed", phase), cause, map[string]any{
		"objectId": objectID,
		"phase":    phase,
	})
}

// UnknownOperation reports an operation the safety gate does not recognize.
func UnknownOperation(op string) *E {
	return newE(KindUnknownOp, fmt.Sprintf("operation %q is not recognized", op), nil, map[string]any{"operation": op})
}

// KindOf returns the Kind of err if it is (or wraps) an *E.
func KindOf(err error) (Kind, bool) {
	var e *E
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err is (or wraps) an *E of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
