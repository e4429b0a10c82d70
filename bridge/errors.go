package bridge

import "fmt"

// ErrorKind classifies a BridgeError.
type ErrorKind string

const (
	// KindConfiguration covers invalid predictor parameters and missing
	// required hooks.
	KindConfiguration ErrorKind = "ConfigurationError"
	// KindForeignExecution is a fault raised inside the foreign session
	// during a call. The error carries the session's diagnostic output.
	KindForeignExecution ErrorKind = "ForeignExecutionError"
	// KindUnsupportedValue means the codec was asked to convert a value it
	// cannot represent on the other side of the boundary.
	KindUnsupportedValue ErrorKind = "UnsupportedValueType"
	// KindUnexpectedResult means a foreign result did not match the shape
	// the calling mode requires.
	KindUnexpectedResult ErrorKind = "UnexpectedResultType"
	// KindInvalidPredictionShape means a structured predict result could
	// not be normalized into a tabular frame.
	KindInvalidPredictionShape ErrorKind = "InvalidPredictionShape"
	// KindInvalidTransformOutput means a transform result violated the
	// two-element (features, target) contract.
	KindInvalidTransformOutput ErrorKind = "InvalidTransformOutput"
)

// Sentinels for use with errors.Is to check whether any error in a chain
// is a *BridgeError of the given kind.
var (
	ErrConfiguration          = &BridgeError{Kind: KindConfiguration}
	ErrForeignExecution       = &BridgeError{Kind: KindForeignExecution}
	ErrUnsupportedValue       = &BridgeError{Kind: KindUnsupportedValue}
	ErrUnexpectedResult       = &BridgeError{Kind: KindUnexpectedResult}
	ErrInvalidPredictionShape = &BridgeError{Kind: KindInvalidPredictionShape}
	ErrInvalidTransformOutput = &BridgeError{Kind: KindInvalidTransformOutput}
)

// BridgeError is the error type surfaced by every bridge operation.
type BridgeError struct {
	Kind    ErrorKind
	Message string
	// Traceback holds the foreign session's diagnostic output for
	// KindForeignExecution errors, empty otherwise.
	Traceback string
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is supports errors.Is by matching any *BridgeError with the same kind.
func (e *BridgeError) Is(target error) bool {
	t, ok := target.(*BridgeError)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, format string, args ...any) *BridgeError {
	return &BridgeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
