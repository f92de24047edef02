package report

import "fmt"

// Kind classifies why a submission stopped.
type Kind int

const (
	KindMethodNotAllowed Kind = iota + 1
	KindConfiguration
	KindMalformedRequest
	KindValidation
	KindGateway
)

func (k Kind) String() string {
	switch k {
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindConfiguration:
		return "configuration"
	case KindMalformedRequest:
		return "malformed_request"
	case KindValidation:
		return "validation"
	case KindGateway:
		return "gateway"
	default:
		return "unknown"
	}
}

// Messages returned to the requester. Gateway and configuration failures
// never expose the underlying cause.
const (
	MsgMethodNotAllowed = "Method not allowed"
	MsgConfiguration    = "Server configuration error"
	MsgMalformedRequest = "Invalid JSON in request body"
	MsgGateway          = "Failed to create hideout report"
)

// Failure is the terminal error state of a submission.
// Message is safe to return to the client, Err is for the logs only.
type Failure struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// ValidationError rejects a request field. Message is returned verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func newValidationFailure(ve *ValidationError) *Failure {
	return &Failure{Kind: KindValidation, Message: ve.Message, Err: ve}
}
