package gameapi

// Error is the result code returned by every client ABI call.
type Error int32

const (
	ErrorNone Error = iota
	ErrorUnknown
	ErrorNotImplemented
	ErrorRejected
	ErrorInvalidParameters
	ErrorFailed
	ErrorNotLoaded
	ErrorRestricted
)

// Error implements the error interface.
func (e Error) Error() string {
	switch e {
	case ErrorNone:
		return "no error"
	case ErrorUnknown:
		return "unknown error"
	case ErrorNotImplemented:
		return "not implemented"
	case ErrorRejected:
		return "rejected by the client"
	case ErrorInvalidParameters:
		return "invalid parameters"
	case ErrorFailed:
		return "the command failed"
	case ErrorNotLoaded:
		return "no game is loaded"
	case ErrorRestricted:
		return "the required resources are restricted"
	default:
		return "unrecognised error"
	}
}

// Err returns nil for ErrorNone and the code itself otherwise, so call
// sites can use ordinary error checks.
func (e Error) Err() error {
	if e == ErrorNone {
		return nil
	}
	return e
}
