package enginedto

// DomainError is the caller-facing error shape of the engine service.
// Retryable marks failures that may succeed on a later attempt (timeouts),
// as opposed to state errors the caller has to resolve first.
type DomainError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "engine service error"
}

const (
	CodeNotRunning     = "ENGINE_NOT_RUNNING"
	CodeAlreadyRunning = "ENGINE_ALREADY_RUNNING"
	CodeTimeout        = "ENGINE_TIMEOUT"
	CodeFailed         = "ENGINE_FAILED"
	CodeBadRequest     = "BAD_REQUEST"
)
