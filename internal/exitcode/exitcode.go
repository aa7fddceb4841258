package exitcode

// Exit codes for ysbot commands
const (
	Success   = 0
	Error     = 1
	Cancelled = 130 // 128 + SIGINT
)

// ExitError is an error that carries a specific exit code
type ExitError struct {
	Code    int
	Message string
}

func (e ExitError) Error() string {
	return e.Message
}

// Cancel reports a user-initiated interrupt.
func Cancel() ExitError {
	return ExitError{Code: Cancelled, Message: "cancelled"}
}
