package telegram

import "fmt"

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeProvider   ErrorType = "PROVIDER"
	ErrTypeValidation ErrorType = "VALIDATION"
)

// GatewayError wraps every failure talking to the Bot API. For PROVIDER errors
// Message is the description Telegram returned alongside ok=false.
type GatewayError struct {
	Type    ErrorType
	Method  string
	Code    int
	Message string
	Cause   error
}

func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("telegram %s error in %s: %s (caused by: %v)", e.Type, e.Method, e.Message, e.Cause)
	}
	return fmt.Sprintf("telegram %s error in %s: %s", e.Type, e.Method, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Cause }

// Description is the text suitable for showing to the user.
func (e *GatewayError) Description() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Type)
}
