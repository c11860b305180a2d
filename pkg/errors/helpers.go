package errors

import (
	"context"
	"errors"
)

// CheckContext returns an error if the context is canceled or timed out.
// This provides a standardized way to check and wrap context errors.
func CheckContext(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		code := Canceled
		if errors.Is(err, context.DeadlineExceeded) {
			code = Timeout
		}
		return Wrap(err, code, operation+" canceled")
	}
	return nil
}

// CodeOf extracts the ErrorCode from an error, Unknown if it carries none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code()
	}
	return Unknown
}
