package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrNotConfigured is returned when no store host has been configured.
	ErrNotConfigured = errors.New("clickhouse: store not configured")

	// ErrPlaceholderMismatch is returned by Build when the number of ?
	// placeholders differs from the number of arguments.
	ErrPlaceholderMismatch = errors.New("clickhouse: placeholder count does not match arguments")
)

const maxErrorBody = 512

// StoreError reports a failed round trip to the store. StatusCode is zero when
// the request never produced a response (dial, TLS or timeout failures).
type StoreError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("clickhouse: request failed: %v", e.Err)
	}
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return fmt.Sprintf("clickhouse: status %d: %s", e.StatusCode, body)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request was cut short by a deadline.
func (e *StoreError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// ParseError reports a response line that is not a JSON object.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("clickhouse: malformed row on line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
