package soundtouch

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
)

// ErrorKind represents the category of error that occurred while talking to
// a device.
type ErrorKind int

const (
	// KindTransport indicates a network-level failure (connection refused,
	// timeout, socket error). Always retryable at a higher layer.
	KindTransport ErrorKind = iota
	// KindProtocol indicates the device answered with a non-2xx HTTP status.
	KindProtocol
	// KindDecode indicates malformed XML or XML missing expected structure.
	KindDecode
	// KindDiscovery indicates an mDNS browse session failure.
	KindDiscovery
)

// TransportCause provides more specific transport error classification.
type TransportCause int

const (
	CauseGeneral TransportCause = iota
	CauseTimeout
	CauseConnectionRefused
	CauseDNS
	CauseHostUnreachable
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "Transport Error"
	case KindProtocol:
		return "Protocol Error"
	case KindDecode:
		return "Decode Error"
	case KindDiscovery:
		return "Discovery Error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// DeviceError represents a failure while communicating with a SoundTouch
// device. The Kind field places it in the retry taxonomy: transport errors
// are retryable by the caller, protocol and decode errors are not.
type DeviceError struct {
	Kind       ErrorKind      // Category of error
	Message    string         // Human-readable error message
	StatusCode int            // HTTP status code (protocol errors)
	Body       string         // Response body (protocol errors)
	Err        error          // Underlying error (if any)
	Cause      TransportCause // More specific transport cause
	Retryable  bool           // Whether the error is retryable
}

// Error implements the error interface.
func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// classifyTransport analyzes a transport-level error and assigns a cause.
func classifyTransport(err error) (TransportCause, bool) {
	if err == nil {
		return CauseGeneral, true
	}

	if os.IsTimeout(err) {
		return CauseTimeout, true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CauseDNS, false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return CauseConnectionRefused, true
		}
		if errors.Is(opErr.Err, syscall.EHOSTUNREACH) || errors.Is(opErr.Err, syscall.ENETUNREACH) {
			return CauseHostUnreachable, true
		}
	}

	return CauseGeneral, true
}

// NewTransportError creates a transport-level error with automatic cause
// classification.
func NewTransportError(message string, err error) *DeviceError {
	cause, retryable := classifyTransport(err)
	return &DeviceError{
		Kind:      KindTransport,
		Message:   message,
		Err:       err,
		Cause:     cause,
		Retryable: retryable,
	}
}

// NewProtocolError creates an error for a non-2xx HTTP response. The status
// and body are preserved for the caller; protocol errors are never retried
// by the client itself.
func NewProtocolError(statusCode int, body string) *DeviceError {
	return &DeviceError{
		Kind:       KindProtocol,
		Message:    fmt.Sprintf("device returned status %d", statusCode),
		StatusCode: statusCode,
		Body:       body,
		Retryable:  false,
	}
}

// NewDecodeError creates an error for malformed or structurally unexpected
// XML.
func NewDecodeError(message string, err error) *DeviceError {
	return &DeviceError{
		Kind:      KindDecode,
		Message:   message,
		Err:       err,
		Retryable: false,
	}
}

// NewDiscoveryError creates an error for a failed mDNS browse session.
// Discovery errors are non-fatal: callers keep whatever static configuration
// they have.
func NewDiscoveryError(message string, err error) *DeviceError {
	return &DeviceError{
		Kind:      KindDiscovery,
		Message:   message,
		Err:       err,
		Retryable: true,
	}
}

// IsTransportError checks if an error is a transport error.
func IsTransportError(err error) bool {
	var devErr *DeviceError
	return errors.As(err, &devErr) && devErr.Kind == KindTransport
}

// IsProtocolError checks if an error is a protocol (HTTP status) error.
func IsProtocolError(err error) bool {
	var devErr *DeviceError
	return errors.As(err, &devErr) && devErr.Kind == KindProtocol
}

// IsDecodeError checks if an error is an XML decode error.
func IsDecodeError(err error) bool {
	var devErr *DeviceError
	return errors.As(err, &devErr) && devErr.Kind == KindDecode
}

// IsDiscoveryError checks if an error is a discovery error.
func IsDiscoveryError(err error) bool {
	var devErr *DeviceError
	return errors.As(err, &devErr) && devErr.Kind == KindDiscovery
}

// IsRetryable checks if an error should be retried by a higher layer.
func IsRetryable(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Retryable
	}
	return false
}
