package api

import (
	"errors"
	"fmt"
	"net"
)

// ErrUnreachable wraps failures to resolve or connect to the API host.
var ErrUnreachable = errors.New("api host unreachable")

// HTTPError is returned when the server answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// classify marks DNS and dial failures as ErrUnreachable and leaves every
// other transport error untouched.
func classify(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	return err
}
