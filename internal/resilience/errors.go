package resilience

import (
	"errors"
	"net"
	"syscall"

	"github.com/pawmetric/survey-cli/pkg/places"
)

// IsTransient reports whether the error is safe to retry: a transient
// provider status (rate limit, 5xx), a network timeout, or a dropped
// connection. Everything else fails fast.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pe *places.ProviderError
	if errors.As(err, &pe) {
		return pe.Transient()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED)
}
