package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
)

var (
	// Transient failures are retried and count against the breaker.
	Transient = ErrorClassification{Retryable: true, RecordFailure: true}
	// Fatal failures are not retried but still trip the breaker.
	Fatal = ErrorClassification{RecordFailure: true}
	// Rejected failures are the caller's fault: no retry, no breaker penalty.
	Rejected = ErrorClassification{}
)

// statusOverloaded is the non-standard code some model APIs return when
// saturated.
const statusOverloaded = 529

// Classify applies the rules every adapter shares. specific runs after
// cancellation and open-breaker checks and may claim the error; otherwise
// network errors are transient and anything else is fatal.
func Classify(err error, specific func(error) (ErrorClassification, bool)) ErrorClassification {
	switch {
	case err == nil:
		return Rejected
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Rejected
	case IsCircuitOpen(err):
		return Transient
	}
	if specific != nil {
		if class, ok := specific(err); ok {
			return class
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Transient
	}
	return Fatal
}

// ClassifyStatus maps an upstream HTTP status onto a classification.
func ClassifyStatus(statusCode int) ErrorClassification {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout,
		statusOverloaded:
		return Transient
	default:
		return Rejected
	}
}

// WrapTemporary tags err with domain.ErrTemporary when classifier considers it
// retryable, so callers can answer 503 instead of 500.
func WrapTemporary(operation string, err error, classifier ErrorClassifier) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifier == nil {
		classifier = defaultClassifier
	}
	if classifier(err).Retryable || IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
