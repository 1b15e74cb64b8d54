package ollama

import (
	"errors"
	"fmt"

	"github.com/kirillkom/destination-organizer/internal/infrastructure/resilience"
)

// HTTPStatusError carries a non-2xx reply from the Ollama server.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ollama %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("ollama %s status: %s: %s", e.Operation, e.Status, e.Body)
}

func classifyOllamaError(err error) resilience.ErrorClassification {
	return resilience.Classify(err, func(err error) (resilience.ErrorClassification, bool) {
		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) {
			return resilience.ClassifyStatus(statusErr.StatusCode), true
		}
		return resilience.ErrorClassification{}, false
	})
}
