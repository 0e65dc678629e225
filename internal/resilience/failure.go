package resilience

import (
	"time"

	"github.com/sells-group/coach-directory/internal/model"
)

// NewSourceFailure records a candidate URL that yielded nothing because of err.
func NewSourceFailure(url string, err error, attempts int) model.SourceFailure {
	return model.SourceFailure{
		URL:       url,
		Error:     err.Error(),
		ErrorType: ClassifyError(err),
		Attempts:  attempts,
		FailedAt:  time.Now().UTC(),
	}
}
