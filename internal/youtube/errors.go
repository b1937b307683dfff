package youtube

import (
	"errors"
	"fmt"
	"net/http"
)

// UpstreamError is returned when the Data API answers with a non-2xx status.
// Message is the API's own error.message when the body carried one, otherwise
// "HTTP <status>".
type UpstreamError struct {
	Op      string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed (%d): %s", e.Op, e.Status, e.Message)
}

// IsForbidden reports whether err is an upstream 403 (bad key, API disabled
// or quota exhausted).
func IsForbidden(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Status == http.StatusForbidden
}
