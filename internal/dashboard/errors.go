package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/runger/tubedash/internal/sanitize"
	"github.com/runger/tubedash/internal/youtube"
)

var (
	// ErrEmptyResult is the soft outcome of a search that succeeded with no
	// records. It is reported through the message channel, never returned
	// from Search.
	ErrEmptyResult = errors.New("no results found")

	// ErrExportEmpty is returned when export is requested while the current
	// projection has no rows.
	ErrExportEmpty = errors.New("nothing to export: run a search and check the filters first")

	// ErrSuperseded is returned by a search whose result was discarded
	// because a newer search started before it finished.
	ErrSuperseded = errors.New("search superseded by a newer search")
)

// Reasons carried by ConfigurationError.
const (
	ReasonMissingKey = "set an API key first: tubedash key set <key>"
	ReasonEmptyQuery = "enter a search query"
	ReasonEmptyKey   = "enter an API key"
)

// ConfigurationError is returned when a search cannot start because local
// input is missing. The pipeline is never invoked.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return e.Reason
}

// QuotaHint replaces the upstream text for 403 responses, which almost
// always mean a bad key, a disabled API or an exhausted daily quota.
const QuotaHint = "error: this may be a permission or quota problem. Check the API key and its daily quota."

// UserMessage converts an error into the text shown to the user. It returns
// "" for errors that should stay silent.
func UserMessage(err error) string {
	if err == nil || errors.Is(err, ErrSuperseded) || errors.Is(err, context.Canceled) {
		return ""
	}

	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr.Reason
	}

	if youtube.IsForbidden(err) {
		return QuotaHint
	}

	var upErr *youtube.UpstreamError
	if errors.As(err, &upErr) {
		return fmt.Sprintf("error: %s", upErr.Error())
	}

	if errors.Is(err, ErrEmptyResult) || errors.Is(err, ErrExportEmpty) {
		return err.Error()
	}
	return fmt.Sprintf("error: %s", sanitize.Sanitize(err.Error()))
}
