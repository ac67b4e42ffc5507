// Package views holds the screen controllers: local form state, one API call
// per action, and an error string extracted from the backend response. Role
// conditional actions are derived from already-fetched data, never separate
// state machines.
package views

import (
	"errors"

	"github.com/tranminh/clubhub/internal/app/api"
)

// errorMessage extracts display text from an API error, falling back to the
// given generic text. Each view is responsible for its own extraction; there
// is no centralized error normalization beyond this helper.
func errorMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
