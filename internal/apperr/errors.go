// Package apperr holds the error taxonomy shared by ingest, settings and
// aggregation. Every failure aborts the whole refresh; nothing here is retried.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNothingToRender is returned for an empty table.
var ErrNothingToRender = errors.New("nothing to render: table has no rows")

// CoercionError reports a cell that could not be parsed into its column type.
type CoercionError struct {
	Row    int // 1-based, as shown in the editor; 0 when not row-scoped
	Column string
	Value  string
	Err    error
}

func (e *CoercionError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: column %q: cannot use %q: %v", e.Row, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("column %q: cannot use %q: %v", e.Column, e.Value, e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }

// MissingSettingsKeyError is returned when a settings key is needed but absent.
type MissingSettingsKeyError struct{ Key string }

func (e *MissingSettingsKeyError) Error() string {
	return fmt.Sprintf("missing settings key %q", e.Key)
}

const (
	KindInvalidInput   = "invalid_input"
	KindTypeCoercion   = "type_coercion"
	KindMissingSetting = "missing_settings_key"
	KindInvalidSetting = "invalid_settings"
	KindInternal       = "internal"
)

// InvalidSettingsError wraps a settings table that parsed but failed validation.
type InvalidSettingsError struct{ Err error }

func (e *InvalidSettingsError) Error() string { return "invalid settings: " + e.Err.Error() }
func (e *InvalidSettingsError) Unwrap() error { return e.Err }

// Kind maps an error to a stable kind string for the user-facing surface.
func Kind(err error) string {
	var ce *CoercionError
	var me *MissingSettingsKeyError
	var ie *InvalidSettingsError
	switch {
	case errors.Is(err, ErrNothingToRender):
		return KindInvalidInput
	case errors.As(err, &me):
		return KindMissingSetting
	case errors.As(err, &ce):
		return KindTypeCoercion
	case errors.As(err, &ie):
		return KindInvalidSetting
	default:
		return KindInternal
	}
}

// Status maps an error to the HTTP status used by the API.
func Status(err error) int {
	if Kind(err) == KindInternal {
		return http.StatusInternalServerError
	}
	return http.StatusUnprocessableEntity
}
