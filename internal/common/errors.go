package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithDetails attaches client-facing details to the error.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// ValidationError builds a 400 VALIDATION_ERROR.
func ValidationError(message string) *AppError {
	return NewAppError("VALIDATION_ERROR", message, http.StatusBadRequest, nil)
}

// NotFound builds a 404 NOT_FOUND.
func NotFound(message string) *AppError {
	return NewAppError("NOT_FOUND", message, http.StatusNotFound, nil)
}

// IsNoRows reports whether err is pgx.ErrNoRows.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsOutOfRange reports whether PostgreSQL rejected a value that overflows its column type.
func IsOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22003"
}

// WriteError renders err using the canonical error envelope. Errors that are not
// AppErrors are logged and reported as INTERNAL.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := appErr.Code
		if code == "" {
			code = "INTERNAL"
		}
		message := appErr.Message
		if message == "" {
			message = "internal error"
		}
		details := appErr.Details
		if appErr.Err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(appErr.Err, &syntaxErr) {
				details = map[string]any{"offset": syntaxErr.Offset}
			}
		}
		if status >= http.StatusInternalServerError {
			logError(r, err)
		}
		JSONError(w, status, code, message, details)
		return
	}
	if IsNoRows(err) {
		JSONError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
		return
	}
	if IsUniqueViolation(err) {
		JSONError(w, http.StatusConflict, "CONFLICT", "resource already exists", nil)
		return
	}
	if IsOutOfRange(err) {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "value out of range", nil)
		return
	}
	logError(r, err)
	JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}

func logError(r *http.Request, err error) {
	if r == nil {
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request_failed")
}

// DecodeJSON decodes the request body into dst, rejecting malformed payloads.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return NewAppError("BAD_REQUEST", "invalid JSON payload", http.StatusBadRequest, err)
	}
	return nil
}
