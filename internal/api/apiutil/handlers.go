package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/apperr"
)

const (
	CodeRateLimited = "rate_limited"
	CodeInternal    = "internal"
	CodeBadRequest  = "bad_request"
)

const maxBodyBytes = 1 << 20

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// StatusFor maps a classified error to its HTTP status. Unclassified errors
// are internal.
func StatusFor(err error) int {
	var handlerErr HandlerError
	var fieldErr FieldError
	switch {
	case errors.As(err, &handlerErr):
		return handlerErr.Status
	case errors.As(err, &fieldErr), errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrTransientStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return apperr.CodeValidation
	case http.StatusUnauthorized:
		return apperr.CodeUnauthenticated
	case http.StatusForbidden:
		return apperr.CodeForbidden
	case http.StatusNotFound:
		return apperr.CodeNotFound
	case http.StatusConflict:
		return apperr.CodeConflict
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusServiceUnavailable:
		return apperr.CodeUnavailable
	case http.StatusInternalServerError:
		return CodeInternal
	default:
		return CodeBadRequest
	}
}

// WriteError writes the JSON error body for err. Causes of 5xx responses
// are logged, never sent.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	detail := ErrorDetail{Code: codeForStatus(status), Message: err.Error()}

	var handlerErr HandlerError
	var fieldErr FieldError
	if appErr, ok := apperr.As(err); ok {
		detail.Code = appErr.Code
		detail.Message = appErr.Message
		detail.Field = appErr.Field
	} else if errors.As(err, &handlerErr) {
		detail.Message = handlerErr.Message
	} else if errors.As(err, &fieldErr) {
		detail.Field = fieldErr.Field
	}

	if status >= http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().
			Err(err).
			Int("status", status).
			Str("path", r.URL.Path).
			Msg("Request failed")
		if status == http.StatusInternalServerError {
			detail.Message = "internal server error"
		}
	}

	if writeErr := WriteJSON(w, status, ErrorResponse{Error: detail}); writeErr != nil {
		log.Ctx(r.Context()).Error().Err(writeErr).Msg("Failed to write error response")
	}
}
