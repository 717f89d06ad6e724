package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"

	"lendingapi/internal/apperr"
)

// Response is the envelope of every API response. On validation failures
// Data holds a field to message map.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Code    string `json:"code,omitempty"`
	Meta    any    `json:"meta,omitempty"`
}

const unexpectedMessage = "An unexpected error occurred"

func buildMeta(r *http.Request) any {
	requestID := RequestIDFrom(r)
	if requestID == "" {
		return nil
	}
	return map[string]any{"request_id": requestID}
}

func writeJSON(w http.ResponseWriter, statusCode int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func JSONSuccess(w http.ResponseWriter, r *http.Request, message string, data any) {
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    buildMeta(r),
	})
}

func JSONSuccessCreated(w http.ResponseWriter, r *http.Request, message string, data any) {
	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    buildMeta(r),
	})
}

func JSONError(w http.ResponseWriter, r *http.Request, statusCode int, code string, message string) {
	writeJSON(w, statusCode, Response{
		Success: false,
		Message: message,
		Code:    code,
		Meta:    buildMeta(r),
	})
}

func JSONValidationError(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, Response{
		Success: false,
		Message: "Validation failed",
		Data:    fields,
		Code:    "VALIDATION_ERROR",
		Meta:    buildMeta(r),
	})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.ErrNotFound:
		return http.StatusNotFound
	case apperr.ErrAlreadyExists:
		return http.StatusConflict
	case apperr.ErrBusinessRule, apperr.ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err in the envelope. Errors outside the domain
// taxonomy are logged and answered with a sanitized message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Default().ErrorContext(r.Context(), "unexpected error",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFrom(r),
			"error", err,
		)
		JSONError(w, r, status, "INTERNAL_ERROR", unexpectedMessage)
		return
	}
	JSONError(w, r, status, apperr.CodeOf(err, "BAD_REQUEST"), err.Error())
}

// DecodeJSON decodes the request body into dst and writes the error
// response itself when that fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
			return false
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			JSONValidationError(w, r, map[string]string{
				typeErr.Field: fmt.Sprintf("%s must be %s", typeErr.Field, jsonTypeName(typeErr.Type)),
			})
			return false
		}
		JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return false
	}
	return true
}

func jsonTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Bool:
		return "a boolean"
	case reflect.String:
		return "a string"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}
