// Package testutil holds helpers shared by HTTP level tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
)

// NewRequest creates a new HTTP request for testing. A non-nil body is
// encoded as JSON.
func NewRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	var r *http.Request
	if bodyBytes != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// RecordResponse is a decoded response envelope.
type RecordResponse struct {
	Code    int
	Header  http.Header
	Success bool
	Message string
	ErrCode string
	Data    json.RawMessage
}

// RecordHTTPResponse decodes the envelope written to w.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var env struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Code    string          `json:"code"`
		Data    json.RawMessage `json:"data"`
	}
	if len(bodyBytes) > 0 {
		_ = json.Unmarshal(bodyBytes, &env)
	}

	return RecordResponse{
		Code:    result.StatusCode,
		Header:  result.Header,
		Success: env.Success,
		Message: env.Message,
		ErrCode: env.Code,
		Data:    env.Data,
	}
}

// DecodeData unmarshals the envelope data into dst.
func (r RecordResponse) DecodeData(dst any) error {
	return json.Unmarshal(r.Data, dst)
}

// AssertResponseCode checks if the response code matches expected
func AssertResponseCode(t interface {
	Errorf(format string, args ...any)
}, got, want int) {
	if got != want {
		t.Errorf("got status code %d, want %d", got, want)
	}
}
