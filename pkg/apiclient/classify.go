package apiclient

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// errorBody is the structured error payload returned by the API.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// uploadPathSegment identifies requests addressing the upload subsystem.
const uploadPathSegment = "/file_uploads"

// IsUploadURL reports whether a request URL addresses the upload subsystem.
func IsUploadURL(requestURL string) bool {
	return strings.Contains(requestURL, uploadPathSegment)
}

// Classify inspects an HTTP response and either returns the raw body bytes on
// success or an *APIError describing the failure. The request URL decides
// whether an error status maps to the upload or the page failure domain.
// Classify consumes and closes the response body.
func Classify(res *http.Response, requestURL string) ([]byte, error) {
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, NewTransportError("failed to read response body", err)
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return body, nil
	}

	message := res.Status
	code := ""
	var parsed errorBody
	if jsonErr := json.Unmarshal(body, &parsed); jsonErr == nil && parsed.Message != "" {
		message = FormatErrorDetail(parsed.Message)
		code = parsed.Code
	} else if len(body) > 0 {
		message = res.Status + ": " + string(body)
	}

	var apiErr *APIError
	if IsUploadURL(requestURL) {
		apiErr = NewUploadError(message, res.StatusCode, body)
	} else {
		apiErr = NewPageError(message, res.StatusCode, body)
	}
	apiErr.Code = code
	return nil, apiErr
}

// DecodeJSON parses a success body into out. A decode failure on a success
// response is unexpected and classified as a transport error.
func DecodeJSON(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return NewTransportError("malformed response body", err)
	}
	return nil
}
