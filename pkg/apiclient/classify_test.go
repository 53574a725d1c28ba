package apiclient_test

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruihexianling/tg2notion/pkg/apiclient"
)

func newResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestClassify_Success(t *testing.T) {
	res := newResponse(http.StatusOK, `{"id":"abc"}`)

	body, err := apiclient.Classify(res, "https://api.notion.com/v1/pages")

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc"}`, string(body))
}

func TestClassify_ErrorBodyIsItemized(t *testing.T) {
	res := newResponse(http.StatusBadRequest, `{"message":"A. B.","code":"x"}`)

	_, err := apiclient.Classify(res, "https://api.notion.com/v1/pages")

	require.Error(t, err)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiclient.KindPageOperationFailure, apiErr.Kind)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "x", apiErr.Code)
	assert.Contains(t, apiErr.Message, "- A")
	assert.Contains(t, apiErr.Message, "- B")
}

func TestClassify_UploadURLMapsToUploadFailure(t *testing.T) {
	res := newResponse(http.StatusBadRequest, `{"message":"bad part","code":"validation_error"}`)

	_, err := apiclient.Classify(res, "https://api.notion.com/v1/file_uploads/123/send")

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiclient.KindUploadFailure, apiErr.Kind)
}

func TestClassify_UnparseableErrorBodyFallsBackToRaw(t *testing.T) {
	res := newResponse(http.StatusBadGateway, "<html>bad gateway</html>")

	_, err := apiclient.Classify(res, "https://api.notion.com/v1/pages/123")

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiclient.KindPageOperationFailure, apiErr.Kind)
	assert.Contains(t, apiErr.Message, "<html>bad gateway</html>")
	assert.Equal(t, []byte("<html>bad gateway</html>"), apiErr.RawBody)
}

func TestDecodeJSON_MalformedSuccessIsTransport(t *testing.T) {
	var out struct{ ID string }

	err := apiclient.DecodeJSON([]byte("not json"), &out)

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiclient.KindTransport, apiErr.Kind)
}

func TestKindOf(t *testing.T) {
	err := apiclient.NewInvalidArgumentError("bad input")
	wrapped := errors.Join(errors.New("outer"), err)

	assert.Equal(t, apiclient.KindInvalidArgument, apiclient.KindOf(wrapped))
	assert.Equal(t, apiclient.Kind(""), apiclient.KindOf(errors.New("plain")))
}

func TestFormatErrorDetail(t *testing.T) {
	detail := apiclient.FormatErrorDetail("body failed validation. Fix one of the fields.")

	assert.Equal(t, "- body failed validation\n- Fix one of the fields", detail)
}

func TestAPIError_Error(t *testing.T) {
	err := apiclient.NewUploadError("boom", 500, nil)
	assert.Contains(t, err.Error(), "upload_failure")
	assert.Contains(t, err.Error(), "500")

	argErr := apiclient.NewInvalidArgumentError("nope")
	assert.Contains(t, argErr.Error(), "invalid_argument: nope")
}
