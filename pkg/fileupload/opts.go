package fileupload

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Opt is a function that configures an HTTPUploadClient instance.
type Opt func(*HTTPUploadClient)

// WithHTTPClient sets a custom HTTP client for the upload client.
func WithHTTPClient(httpClient *http.Client) Opt {
	return func(c *HTTPUploadClient) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a custom logger for the upload client.
func WithLogger(logger *zerolog.Logger) Opt {
	return func(c *HTTPUploadClient) {
		c.logger = logger
	}
}
