package fileupload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ruihexianling/tg2notion/pkg/apiclient"
)

// UploadAPI defines the upload subsystem operations consumed by the Driver.
type UploadAPI interface {
	CreateUpload(ctx context.Context, req UploadRequest, plan UploadPlan) (*UploadHandle, error)
	SendContent(ctx context.Context, handle *UploadHandle, content io.Reader) error
	SendPart(ctx context.Context, handle *UploadHandle, partNumber int, part io.Reader) error
	CompleteUpload(ctx context.Context, uploadID string) error
	GetUploadStatus(ctx context.Context, uploadID string) (*UploadStatus, error)
}

// This will force go to complain if the type doesn't satisfy the interface.
var _ UploadAPI = (*HTTPUploadClient)(nil)

// Config contains the configuration for the upload client.
type Config struct {
	BaseURL string
}

// HTTPUploadClient implements UploadAPI against the remote HTTP API.
// Authentication and protocol-version headers are injected by the transport.
type HTTPUploadClient struct {
	cfg        Config
	httpClient *http.Client
	logger     *zerolog.Logger
}

// NewClient creates a new upload client with the given configuration and options.
func NewClient(cfg Config, opts ...Opt) *HTTPUploadClient {
	nop := zerolog.Nop()
	c := HTTPUploadClient{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: http.DefaultTransport,
		},
		logger: &nop,
	}

	for _, opt := range opts {
		opt(&c)
	}

	return &c
}

// CreateUpload submits the plan to the server and returns the handle for the
// new upload job.
func (c *HTTPUploadClient) CreateUpload(ctx context.Context, req UploadRequest, plan UploadPlan) (*UploadHandle, error) {
	body := createUploadRequestBody{
		Mode:     plan.Mode,
		Filename: req.FileName,
	}
	switch plan.Mode {
	case ModeExternalURL:
		body.ExternalURL = req.ExternalURL
	case ModeMultiPart:
		body.ContentType = req.ContentType
		body.NumberOfParts = plan.NumberOfParts
	default:
		body.ContentType = req.ContentType
	}

	buff := bytes.NewBuffer(nil)
	if err := json.NewEncoder(buff).Encode(body); err != nil {
		return nil, fmt.Errorf("failed to encode create upload body: %w", err)
	}

	url := fmt.Sprintf("%s/file_uploads", c.cfg.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buff)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug().
		Str("mode", string(plan.Mode)).
		Int("number_of_parts", plan.NumberOfParts).
		Msg("creating upload job")

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apiclient.NewTransportError("error making create upload request", err)
	}

	resBody, err := apiclient.Classify(res, url)
	if err != nil {
		return nil, err
	}

	var parsed createUploadResponseBody
	if err := apiclient.DecodeJSON(resBody, &parsed); err != nil {
		return nil, err
	}

	return &UploadHandle{
		ID:          parsed.ID,
		UploadURL:   parsed.UploadURL,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Plan:        plan,
	}, nil
}

// SendContent transfers the whole file body for a single-part upload.
func (c *HTTPUploadClient) SendContent(ctx context.Context, handle *UploadHandle, content io.Reader) error {
	return c.sendMultipart(ctx, handle, content, 0)
}

// SendPart transfers one numbered part of a multi-part upload. Parts must be
// sent strictly sequentially in ascending order.
func (c *HTTPUploadClient) SendPart(ctx context.Context, handle *UploadHandle, partNumber int, part io.Reader) error {
	return c.sendMultipart(ctx, handle, part, partNumber)
}

// sendMultipart posts a multipart body with a binary "file" field and, when
// partNumber > 0, a "part_number" string field, to the handle's upload URL.
func (c *HTTPUploadClient) sendMultipart(ctx context.Context, handle *UploadHandle, content io.Reader, partNumber int) error {
	buff := bytes.NewBuffer(nil)
	mpartWriter := multipart.NewWriter(buff)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, handle.FileName))
	if handle.ContentType != "" {
		header.Set("Content-Type", handle.ContentType)
	}
	filePart, err := mpartWriter.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create multipart form for %s: %w", handle.FileName, err)
	}
	if _, err := io.Copy(filePart, content); err != nil {
		return fmt.Errorf("failed to copy file content for %s: %w", handle.FileName, err)
	}

	if partNumber > 0 {
		if err := mpartWriter.WriteField("part_number", strconv.Itoa(partNumber)); err != nil {
			return fmt.Errorf("failed to write part_number field: %w", err)
		}
	}

	if err := mpartWriter.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, handle.UploadURL, buff)
	if err != nil {
		return fmt.Errorf("failed to create send request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mpartWriter.FormDataContentType())

	c.logger.Debug().
		Str("upload_id", handle.ID).
		Int("part_number", partNumber).
		Msg("sending file content")

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return apiclient.NewTransportError("error making send request", err)
	}

	if _, err := apiclient.Classify(res, handle.UploadURL); err != nil {
		return err
	}
	return nil
}

// CompleteUpload tells the server that all parts of a multi-part upload have
// been transferred.
func (c *HTTPUploadClient) CompleteUpload(ctx context.Context, uploadID string) error {
	url := fmt.Sprintf("%s/file_uploads/%s/complete", c.cfg.BaseURL, uploadID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create complete request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return apiclient.NewTransportError("error making complete request", err)
	}

	if _, err := apiclient.Classify(res, url); err != nil {
		return err
	}

	c.logger.Debug().Str("upload_id", uploadID).Msg("multi-part upload completed")
	return nil
}

// GetUploadStatus queries the current state of an upload job.
func (c *HTTPUploadClient) GetUploadStatus(ctx context.Context, uploadID string) (*UploadStatus, error) {
	url := fmt.Sprintf("%s/file_uploads/%s", c.cfg.BaseURL, uploadID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apiclient.NewTransportError("error making status request", err)
	}

	resBody, err := apiclient.Classify(res, url)
	if err != nil {
		return nil, err
	}

	var status UploadStatus
	if err := apiclient.DecodeJSON(resBody, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
