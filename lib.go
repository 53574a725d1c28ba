// Package tg2notion orchestrates page creation, property updates and
// large-file ingestion against the Notion API.
package tg2notion

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ruihexianling/tg2notion/pkg/apiclient"
	"github.com/ruihexianling/tg2notion/pkg/configuration"
	"github.com/ruihexianling/tg2notion/pkg/fileupload"
	"github.com/ruihexianling/tg2notion/pkg/networking"
	"github.com/ruihexianling/tg2notion/pkg/pages"
)

// Client is the entry point of the library. It owns the shared transport for
// the duration of its scope; Close releases it on all exit paths. A Client
// may serve concurrent operations, each operation keeps its own progress
// state.
type Client struct {
	config     configuration.Configuration
	network    networking.NetworkAccess
	httpClient *http.Client
	uploads    fileupload.UploadAPI
	driver     *fileupload.Driver
	pages      pages.PageAPI
	logger     *zerolog.Logger
	pollOpts   *fileupload.PollOptions
}

// ClientOpt is a function that configures a Client instance.
type ClientOpt func(*Client)

// WithLogger sets a custom logger for the client and its subsystems.
func WithLogger(logger *zerolog.Logger) ClientOpt {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUploadAPI replaces the upload API implementation, primarily for tests.
func WithUploadAPI(api fileupload.UploadAPI) ClientOpt {
	return func(c *Client) {
		c.uploads = api
	}
}

// WithPageAPI replaces the page API implementation, primarily for tests.
func WithPageAPI(api pages.PageAPI) ClientOpt {
	return func(c *Client) {
		c.pages = api
	}
}

// WithPollOptions overrides the upload status polling bounds.
func WithPollOptions(poll fileupload.PollOptions) ClientOpt {
	return func(c *Client) {
		c.pollOpts = &poll
	}
}

// NewClient creates a Client from the given configuration.
func NewClient(config configuration.Configuration, opts ...ClientOpt) *Client {
	nop := zerolog.Nop()
	c := Client{
		config: config,
		logger: &nop,
	}

	for _, opt := range opts {
		opt(&c)
	}

	c.network = networking.NewNetworkAccess(config)
	c.httpClient = c.network.GetHTTPClient()
	baseURL := config.GetString(configuration.API_URL)

	if c.uploads == nil {
		c.uploads = fileupload.NewClient(
			fileupload.Config{BaseURL: baseURL},
			fileupload.WithHTTPClient(c.httpClient),
			fileupload.WithLogger(c.logger),
		)
	}

	driverOpts := []fileupload.DriverOpt{fileupload.WithDriverLogger(c.logger)}
	if c.pollOpts != nil {
		driverOpts = append(driverOpts, fileupload.WithPollOptions(*c.pollOpts))
	}
	c.driver = fileupload.NewDriver(c.uploads, driverOpts...)

	if c.pages == nil {
		c.pages = pages.NewClient(
			pages.Config{BaseURL: baseURL},
			pages.WithHTTPClient(c.httpClient),
			pages.WithLogger(c.logger),
		)
	}

	return &c
}

// Close releases the shared transport. The Client must not be used after
// Close.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// UploadFile ingests a local file, choosing the upload mode from its size,
// and returns the confirmed upload. An empty contentType is inferred from
// the file extension.
func (c *Client) UploadFile(ctx context.Context, path, contentType string) (*fileupload.CompletedUpload, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, apiclient.NewInvalidArgumentError(
			fmt.Sprintf("path %s is not a regular file (mode: %s)", path, info.Mode()))
	}

	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(path))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return c.driver.Execute(ctx, fileupload.UploadRequest{
		FileName:    filepath.Base(path),
		ContentType: contentType,
		FileSize:    info.Size(),
	}, file)
}

// UploadExternal registers a file the server fetches itself from a public
// https URL.
func (c *Client) UploadExternal(ctx context.Context, fileName, externalURL string) (*fileupload.CompletedUpload, error) {
	return c.driver.Execute(ctx, fileupload.UploadRequest{
		FileName:    fileName,
		ExternalURL: externalURL,
	}, nil)
}

// CreatePage creates a page under parentID, falling back to the configured
// parent database when parentID is empty.
func (c *Client) CreatePage(ctx context.Context, title, content string, props pages.Properties, parentID string) (string, error) {
	if parentID == "" {
		parentID = c.config.GetString(configuration.PARENT_DATABASE_ID)
	}
	return c.pages.CreatePage(ctx, title, content, props, parentID)
}

// UpdatePage patches properties on an existing page.
func (c *Client) UpdatePage(ctx context.Context, pageID string, props pages.Properties) error {
	return c.pages.UpdatePage(ctx, pageID, props)
}

// GetPage fetches a page with its raw property objects.
func (c *Client) GetPage(ctx context.Context, pageID string) (*pages.Page, error) {
	return c.pages.GetPage(ctx, pageID)
}

// AppendText appends free text to a page as paragraph blocks.
func (c *Client) AppendText(ctx context.Context, pageID, content string) error {
	return c.pages.AppendText(ctx, pageID, content)
}

// AttachFile uploads a local file and appends it to the page as a content
// block once the server confirms the import.
func (c *Client) AttachFile(ctx context.Context, pageID, path, contentType string) error {
	completed, err := c.UploadFile(ctx, path, contentType)
	if err != nil {
		return err
	}
	return c.pages.AppendFileBlock(ctx, pageID, completed.ID, completed.FileName, completed.ContentType)
}
