package pages

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ruihexianling/tg2notion/pkg/apiclient"
)

// PageAPI defines the page and block mutation operations.
type PageAPI interface {
	CreatePage(ctx context.Context, title, content string, props Properties, parentID string) (string, error)
	UpdatePage(ctx context.Context, pageID string, props Properties) error
	GetPage(ctx context.Context, pageID string) (*Page, error)
	AppendBlocks(ctx context.Context, pageID string, blocks []Block) error
	AppendText(ctx context.Context, pageID, content string) error
	AppendFileBlock(ctx context.Context, pageID, uploadID, fileName, mimeType string) error
}

// This will force go to complain if the type doesn't satisfy the interface.
var _ PageAPI = (*HTTPPageClient)(nil)

// Page is a fetched page with its raw property objects.
type Page struct {
	ID         string                     `json:"id"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// Config contains the configuration for the page client.
type Config struct {
	BaseURL string
}

// HTTPPageClient implements PageAPI against the remote HTTP API.
type HTTPPageClient struct {
	cfg        Config
	httpClient *http.Client
	logger     *zerolog.Logger
}

// Opt is a function that configures an HTTPPageClient instance.
type Opt func(*HTTPPageClient)

// WithHTTPClient sets a custom HTTP client for the page client.
func WithHTTPClient(httpClient *http.Client) Opt {
	return func(c *HTTPPageClient) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a custom logger for the page client.
func WithLogger(logger *zerolog.Logger) Opt {
	return func(c *HTTPPageClient) {
		c.logger = logger
	}
}

// NewClient creates a new page client with the given configuration and options.
func NewClient(cfg Config, opts ...Opt) *HTTPPageClient {
	nop := zerolog.Nop()
	c := HTTPPageClient{
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

type parentRef struct {
	Type       string `json:"type"`
	DatabaseID string `json:"database_id"`
}

type createPageRequestBody struct {
	Parent     parentRef  `json:"parent"`
	Properties Properties `json:"properties"`
	Children   []Block    `json:"children,omitempty"`
}

type pageResponseBody struct {
	ID string `json:"id"`
}

// CreatePage creates a page under the parent database and returns the new
// page ID. Non-empty content becomes paragraph blocks, chunked at the
// per-block size limit.
func (c *HTTPPageClient) CreatePage(ctx context.Context, title, content string, props Properties, parentID string) (string, error) {
	if parentID == "" {
		return "", apiclient.NewInvalidArgumentError("parent database ID is required")
	}

	body := createPageRequestBody{
		Parent: parentRef{
			Type:       "database_id",
			DatabaseID: parentID,
		},
		Properties: BuildPageProperties(title, props),
	}
	if content != "" {
		body.Children = ParagraphBlocks(content)
	}

	url := fmt.Sprintf("%s/pages", c.cfg.BaseURL)
	resBody, err := c.do(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", err
	}

	var page pageResponseBody
	if err := apiclient.DecodeJSON(resBody, &page); err != nil {
		return "", err
	}
	if page.ID == "" {
		return "", apiclient.NewPageError("create page returned no page ID", 0, resBody)
	}

	c.logger.Info().Str("page_id", page.ID).Str("title", title).Msg("page created")
	return page.ID, nil
}

// UpdatePage patches the given properties on an existing page.
func (c *HTTPPageClient) UpdatePage(ctx context.Context, pageID string, props Properties) error {
	url := fmt.Sprintf("%s/pages/%s", c.cfg.BaseURL, pageID)
	payload := map[string]Properties{"properties": props}

	if _, err := c.do(ctx, http.MethodPatch, url, payload); err != nil {
		return err
	}

	c.logger.Debug().Str("page_id", pageID).Msg("page properties updated")
	return nil
}

// GetPage fetches a page with its raw property objects.
func (c *HTTPPageClient) GetPage(ctx context.Context, pageID string) (*Page, error) {
	url := fmt.Sprintf("%s/pages/%s", c.cfg.BaseURL, pageID)
	resBody, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var page Page
	if err := apiclient.DecodeJSON(resBody, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AppendBlocks appends content blocks to a page body.
func (c *HTTPPageClient) AppendBlocks(ctx context.Context, pageID string, blocks []Block) error {
	url := fmt.Sprintf("%s/blocks/%s/children", c.cfg.BaseURL, pageID)
	payload := map[string][]Block{"children": blocks}

	if _, err := c.do(ctx, http.MethodPatch, url, payload); err != nil {
		return err
	}

	c.logger.Debug().Str("page_id", pageID).Int("blocks", len(blocks)).Msg("blocks appended")
	return nil
}

// AppendText appends free text to a page as paragraph blocks.
func (c *HTTPPageClient) AppendText(ctx context.Context, pageID, content string) error {
	return c.AppendBlocks(ctx, pageID, ParagraphBlocks(content))
}

// AppendFileBlock attaches a completed upload to a page. The block type is
// derived from the file's MIME type and the file name becomes the caption.
func (c *HTTPPageClient) AppendFileBlock(ctx context.Context, pageID, uploadID, fileName, mimeType string) error {
	block := NewFileBlock(uploadID, fileName, mimeType)
	return c.AppendBlocks(ctx, pageID, []Block{block})
}

// do issues one JSON request and classifies the response.
func (c *HTTPPageClient) do(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var body *bytes.Buffer
	if payload != nil {
		body = bytes.NewBuffer(nil)
		if err := json.NewEncoder(body).Encode(payload); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var httpReq *http.Request
	var err error
	if body != nil {
		httpReq, err = http.NewRequestWithContext(ctx, method, url, body)
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, method, url, http.NoBody)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apiclient.NewTransportError(fmt.Sprintf("error making %s request", method), err)
	}

	return apiclient.Classify(res, url)
}
