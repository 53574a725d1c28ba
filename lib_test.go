package tg2notion_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tg2notion "github.com/ruihexianling/tg2notion"
	"github.com/ruihexianling/tg2notion/pkg/configuration"
	"github.com/ruihexianling/tg2notion/pkg/fileupload"
	"github.com/ruihexianling/tg2notion/pkg/pages"
)

// recordingPageAPI captures page operations for assertions.
type recordingPageAPI struct {
	createdTitle    string
	createdContent  string
	createdParentID string
	createdProps    pages.Properties

	appendedUploadID string
	appendedFileName string
	appendedMIME     string
	appendedPageID   string
}

var _ pages.PageAPI = (*recordingPageAPI)(nil)

func (r *recordingPageAPI) CreatePage(_ context.Context, title, content string, props pages.Properties, parentID string) (string, error) {
	r.createdTitle = title
	r.createdContent = content
	r.createdProps = props
	r.createdParentID = parentID
	return "page-1", nil
}

func (r *recordingPageAPI) UpdatePage(context.Context, string, pages.Properties) error {
	return nil
}

func (r *recordingPageAPI) GetPage(_ context.Context, pageID string) (*pages.Page, error) {
	return &pages.Page{ID: pageID, Properties: map[string]json.RawMessage{}}, nil
}

func (r *recordingPageAPI) AppendBlocks(context.Context, string, []pages.Block) error {
	return nil
}

func (r *recordingPageAPI) AppendText(context.Context, string, string) error {
	return nil
}

func (r *recordingPageAPI) AppendFileBlock(_ context.Context, pageID, uploadID, fileName, mimeType string) error {
	r.appendedPageID = pageID
	r.appendedUploadID = uploadID
	r.appendedFileName = fileName
	r.appendedMIME = mimeType
	return nil
}

func newTestClient(t *testing.T) (*tg2notion.Client, *fileupload.FakeUploadClient, *recordingPageAPI) {
	t.Helper()
	config := configuration.New()
	config.Set(configuration.PARENT_DATABASE_ID, "default-db")

	uploads := fileupload.NewFakeUploadClient()
	pageAPI := &recordingPageAPI{}
	client := tg2notion.NewClient(config,
		tg2notion.WithUploadAPI(uploads),
		tg2notion.WithPageAPI(pageAPI),
		tg2notion.WithPollOptions(fileupload.PollOptions{MaxAttempts: 6, InitialDelay: time.Millisecond}),
	)
	t.Cleanup(client.Close)

	return client, uploads, pageAPI
}

func TestClient_CreatePage_UsesConfiguredParentFallback(t *testing.T) {
	client, _, pageAPI := newTestClient(t)

	pageID, err := client.CreatePage(context.Background(), "hello", "body", nil, "")

	require.NoError(t, err)
	assert.Equal(t, "page-1", pageID)
	assert.Equal(t, "default-db", pageAPI.createdParentID)
	assert.Equal(t, "hello", pageAPI.createdTitle)
}

func TestClient_CreatePage_ExplicitParentWins(t *testing.T) {
	client, _, pageAPI := newTestClient(t)

	_, err := client.CreatePage(context.Background(), "hello", "", nil, "other-db")

	require.NoError(t, err)
	assert.Equal(t, "other-db", pageAPI.createdParentID)
}

func TestClient_UploadFile_InfersContentType(t *testing.T) {
	client, uploads, _ := newTestClient(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(path, []byte("not really a png"), 0o600))

	completed, err := client.UploadFile(context.Background(), path, "")

	require.NoError(t, err)
	assert.Equal(t, "photo.png", completed.FileName)
	assert.Equal(t, "image/png", completed.ContentType)

	content, err := uploads.UploadedContent(completed.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("not really a png"), content)
}

func TestClient_UploadFile_MissingFile(t *testing.T) {
	client, _, _ := newTestClient(t)

	_, err := client.UploadFile(context.Background(), filepath.Join(t.TempDir(), "absent.bin"), "")

	require.Error(t, err)
}

func TestClient_UploadExternal(t *testing.T) {
	client, _, _ := newTestClient(t)

	completed, err := client.UploadExternal(context.Background(), "pic.png", "https://example.com/pic.png")

	require.NoError(t, err)
	assert.NotEmpty(t, completed.ID)
}

func TestClient_AttachFile_UploadsThenAppendsBlock(t *testing.T) {
	client, _, pageAPI := newTestClient(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

	err := client.AttachFile(context.Background(), "page-9", path, "application/pdf")

	require.NoError(t, err)
	assert.Equal(t, "page-9", pageAPI.appendedPageID)
	assert.NotEmpty(t, pageAPI.appendedUploadID)
	assert.Equal(t, "doc.pdf", pageAPI.appendedFileName)
	assert.Equal(t, "application/pdf", pageAPI.appendedMIME)
}
