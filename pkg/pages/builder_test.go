package pages_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruihexianling/tg2notion/pkg/pages"
)

func TestProperties_RoundTrip(t *testing.T) {
	created := time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)
	original := pages.Properties{
		"Title":    pages.Title("My article"),
		"Source":   pages.Select("telegram"),
		"Tags":     pages.MultiSelect{"go", "notion"},
		"Pinned":   pages.Checkbox(true),
		"Link":     pages.URL("https://example.com/a"),
		"Created":  pages.Date(created),
		"Files":    pages.Number(3),
		"Excerpt":  pages.RichText("short summary"),
		"Archived": pages.Checkbox(false),
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	parsed, err := pages.ParseProperties(raw)
	require.NoError(t, err)

	assert.Equal(t, pages.Title("My article"), parsed["Title"])
	assert.Equal(t, pages.Select("telegram"), parsed["Source"])
	assert.Equal(t, pages.MultiSelect{"go", "notion"}, parsed["Tags"])
	assert.Equal(t, pages.Checkbox(true), parsed["Pinned"])
	assert.Equal(t, pages.Checkbox(false), parsed["Archived"])
	assert.Equal(t, pages.URL("https://example.com/a"), parsed["Link"])
	assert.Equal(t, pages.Number(3), parsed["Files"])
	assert.Equal(t, pages.RichText("short summary"), parsed["Excerpt"])
	assert.True(t, created.Equal(time.Time(parsed["Created"].(pages.Date))))
}

func TestParseProperties_SkipsUnknownTypes(t *testing.T) {
	raw := `{"People": {"people": [{"id": "u1"}]}, "Link": {"url": "https://example.com"}}`

	parsed, err := pages.ParseProperties([]byte(raw))

	require.NoError(t, err)
	assert.Len(t, parsed, 1)
	assert.Equal(t, pages.URL("https://example.com"), parsed["Link"])
}

func TestBuildPageProperties_AddsTitleWithoutMutatingInput(t *testing.T) {
	props := pages.Properties{"Source": pages.Select("rss")}

	combined := pages.BuildPageProperties("hello", props)

	assert.Equal(t, pages.Title("hello"), combined[pages.TitleProperty])
	assert.Equal(t, pages.Select("rss"), combined["Source"])
	assert.NotContains(t, props, pages.TitleProperty)
}

func TestBuildUpdateProperties_MapsGoTypes(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	props := pages.BuildUpdateProperties(map[string]any{
		"Updated": now,
		"Count":   7,
		"Ratio":   0.5,
		"Note":    "done",
		"Pinned":  true,
		"Status":  pages.Select("published"),
	})

	assert.Equal(t, pages.Date(now), props["Updated"])
	assert.Equal(t, pages.Number(7), props["Count"])
	assert.Equal(t, pages.Number(0.5), props["Ratio"])
	assert.Equal(t, pages.RichText("done"), props["Note"])
	assert.Equal(t, pages.Checkbox(true), props["Pinned"])
	assert.Equal(t, pages.Select("published"), props["Status"])
}

func TestParagraphBlocks_ChunksLongText(t *testing.T) {
	content := strings.Repeat("x", 1950*2+100)

	blocks := pages.ParagraphBlocks(content)

	require.Len(t, blocks, 3)
	raw, err := json.Marshal(blocks[2])
	require.NoError(t, err)
	assert.Contains(t, string(raw), strings.Repeat("x", 100))
}

func TestParagraphBlocks_DoesNotSplitRunes(t *testing.T) {
	content := strings.Repeat("世", 1951)

	blocks := pages.ParagraphBlocks(content)

	require.Len(t, blocks, 2)
	for _, b := range blocks {
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		assert.True(t, json.Valid(raw))
	}
}

func TestParagraphBlock_WireFormat(t *testing.T) {
	raw, err := json.Marshal(pages.ParagraphBlock{Content: "hello"})

	require.NoError(t, err)
	assert.JSONEq(t, `{
		"object": "block",
		"type": "paragraph",
		"paragraph": {
			"rich_text": [{"type": "text", "text": {"content": "hello"}}]
		}
	}`, string(raw))
}

func TestNewFileBlock_BlockTypeFromMIME(t *testing.T) {
	tests := []struct {
		mimeType  string
		blockType string
	}{
		{"image/png", "image"},
		{"image/svg+xml", "image"},
		{"video/quicktime", "video"},
		{"video/webm", "video"},
		{"audio/ogg", "audio"},
		{"application/pdf", "pdf"},
		{"application/zip", "file"},
		{"", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			block := pages.NewFileBlock("upload-1", "a.bin", tt.mimeType)
			assert.Equal(t, tt.blockType, block.BlockType)
		})
	}
}

func TestFileBlock_WireFormat(t *testing.T) {
	block := pages.NewFileBlock("upload-1", "photo.png", "image/png")

	raw, err := json.Marshal(block)

	require.NoError(t, err)
	assert.JSONEq(t, `{
		"object": "block",
		"type": "image",
		"image": {
			"type": "file_upload",
			"file_upload": {"id": "upload-1"},
			"caption": [{"type": "text", "text": {"content": "photo.png"}}]
		}
	}`, string(raw))
}

func TestFileBlock_NoCaptionWhenFileNameEmpty(t *testing.T) {
	block := pages.NewFileBlock("upload-1", "", "application/pdf")

	raw, err := json.Marshal(block)

	require.NoError(t, err)
	assert.NotContains(t, string(raw), "caption")
}
