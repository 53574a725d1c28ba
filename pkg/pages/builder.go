package pages

import (
	"encoding/json"
	"time"
)

// maxBlockTextLength is the per-block character limit imposed by the API for
// paragraph content.
const maxBlockTextLength = 1950

// TitleProperty is the fixed name of the title property in the page schema.
const TitleProperty = "Title"

// blockTypeByMIME maps file MIME types to the wire block type used when the
// file is attached to a page. Unknown types fall back to a plain file block.
var blockTypeByMIME = map[string]string{
	"image/jpeg":      "image",
	"image/png":       "image",
	"image/gif":       "image",
	"image/webp":      "image",
	"image/svg+xml":   "image",
	"video/mp4":       "video",
	"video/quicktime": "video",
	"video/x-msvideo": "video",
	"video/webm":      "video",
	"audio/mpeg":      "audio",
	"audio/mp4":       "audio",
	"audio/wav":       "audio",
	"audio/ogg":       "audio",
	"audio/webm":      "audio",
	"application/pdf": "pdf",
}

func blockTypeForMIME(mimeType string) string {
	if blockType, ok := blockTypeByMIME[mimeType]; ok {
		return blockType
	}
	return "file"
}

// Block is an atomic unit of page content that marshals itself into the wire
// block format.
type Block interface {
	json.Marshaler
}

// ParagraphBlock is a plain text paragraph.
type ParagraphBlock struct {
	Content string
}

func (b ParagraphBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"object": "block",
		"type":   "paragraph",
		"paragraph": map[string]any{
			"rich_text": []richText{newTextSpan(b.Content)},
		},
	})
}

// FileBlock references a completed upload. The wire block type depends on the
// file's MIME type; the file name becomes the caption when present.
type FileBlock struct {
	BlockType string
	UploadID  string
	Caption   string
}

// NewFileBlock builds a file block for a completed upload.
func NewFileBlock(uploadID, fileName, mimeType string) FileBlock {
	return FileBlock{
		BlockType: blockTypeForMIME(mimeType),
		UploadID:  uploadID,
		Caption:   fileName,
	}
}

func (b FileBlock) MarshalJSON() ([]byte, error) {
	inner := map[string]any{
		"type": "file_upload",
		"file_upload": map[string]string{
			"id": b.UploadID,
		},
	}
	if b.Caption != "" {
		inner["caption"] = []richText{newTextSpan(b.Caption)}
	}
	return json.Marshal(map[string]any{
		"object":    "block",
		"type":      b.BlockType,
		b.BlockType: inner,
	})
}

// splitText cuts text into chunks of at most max characters, counted in
// runes so multi-byte content never splits mid-character.
func splitText(text string, max int) []string {
	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+max-1)/max)
	for start := 0; start < len(runes); start += max {
		end := start + max
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// ParagraphBlocks converts free text into paragraph blocks, chunked at the
// per-block size limit.
func ParagraphBlocks(content string) []Block {
	chunks := splitText(content, maxBlockTextLength)
	blocks := make([]Block, 0, len(chunks))
	for _, chunk := range chunks {
		blocks = append(blocks, ParagraphBlock{Content: chunk})
	}
	return blocks
}

// BuildPageProperties combines a title with the caller's typed properties
// into a fresh Properties map.
func BuildPageProperties(title string, props Properties) Properties {
	combined := Properties{
		TitleProperty: Title(title),
	}
	for name, value := range props {
		combined[name] = value
	}
	return combined
}

// BuildUpdateProperties maps loosely typed values onto the wire schema:
// times become dates, numbers become number properties, strings become rich
// text and booleans become checkboxes. Typed PropertyValues pass through.
func BuildUpdateProperties(values map[string]any) Properties {
	props := Properties{}
	for name, value := range values {
		switch v := value.(type) {
		// time.Time satisfies json.Marshaler, so it must be matched
		// before the PropertyValue pass-through
		case time.Time:
			props[name] = Date(v)
		case PropertyValue:
			props[name] = v
		case int:
			props[name] = Number(v)
		case int64:
			props[name] = Number(v)
		case float64:
			props[name] = Number(v)
		case bool:
			props[name] = Checkbox(v)
		case string:
			props[name] = RichText(v)
		}
	}
	return props
}
