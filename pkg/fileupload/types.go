package fileupload

// Mode selects how file content reaches the server.
type Mode string

const (
	// ModeSinglePart transfers the whole file in one request.
	ModeSinglePart Mode = "single_part"
	// ModeMultiPart transfers the file as sequential numbered parts.
	ModeMultiPart Mode = "multi_part"
	// ModeExternalURL lets the server fetch the file from a public URL.
	ModeExternalURL Mode = "external_url"
)

const (
	// SizeThreshold is the file size above which multi-part mode is required.
	SizeThreshold int64 = 20 * 1024 * 1024
	// PartSize is the fixed byte length of each part in multi-part mode.
	PartSize int64 = 10 * 1024 * 1024
)

// UploadRequest describes the file a caller wants ingested. FileSize may be
// zero when unknown. ExternalURL is mutually exclusive with size-based
// planning.
type UploadRequest struct {
	FileName    string
	ContentType string
	FileSize    int64
	ExternalURL string
}

// UploadPlan is the result of planning an upload. NumberOfParts is set only
// for ModeMultiPart.
type UploadPlan struct {
	Mode          Mode
	NumberOfParts int
	PartSize      int64
}

// UploadHandle identifies a server-side upload job for the duration of the
// transfer.
type UploadHandle struct {
	ID          string
	UploadURL   string
	FileName    string
	ContentType string
	Plan        UploadPlan
}

// Status is the server-side state of an upload job.
type Status string

const (
	StatusPending  Status = "pending"
	StatusUploaded Status = "uploaded"
	StatusFailed   Status = "failed"
	StatusExpired  Status = "expired"
)

// ImportError carries the server-reported reason for a failed import.
type ImportError struct {
	Message string `json:"message"`
}

// FileImportResult is present on terminal upload states.
type FileImportResult struct {
	Error *ImportError `json:"error,omitempty"`
}

// UploadStatus is one observation of an upload job. Each poll replaces the
// prior value.
type UploadStatus struct {
	ID               string            `json:"id"`
	Status           Status            `json:"status"`
	FileImportResult *FileImportResult `json:"file_import_result,omitempty"`
}

// Terminal reports whether the status will no longer change.
func (s *UploadStatus) Terminal() bool {
	return s.Status == StatusUploaded || s.Status == StatusFailed || s.Status == StatusExpired
}

// CompletedUpload is the confirmed result of a finished upload, ready for
// block attachment.
type CompletedUpload struct {
	ID          string
	FileName    string
	ContentType string
}

type createUploadRequestBody struct {
	Mode          Mode   `json:"mode"`
	Filename      string `json:"filename"`
	ContentType   string `json:"content_type,omitempty"`
	NumberOfParts int    `json:"number_of_parts,omitempty"`
	ExternalURL   string `json:"external_url,omitempty"`
}

type createUploadResponseBody struct {
	ID        string `json:"id"`
	UploadURL string `json:"upload_url"`
}
