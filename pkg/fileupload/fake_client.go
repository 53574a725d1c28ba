package fileupload

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// StatusResult scripts the outcome of one GetUploadStatus call on the fake.
type StatusResult struct {
	Status Status
	Err    error
}

// fakeUploadState holds the in-memory state for a single upload job.
type fakeUploadState struct {
	req       UploadRequest
	plan      UploadPlan
	parts     [][]byte
	content   []byte
	sent      bool
	completed bool
}

// FakeUploadClient is an in-memory UploadAPI implementation for testing. It
// tracks upload jobs and enforces the lifecycle (create -> transfer ->
// complete -> status). Status polls can be scripted via ScriptStatus; once
// the script is exhausted the status derives from the job lifecycle.
type FakeUploadClient struct {
	uploads      map[string]*fakeUploadState
	statusScript []StatusResult

	// StatusCalls counts GetUploadStatus invocations for assertions.
	StatusCalls int
}

var _ UploadAPI = (*FakeUploadClient)(nil)

// NewFakeUploadClient creates a new instance of the fake client.
func NewFakeUploadClient() *FakeUploadClient {
	return &FakeUploadClient{
		uploads: make(map[string]*fakeUploadState),
	}
}

// ScriptStatus queues outcomes for subsequent GetUploadStatus calls.
func (f *FakeUploadClient) ScriptStatus(results ...StatusResult) {
	f.statusScript = append(f.statusScript, results...)
}

func (f *FakeUploadClient) CreateUpload(_ context.Context, req UploadRequest, plan UploadPlan) (*UploadHandle, error) {
	id := uuid.NewString()
	f.uploads[id] = &fakeUploadState{
		req:  req,
		plan: plan,
	}

	return &UploadHandle{
		ID:          id,
		UploadURL:   fmt.Sprintf("https://fake.invalid/file_uploads/%s/send", id),
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Plan:        plan,
	}, nil
}

func (f *FakeUploadClient) SendContent(_ context.Context, handle *UploadHandle, content io.Reader) error {
	state, ok := f.uploads[handle.ID]
	if !ok {
		return fmt.Errorf("upload %s not found", handle.ID)
	}

	if state.plan.Mode != ModeSinglePart {
		return fmt.Errorf("upload %s is not single-part", handle.ID)
	}

	if state.sent {
		return fmt.Errorf("upload %s content already sent", handle.ID)
	}

	bts, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	state.content = bts
	state.sent = true
	return nil
}

func (f *FakeUploadClient) SendPart(_ context.Context, handle *UploadHandle, partNumber int, part io.Reader) error {
	state, ok := f.uploads[handle.ID]
	if !ok {
		return fmt.Errorf("upload %s not found", handle.ID)
	}

	if state.plan.Mode != ModeMultiPart {
		return fmt.Errorf("upload %s is not multi-part", handle.ID)
	}

	if state.completed {
		return fmt.Errorf("upload %s is already completed", handle.ID)
	}

	if expected := len(state.parts) + 1; partNumber != expected {
		return fmt.Errorf("part %d out of order, expected %d", partNumber, expected)
	}

	bts, err := io.ReadAll(part)
	if err != nil {
		return err
	}
	state.parts = append(state.parts, bts)
	return nil
}

func (f *FakeUploadClient) CompleteUpload(_ context.Context, uploadID string) error {
	state, ok := f.uploads[uploadID]
	if !ok {
		return fmt.Errorf("upload %s not found", uploadID)
	}

	if state.plan.Mode != ModeMultiPart {
		return fmt.Errorf("upload %s is not multi-part", uploadID)
	}

	if got := len(state.parts); got != state.plan.NumberOfParts {
		return fmt.Errorf("upload %s has %d of %d parts", uploadID, got, state.plan.NumberOfParts)
	}

	state.completed = true
	return nil
}

func (f *FakeUploadClient) GetUploadStatus(_ context.Context, uploadID string) (*UploadStatus, error) {
	f.StatusCalls++

	if len(f.statusScript) > 0 {
		next := f.statusScript[0]
		f.statusScript = f.statusScript[1:]
		if next.Err != nil {
			return nil, next.Err
		}
		status := &UploadStatus{ID: uploadID, Status: next.Status}
		if next.Status == StatusFailed || next.Status == StatusExpired {
			status.FileImportResult = &FileImportResult{Error: &ImportError{Message: "scripted failure"}}
		}
		return status, nil
	}

	state, ok := f.uploads[uploadID]
	if !ok {
		return nil, fmt.Errorf("upload %s not found", uploadID)
	}

	switch {
	case state.plan.Mode == ModeExternalURL,
		state.plan.Mode == ModeSinglePart && state.sent,
		state.plan.Mode == ModeMultiPart && state.completed:
		return &UploadStatus{ID: uploadID, Status: StatusUploaded}, nil
	default:
		return &UploadStatus{ID: uploadID, Status: StatusPending}, nil
	}
}

// UploadedContent is a test helper returning the bytes received for an
// upload, with multi-part content reassembled in part order. It is not part
// of the UploadAPI interface.
func (f *FakeUploadClient) UploadedContent(uploadID string) ([]byte, error) {
	state, ok := f.uploads[uploadID]
	if !ok {
		return nil, fmt.Errorf("upload %s not found", uploadID)
	}

	if state.plan.Mode == ModeSinglePart {
		return state.content, nil
	}

	var joined []byte
	for _, part := range state.parts {
		joined = append(joined, part...)
	}
	return joined, nil
}
