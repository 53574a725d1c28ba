package fileupload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/ruihexianling/tg2notion/pkg/apiclient"
)

// errStillPending marks a poll attempt that observed a non-terminal state.
var errStillPending = errors.New("upload still pending")

// PollOptions bounds the status polling loop. The delay doubles after every
// attempt, starting at InitialDelay.
type PollOptions struct {
	MaxAttempts  uint
	InitialDelay time.Duration
}

// DefaultPollOptions returns the polling bounds used when none are configured.
func DefaultPollOptions() PollOptions {
	return PollOptions{
		MaxAttempts:  6,
		InitialDelay: 5 * time.Second,
	}
}

// Driver turns an upload request into a completed, server-confirmed upload.
// All mutable progress state (byte offsets, attempt counters) is private to
// one Execute call; a Driver may serve concurrent operations.
type Driver struct {
	api    UploadAPI
	poll   PollOptions
	logger *zerolog.Logger
}

// DriverOpt is a function that configures a Driver instance.
type DriverOpt func(*Driver)

// WithPollOptions overrides the status polling bounds.
func WithPollOptions(poll PollOptions) DriverOpt {
	return func(d *Driver) {
		d.poll = poll
	}
}

// WithDriverLogger sets a custom logger for the driver.
func WithDriverLogger(logger *zerolog.Logger) DriverOpt {
	return func(d *Driver) {
		d.logger = logger
	}
}

// NewDriver creates a Driver on top of the given upload API.
func NewDriver(api UploadAPI, opts ...DriverOpt) *Driver {
	nop := zerolog.Nop()
	d := Driver{
		api:    api,
		poll:   DefaultPollOptions(),
		logger: &nop,
	}

	for _, opt := range opts {
		opt(&d)
	}

	return &d
}

// Execute plans the upload, transfers the content according to the selected
// mode and waits for the server-side import to finish. source may be nil for
// external-URL uploads. Part transfers are irreversible server-side actions;
// on failure the caller must restart from a fresh request, partial uploads
// are not resumed.
func (d *Driver) Execute(ctx context.Context, req UploadRequest, source io.ReaderAt) (*CompletedUpload, error) {
	plan, err := Plan(req)
	if err != nil {
		return nil, err
	}

	if plan.Mode != ModeExternalURL && source == nil {
		return nil, apiclient.NewInvalidArgumentError("no file source provided for content upload")
	}

	handle, err := d.api.CreateUpload(ctx, req, plan)
	if err != nil {
		return nil, err
	}

	d.logger.Debug().
		Str("upload_id", handle.ID).
		Str("mode", string(plan.Mode)).
		Msg("upload job created")

	switch plan.Mode {
	case ModeSinglePart:
		length := req.FileSize
		if length == 0 {
			// size unknown, read the source until EOF
			length = math.MaxInt64
		}
		content := io.NewSectionReader(source, 0, length)
		if err := d.api.SendContent(ctx, handle, content); err != nil {
			return nil, err
		}
	case ModeMultiPart:
		for partNumber := 1; partNumber <= plan.NumberOfParts; partNumber++ {
			offset := int64(partNumber-1) * plan.PartSize
			length := plan.PartSize
			if remaining := req.FileSize - offset; remaining < length {
				length = remaining
			}
			part := io.NewSectionReader(source, offset, length)
			if err := d.api.SendPart(ctx, handle, partNumber, part); err != nil {
				return nil, err
			}
		}
		if err := d.api.CompleteUpload(ctx, handle.ID); err != nil {
			return nil, err
		}
	case ModeExternalURL:
		// nothing to transfer, the server fetches the URL itself
	}

	if _, err := d.WaitForCompletion(ctx, handle.ID); err != nil {
		return nil, err
	}

	return &CompletedUpload{
		ID:          handle.ID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
	}, nil
}

// WaitForCompletion polls the upload status with exponential backoff until a
// terminal state is reached or the attempt budget is exhausted. Transport
// errors during polling count as one attempt each and are retried; an
// explicit failed status stops immediately. All failure paths surface as
// upload failures with distinguishable messages.
func (d *Driver) WaitForCompletion(ctx context.Context, uploadID string) (*UploadStatus, error) {
	attempt := 0
	var importFailure *apiclient.APIError
	op := func() (*UploadStatus, error) {
		attempt++
		status, err := d.api.GetUploadStatus(ctx, uploadID)
		if err != nil {
			// transport and classifier errors count as one attempt and are retried
			d.logger.Debug().
				Str("upload_id", uploadID).
				Int("attempt", attempt).
				Err(err).
				Msg("status poll failed, retrying")
			return nil, err
		}

		switch status.Status {
		case StatusUploaded:
			return status, nil
		case StatusFailed, StatusExpired:
			message := "unknown error"
			if status.FileImportResult != nil && status.FileImportResult.Error != nil && status.FileImportResult.Error.Message != "" {
				message = status.FileImportResult.Error.Message
			}
			importFailure = apiclient.NewUploadError(
				fmt.Sprintf("file import failed: %s", message), 0, nil)
			return nil, backoff.Permanent(importFailure)
		default:
			d.logger.Debug().
				Str("upload_id", uploadID).
				Int("attempt", attempt).
				Str("status", string(status.Status)).
				Msg("upload still pending")
			return nil, errStillPending
		}
	}

	backoffMethod := backoff.NewExponentialBackOff()
	backoffMethod.InitialInterval = d.poll.InitialDelay
	backoffMethod.RandomizationFactor = 0
	backoffMethod.Multiplier = 2
	backoffMethod.MaxInterval = 24 * time.Hour

	status, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoffMethod),
		backoff.WithMaxTries(d.poll.MaxAttempts))
	if err == nil {
		return status, nil
	}

	if importFailure != nil {
		return nil, importFailure
	}

	if errors.Is(err, errStillPending) {
		return nil, apiclient.NewUploadError(
			fmt.Sprintf("timed out waiting for upload %s after %d attempts", uploadID, d.poll.MaxAttempts), 0, nil)
	}

	return nil, &apiclient.APIError{
		Kind:    apiclient.KindUploadFailure,
		Message: fmt.Sprintf("gave up polling upload %s after %d attempts: %v", uploadID, d.poll.MaxAttempts, err),
		Err:     err,
	}
}
