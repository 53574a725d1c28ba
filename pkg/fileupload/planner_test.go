package fileupload_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruihexianling/tg2notion/pkg/apiclient"
	"github.com/ruihexianling/tg2notion/pkg/fileupload"
)

func TestPlan_SmallFileIsSinglePart(t *testing.T) {
	tests := []struct {
		name     string
		fileSize int64
	}{
		{name: "unknown size", fileSize: 0},
		{name: "one byte", fileSize: 1},
		{name: "exactly at threshold", fileSize: fileupload.SizeThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := fileupload.Plan(fileupload.UploadRequest{
				FileName:    "doc.pdf",
				ContentType: "application/pdf",
				FileSize:    tt.fileSize,
			})

			require.NoError(t, err)
			assert.Equal(t, fileupload.ModeSinglePart, plan.Mode)
			assert.Zero(t, plan.NumberOfParts)
		})
	}
}

func TestPlan_LargeFileIsMultiPart(t *testing.T) {
	tests := []struct {
		name          string
		fileSize      int64
		expectedParts int
	}{
		{name: "just above threshold", fileSize: fileupload.SizeThreshold + 1, expectedParts: 3},
		{name: "24 MiB", fileSize: 25_165_824, expectedParts: 3},
		{name: "exact part multiple", fileSize: 3 * fileupload.PartSize * 10, expectedParts: 30},
		{name: "one byte over a part boundary", fileSize: 3*fileupload.PartSize + 1, expectedParts: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := fileupload.Plan(fileupload.UploadRequest{
				FileName:    "video.mp4",
				ContentType: "video/mp4",
				FileSize:    tt.fileSize,
			})

			require.NoError(t, err)
			assert.Equal(t, fileupload.ModeMultiPart, plan.Mode)
			assert.Equal(t, tt.expectedParts, plan.NumberOfParts)
			assert.Equal(t, fileupload.PartSize, plan.PartSize)
		})
	}
}

func TestPlan_ExternalURL(t *testing.T) {
	plan, err := fileupload.Plan(fileupload.UploadRequest{
		FileName:    "pic.png",
		ExternalURL: "https://example.com/pic.png",
	})

	require.NoError(t, err)
	assert.Equal(t, fileupload.ModeExternalURL, plan.Mode)
}

func TestPlan_InsecureExternalURL(t *testing.T) {
	for _, badURL := range []string{"http://example.com/pic.png", "ftp://example.com/pic.png", "example.com/pic.png"} {
		_, err := fileupload.Plan(fileupload.UploadRequest{
			FileName:    "pic.png",
			ExternalURL: badURL,
		})

		require.Error(t, err)
		assert.Equal(t, apiclient.KindInvalidArgument, apiclient.KindOf(err))
	}
}

func TestPlan_ExternalURLIgnoresFileSize(t *testing.T) {
	plan, err := fileupload.Plan(fileupload.UploadRequest{
		FileName:    "big.mov",
		FileSize:    10 * fileupload.SizeThreshold,
		ExternalURL: "https://example.com/big.mov",
	})

	require.NoError(t, err)
	assert.Equal(t, fileupload.ModeExternalURL, plan.Mode)
	assert.Zero(t, plan.NumberOfParts)
}

func TestPlan_IsDeterministic(t *testing.T) {
	req := fileupload.UploadRequest{FileName: "a.bin", FileSize: 42 * 1024 * 1024}

	first, err := fileupload.Plan(req)
	require.NoError(t, err)
	second, err := fileupload.Plan(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
