package fileupload

import (
	"fmt"
	"strings"

	"github.com/ruihexianling/tg2notion/pkg/apiclient"
)

// Plan selects an upload mode for the request. It is a pure function: no
// network calls, identical inputs yield identical plans.
func Plan(req UploadRequest) (UploadPlan, error) {
	if req.ExternalURL != "" {
		if !strings.HasPrefix(req.ExternalURL, "https://") {
			return UploadPlan{}, apiclient.NewInvalidArgumentError(
				fmt.Sprintf("external URL must use https: %s", req.ExternalURL))
		}
		return UploadPlan{Mode: ModeExternalURL}, nil
	}

	if req.FileSize <= SizeThreshold {
		return UploadPlan{Mode: ModeSinglePart}, nil
	}

	numberOfParts := int((req.FileSize + PartSize - 1) / PartSize)
	return UploadPlan{
		Mode:          ModeMultiPart,
		NumberOfParts: numberOfParts,
		PartSize:      PartSize,
	}, nil
}
