package client

import (
	"context"
	"errors"
	"os"
)

// DownloadRecording saves the clip of a recorded event to path and returns
// the number of bytes written.
func (c *BluecherryClient) DownloadRecording(ctx context.Context, mediaID, path string) (int64, error) {
	if mediaID == "" {
		return 0, errors.New("media id is required")
	}

	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetQueryParam("id", mediaID).
		SetOutput(path).
		Get("/media/request.php")

	if err != nil {
		return 0, &ConnectionError{Op: "download recording", Err: err}
	}
	if err := checkStatus("download recording", resp); err != nil {
		os.Remove(path)
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.Size() == 0 {
		os.Remove(path)
		return 0, &ProtocolError{Op: "download recording", Detail: "response body is empty"}
	}
	return info.Size(), nil
}
