package documentcloud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/sells-group/address-mapper/internal/platform"
)

// AddonRun uploads files to, and posts status for, a DocumentCloud add-on run.
type AddonRun struct {
	client *Client
	runID  string
}

var (
	_ platform.Uploader  = (*AddonRun)(nil)
	_ platform.Messenger = (*AddonRun)(nil)
)

// NewAddonRun binds an add-on run ID to the client.
func NewAddonRun(c *Client, runID string) *AddonRun {
	return &AddonRun{client: c, runID: runID}
}

type presignResponse struct {
	PresignedURL string `json:"presigned_url"`
}

func (a *AddonRun) runURL() string {
	return fmt.Sprintf("%s/addon_runs/%s/", a.client.baseURL, url.PathEscape(a.runID))
}

// Upload implements platform.Uploader: it requests a presigned URL, PUTs the
// file there and records the file name on the run.
func (a *AddonRun) Upload(ctx context.Context, name string, r io.Reader) error {
	if a.runID == "" {
		return eris.New("documentcloud: upload requires an add-on run id")
	}

	presignURL := a.runURL() + "?" + url.Values{"upload_file": {name}}.Encode()
	body, err := a.client.get(ctx, presignURL, true)
	if err != nil {
		return eris.Wrap(err, "documentcloud: presign upload")
	}
	var pr presignResponse
	if err := decodeJSON(body, &pr); err != nil {
		return err
	}
	if pr.PresignedURL == "" {
		return eris.New("documentcloud: presign response missing url")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return eris.Wrap(err, "documentcloud: read upload")
	}
	// The presigned URL carries its own credentials.
	if _, err := a.client.do(ctx, http.MethodPut, pr.PresignedURL, bytes.NewReader(data), "", false); err != nil {
		return eris.Wrapf(err, "documentcloud: upload %s", name)
	}

	if err := a.client.sendJSON(ctx, http.MethodPatch, a.runURL(), map[string]string{"file_name": name}, nil); err != nil {
		return eris.Wrapf(err, "documentcloud: register upload %s", name)
	}
	return nil
}

// SetMessage implements platform.Messenger.
func (a *AddonRun) SetMessage(ctx context.Context, msg string) error {
	if a.runID == "" {
		return eris.New("documentcloud: message requires an add-on run id")
	}
	if err := a.client.sendJSON(ctx, http.MethodPatch, a.runURL(), map[string]string{"message": msg}, nil); err != nil {
		return eris.Wrap(err, "documentcloud: set message")
	}
	return nil
}
