package local

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/address-mapper/internal/platform"
)

// DirUploader writes uploaded artifacts into a directory.
type DirUploader struct {
	dir string
}

var _ platform.Uploader = (*DirUploader)(nil)

// NewDirUploader creates a DirUploader rooted at dir.
func NewDirUploader(dir string) *DirUploader {
	return &DirUploader{dir: dir}
}

// Upload implements platform.Uploader.
func (u *DirUploader) Upload(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || name != filepath.Base(name) {
		return eris.Errorf("local: invalid artifact name %q", name)
	}
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return eris.Wrapf(err, "local: create output dir %s", u.dir)
	}

	dest := filepath.Join(u.dir, name)
	f, err := os.Create(dest)
	if err != nil {
		return eris.Wrapf(err, "local: create %s", dest)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrapf(err, "local: write %s", dest)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "local: close %s", dest)
	}

	zap.L().Info("local: artifact written", zap.String("path", dest))
	return nil
}

// LogMessenger publishes the run status to the log.
type LogMessenger struct{}

var _ platform.Messenger = LogMessenger{}

// SetMessage implements platform.Messenger.
func (LogMessenger) SetMessage(_ context.Context, msg string) error {
	zap.L().Info("run status", zap.String("message", msg))
	return nil
}
