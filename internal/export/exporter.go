package export

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/address-mapper/internal/platform"
)

// ArchiveName is the name of the bundled upload.
const ArchiveName = "address_map_export.zip"

// Artifacts are the files produced by a run, as paths inside the workspace.
// Empty paths are skipped.
type Artifacts struct {
	CSV  string
	XLSX string
	Map  string
}

func (a Artifacts) paths() []string {
	var out []string
	for _, p := range []string{a.CSV, a.XLSX, a.Map} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Result reports what an export did.
type Result struct {
	Uploaded []string
	// RetainedDir holds copies of the artifacts when an upload failed.
	RetainedDir string
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithBundle uploads a single archive instead of separate files.
func WithBundle(bundle bool) Option {
	return func(e *Exporter) {
		e.bundle = bundle
	}
}

// WithRetainDir keeps copies of the artifacts under dir when an upload fails.
// An empty dir disables retention.
func WithRetainDir(dir string) Option {
	return func(e *Exporter) {
		e.retainDir = dir
	}
}

// Exporter uploads the artifacts of a run.
type Exporter struct {
	uploader  platform.Uploader
	bundle    bool
	retainDir string
}

// New creates an Exporter. Bundling is on by default.
func New(uploader platform.Uploader, opts ...Option) *Exporter {
	e := &Exporter{uploader: uploader, bundle: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export uploads the artifacts, bundled with the manifest into ArchiveName
// or one by one. Upload failures are not retried; when retention is enabled
// the artifacts are copied out of the workspace before the error is returned.
func (e *Exporter) Export(ctx context.Context, ws *Workspace, arts Artifacts, manifest Manifest) (*Result, error) {
	if e.uploader == nil {
		return nil, eris.New("export: no uploader configured")
	}
	files := arts.paths()
	if len(files) == 0 {
		return nil, eris.New("export: no artifacts")
	}

	uploads := files
	retained := files
	if e.bundle {
		archive := ws.Path(ArchiveName)
		if err := writeArchive(archive, files, manifest); err != nil {
			return nil, err
		}
		uploads = []string{archive}
		retained = append(append([]string(nil), files...), archive)
	}

	res := &Result{}
	for _, path := range uploads {
		if err := e.upload(ctx, path); err != nil {
			if dir, rerr := e.retain(manifest.RunID, retained); rerr != nil {
				zap.L().Error("export: retain artifacts failed", zap.Error(rerr))
			} else if dir != "" {
				res.RetainedDir = dir
				zap.L().Warn("export: upload failed, artifacts retained", zap.String("dir", dir))
			}
			return res, err
		}
		res.Uploaded = append(res.Uploaded, filepath.Base(path))
	}

	zap.L().Info("export: artifacts uploaded", zap.Strings("files", res.Uploaded), zap.Bool("bundle", e.bundle))
	return res, nil
}

func (e *Exporter) upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrap(err, "export: open artifact")
	}
	defer f.Close() //nolint:errcheck

	name := filepath.Base(path)
	if err := e.uploader.Upload(ctx, name, f); err != nil {
		return eris.Wrapf(err, "export: upload %s", name)
	}
	return nil
}

// retain copies files into retainDir/runID and returns that directory.
func (e *Exporter) retain(runID string, files []string) (string, error) {
	if e.retainDir == "" {
		return "", nil
	}
	if runID == "" {
		runID = "unknown"
	}
	dir := filepath.Join(e.retainDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "export: create retain dir")
	}

	seen := make(map[string]bool, len(files))
	for _, src := range files {
		if seen[src] {
			continue
		}
		seen[src] = true
		if err := copyFile(src, filepath.Join(dir, filepath.Base(src))); err != nil {
			return "", err
		}
	}
	return dir, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return eris.Wrapf(err, "export: open %s", src)
	}
	defer in.Close() //nolint:errcheck

	out, err := os.Create(dst)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close() //nolint:errcheck
		return eris.Wrapf(err, "export: copy %s", src)
	}
	if err := out.Close(); err != nil {
		return eris.Wrapf(err, "export: close %s", dst)
	}
	return nil
}
