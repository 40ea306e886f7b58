// Package export packages the run artifacts, uploads them to a destination
// and reports the run status.
package export

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Workspace is a temporary directory scoped to one run. Close removes it and
// everything in it; callers defer Close right after creation.
type Workspace struct {
	dir    string
	closed bool
}

// NewWorkspace creates a workspace under parent (the OS temp dir when empty).
func NewWorkspace(parent string) (*Workspace, error) {
	dir, err := os.MkdirTemp(parent, "address-mapper-*")
	if err != nil {
		return nil, eris.Wrap(err, "export: create workspace")
	}
	zap.L().Debug("export: workspace created", zap.String("dir", dir))
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// Path returns the path of name inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Close removes the workspace. It is safe to call more than once.
func (w *Workspace) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := os.RemoveAll(w.dir); err != nil {
		return eris.Wrapf(err, "export: remove workspace %s", w.dir)
	}
	zap.L().Debug("export: workspace removed", zap.String("dir", w.dir))
	return nil
}
