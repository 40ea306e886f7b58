package export

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/rotisserie/eris"
)

// writeArchive zips files (stored under their base names) plus the manifest
// into dest.
func writeArchive(dest string, files []string, manifest Manifest) error {
	out, err := os.Create(dest)
	if err != nil {
		return eris.Wrap(err, "export: create archive")
	}

	zw := zip.NewWriter(out)
	names := make([]string, 0, len(files))
	for _, path := range files {
		name := filepath.Base(path)
		if err := addFile(zw, path, name, manifest.CreatedAt); err != nil {
			zw.Close()  //nolint:errcheck
			out.Close() //nolint:errcheck
			return err
		}
		names = append(names, name)
	}

	manifest.Files = names
	data, err := manifest.Marshal()
	if err != nil {
		zw.Close()  //nolint:errcheck
		out.Close() //nolint:errcheck
		return err
	}
	w, err := zw.CreateHeader(&zip.FileHeader{Name: ManifestName, Method: zip.Deflate, Modified: manifest.CreatedAt})
	if err == nil {
		_, err = w.Write(data)
	}
	if err != nil {
		zw.Close()  //nolint:errcheck
		out.Close() //nolint:errcheck
		return eris.Wrap(err, "export: write manifest")
	}

	if err := zw.Close(); err != nil {
		out.Close() //nolint:errcheck
		return eris.Wrap(err, "export: finish archive")
	}
	if err := out.Close(); err != nil {
		return eris.Wrap(err, "export: close archive")
	}
	return nil
}

func addFile(zw *zip.Writer, path, name string, modified time.Time) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "export: open %s", name)
	}
	defer f.Close() //nolint:errcheck

	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
	if err != nil {
		return eris.Wrapf(err, "export: add %s", name)
	}
	if _, err := io.Copy(w, f); err != nil {
		return eris.Wrapf(err, "export: compress %s", name)
	}
	return nil
}
