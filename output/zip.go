package output

import (
	"archive/zip"
	"io"
	"path"
	"time"

	"github.com/syssam/archgen/compiler/gen"
)

// zipTime is the modification time of every archive entry, so identical
// files produce identical archives.
var zipTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// WriteZip writes files to w as a zip archive, in sorted path order. A
// non-empty root prefixes every entry ("shop" puts README.md at
// shop/README.md).
func WriteZip(w io.Writer, files gen.Files, root string) error {
	zw := zip.NewWriter(w)
	for _, p := range files.Paths() {
		name := p
		if root != "" {
			name = path.Join(root, p)
		}
		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: zipTime,
		})
		if err != nil {
			return &WriteError{Path: p, Cause: err}
		}
		if _, err := io.WriteString(f, files[p]); err != nil {
			return &WriteError{Path: p, Cause: err}
		}
	}
	if err := zw.Close(); err != nil {
		return &WriteError{Path: root, Cause: err}
	}
	return nil
}
