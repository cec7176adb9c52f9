package msys

import (
	"archive/tar"
	"io"
)

// readTarFiles slurps every regular file entry of a tar stream into
// memory, keyed by its path. The sync databases are small (a few MB at
// most), so this trades a bit of memory for a much simpler desc-file
// scan in ParseDatabase.
func readTarFiles(r io.Reader) (map[string][]byte, error) {
	tr := tar.NewReader(r)
	out := make(map[string][]byte)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		out[hdr.Name] = data
	}
}
