package catalog

import (
	"os"
	"strings"

	"github.com/arc-language/msys2pkg/pkg/codec"
	"github.com/arc-language/msys2pkg/pkg/errs"
	"github.com/arc-language/msys2pkg/pkg/msys"
)

// InstalledStore is the append-mostly ledger of locally installed
// packages. Unlike AvailableCache it carries no header line: the file's
// first line is always blank, a leftover of the append protocol that
// readers must tolerate rather than treat as corruption.
type InstalledStore struct {
	Path string
}

// Packages returns every record currently in the store, in file order.
// A missing file is treated as an empty store.
func (s *InstalledStore) Packages() ([]*msys.Package, error) {
	lines, err := s.readLines()
	if err != nil {
		return nil, err
	}
	var out []*msys.Package
	for _, line := range lines {
		if line == "" {
			continue
		}
		pkg, err := msys.Parse(line)
		if err != nil {
			return nil, err
		}
		out = append(out, pkg)
	}
	return out, nil
}

// Append adds pkg as a new record without touching any existing one.
// Once the new content is written, it is copied byte-for-byte to
// Path+".bak"; a backup failure is swallowed and never blocks the
// append itself.
func (s *InstalledStore) Append(pkg *msys.Package) error {
	lines, err := s.readLines()
	if err != nil {
		return err
	}

	lines = append(lines, msys.Format(pkg))
	if err := s.writeLines(lines); err != nil {
		return err
	}
	s.backup()
	return nil
}

// Replace substitutes every record whose Names contains pkg.Name() with
// pkg's formatted form. It never deletes a record outright: a package
// that disappears from the store is an update target, not a removal.
// As with Append, the backup copy is taken after the primary write
// succeeds, so it is always byte-identical to the installed file.
func (s *InstalledStore) Replace(pkg *msys.Package) error {
	lines, err := s.readLines()
	if err != nil {
		return err
	}

	name := pkg.Name()
	replaced := msys.Format(pkg)
	var touched bool
	for i, line := range lines {
		if line == "" {
			continue
		}
		existing, err := msys.Parse(line)
		if err != nil {
			return err
		}
		if existing.Matches(name) {
			lines[i] = replaced
			touched = true
		}
	}
	if !touched {
		lines = append(lines, replaced)
	}
	if err := s.writeLines(lines); err != nil {
		return err
	}
	s.backup()
	return nil
}

// backup copies the just-written file to Path+".bak", byte-identical to
// the primary file. Failure is intentionally swallowed: a missing
// backup must never prevent the primary write that already succeeded.
func (s *InstalledStore) backup() {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return
	}
	_ = os.WriteFile(s.Path+".bak", data, 0o644)
}

// readLines decodes the store and splits it into lines, dropping the
// protocol's leading blank line. A missing file yields no lines.
func (s *InstalledStore) readLines() ([]string, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &errs.IOError{Op: "catalog.readLines", Err: err}
	}

	plain, err := codec.Decompress(codec.ZSTD, data)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(plain), "\n")
	if len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	return lines, nil
}

func (s *InstalledStore) writeLines(lines []string) error {
	body := "\n" + strings.Join(lines, "\n")
	encoded, err := codec.CompressZSTD([]byte(body))
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.Path, encoded, 0o644); err != nil {
		return &errs.IOError{Op: "catalog.writeLines", Err: err}
	}
	return nil
}
