// Package msys implements the MSYS2/pacman-style package record, the
// static repository table and the remote sync-database parser.
package msys

import (
	"strings"

	"github.com/arc-language/msys2pkg/pkg/codec"
	"github.com/arc-language/msys2pkg/pkg/errs"
)

// altNameSeparator joins names[1:] ("provides"/alias names) on the wire.
const altNameSeparator = ", "

// depMarker is the field value that switches a record line from
// "dependencies unknown" into "dependency list follows" (possibly empty).
const depMarker = "+"

// Package is the identity-and-metadata record shared by both catalogs.
// Identity is (Names[0], Version); all other fields are metadata and
// are ignored by Equal/Less.
type Package struct {
	Repository     *Repository
	Names          []string        // Names[0] is canonical; rest are provides/aliases.
	Version        string
	Compression    codec.Algorithm // zero value means absent
	HasCompression bool
	Arch           string
	HasArch        bool
	Dependencies   []string // nil means unknown; non-nil (possibly empty) means known
}

// Name returns the canonical name.
func (p *Package) Name() string {
	if len(p.Names) == 0 {
		return ""
	}
	return p.Names[0]
}

// Matches reports whether name equals any element of p.Names.
func (p *Package) Matches(name string) bool {
	for _, n := range p.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Equal compares identity only: (Names[0], Version).
func (p *Package) Equal(other *Package) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Name() == other.Name() && p.Version == other.Version
}

// Less orders by Names[0], then by Version, both lexicographic.
func (p *Package) Less(other *Package) bool {
	if p.Name() != other.Name() {
		return p.Name() < other.Name()
	}
	return p.Version < other.Version
}

// URL derives the artifact download URL. It is only defined when both
// Compression and Arch are known.
func (p *Package) URL() (string, bool) {
	if !p.HasCompression || !p.HasArch || p.Repository == nil {
		return "", false
	}
	ext := codec.Extension(p.Compression)
	return p.Repository.Base + p.Name() + "-" + p.Version + "-" + p.Arch + ".pkg.tar." + ext, true
}

// DependencyName strips the operator and version tail from a dependency
// token ("name[operator version]", operator in {=,>,~,#,*}) and remaps
// "sh" to "bash".
func DependencyName(token string) string {
	if idx := strings.IndexAny(token, "=>~#*"); idx != -1 {
		token = token[:idx]
	}
	if token == "sh" {
		return "bash"
	}
	return token
}

// Parse decodes a single catalog line:
//
//	repo<TAB>name[, altname]*<TAB>version[<TAB>compExt[<TAB>arch[<TAB>+[<TAB>dep]*]]]
func Parse(line string) (*Package, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 3 {
		return nil, &errs.ParseError{Op: "msys.Parse", Line: line, Err: errShortLine}
	}

	repo, ok := Find(fields[0])
	if !ok {
		return nil, &errs.ParseError{Op: "msys.Parse", Line: line, Err: errs.ErrUnknownRepository}
	}

	pkg := &Package{
		Repository: repo,
		Names:      strings.Split(fields[1], altNameSeparator),
		Version:    fields[2],
	}

	// Fields 3 (compression) and 4 (arch) are positional but each one is
	// skipped the moment the dependency marker "+" is seen in its slot,
	// so a record can carry a compression extension with no arch and go
	// straight into a (possibly empty) dependency list.
	idx := 3
	if idx < len(fields) && fields[idx] != depMarker {
		algo, ok := codec.FromExtension(fields[idx])
		if !ok {
			return nil, &errs.ParseError{Op: "msys.Parse", Line: line, Err: errs.ErrUnknownCompression}
		}
		pkg.Compression = algo
		pkg.HasCompression = true
		idx++
	}

	if idx < len(fields) && fields[idx] != depMarker {
		pkg.Arch = fields[idx]
		pkg.HasArch = true
		idx++
	}

	if idx < len(fields) && fields[idx] == depMarker {
		pkg.Dependencies = append([]string{}, fields[idx+1:]...)
	}

	return pkg, nil
}

// Format is the inverse of Parse.
func Format(p *Package) string {
	var b strings.Builder
	b.WriteString(p.Repository.Name)
	b.WriteByte('\t')
	b.WriteString(strings.Join(p.Names, altNameSeparator))
	b.WriteByte('\t')
	b.WriteString(p.Version)

	if p.HasCompression {
		b.WriteByte('\t')
		b.WriteString(codec.Extension(p.Compression))
	}

	if p.HasArch {
		b.WriteByte('\t')
		b.WriteString(p.Arch)
	}

	if p.Dependencies != nil {
		b.WriteByte('\t')
		b.WriteString(depMarker)
		for _, dep := range p.Dependencies {
			b.WriteByte('\t')
			b.WriteString(dep)
		}
	}

	return b.String()
}

var errShortLine = shortLineError{}

type shortLineError struct{}

func (shortLineError) Error() string { return "record line has fewer than 3 fields" }
