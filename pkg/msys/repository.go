package msys

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"strings"

	"github.com/arc-language/msys2pkg/pkg/codec"
	"github.com/arc-language/msys2pkg/pkg/errs"
)

// Repository is an immutable, process-wide singleton entry in the
// static repository table. Callers pass a borrowed *Repository around;
// there is no lifecycle to manage.
type Repository struct {
	Name string
	Base string // artifact base URL, e.g. "https://repo.msys2.org/msys/x86_64/"
}

// DBURL is the repository's sync database URL: {base}{name}.db.
func (r *Repository) DBURL() string {
	return r.Base + r.Name + ".db"
}

// Fetcher performs the two blocking HTTP operations a repository sync
// needs. It is satisfied by *fetch.Client; declared here (rather than
// imported) so this package has no dependency on the concrete transport.
type Fetcher interface {
	ETag(ctx context.Context, url string) (string, error)
	Download(ctx context.Context, url string) (etag string, body []byte, err error)
}

// defaultMirrorBase is the upstream host prefix shared by every entry
// in Repositories before ApplyMirrorBase rewrites it.
const defaultMirrorBase = "https://repo.msys2.org/"

// Repositories is the closed, enabled set of MSYS2 repositories. It is
// a package-level constant table: entries are read-only and shared,
// except for the one-time rewrite ApplyMirrorBase may perform at
// startup.
var Repositories = []*Repository{
	{Name: "msys", Base: defaultMirrorBase + "msys/x86_64/"},
	{Name: "mingw64", Base: defaultMirrorBase + "mingw/x86_64/"},
	{Name: "clang64", Base: defaultMirrorBase + "mingw/clang64/"},
	{Name: "ucrt64", Base: defaultMirrorBase + "mingw/ucrt64/"},
}

// Find looks up an enabled repository by name.
func Find(name string) (*Repository, bool) {
	for _, r := range Repositories {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// ApplyMirrorBase rewrites every repository's Base to use mirror in
// place of the default upstream host, preserving each repository's own
// path suffix (e.g. "msys/x86_64/"). An empty mirror is a no-op. It is
// meant to be called once, at process startup, before any repository
// is read from.
func ApplyMirrorBase(mirror string) {
	if mirror == "" {
		return
	}
	if !strings.HasSuffix(mirror, "/") {
		mirror += "/"
	}
	for _, r := range Repositories {
		r.Base = strings.Replace(r.Base, defaultMirrorBase, mirror, 1)
	}
}

// RepositoryVersion pairs a repository with the ETag of the DB body it
// was last synced from.
type RepositoryVersion struct {
	Repository *Repository
	ETag       string
}

// RemotePackages fetches and parses this repository's sync database,
// returning the RepositoryVersion stamped with the response's ETag.
func (r *Repository) RemotePackages(ctx context.Context, f Fetcher) (RepositoryVersion, []*Package, error) {
	etag, body, err := f.Download(ctx, r.DBURL())
	if err != nil {
		return RepositoryVersion{}, nil, &errs.DownloadError{Op: "msys.RemotePackages", Err: err}
	}

	pkgs, err := ParseDatabase(body, r)
	if err != nil {
		return RepositoryVersion{}, nil, err
	}

	return RepositoryVersion{Repository: r, ETag: etag}, pkgs, nil
}

// ParseDatabase decodes a gzipped tar stream of per-package directories,
// each containing a "desc" file. Packages whose desc is missing a
// required section (%NAME%, %VERSION%, %FILENAME%) are silently skipped.
func ParseDatabase(body []byte, repo *Repository) ([]*Package, error) {
	gr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, &errs.DecompressionError{Op: "msys.ParseDatabase", Err: err}
	}
	defer gr.Close()

	entries, err := readTarFiles(gr)
	if err != nil {
		return nil, &errs.ParseError{Op: "msys.ParseDatabase", Err: err}
	}

	var pkgs []*Package
	for name, content := range entries {
		if !strings.HasSuffix(name, "/desc") {
			continue
		}
		pkg, ok := parseDesc(content, repo)
		if !ok {
			continue
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}

// parseDesc parses one "desc" file's text. Sections are separated by
// blank lines; the first line of each section is a "%NAME%"-shaped tag,
// the remaining lines are its values.
func parseDesc(content []byte, repo *Repository) (*Package, bool) {
	sections := map[string][]string{}
	var currentTag string

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			currentTag = ""
			continue
		}
		if strings.HasPrefix(line, "%") && strings.HasSuffix(line, "%") {
			currentTag = line
			continue
		}
		if currentTag != "" {
			sections[currentTag] = append(sections[currentTag], line)
		}
	}

	name := firstOf(sections["%NAME%"])
	version := firstOf(sections["%VERSION%"])
	filename := firstOf(sections["%FILENAME%"])
	if name == "" || version == "" || filename == "" {
		return nil, false
	}

	pkg := &Package{
		Repository: repo,
		Names:      []string{name},
		Version:    version,
	}

	if algo, arch, ok := inferFromFilename(filename); ok {
		pkg.Compression = algo
		pkg.HasCompression = true
		pkg.Arch = arch
		pkg.HasArch = true
	}

	// %DEPENDS% absent means "known to have zero dependencies", not
	// "unknown": this package came from a freshly fetched DB, which
	// always knows its own dependency set.
	pkg.Dependencies = append([]string{}, sections["%DEPENDS%"]...)

	for _, provide := range sections["%PROVIDES%"] {
		pkg.Names = append(pkg.Names, DependencyName(provide))
	}

	return pkg, true
}

func firstOf(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

// inferFromFilename derives compression and arch from a filename of the
// form "name-version-arch.pkg.tar.ext": compression comes from the
// extension, arch from the segment following the last remaining dash.
func inferFromFilename(filename string) (codec.Algorithm, string, bool) {
	dot := strings.LastIndexByte(filename, '.')
	if dot < 0 {
		return "", "", false
	}
	algo, ok := codec.FromExtension(filename[dot+1:])
	if !ok {
		return "", "", false
	}

	rest := filename[:dot]
	rest = strings.TrimSuffix(rest, ".pkg.tar")
	lastDash := strings.LastIndexByte(rest, '-')
	if lastDash < 0 {
		return "", "", false
	}
	arch := rest[lastDash+1:]
	if arch == "" {
		return "", "", false
	}
	return algo, arch, true
}
