// Package catalog implements the two on-disk package catalogs: the
// available-packages cache and the installed-packages store. Both
// share the line-oriented record format from pkg/msys and ZSTD framing
// from pkg/codec.
package catalog

import (
	"context"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/arc-language/msys2pkg/pkg/codec"
	"github.com/arc-language/msys2pkg/pkg/errs"
	"github.com/arc-language/msys2pkg/pkg/msys"
)

const defaultFreshWindow = time.Hour

// AvailableCache synchronizes the on-disk available-packages catalog
// against the enabled repository set, minimizing network traffic via
// ETag comparison.
type AvailableCache struct {
	Path        string
	Fetcher     msys.Fetcher
	Logger      *log.Logger
	FreshWindow time.Duration // 0 means defaultFreshWindow

	// now and stat are overridable for tests; both default to the
	// real wall clock / filesystem when nil.
	now  func() time.Time
	stat func(string) (os.FileInfo, error)
}

func (c *AvailableCache) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.New(io.Discard, "", 0)
}

func (c *AvailableCache) freshWindow() time.Duration {
	if c.FreshWindow > 0 {
		return c.FreshWindow
	}
	return defaultFreshWindow
}

func (c *AvailableCache) nowFn() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *AvailableCache) statFn(path string) (os.FileInfo, error) {
	if c.stat != nil {
		return c.stat(path)
	}
	return os.Stat(path)
}

// catalogImage is the decoded in-memory form of the available catalog:
// an ordered list of repository versions and, per repository, the
// records that belong to it, preserved in the order a reader encounters
// them in the body.
type catalogImage struct {
	versions []msys.RepositoryVersion
	sections map[string][]*msys.Package
}

func (img *catalogImage) union() []*msys.Package {
	var out []*msys.Package
	for _, v := range img.versions {
		out = append(out, img.sections[v.Repository.Name]...)
	}
	return out
}

// GetPackages returns the current set of available packages, refreshing
// the on-disk cache as needed.
func (c *AvailableCache) GetPackages(ctx context.Context) ([]*msys.Package, error) {
	if fi, err := c.statFn(c.Path); err == nil {
		if c.nowFn().Sub(fi.ModTime()) < c.freshWindow() {
			if img, err := c.readFull(); err == nil {
				return img.union(), nil
			}
			c.logger().Printf("cache fresh but unparsable, falling through to sync: continuing")
		}
	}

	cachedVersions, _ := c.readHeader()

	var toSync []*msys.Repository
	for _, repo := range msys.Repositories {
		cachedETag, known := cachedVersions[repo.Name]
		if !known {
			toSync = append(toSync, repo)
			continue
		}
		remoteETag, err := c.Fetcher.ETag(ctx, repo.DBURL())
		if err != nil {
			c.logger().Printf("etag check failed for %s, excluding from sync: %v", repo.Name, err)
			continue
		}
		if remoteETag != cachedETag {
			toSync = append(toSync, repo)
		}
	}

	if len(toSync) == 0 {
		img, err := c.readFull()
		if err != nil {
			return c.coldFetchAll(ctx)
		}
		return img.union(), nil
	}

	fetched, failed := c.fetchAll(ctx, toSync)

	if len(failed) == 0 && len(toSync) == len(msys.Repositories) {
		img := buildImage(fetched)
		if err := c.persist(img); err != nil {
			return nil, err
		}
		return img.union(), nil
	}

	return c.mergeWithCache(fetched)
}

type fetchedRepo struct {
	version  msys.RepositoryVersion
	packages []*msys.Package
}

func (c *AvailableCache) fetchAll(ctx context.Context, repos []*msys.Repository) (map[string]fetchedRepo, []*msys.Repository) {
	fetched := make(map[string]fetchedRepo)
	var failed []*msys.Repository
	for _, repo := range repos {
		version, pkgs, err := repo.RemotePackages(ctx, c.Fetcher)
		if err != nil {
			c.logger().Printf("sync failed for %s: %v", repo.Name, err)
			failed = append(failed, repo)
			continue
		}
		fetched[repo.Name] = fetchedRepo{version: version, packages: pkgs}
	}
	return fetched, failed
}

// mergeWithCache merges a partial fetch back into the cached catalog:
// repositories whose sync succeeded get their section and ETag
// replaced; every other repository (sync failed, or was never a sync
// target) keeps its cached section and ETag verbatim.
func (c *AvailableCache) mergeWithCache(fetched map[string]fetchedRepo) ([]*msys.Package, error) {
	cached, err := c.readFull()
	if err != nil {
		return nil, &errs.IOError{Op: "catalog.mergeWithCache", Err: err}
	}

	merged := &catalogImage{sections: make(map[string][]*msys.Package)}
	for _, v := range cached.versions {
		if fr, ok := fetched[v.Repository.Name]; ok {
			merged.versions = append(merged.versions, fr.version)
			merged.sections[v.Repository.Name] = fr.packages
		} else {
			merged.versions = append(merged.versions, v)
			merged.sections[v.Repository.Name] = cached.sections[v.Repository.Name]
		}
	}
	// A repository that synced successfully but had no cached entry at
	// all (new repository, first time it's ever been seen) still needs
	// to be appended.
	for name, fr := range fetched {
		if _, already := merged.sections[name]; !already {
			merged.versions = append(merged.versions, fr.version)
			merged.sections[name] = fr.packages
		}
	}

	if err := c.persist(merged); err != nil {
		return nil, err
	}
	return merged.union(), nil
}

// coldFetchAll fetches every enabled repository from scratch, used when
// there is no usable cache to fall back on; any single failure is fatal.
func (c *AvailableCache) coldFetchAll(ctx context.Context) ([]*msys.Package, error) {
	fetched, failed := c.fetchAll(ctx, msys.Repositories)
	if len(failed) > 0 {
		return nil, &errs.DownloadError{Op: "catalog.coldFetchAll", Err: errColdFetchFailed}
	}
	img := buildImage(fetched)
	if err := c.persist(img); err != nil {
		return nil, err
	}
	return img.union(), nil
}

func buildImage(fetched map[string]fetchedRepo) *catalogImage {
	img := &catalogImage{sections: make(map[string][]*msys.Package)}
	for _, repo := range msys.Repositories {
		fr, ok := fetched[repo.Name]
		if !ok {
			continue
		}
		img.versions = append(img.versions, fr.version)
		img.sections[repo.Name] = fr.packages
	}
	return img
}

// readHeader reads only the header line, returning repo name -> ETag.
// A missing or unreadable file yields an empty map.
func (c *AvailableCache) readHeader() (map[string]string, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return map[string]string{}, nil
	}
	plain, err := decodeCatalogFile(data)
	if err != nil {
		return map[string]string{}, nil
	}
	headerLine, _, _ := strings.Cut(string(plain), "\n")
	return parseHeader(headerLine), nil
}

func (c *AvailableCache) readFull() (*catalogImage, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, &errs.IOError{Op: "catalog.readFull", Err: err}
	}
	plain, err := decodeCatalogFile(data)
	if err != nil {
		return nil, err
	}

	headerLine, body, hasBody := strings.Cut(string(plain), "\n")
	versions := parseHeaderOrdered(headerLine)

	img := &catalogImage{versions: versions, sections: make(map[string][]*msys.Package)}
	if !hasBody || body == "" {
		return img, nil
	}

	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			continue
		}
		pkg, err := msys.Parse(line)
		if err != nil {
			return nil, err
		}
		name := pkg.Repository.Name
		img.sections[name] = append(img.sections[name], pkg)
	}
	return img, nil
}

func (c *AvailableCache) persist(img *catalogImage) error {
	var b strings.Builder
	for i, v := range img.versions {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(v.Repository.Name)
		b.WriteByte(' ')
		b.WriteString(v.ETag)
	}
	for _, v := range img.versions {
		for _, pkg := range img.sections[v.Repository.Name] {
			b.WriteByte('\n')
			b.WriteString(msys.Format(pkg))
		}
	}

	encoded, err := codec.CompressZSTD([]byte(b.String()))
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.Path, encoded, 0o644); err != nil {
		return &errs.IOError{Op: "catalog.persist", Err: err}
	}
	return nil
}

func parseHeader(line string) map[string]string {
	out := map[string]string{}
	fields := strings.Fields(line)
	for i := 0; i+1 < len(fields); i += 2 {
		out[fields[i]] = fields[i+1]
	}
	return out
}

func parseHeaderOrdered(line string) []msys.RepositoryVersion {
	fields := strings.Fields(line)
	var out []msys.RepositoryVersion
	for i := 0; i+1 < len(fields); i += 2 {
		repo, ok := msys.Find(fields[i])
		if !ok {
			continue
		}
		out = append(out, msys.RepositoryVersion{Repository: repo, ETag: fields[i+1]})
	}
	return out
}

func decodeCatalogFile(data []byte) ([]byte, error) {
	return codec.Decompress(codec.ZSTD, data)
}

// LatestVersion returns the record with the lexicographically maximal
// Version among those whose Names contains name. A false second return
// means "unknown package".
func LatestVersion(name string, pkgs []*msys.Package) (*msys.Package, bool) {
	var best *msys.Package
	for _, p := range pkgs {
		if !p.Matches(name) {
			continue
		}
		if best == nil || p.Version > best.Version {
			best = p
		}
	}
	return best, best != nil
}

type coldFetchFailedError struct{}

func (coldFetchFailedError) Error() string { return "one or more repositories failed to sync" }

var errColdFetchFailed = coldFetchFailedError{}
