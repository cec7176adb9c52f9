// Package install implements the transactional per-package installer:
// download the artifact, decompress it, extract its tar stream in two
// passes, run its post-install hook, and record the result, with a
// crash-safe pending marker guarding every step.
package install

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/arc-language/msys2pkg/pkg/catalog"
	"github.com/arc-language/msys2pkg/pkg/codec"
	"github.com/arc-language/msys2pkg/pkg/errs"
	"github.com/arc-language/msys2pkg/pkg/junction"
	"github.com/arc-language/msys2pkg/pkg/msys"
)

// Downloader fetches a package artifact body. *fetch.Client satisfies
// this via its Download method; only the body is used here.
type Downloader interface {
	Download(ctx context.Context, url string) (etag string, body []byte, err error)
}

const (
	metaBuildinfo = ".BUILDINFO"
	metaMtree     = ".MTREE"
	metaPkginfo   = ".PKGINFO"
	metaInstall   = ".INSTALL"
)

// Installer performs install/update transactions against one root tree.
type Installer struct {
	Root       string
	Downloader Downloader
	Installed  *catalog.InstalledStore
	Junction   junction.Maker
	Logger     *log.Logger
}

func (in *Installer) logger() *log.Logger {
	if in.Logger != nil {
		return in.Logger
	}
	return log.New(io.Discard, "", 0)
}

func (in *Installer) junctionMaker() junction.Maker {
	if in.Junction != nil {
		return in.Junction
	}
	return junction.Default{}
}

// InstallPackage runs the install transaction for pkg. When setup is
// true no marker is written, no hook runs, and the installed catalog is
// left untouched, matching the bootstrap setup phase.
func (in *Installer) InstallPackage(ctx context.Context, pkg *msys.Package, setup bool) error {
	return in.transact(ctx, KindInstall, pkg, setup)
}

// UpdatePackage runs the update transaction for pkg. There is no setup
// phase for updates.
func (in *Installer) UpdatePackage(ctx context.Context, pkg *msys.Package) error {
	return in.transact(ctx, KindUpdate, pkg, false)
}

func (in *Installer) transact(ctx context.Context, kind Kind, pkg *msys.Package, setup bool) error {
	if !setup {
		if err := WritePendingMarker(in.Root, kind, pkg); err != nil {
			return err
		}
	}

	if err := in.runTransaction(ctx, pkg, setup); err != nil {
		return err
	}

	if !setup {
		switch kind {
		case KindInstall:
			if err := in.Installed.Append(pkg); err != nil {
				return err
			}
		case KindUpdate:
			if err := in.Installed.Replace(pkg); err != nil {
				return err
			}
		}
		if err := DeletePendingMarker(in.Root); err != nil {
			return err
		}
	}
	return nil
}

func (in *Installer) runTransaction(ctx context.Context, pkg *msys.Package, setup bool) error {
	url, ok := pkg.URL()
	if !ok {
		return &errs.DownloadError{Op: "install.runTransaction", Err: errNoURL}
	}

	_, body, err := in.Downloader.Download(ctx, url)
	if err != nil {
		return &errs.DownloadError{Op: "install.runTransaction", Err: err}
	}

	plain, err := codec.Decompress(pkg.Compression, body)
	if err != nil {
		return err
	}

	return in.extractAndHook(plain, setup)
}

func (in *Installer) extractAndHook(tarBody []byte, setup bool) error {
	installScript, err := in.extractPass1(tarBody, setup)
	if err != nil {
		return err
	}
	if err := in.extractPass2(tarBody); err != nil {
		return err
	}

	if !setup && installScript {
		in.runPostInstallHook()
		if err := os.Remove(filepath.Join(in.Root, metaInstall)); err != nil && !os.IsNotExist(err) {
			in.logger().Printf("failed to remove %s: %v", metaInstall, err)
		}
	}
	return nil
}

// extractPass1 creates directories and unpacks regular files, deferring
// link entries to pass 2. It reports whether a .INSTALL script was
// unpacked (only possible outside setup mode).
func (in *Installer) extractPass1(tarBody []byte, setup bool) (bool, error) {
	tr := tar.NewReader(bytes.NewReader(tarBody))
	var sawInstallScript bool

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return false, &errs.ParseError{Op: "install.extractPass1", Err: err}
		}

		name := cleanEntryName(hdr.Name)
		if name == "" {
			in.logger().Printf("skipping unsafe tar path %q", hdr.Name)
			continue
		}

		switch name {
		case metaBuildinfo, metaMtree, metaPkginfo:
			continue
		case metaInstall:
			if setup {
				continue
			}
			target := filepath.Join(in.Root, name)
			if err := writeRegularFile(target, tr, hdr.Mode); err != nil {
				return false, err
			}
			sawInstallScript = true
			continue
		}

		target := filepath.Join(in.Root, name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return false, &errs.IOError{Op: "install.extractPass1", Err: err}
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return false, &errs.IOError{Op: "install.extractPass1", Err: err}
			}
			os.Remove(target)
			if err := writeRegularFile(target, tr, hdr.Mode); err != nil {
				return false, err
			}
		case tar.TypeLink, tar.TypeSymlink:
			// handled in pass 2, once every regular file exists.
		default:
			in.logger().Printf("unsupported tar entry type %d for %q, skipping", hdr.Typeflag, hdr.Name)
		}
	}
	return sawInstallScript, nil
}

// extractPass2 resolves every link entry now that regular files and
// directories from pass 1 exist.
func (in *Installer) extractPass2(tarBody []byte) error {
	tr := tar.NewReader(bytes.NewReader(tarBody))

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &errs.ParseError{Op: "install.extractPass2", Err: err}
		}
		if hdr.Typeflag != tar.TypeLink && hdr.Typeflag != tar.TypeSymlink {
			continue
		}

		name := cleanEntryName(hdr.Name)
		if name == "" {
			continue
		}
		linkPath := filepath.Join(in.Root, name)

		targetRel := hdr.Linkname
		if strings.HasPrefix(targetRel, "/") {
			targetRel = strings.TrimPrefix(targetRel, "/")
		}
		resolved := filepath.Join(in.Root, targetRel)

		info, err := os.Stat(resolved)
		switch {
		case err != nil:
			in.logger().Printf("link target %q for %q does not exist, skipping", hdr.Linkname, name)
		case info.IsDir():
			maker := in.junctionMaker()
			if maker.Exists(linkPath) {
				continue
			}
			if err := maker.Create(resolved, linkPath); err != nil {
				return &errs.IOError{Op: "install.extractPass2", Err: err}
			}
		default:
			os.Remove(linkPath)
			if err := os.Link(resolved, linkPath); err != nil {
				return &errs.IOError{Op: "install.extractPass2", Err: err}
			}
		}
	}
}

// runPostInstallHook shells out to the installed bash, sourcing
// .INSTALL and invoking whichever of post_install/post_upgrade is
// defined. A failure here is surfaced as a warning, never fatal.
func (in *Installer) runPostInstallHook() {
	bashPath := filepath.Join(in.Root, "usr", "bin", "bash.exe")
	script := "source /.INSTALL && (declare -F -f post_install && post_install) || (declare -F -f post_upgrade && post_upgrade)"

	cmd := exec.Command(bashPath, "-c", script)
	cmd.Dir = in.Root
	cmd.Env = append(os.Environ(), "PATH="+filepath.Join(in.Root, "usr", "bin"))

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		in.logger().Printf("post-install hook warning: %v: %s", err, stderr.String())
	}
}

// cleanEntryName rejects absolute or traversal-containing tar paths,
// returning "" for anything unsafe.
func cleanEntryName(name string) string {
	if name == "" || path.IsAbs(name) {
		return ""
	}
	cleaned := path.Clean(name)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return ""
	}
	return cleaned
}

func writeRegularFile(target string, r io.Reader, mode int64) error {
	f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(mode))
	if err != nil {
		return &errs.IOError{Op: "install.writeRegularFile", Err: err}
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return &errs.IOError{Op: "install.writeRegularFile", Err: err}
	}
	return nil
}

type noURLError struct{}

func (noURLError) Error() string { return "package has no derivable download URL" }

var errNoURL = noURLError{}
