package install

import (
	"context"
	"os"
	"path/filepath"

	"github.com/arc-language/msys2pkg/pkg/catalog"
	"github.com/arc-language/msys2pkg/pkg/errs"
	"github.com/arc-language/msys2pkg/pkg/msys"
	"github.com/arc-language/msys2pkg/pkg/resolve"
)

// bootstrapNames are the packages installed after bash, first in setup
// mode and then again in normal mode: info and coreutils, because their
// own hooks must run before anything that depends on them can safely
// run its hooks too. bash itself is looked up and installed separately.
var bootstrapNames = []string{"info", "coreutils"}

// Bootstrap runs the three-phase sequence a root tree needs when it
// doesn't yet have bash/info/coreutils installed, then installs
// requested on top in normal mode. If bash, info or coreutils cannot be
// found in available, it returns a fatal error without installing
// anything.
func (in *Installer) Bootstrap(ctx context.Context, requested []*msys.Package, installed, available []*msys.Package) error {
	bashPkg, ok := catalog.LatestVersion("bash", available)
	if !ok {
		return &errs.IOError{Op: "install.Bootstrap", Err: errMissingBootstrapPackage("bash")}
	}

	var setupRoots []*msys.Package
	for _, name := range bootstrapNames {
		pkg, ok := catalog.LatestVersion(name, available)
		if !ok {
			return &errs.IOError{Op: "install.Bootstrap", Err: errMissingBootstrapPackage(name)}
		}
		setupRoots = append(setupRoots, pkg)
	}

	bashSeq := resolve.Resolve([]*msys.Package{bashPkg}, installed, available, in.logger())
	for _, pkg := range bashSeq {
		if err := in.InstallPackage(ctx, pkg, false); err != nil {
			return err
		}
	}
	// bashbug ships with bash but nothing in this tree ever builds
	// manual pages for it; cosmetic, so its removal is best-effort.
	os.Remove(filepath.Join(in.Root, "usr", "bin", "bashbug"))

	nowInstalled := append(append([]*msys.Package{}, installed...), bashSeq...)
	setupSeq := resolve.Resolve(setupRoots, nowInstalled, available, in.logger())

	for _, pkg := range setupSeq {
		if err := in.InstallPackage(ctx, pkg, true); err != nil {
			return err
		}
	}
	for _, pkg := range setupSeq {
		if err := in.InstallPackage(ctx, pkg, false); err != nil {
			return err
		}
	}

	nowInstalled = append(nowInstalled, setupSeq...)
	userSeq := resolve.Resolve(requested, nowInstalled, available, in.logger())
	for _, pkg := range userSeq {
		if err := in.InstallPackage(ctx, pkg, false); err != nil {
			return err
		}
	}
	return nil
}

type errMissingBootstrapPackage string

func (e errMissingBootstrapPackage) Error() string {
	return "required bootstrap package not found in available set: " + string(e)
}
