package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arc-language/msys2pkg/pkg/msys"
	"github.com/arc-language/msys2pkg/pkg/resolve"
)

var updateCmd = &cobra.Command{
	Use:   "update [name...]",
	Short: "Update installed packages, or all of them if none are named",
	Args:  cobra.ArbitraryArgs,
	RunE:  runUpdate,
}

func runUpdate(cmd *cobra.Command, names []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if err := a.replayPendingMarker(ctx); err != nil {
		return err
	}

	available, err := a.available.GetPackages(ctx)
	if err != nil {
		return err
	}
	installedPkgs, err := a.installed.Packages()
	if err != nil {
		return err
	}

	targetNames := names
	if len(targetNames) == 0 {
		for _, p := range installedPkgs {
			targetNames = append(targetNames, p.Name())
		}
	}

	targets, err := a.resolvePackagesOrWarn(targetNames, available)
	if err != nil {
		return err
	}

	targetSet := map[string]bool{}
	for _, t := range targets {
		targetSet[t.Name()] = true
	}

	// Re-resolve dependencies against an installed set that excludes the
	// targets, so targets are ordered after the targets they depend on and
	// any dependency that is not installed yet is installed first. An
	// installed dependency that is not itself a target keeps its version.
	remainingInstalled := filterOut(installedPkgs, targetSet)
	sequence := resolve.Resolve(targets, remainingInstalled, available, a.logger)

	for _, pkg := range sequence {
		if targetSet[pkg.Name()] {
			if err := a.installer.UpdatePackage(ctx, pkg); err != nil {
				return err
			}
			a.printer.Success("updated %s %s", pkg.Name(), pkg.Version)
			continue
		}
		if hasInstalled(installedPkgs, pkg.Name()) {
			continue
		}
		if err := a.installer.InstallPackage(ctx, pkg, false); err != nil {
			return err
		}
		a.printer.Success("installed %s %s", pkg.Name(), pkg.Version)
	}
	return nil
}

func filterOut(pkgs []*msys.Package, exclude map[string]bool) []*msys.Package {
	var out []*msys.Package
	for _, p := range pkgs {
		if !exclude[p.Name()] {
			out = append(out, p)
		}
	}
	return out
}
