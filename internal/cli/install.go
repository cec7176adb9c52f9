package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arc-language/msys2pkg/pkg/install"
	"github.com/arc-language/msys2pkg/pkg/msys"
	"github.com/arc-language/msys2pkg/pkg/prompt"
	"github.com/arc-language/msys2pkg/pkg/resolve"
)

var installCmd = &cobra.Command{
	Use:   "install <name...>",
	Short: "Install one or more packages",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInstall,
}

func runInstall(cmd *cobra.Command, names []string) error {
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

	roots, err := a.resolvePackagesOrWarn(names, available)
	if err != nil {
		return err
	}

	if !hasInstalled(installedPkgs, "bash") {
		if err := a.installer.Bootstrap(ctx, roots, installedPkgs, available); err != nil {
			return err
		}
		a.printer.Success("bootstrap and requested packages installed")
		return nil
	}

	sequence := resolve.Resolve(roots, installedPkgs, available, a.logger)
	for _, pkg := range sequence {
		if err := a.installer.InstallPackage(ctx, pkg, false); err != nil {
			return err
		}
		a.printer.Success("installed %s %s", pkg.Name(), pkg.Version)
	}
	return nil
}

func hasInstalled(installed []*msys.Package, name string) bool {
	for _, p := range installed {
		if p.Matches(name) {
			return true
		}
	}
	return false
}

// replayPendingMarker handles startup replay: if a marker from an
// interrupted run is present, ask whether to retry its single
// transaction, honoring --no-prompt (default YES).
func (a *app) replayPendingMarker(ctx context.Context) error {
	marker, ok, err := install.ReadPendingMarker(a.root)
	if err != nil || !ok {
		return err
	}

	retry := a.prompter.YesOrNo(
		"A previous install or update was interrupted. Retry it?",
		prompt.Yes,
		cfg.NoPrompt,
		"retrying the interrupted transaction",
	)
	if retry == prompt.No {
		return install.DeletePendingMarker(a.root)
	}

	switch marker.Kind {
	case install.KindInstall:
		return a.installer.InstallPackage(ctx, marker.Package, false)
	case install.KindUpdate:
		return a.installer.UpdatePackage(ctx, marker.Package)
	}
	return nil
}
