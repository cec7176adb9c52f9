package cli

import (
	"github.com/spf13/cobra"

	"github.com/arc-language/msys2pkg/pkg/msys"
)

var installedCmd = &cobra.Command{
	Use:   "installed [name...]",
	Short: "List installed packages",
	Args:  cobra.ArbitraryArgs,
	RunE:  runInstalled,
}

func runInstalled(cmd *cobra.Command, names []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	pkgs, err := a.installed.Packages()
	if err != nil {
		return err
	}

	for _, pkg := range pkgs {
		if len(names) > 0 && !matchesAny(pkg, names) {
			continue
		}
		a.printer.Line("%s %s", pkg.Name(), pkg.Version)
	}
	return nil
}

func matchesAny(pkg *msys.Package, names []string) bool {
	for _, n := range names {
		if pkg.Matches(n) {
			return true
		}
	}
	return false
}
