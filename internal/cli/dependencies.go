package cli

import (
	"context"
	"sort"

	"github.com/spf13/cobra"

	"github.com/arc-language/msys2pkg/pkg/resolve"
)

var dependenciesCmd = &cobra.Command{
	Use:   "dependencies <name...>",
	Short: "Resolve and print the install order for a set of packages",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDependencies,
}

func runDependencies(cmd *cobra.Command, names []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	available, err := a.available.GetPackages(context.Background())
	if err != nil {
		return err
	}

	roots, err := a.resolvePackagesOrWarn(names, available)
	if err != nil {
		return err
	}

	resolved := resolve.Resolve(roots, nil, available, a.logger)
	sort.SliceStable(resolved, func(i, j int) bool { return resolved[i].Less(resolved[j]) })

	for _, pkg := range resolved {
		a.printer.Line("%s %s", pkg.Name(), pkg.Version)
	}
	return nil
}
