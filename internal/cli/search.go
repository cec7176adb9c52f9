package cli

import (
	"context"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arc-language/msys2pkg/internal/ui"
	"github.com/arc-language/msys2pkg/pkg/msys"
)

var searchCmd = &cobra.Command{
	Use:   "search <term...>",
	Short: "Search available packages",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func runSearch(cmd *cobra.Command, terms []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	available, err := a.available.GetPackages(context.Background())
	if err != nil {
		return err
	}

	type scored struct {
		pkg   *msys.Package
		score int
	}

	var results []scored
	for _, pkg := range available {
		score := 0
		for _, term := range terms {
			score += termScore(pkg.Name(), term)
		}
		if score == 0 {
			continue
		}
		results = append(results, scored{pkg: pkg, score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[j].pkg.Less(results[i].pkg)
	})

	for _, r := range results {
		display := r.pkg.Name()
		for _, term := range terms {
			display = ui.Highlight(display, term)
		}
		a.printer.Line("%s %s", display, r.pkg.Version)
	}
	return nil
}

// termScore awards the single highest-priority match for one search
// term against one package name: exact match beats prefix match beats
// "lib"-prefixed match beats plain substring containment.
func termScore(name, term string) int {
	switch {
	case name == term:
		return 8
	case strings.HasPrefix(name, term):
		return 4
	case strings.HasPrefix(name, "lib"+term):
		return 2
	case strings.Contains(name, term):
		return 1
	default:
		return 0
	}
}
