package cli

import (
	"fmt"

	"github.com/arc-language/msys2pkg/pkg/catalog"
	"github.com/arc-language/msys2pkg/pkg/msys"
	"github.com/arc-language/msys2pkg/pkg/prompt"
)

// errAborted is returned when the user declines to proceed with a
// partially-resolved package name list.
var errAborted = fmt.Errorf("aborted: not all requested packages were found")

// resolvePackagesOrWarn looks up each name's latest version in
// available. Names that don't resolve are reported and, unless every
// name failed (an unconditional abort) or prompting is suppressed, the
// user is asked whether to proceed with the subset that did resolve.
func (a *app) resolvePackagesOrWarn(names []string, available []*msys.Package) ([]*msys.Package, error) {
	var found []*msys.Package
	var missing []string

	for _, name := range names {
		pkg, ok := catalog.LatestVersion(name, available)
		if !ok {
			missing = append(missing, name)
			continue
		}
		found = append(found, pkg)
	}

	if len(missing) == 0 {
		return found, nil
	}

	for _, name := range missing {
		a.printer.Failure("package not found: %s", name)
	}

	if len(found) == 0 {
		return nil, errAborted
	}

	if a.prompter.YesOrNo("Abort installation?", prompt.No, cfg.NoPrompt, "continuing with the packages that were found") == prompt.Yes {
		return nil, errAborted
	}
	return found, nil
}
