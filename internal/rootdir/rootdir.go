// Package rootdir resolves which directory on disk is the installation
// root and ensures its required subdirectory skeleton exists.
package rootdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arc-language/msys2pkg/pkg/prompt"
)

// requiredSubdirs is the skeleton every root tree needs before any
// catalog file can be written or any package extracted into it.
var requiredSubdirs = []string{
	filepath.Join("var", "local", "packages"),
	filepath.Join("usr", "bin"),
	"tmp",
}

// Resolve picks the installation root: prefer the current directory if
// it already looks like one (var/local/packages/available exists), then
// "./fs", then fall back to prompting for a directory to use (or just
// CWD in no-prompt mode).
func Resolve(cwd string, noPrompt bool, p *prompt.Prompter) (string, error) {
	if fileExists(filepath.Join(cwd, "var", "local", "packages", "available")) {
		return cwd, nil
	}

	fsRoot := filepath.Join(cwd, "fs")
	if fileExists(filepath.Join(fsRoot, "var", "local", "packages", "available")) {
		return fsRoot, nil
	}

	if noPrompt {
		return cwd, nil
	}

	answer := p.TextInput(fmt.Sprintf("No existing installation found. Directory to create one in [%s]:", fsRoot), fsRoot)
	return answer, nil
}

// EnsureSkeleton creates every required subdirectory of root that is
// missing. It is the default directory-skeleton creator collaborator.
func EnsureSkeleton(root string) error {
	for _, sub := range requiredSubdirs {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", sub, err)
		}
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
