// Package resolve computes a sequential install order for a set of
// root packages against an available catalog, tolerating dependency
// cycles by breaking them rather than failing.
package resolve

import (
	"io"
	"log"
	"sort"
	"strings"

	"github.com/arc-language/msys2pkg/pkg/catalog"
	"github.com/arc-language/msys2pkg/pkg/msys"
)

// deque is a small double-ended queue of *msys.Package, matching the
// "work deque" the algorithm pushes to the front of and pops from the
// front of.
type deque struct {
	items []*msys.Package
}

func (d *deque) pushFront(p *msys.Package) { d.items = append([]*msys.Package{p}, d.items...) }
func (d *deque) popFront() *msys.Package {
	p := d.items[0]
	d.items = d.items[1:]
	return p
}
func (d *deque) empty() bool          { return len(d.items) == 0 }
func (d *deque) front() *msys.Package { return d.items[0] }

// remove deletes the first package in the deque with the given name,
// if present, and reports whether it found one.
func (d *deque) remove(name string) (*msys.Package, bool) {
	for i, p := range d.items {
		if p.Name() == name {
			d.items = append(d.items[:i], d.items[i+1:]...)
			return p, true
		}
	}
	return nil, false
}

func (d *deque) snapshot() string {
	names := make([]string, len(d.items))
	for i, p := range d.items {
		names[i] = p.Name()
	}
	return strings.Join(names, ", ")
}

// Resolve implements the deque + snapshot-based cycle-tolerant
// topological sort: it returns a sequence safe for sequential
// installation, with every dependency preceding its dependent except
// across a cycle, which the snapshot check breaks by consuming the
// cycle's front element instead of looping forever.
func Resolve(roots []*msys.Package, installed, available []*msys.Package, logger *log.Logger) []*msys.Package {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	work := &deque{items: append([]*msys.Package{}, roots...)}
	var processed []*msys.Package
	processedNames := map[string]bool{}
	installedNames := map[string]bool{}
	for _, p := range installed {
		installedNames[p.Name()] = true
	}
	seenSnapshots := map[string]bool{}

	for !work.empty() {
		front := work.front()

		missing := missingDeps(front, installedNames, processedNames, available, logger)

		snapshot := work.snapshot()
		alreadySeen := seenSnapshots[snapshot]
		seenSnapshots[snapshot] = true

		if !alreadySeen && len(missing) > 0 {
			sort.SliceStable(missing, func(i, j int) bool {
				return len(missing[i].Dependencies) > len(missing[j].Dependencies)
			})
			for _, dep := range missing {
				work.remove(dep.Name())
				work.pushFront(dep)
			}
			continue
		}

		p := work.popFront()
		if !processedNames[p.Name()] {
			processed = append(processed, p)
			processedNames[p.Name()] = true
		}
	}

	return processed
}

// missingDeps computes the dependency tokens of pkg that still need
// installing: unknown names are warned about and dropped, names already
// installed or already processed are dropped.
func missingDeps(pkg *msys.Package, installedNames, processedNames map[string]bool, available []*msys.Package, logger *log.Logger) []*msys.Package {
	var out []*msys.Package
	for _, token := range pkg.Dependencies {
		name := msys.DependencyName(token)
		if installedNames[name] || processedNames[name] {
			continue
		}
		dep, ok := catalog.LatestVersion(name, available)
		if !ok {
			logger.Printf("dependency %q of %s not found in available set, skipping", name, pkg.Name())
			continue
		}
		out = append(out, dep)
	}
	return out
}
