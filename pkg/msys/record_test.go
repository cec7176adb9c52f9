package msys

import (
	"testing"

	"github.com/arc-language/msys2pkg/pkg/codec"
)

func TestParseWithDependencies(t *testing.T) {
	line := "msys\tname\tversion\tzst\t+\tdep1\tdep2=1\tdep3>3.2\tdep4"
	pkg, err := Parse(line)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if pkg.Name() != "name" || pkg.Version != "version" {
		t.Fatalf("unexpected identity: %s %s", pkg.Name(), pkg.Version)
	}
	if !pkg.HasCompression || pkg.Compression != codec.ZSTD {
		t.Fatalf("expected zst compression, got %+v", pkg.Compression)
	}
	if pkg.HasArch {
		t.Fatalf("expected no arch field, got %q", pkg.Arch)
	}
	want := []string{"dep1", "dep2=1", "dep3>3.2", "dep4"}
	if len(pkg.Dependencies) != len(want) {
		t.Fatalf("dependencies = %v, want %v", pkg.Dependencies, want)
	}
	for i, dep := range want {
		if pkg.Dependencies[i] != dep {
			t.Errorf("dependencies[%d] = %q, want %q", i, pkg.Dependencies[i], dep)
		}
	}
}

func TestParseWithCompressionArchAndDeps(t *testing.T) {
	line := "mingw64\tpkg\t1.0-1\txz\tx86_64\t+\tfoo"
	pkg, err := Parse(line)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !pkg.HasCompression || !pkg.HasArch {
		t.Fatalf("expected both compression and arch present")
	}
	if pkg.Arch != "x86_64" {
		t.Errorf("arch = %q, want x86_64", pkg.Arch)
	}
	if len(pkg.Dependencies) != 1 || pkg.Dependencies[0] != "foo" {
		t.Errorf("dependencies = %v", pkg.Dependencies)
	}
}

func TestParseMinimalNoMetadata(t *testing.T) {
	pkg, err := Parse("msys\tname\t1.0")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if pkg.HasCompression || pkg.HasArch || pkg.Dependencies != nil {
		t.Fatalf("expected all optional fields absent, got %+v", pkg)
	}
}

func TestParseAltNames(t *testing.T) {
	pkg, err := Parse("msys\tname, alias1, alias2\t1.0")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"name", "alias1", "alias2"}
	if len(pkg.Names) != len(want) {
		t.Fatalf("names = %v, want %v", pkg.Names, want)
	}
	for i, n := range want {
		if pkg.Names[i] != n {
			t.Errorf("names[%d] = %q, want %q", i, pkg.Names[i], n)
		}
	}
}

func TestParseBoundaryFailures(t *testing.T) {
	cases := []string{
		"",
		"onlyone",
		"two\tfields",
		"unknownrepo\tname\t1.0",
		"msys\tname\t1.0\tbz2",
	}
	for _, line := range cases {
		if _, err := Parse(line); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", line)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	lines := []string{
		"msys\tname\t1.0",
		"msys\tname\t1.0\tzst",
		"msys\tname\t1.0\tzst\tx86_64",
		"msys\tname\t1.0\tzst\tx86_64\t+",
		"msys\tname\t1.0\tzst\tx86_64\t+\tdep1\tdep2",
		"msys\tname\t1.0\t+\tdep1",
		"msys\tname, alias\t1.0",
	}
	for _, line := range lines {
		pkg, err := Parse(line)
		if err != nil {
			t.Fatalf("Parse(%q): %v", line, err)
		}
		if got := Format(pkg); got != line {
			t.Errorf("Format(Parse(%q)) = %q, want %q", line, got, line)
		}
	}
}

func TestDependencyName(t *testing.T) {
	cases := map[string]string{
		"foo":       "foo",
		"foo=1.0":   "foo",
		"foo>=1.0":  "foo",
		"foo~1.0":   "foo",
		"foo#a":     "foo",
		"foo*":      "foo",
		"sh":        "bash",
		"sh=1.0":    "bash",
	}
	for token, want := range cases {
		if got := DependencyName(token); got != want {
			t.Errorf("DependencyName(%q) = %q, want %q", token, got, want)
		}
	}
}

func TestLess(t *testing.T) {
	a := &Package{Names: []string{"a"}, Version: "1.0"}
	b := &Package{Names: []string{"a"}, Version: "2.0"}
	c := &Package{Names: []string{"b"}, Version: "0.1"}
	if !a.Less(b) {
		t.Error("expected a < b by version")
	}
	if !b.Less(c) {
		t.Error("expected b < c by name")
	}
}

func TestEqualIgnoresMetadata(t *testing.T) {
	a := &Package{Names: []string{"n"}, Version: "1.0", Arch: "x86_64", HasArch: true}
	b := &Package{Names: []string{"n"}, Version: "1.0", Arch: "aarch64", HasArch: true}
	if !a.Equal(b) {
		t.Error("expected identity-only equality to ignore Arch")
	}
}
