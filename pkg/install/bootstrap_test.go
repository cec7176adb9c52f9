package install

import (
	"archive/tar"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arc-language/msys2pkg/pkg/catalog"
	"github.com/arc-language/msys2pkg/pkg/codec"
	"github.com/arc-language/msys2pkg/pkg/msys"
)

// keyedDownloader dispatches by matching each registered key against a
// substring of the requested URL, avoiding any dependency on exact URL
// construction beyond what Package.URL already guarantees (the package
// name always appears in it).
type keyedDownloader struct {
	bodies map[string][]byte
}

func (d *keyedDownloader) Download(ctx context.Context, url string) (string, []byte, error) {
	for key, body := range d.bodies {
		if strings.Contains(url, key) {
			return `"etag"`, body, nil
		}
	}
	return "", nil, os.ErrNotExist
}

func tinyPackageBody(t *testing.T, fileContent string) []byte {
	t.Helper()
	tarBody := buildTar(t, []tarEntry{
		{name: "usr/bin/placeholder", typeflag: tar.TypeReg, body: fileContent},
	})
	compressed, err := codec.CompressZSTD(tarBody)
	if err != nil {
		t.Fatal(err)
	}
	return compressed
}

func TestBootstrapMissingBashIsFatal(t *testing.T) {
	in, _ := newTestInstaller(t, &keyedDownloader{bodies: map[string][]byte{}})
	available := []*msys.Package{}
	err := in.Bootstrap(context.Background(), nil, nil, available)
	if err == nil {
		t.Fatal("expected fatal error when bash is absent from available")
	}
}

func TestBootstrapFullSequenceInstallsEverything(t *testing.T) {
	bash, _ := msys.Parse("msys\tbash\t1.0\tzst\tx86_64")
	info, _ := msys.Parse("msys\tinfo\t1.0\tzst\tx86_64")
	coreutils, _ := msys.Parse("msys\tcoreutils\t1.0\tzst\tx86_64")
	userPkg, _ := msys.Parse("msys\tuserpkg\t1.0\tzst\tx86_64\t+\tcoreutils")
	available := []*msys.Package{bash, info, coreutils, userPkg}

	dl := &keyedDownloader{bodies: map[string][]byte{
		"bash-1.0":      tinyPackageBody(t, "bash"),
		"info-1.0":      tinyPackageBody(t, "info"),
		"coreutils-1.0": tinyPackageBody(t, "coreutils"),
		"userpkg-1.0":   tinyPackageBody(t, "userpkg"),
	}}

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "var", "local", "packages"), 0o755); err != nil {
		t.Fatal(err)
	}
	in := &Installer{
		Root:       root,
		Downloader: dl,
		Installed:  &catalog.InstalledStore{Path: filepath.Join(root, "var", "local", "packages", "installed")},
	}

	if err := in.Bootstrap(context.Background(), []*msys.Package{userPkg}, nil, available); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	pkgs, err := in.Installed.Packages()
	if err != nil {
		t.Fatalf("Packages: %v", err)
	}
	got := map[string]bool{}
	for _, p := range pkgs {
		got[p.Name()] = true
	}
	for _, want := range []string{"bash", "info", "coreutils", "userpkg"} {
		if !got[want] {
			t.Errorf("expected %s to end up in the installed catalog, got %v", want, got)
		}
	}

	if _, ok, _ := ReadPendingMarker(root); ok {
		t.Fatal("expected no pending marker after a fully successful bootstrap")
	}
}
