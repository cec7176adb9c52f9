package install

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arc-language/msys2pkg/pkg/msys"
)

func newRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "var", "local", "packages"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	return root
}

func TestPendingMarkerLifecycle(t *testing.T) {
	root := newRoot(t)
	pkg, err := msys.Parse("msys\tbash\t5.2.15-1")
	if err != nil {
		t.Fatal(err)
	}

	if _, ok, err := ReadPendingMarker(root); ok || err != nil {
		t.Fatalf("expected no marker initially, got ok=%v err=%v", ok, err)
	}

	if err := WritePendingMarker(root, KindInstall, pkg); err != nil {
		t.Fatalf("WritePendingMarker: %v", err)
	}

	marker, ok, err := ReadPendingMarker(root)
	if err != nil || !ok {
		t.Fatalf("ReadPendingMarker: ok=%v err=%v", ok, err)
	}
	if marker.Kind != KindInstall || marker.Package.Name() != "bash" {
		t.Fatalf("got %+v", marker)
	}

	if err := DeletePendingMarker(root); err != nil {
		t.Fatalf("DeletePendingMarker: %v", err)
	}
	if _, ok, err := ReadPendingMarker(root); ok || err != nil {
		t.Fatalf("expected marker gone, got ok=%v err=%v", ok, err)
	}
}

func TestDeletePendingMarkerToleratesMissing(t *testing.T) {
	root := newRoot(t)
	if err := DeletePendingMarker(root); err != nil {
		t.Fatalf("DeletePendingMarker on absent marker: %v", err)
	}
}

func TestReadPendingMarkerRejectsMalformedFile(t *testing.T) {
	root := newRoot(t)
	if err := os.WriteFile(markerPath(root), []byte("no-newline-at-all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadPendingMarker(root); err == nil {
		t.Fatal("expected error for marker missing its record line")
	}
}
