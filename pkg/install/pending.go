package install

import (
	"os"
	"strings"

	"github.com/arc-language/msys2pkg/pkg/errs"
	"github.com/arc-language/msys2pkg/pkg/msys"
)

// Kind is the transaction a PendingMarker records: an install that
// hasn't yet reached the installed catalog, or an update that hasn't
// yet replaced its entry.
type Kind string

const (
	KindInstall Kind = "install"
	KindUpdate  Kind = "update"
)

// PendingMarker is the crash-recovery record written before any
// filesystem mutation begins and deleted only after the transaction's
// last step succeeds. Its presence at startup means a prior run was
// interrupted mid-transaction.
type PendingMarker struct {
	Kind    Kind
	Package *msys.Package
}

func markerPath(root string) string {
	return root + "/var/local/packages/pending"
}

// WritePendingMarker writes the two-line, uncompressed marker file.
func WritePendingMarker(root string, kind Kind, pkg *msys.Package) error {
	body := string(kind) + "\n" + msys.Format(pkg)
	if err := os.WriteFile(markerPath(root), []byte(body), 0o644); err != nil {
		return &errs.IOError{Op: "install.WritePendingMarker", Err: err}
	}
	return nil
}

// DeletePendingMarker removes the marker; a missing file is not an error.
func DeletePendingMarker(root string) error {
	err := os.Remove(markerPath(root))
	if err != nil && !os.IsNotExist(err) {
		return &errs.RemoveError{Op: "install.DeletePendingMarker", Err: err}
	}
	return nil
}

// ReadPendingMarker reads and parses the marker, if any. ok is false
// when no marker file exists.
func ReadPendingMarker(root string) (PendingMarker, bool, error) {
	data, err := os.ReadFile(markerPath(root))
	if os.IsNotExist(err) {
		return PendingMarker{}, false, nil
	}
	if err != nil {
		return PendingMarker{}, false, &errs.IOError{Op: "install.ReadPendingMarker", Err: err}
	}

	kindLine, rest, found := strings.Cut(string(data), "\n")
	if !found {
		return PendingMarker{}, false, &errs.ParseError{Op: "install.ReadPendingMarker", Err: errMalformedMarker}
	}
	pkg, err := msys.Parse(rest)
	if err != nil {
		return PendingMarker{}, false, err
	}
	return PendingMarker{Kind: Kind(kindLine), Package: pkg}, true, nil
}

type malformedMarkerError struct{}

func (malformedMarkerError) Error() string { return "pending marker missing its record line" }

var errMalformedMarker = malformedMarkerError{}
