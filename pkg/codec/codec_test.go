package codec

import (
	"bytes"
	"compress/flate"
	"testing"
)

func TestFromExtension(t *testing.T) {
	cases := []struct {
		ext  string
		want Algorithm
		ok   bool
	}{
		{"zst", ZSTD, true},
		{"xz", XZ, true},
		{"gz", GZIP, true},
		{"bz2", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := FromExtension(c.ext)
		if ok != c.ok || got != c.want {
			t.Errorf("FromExtension(%q) = (%q, %v), want (%q, %v)", c.ext, got, ok, c.want, c.ok)
		}
	}
}

func TestExtensionRoundTrip(t *testing.T) {
	for _, algo := range []Algorithm{ZSTD, XZ, GZIP} {
		ext := Extension(algo)
		got, ok := FromExtension(ext)
		if !ok || got != algo {
			t.Errorf("Extension/FromExtension round trip failed for %q", algo)
		}
	}
}

func TestZSTDRoundTrip(t *testing.T) {
	want := []byte("msys2pkg catalog payload\nwith several\nlines\n")
	encoded, err := CompressZSTD(want)
	if err != nil {
		t.Fatalf("CompressZSTD: %v", err)
	}
	got, err := Decompress(ZSTD, encoded)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("round trip mismatch: got %q, want %q", got, want)
	}
}

func TestDecompressUnknownAlgorithm(t *testing.T) {
	if _, err := Decompress("unknown", []byte("x")); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}

func TestDecompressGZIPSkipsFixedHeader(t *testing.T) {
	payload := []byte("hello msys2 repository database")

	var deflated bytes.Buffer
	w, err := flate.NewWriter(&deflated, flate.DefaultCompression)
	if err != nil {
		t.Fatalf("flate.NewWriter: %v", err)
	}
	if _, err := w.Write(payload); err != nil {
		t.Fatalf("flate write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("flate close: %v", err)
	}

	header := make([]byte, 10)
	header[0], header[1] = 0x1f, 0x8b // gzip magic, unused by the decoder but realistic
	member := append(header, deflated.Bytes()...)

	got, err := Decompress(GZIP, member)
	if err != nil {
		t.Fatalf("Decompress(GZIP): %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("got %q, want %q", got, payload)
	}
}

func TestDecompressGZIPTooShort(t *testing.T) {
	if _, err := Decompress(GZIP, []byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for input shorter than the fixed header")
	}
}
