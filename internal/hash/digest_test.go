package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDigest_KnownContent(t *testing.T) {
	content := []byte(`{"data":{"__schema":{}}}`)
	h := sha256.Sum256(content)
	want := "sha256:" + hex.EncodeToString(h[:])

	if got := Digest(content); got != want {
		t.Errorf("digest = %q, want %q", got, want)
	}
}

func TestDigest_Format(t *testing.T) {
	digest := Digest(nil)
	if !strings.HasPrefix(digest, "sha256:") {
		t.Errorf("missing sha256: prefix: %q", digest)
	}
	if len(digest) != len("sha256:")+64 {
		t.Errorf("unexpected digest length %d", len(digest))
	}
}

func TestDigestFile_MatchesDigest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	content := []byte(`{"data":{"__schema":{"types":[]}}}`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	digest, size, err := DigestFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if digest != Digest(content) {
		t.Errorf("DigestFile = %q, Digest = %q", digest, Digest(content))
	}
	if size != int64(len(content)) {
		t.Errorf("size = %d, want %d", size, len(content))
	}
}

func TestDigestFile_Missing(t *testing.T) {
	_, _, err := DigestFile(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestDigestFile_Directory(t *testing.T) {
	_, _, err := DigestFile(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("err = %v", err)
	}
	if errors.Is(err, os.ErrNotExist) {
		t.Fatal("directory reported as missing")
	}
}
