package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const prefix = "sha256:"

func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return format(sum[:])
}

// DigestFile hashes the regular file at path and returns its digest and size.
// A missing file yields an error wrapping os.ErrNotExist.
func DigestFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("digest %s: %w", path, err)
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil && fi.IsDir() {
		return "", 0, fmt.Errorf("digest %s: is a directory", path)
	}
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("digest %s: %w", path, err)
	}
	return format(h.Sum(nil)), n, nil
}

func format(sum []byte) string { return prefix + hex.EncodeToString(sum) }
