package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrUnavailable means the file could not be opened for hashing. It is
// distinct from the digest of an empty file, which is well defined.
var ErrUnavailable = errors.New("file unavailable for hashing")

// readSize bounds memory use while hashing; the file is never loaded whole.
const readSize = 32 * 1024

// Digest is a hex-encoded SHA-256 fingerprint of a file's full content.
// Two digests are only ever compared for equality.
type Digest string

// FileDigest streams the file through SHA-256 and returns its digest.
func FileDigest(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, path)
	}
	defer file.Close()

	h := sha256.New()
	buf := make([]byte, readSize)
	for {
		n, err := file.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	return Digest(hex.EncodeToString(h.Sum(nil))), nil
}
