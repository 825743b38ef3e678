package transfer

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lanferry/config"
	"lanferry/internal/hasher"
)

var (
	// ErrNotFound means the peer closed the connection without sending a
	// byte. The wire overloads this with "empty file"; an empty download
	// only survives when the local reference copy is itself empty.
	ErrNotFound = errors.New("file not found on peer")

	// ErrVerificationFailed means the downloaded bytes do not match the
	// digest of the local reference copy. The artifact is deleted.
	ErrVerificationFailed = errors.New("file verification failed")
)

// Resolver turns a peer identifier (saved name or host:port) into a
// dialable address. The peer registry satisfies this.
type Resolver interface {
	Resolve(id string) (string, error)
}

// Client drives one outbound download to completion, including digest
// verification against the reference copy in the served directory.
type Client struct {
	cfg      *config.Config
	resolver Resolver
	log      *logrus.Logger
}

// NewClient creates a fetch client.
func NewClient(cfg *config.Config, resolver Resolver, log *logrus.Logger) *Client {
	return &Client{cfg: cfg, resolver: resolver, log: log}
}

// Fetch downloads one file from a peer into the downloads directory and
// verifies it. Input errors are reported before any network I/O; network
// errors end the attempt without retry; a digest mismatch deletes the
// artifact. Partial files from network failures are left in place.
func (c *Client) Fetch(peer, filename string) error {
	if err := ValidateFilename(filename); err != nil {
		return err
	}

	addr, err := c.resolver.Resolve(peer)
	if err != nil {
		return err
	}

	log := c.log.WithFields(logrus.Fields{
		"transfer": uuid.New().String()[:8],
		"peer":     addr,
		"file":     filename,
	})

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	payload, err := EncodeRequest(Request{Operation: OpDownload, Filename: filename})
	if err != nil {
		return err
	}
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	dest := filepath.Join(c.cfg.DownloadsDir, filename)
	received, err := c.receive(conn, dest)
	if err != nil {
		return err
	}
	log.WithField("bytes", received).Debug("stream complete")

	return c.verify(dest, filename, received, log)
}

// receive appends the transfer stream to a newly created file until the
// peer closes the connection. A zero-length read is orderly end of
// transfer, not an error.
func (c *Client) receive(conn net.Conn, dest string) (int64, error) {
	out, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Close()

	var total int64
	buf := make([]byte, c.cfg.ChunkSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return total, fmt.Errorf("failed to write %s: %w", dest, werr)
			}
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("failed to receive stream: %w", err)
		}
	}
}

// verify compares the download against the reference copy held in the
// served directory. Verification is only meaningful because this node
// also publishes the file it fetched; the protocol carries no digest.
func (c *Client) verify(dest, filename string, received int64, log *logrus.Entry) error {
	refDigest, refErr := hasher.FileDigest(filepath.Join(c.cfg.ServedDir, filename))

	if received == 0 {
		if refErr == nil {
			gotDigest, err := hasher.FileDigest(dest)
			if err == nil && gotDigest == refDigest {
				// A genuinely empty file round-trips.
				log.Info("download verified")
				return nil
			}
		}
		os.Remove(dest)
		return fmt.Errorf("%w: %s", ErrNotFound, filename)
	}

	if refErr != nil {
		// No reference copy to compare against; the transfer cannot be
		// trusted and the artifact is dropped.
		os.Remove(dest)
		return fmt.Errorf("%w: no local reference for %s", ErrVerificationFailed, filename)
	}

	gotDigest, err := hasher.FileDigest(dest)
	if err != nil {
		return fmt.Errorf("failed to hash download: %w", err)
	}
	if gotDigest != refDigest {
		os.Remove(dest)
		log.Warn("digest mismatch, corrupt download deleted")
		return fmt.Errorf("%w: %s", ErrVerificationFailed, filename)
	}

	log.Info("download verified")
	return nil
}
