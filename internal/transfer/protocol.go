package transfer

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// OpDownload is the only operation the protocol defines.
	OpDownload = "download"

	// RequestLimit bounds the size of the initial request payload. It is
	// read in a single receive; anything larger is malformed.
	RequestLimit = 1024
)

// Request is the single message a client sends per connection. The server
// answers a download request with raw file bytes and closes the
// connection; zero bytes sent means the file was not found. There is no
// version field, length prefix, or checksum frame.
type Request struct {
	Operation string `json:"operation"`
	Filename  string `json:"filename"`
}

// Validate checks the request before any filesystem access. Filenames
// must name a plain file inside the served directory; anything carrying
// path separators or parent references is rejected.
func (r *Request) Validate() error {
	if r.Operation != OpDownload {
		return fmt.Errorf("unrecognized operation %q", r.Operation)
	}
	return ValidateFilename(r.Filename)
}

// ValidateFilename rejects names that could escape the target directory.
func ValidateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("filename must not be empty")
	}
	if len(name) > RequestLimit {
		return fmt.Errorf("filename too long")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("invalid filename %q", name)
	}
	return nil
}

// EncodeRequest serializes a request for a single write.
func EncodeRequest(req Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	if len(data) > RequestLimit {
		return nil, fmt.Errorf("request exceeds %d bytes", RequestLimit)
	}
	return data, nil
}

// DecodeRequest parses the payload of one bounded receive.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	return req, nil
}
