package transfer

import (
	"fmt"
	"io"
	"net"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lanferry/config"
	"lanferry/internal/catalog"
)

// Server accepts inbound connections and serves one download per
// connection. Handlers are independent; a failure in one never reaches
// the accept loop or its siblings.
type Server struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	log     *logrus.Logger

	// sem bounds concurrent handlers. Goroutine-per-connection is kept,
	// but the bound is explicit and configurable: when all slots are
	// busy an accepted connection waits for one to free up while the
	// loop keeps accepting.
	sem chan struct{}
}

// NewServer creates a transfer server over the configured served directory.
func NewServer(cfg *config.Config, log *logrus.Logger) *Server {
	return &Server{
		cfg:     cfg,
		catalog: catalog.New(cfg.ServedDir),
		log:     log,
		sem:     make(chan struct{}, cfg.MaxTransfers),
	}
}

// ListenAndServe binds the configured port on all interfaces and runs the
// accept loop until the listener fails.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.cfg.Addr(), err)
	}
	s.log.WithField("addr", ln.Addr().String()).Info("transfer server listening")
	return s.Serve(ln)
}

// Serve runs the accept loop on an existing listener. Each accepted
// connection is handed to its own goroutine; the loop never waits for a
// handler to finish. An accept failure (the listener closing) is fatal
// to the loop.
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept failed: %w", err)
		}

		go func(c net.Conn) {
			s.sem <- struct{}{}
			defer func() { <-s.sem }()
			s.handleConn(c)
		}(conn)
	}
}

// handleConn services exactly one request, then releases the connection.
// The connection is closed on every path, and only the first error is
// logged.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	log := s.log.WithFields(logrus.Fields{
		"conn":   uuid.New().String()[:8],
		"remote": conn.RemoteAddr().String(),
	})

	buf := make([]byte, RequestLimit)
	n, err := conn.Read(buf)
	if err != nil {
		log.WithError(err).Warn("failed to read request")
		return
	}

	req, err := DecodeRequest(buf[:n])
	if err != nil {
		// Fail closed: no response for a request we cannot parse.
		log.WithError(err).Warn("malformed request")
		return
	}
	if err := req.Validate(); err != nil {
		log.WithError(err).Warn("rejected request")
		return
	}

	log = log.WithField("file", req.Filename)

	path := s.catalog.Path(req.Filename)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		// Not found: send nothing. The closing of the connection is the
		// only signal the requester gets.
		log.Info("requested file not available")
		return
	}

	if err := s.streamFile(conn, path); err != nil {
		log.WithError(err).Warn("transfer aborted")
		return
	}

	log.WithField("bytes", info.Size()).Info("file served")
}

// streamFile writes the file to the connection in fixed-size chunks,
// relying on the transport for ordering.
func (s *Server) streamFile(conn net.Conn, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	buf := make([]byte, s.cfg.ChunkSize)
	for {
		n, err := file.Read(buf)
		if n > 0 {
			if _, werr := conn.Write(buf[:n]); werr != nil {
				return fmt.Errorf("failed to write chunk: %w", werr)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read chunk: %w", err)
		}
	}
}
