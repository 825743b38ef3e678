package ui

import (
	"bytes"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"lanferry/config"
	"lanferry/internal/catalog"
	"lanferry/internal/registry"
	"lanferry/internal/transfer"
)

func newTestMenu(t *testing.T, input string) (*Menu, *config.Config, *bytes.Buffer) {
	t.Helper()

	base := t.TempDir()
	cfg := &config.Config{
		ServedDir:    filepath.Join(base, "uploads"),
		DownloadsDir: filepath.Join(base, "downloads"),
		ChunkSize:    32 * 1024,
		MaxTransfers: 4,
	}
	require.NoError(t, catalog.EnsureDirs(cfg.ServedDir, cfg.DownloadsDir))

	reg, err := registry.Open(filepath.Join(base, "registry"))
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	var out bytes.Buffer
	client := transfer.NewClient(cfg, reg, log)
	menu := NewMenu(catalog.New(cfg.ServedDir), reg, client, strings.NewReader(input), &out)
	return menu, cfg, &out
}

func TestMenuListFiles(t *testing.T) {
	menu, cfg, out := newTestMenu(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ServedDir, "report.pdf"), []byte("pdf"), 0644))

	require.NoError(t, menu.ListFiles())
	require.Contains(t, out.String(), "report.pdf")
}

func TestMenuListFilesEmpty(t *testing.T) {
	menu, _, out := newTestMenu(t, "")

	require.NoError(t, menu.ListFiles())
	require.Contains(t, out.String(), "No files available")
}

func TestMenuAddAndListPeers(t *testing.T) {
	// Add a peer through the menu, list it, then quit.
	menu, _, out := newTestMenu(t, "3\ndesk\n192.168.1.9:5000\n2\n5\n")
	menu.Run()

	require.Contains(t, out.String(), `Peer "desk" added.`)
	require.Contains(t, out.String(), "192.168.1.9:5000")
}

func TestMenuDownloadNotFound(t *testing.T) {
	menu, cfg, out := newTestMenu(t, "")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	log := logrus.New()
	log.SetOutput(io.Discard)
	go transfer.NewServer(cfg, log).Serve(ln)

	menu.Download(ln.Addr().String(), "missing.txt")
	require.Contains(t, out.String(), "not found on the peer")
}

func TestMenuQuitsOnEOF(t *testing.T) {
	menu, _, _ := newTestMenu(t, "")
	// Input is exhausted immediately; Run must return instead of spinning.
	menu.Run()
}
