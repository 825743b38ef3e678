package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"lanferry/internal/catalog"
	"lanferry/internal/registry"
	"lanferry/internal/transfer"
)

// Menu is the interactive control surface. It only ever calls into the
// core as a fetch-client caller; listener internals are never touched.
type Menu struct {
	catalog  *catalog.Catalog
	registry *registry.Registry
	client   *transfer.Client
	in       *bufio.Scanner
	out      io.Writer
}

func NewMenu(cat *catalog.Catalog, reg *registry.Registry, client *transfer.Client, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		catalog:  cat,
		registry: reg,
		client:   client,
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

// Run loops over the menu until the user quits or input ends.
func (m *Menu) Run() {
	fmt.Fprintf(m.out, "lanferry node (IP: %s)\n", LocalIP())

	for {
		fmt.Fprintln(m.out)
		fmt.Fprintln(m.out, "1. List files")
		fmt.Fprintln(m.out, "2. List peers")
		fmt.Fprintln(m.out, "3. Add peer")
		fmt.Fprintln(m.out, "4. Download file")
		fmt.Fprintln(m.out, "5. Quit")

		choice, ok := m.prompt("> ")
		if !ok {
			return
		}

		var err error
		switch strings.TrimSpace(choice) {
		case "1":
			err = m.ListFiles()
		case "2":
			err = m.ListPeers()
		case "3":
			err = m.addPeer()
		case "4":
			err = m.download()
		case "5", "q", "quit":
			return
		default:
			continue
		}
		if err != nil {
			fmt.Fprintf(m.out, "error: %v\n", err)
		}
	}
}

// ListFiles renders the served directory contents.
func (m *Menu) ListFiles() error {
	assets, err := m.catalog.List()
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		fmt.Fprintln(m.out, "No files available for download.")
		return nil
	}

	table := newTable(m.out, []string{"File", "Size"})
	for _, a := range assets {
		table.Append([]string{a.Name, humanize.Bytes(uint64(a.Size))})
	}
	table.Render()
	return nil
}

// ListPeers renders the saved address book.
func (m *Menu) ListPeers() error {
	peers, err := m.registry.List()
	if err != nil {
		return err
	}
	if len(peers) == 0 {
		fmt.Fprintln(m.out, "No peers added.")
		return nil
	}

	table := newTable(m.out, []string{"Peer", "Address"})
	for _, p := range peers {
		table.Append([]string{p.Name, p.Addr})
	}
	table.Render()
	return nil
}

func (m *Menu) addPeer() error {
	name, ok := m.prompt("Peer name: ")
	if !ok {
		return nil
	}
	addr, ok := m.prompt("Address (e.g. 192.168.1.2:5000): ")
	if !ok {
		return nil
	}
	if err := m.registry.Add(strings.TrimSpace(name), strings.TrimSpace(addr)); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Peer %q added.\n", strings.TrimSpace(name))
	return nil
}

func (m *Menu) download() error {
	peer, ok := m.prompt("Peer name or address: ")
	if !ok {
		return nil
	}
	filename, ok := m.prompt("File name: ")
	if !ok {
		return nil
	}
	m.Download(strings.TrimSpace(peer), strings.TrimSpace(filename))
	return nil
}

// Download runs one fetch and reports a single terminal outcome.
func (m *Menu) Download(peer, filename string) {
	fmt.Fprintf(m.out, "Downloading %q from %s...\n", filename, peer)

	err := m.client.Fetch(peer, filename)
	switch {
	case err == nil:
		fmt.Fprintf(m.out, "%q downloaded and verified successfully.\n", filename)
	case errors.Is(err, transfer.ErrNotFound):
		fmt.Fprintf(m.out, "%q was not found on the peer.\n", filename)
	case errors.Is(err, transfer.ErrVerificationFailed):
		fmt.Fprintf(m.out, "Verification failed; corrupt download deleted.\n")
	default:
		fmt.Fprintf(m.out, "Download failed: %v\n", err)
	}
}

func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return m.in.Text(), true
}

func newTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

// LocalIP reports the machine's LAN address. The dial never sends a
// packet; it only forces the kernel to pick a source address.
func LocalIP() string {
	conn, err := net.Dial("udp", "10.254.254.254:1")
	if err != nil {
		return "unknown"
	}
	defer conn.Close()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "unknown"
}
