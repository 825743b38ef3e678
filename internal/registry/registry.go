package registry

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// ErrUnknownPeer is returned when a peer identifier is neither a saved
// name nor a parseable host:port address.
var ErrUnknownPeer = errors.New("unknown peer")

const keyPrefix = "peer:"

// Peer is one entry of the persisted address book.
type Peer struct {
	Name string
	Addr string
}

// Registry is the persisted name -> host:port address book. Values are
// stored in BadgerDB under a "peer:" key prefix.
type Registry struct {
	db *badger.DB
}

// Open opens (or creates) the registry database at the given path.
func Open(path string) (*Registry, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open registry db: %w", err)
	}
	return &Registry{db: db}, nil
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Add saves a peer under the given name. The address must be host:port.
func (r *Registry) Add(name, addr string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("peer name must not be empty")
	}
	if err := validateAddr(addr); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+name), []byte(addr))
	})
}

// Remove deletes a saved peer. Removing an unknown name is not an error.
func (r *Registry) Remove(name string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + name))
	})
}

// Lookup returns the saved address for a peer name.
func (r *Registry) Lookup(name string) (string, error) {
	var addr string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			addr = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %s", ErrUnknownPeer, name)
	}
	return addr, err
}

// Resolve turns a peer identifier into a dialable address. A saved name
// wins; otherwise the identifier itself must be a valid host:port.
func (r *Registry) Resolve(id string) (string, error) {
	addr, err := r.Lookup(id)
	if err == nil {
		return addr, nil
	}
	if !errors.Is(err, ErrUnknownPeer) {
		return "", err
	}
	if err := validateAddr(id); err != nil {
		return "", fmt.Errorf("%w: %q is not a saved name or host:port", ErrUnknownPeer, id)
	}
	return id, nil
}

// validateAddr checks that an address is a dialable host:port. SplitHostPort
// alone passes non-numeric ports through, so the port is checked separately.
func validateAddr(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid peer address %q: %w", addr, err)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid peer address %q: port must be numeric", addr)
	}
	return nil
}

// List returns all saved peers sorted by name.
func (r *Registry) List() ([]Peer, error) {
	var peers []Peer
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			name := strings.TrimPrefix(string(item.Key()), keyPrefix)
			err := item.Value(func(val []byte) error {
				peers = append(peers, Peer{Name: name, Addr: string(val)})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(peers, func(i, j int) bool { return peers[i].Name < peers[j].Name })
	return peers, nil
}
