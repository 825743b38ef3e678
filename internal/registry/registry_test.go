package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := Open(filepath.Join(t.TempDir(), "registry"))
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })
	return reg
}

func TestRegistryAddLookup(t *testing.T) {
	reg := openTestRegistry(t)

	require.NoError(t, reg.Add("laptop", "192.168.1.2:5000"))

	addr, err := reg.Lookup("laptop")
	require.NoError(t, err)
	require.Equal(t, "192.168.1.2:5000", addr)
}

func TestRegistryAddRejectsBadInput(t *testing.T) {
	reg := openTestRegistry(t)

	require.Error(t, reg.Add("", "192.168.1.2:5000"))
	require.Error(t, reg.Add("laptop", "192.168.1.2"))
	require.Error(t, reg.Add("laptop", "not an address"))
	require.Error(t, reg.Add("laptop", "192.168.1.2:abc"))
	require.Error(t, reg.Add("laptop", "192.168.1.2:0"))
}

func TestRegistryResolve(t *testing.T) {
	reg := openTestRegistry(t)
	require.NoError(t, reg.Add("laptop", "192.168.1.2:5000"))

	t.Run("saved name", func(t *testing.T) {
		addr, err := reg.Resolve("laptop")
		require.NoError(t, err)
		require.Equal(t, "192.168.1.2:5000", addr)
	})

	t.Run("raw host:port", func(t *testing.T) {
		addr, err := reg.Resolve("10.0.0.7:6000")
		require.NoError(t, err)
		require.Equal(t, "10.0.0.7:6000", addr)
	})

	t.Run("garbage identifier", func(t *testing.T) {
		_, err := reg.Resolve("no-such-peer")
		require.ErrorIs(t, err, ErrUnknownPeer)
	})

	t.Run("non-numeric port", func(t *testing.T) {
		_, err := reg.Resolve("10.0.0.7:abc")
		require.ErrorIs(t, err, ErrUnknownPeer)
	})
}

func TestRegistryListAndRemove(t *testing.T) {
	reg := openTestRegistry(t)
	require.NoError(t, reg.Add("zeta", "10.0.0.2:5000"))
	require.NoError(t, reg.Add("alpha", "10.0.0.1:5000"))

	peers, err := reg.List()
	require.NoError(t, err)
	require.Len(t, peers, 2)
	require.Equal(t, "alpha", peers[0].Name)
	require.Equal(t, "zeta", peers[1].Name)

	require.NoError(t, reg.Remove("alpha"))
	peers, err = reg.List()
	require.NoError(t, err)
	require.Len(t, peers, 1)
	require.Equal(t, "zeta", peers[0].Name)
}
