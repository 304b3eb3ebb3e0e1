package barrier

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeUDPPort(t *testing.T) int {
	t.Helper()
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := conn.LocalAddr().(*net.UDPAddr).Port
	require.NoError(t, conn.Close())
	return port
}

func TestConfigBuilder(t *testing.T) {
	cfg, err := NewConfigBuilder("node-a").
		WithPeers("node-a", "node-b").
		WithRetry(3, 50*time.Millisecond).
		WithTimeout(time.Second).
		WithAddressOverride("node-b", "127.0.0.1:6000").
		WithStrictMembership(true).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "node-a", cfg.NodeID)
	assert.Equal(t, DefaultPort, cfg.Barrier.Port)
	assert.Equal(t, DefaultBufferSize, cfg.Barrier.BufferSize)
	assert.Equal(t, 3, cfg.Barrier.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Barrier.RetryInterval)
	assert.True(t, cfg.Membership.Strict)
	assert.Equal(t, "127.0.0.1:6000", cfg.AddressOverrides["node-b"])
}

func TestConfigBuilderRejectsMissingMembership(t *testing.T) {
	_, err := NewConfigBuilder("node-a").Build()
	assert.ErrorIs(t, err, ErrConfig)
}

func TestNewRejectsBadOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NodeID = "a"
	cfg.Peers = []string{"a", "b"}
	cfg.AddressOverrides = map[string]string{"b": "not-an-address"}

	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestRunFailsWhenHostfileMissing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NodeID = "a"
	cfg.MembershipFile = filepath.Join(t.TempDir(), "hosts")

	b, err := New(cfg)
	require.NoError(t, err)

	_, err = b.Run(context.Background())
	assert.ErrorIs(t, err, ErrConfig)
	assert.Equal(t, StateFailed, b.State())
	assert.ErrorIs(t, b.Err(), ErrConfig)

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, "ConfigError", kind.String())
}

func TestRunFailsWhenOnlySelfListed(t *testing.T) {
	hosts := filepath.Join(t.TempDir(), "hosts")
	require.NoError(t, os.WriteFile(hosts, []byte("a\n"), 0o600))

	cfg := DefaultConfig()
	cfg.NodeID = "a"
	cfg.MembershipFile = hosts

	b, err := New(cfg)
	require.NoError(t, err)

	_, err = b.Run(context.Background())
	assert.ErrorIs(t, err, ErrEmptyPeerSet)
}

func TestTwoBarriersRendezvous(t *testing.T) {
	portA, portB := freeUDPPort(t), freeUDPPort(t)
	hosts := filepath.Join(t.TempDir(), "hosts")
	require.NoError(t, os.WriteFile(hosts, []byte("a\nb\n"), 0o600))

	build := func(self string, port int) *Barrier {
		cfg, err := NewConfigBuilder(self).
			WithMembershipFile(hosts).
			WithBindAddr("127.0.0.1").
			WithPort(port).
			WithRetry(5, 20*time.Millisecond).
			WithTimeout(5*time.Second).
			WithAddressOverride("a", fmt.Sprintf("127.0.0.1:%d", portA)).
			WithAddressOverride("b", fmt.Sprintf("127.0.0.1:%d", portB)).
			Build()
		require.NoError(t, err)
		b, err := New(cfg)
		require.NoError(t, err)
		return b
	}

	barriers := map[string]*Barrier{"a": build("a", portA), "b": build("b", portB)}

	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make(map[string]*Result)
	var errs []error

	for id, b := range barriers {
		wg.Add(1)
		go func(id string, b *Barrier) {
			defer wg.Done()
			res, err := b.Run(context.Background())
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
				return
			}
			results[id] = res
		}(id, b)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, barriers["a"].WaitUntilReady(ctx))

	wg.Wait()
	require.NoError(t, errors.Join(errs...))
	assert.Equal(t, []PeerID{"b"}, results["a"].Ready)
	assert.Equal(t, []PeerID{"a"}, results["b"].Ready)
	assert.Equal(t, StateDone, barriers["b"].State())
}
