package barrier

import (
	"log/slog"
	"time"

	"github.com/eleven-am/barrier/internal/domain"
)

type Config = domain.Config

type BarrierConfig = domain.BarrierConfig

type MembershipPolicy = domain.MembershipPolicy

type HealthConfig = domain.HealthConfig

const (
	DefaultPort          = domain.DefaultPort
	DefaultBufferSize    = domain.DefaultBufferSize
	DefaultMaxAttempts   = domain.DefaultMaxAttempts
	DefaultRetryInterval = domain.DefaultRetryInterval
)

func DefaultConfig() *Config {
	return domain.DefaultConfig()
}

func DefaultBarrierConfig() BarrierConfig {
	return domain.DefaultBarrierConfig()
}

// LoadConfigFile reads a YAML (.yaml, .yml) or JSON (.json) config file.
// Only the fields present in the file are set.
func LoadConfigFile(filename string) (*Config, error) {
	return domain.LoadConfigFile(filename)
}

// MergeConfig layers the non-zero fields of each override onto base.
func MergeConfig(base *Config, overrides ...*Config) (*Config, error) {
	return domain.MergeConfig(base, overrides...)
}

type ConfigBuilder struct {
	config *Config
}

func NewConfigBuilder(nodeID string) *ConfigBuilder {
	config := DefaultConfig()
	config.NodeID = nodeID
	return &ConfigBuilder{config: config}
}

func (cb *ConfigBuilder) WithMembershipFile(path string) *ConfigBuilder {
	cb.config.MembershipFile = path
	return cb
}

func (cb *ConfigBuilder) WithPeers(peers ...string) *ConfigBuilder {
	cb.config.Peers = append(cb.config.Peers, peers...)
	return cb
}

func (cb *ConfigBuilder) WithPort(port int) *ConfigBuilder {
	cb.config.Barrier.Port = port
	return cb
}

func (cb *ConfigBuilder) WithBufferSize(size int) *ConfigBuilder {
	cb.config.Barrier.BufferSize = size
	return cb
}

func (cb *ConfigBuilder) WithRetry(maxAttempts int, interval time.Duration) *ConfigBuilder {
	cb.config.Barrier.MaxAttempts = maxAttempts
	cb.config.Barrier.RetryInterval = interval
	return cb
}

func (cb *ConfigBuilder) WithTimeout(timeout time.Duration) *ConfigBuilder {
	cb.config.Barrier.Timeout = timeout
	return cb
}

func (cb *ConfigBuilder) WithBindAddr(addr string) *ConfigBuilder {
	cb.config.Barrier.BindAddr = addr
	return cb
}

func (cb *ConfigBuilder) WithNetwork(network string) *ConfigBuilder {
	cb.config.Barrier.Network = network
	return cb
}

func (cb *ConfigBuilder) WithSendRate(perSecond float64) *ConfigBuilder {
	cb.config.Barrier.SendRate = perSecond
	return cb
}

func (cb *ConfigBuilder) WithStopOnQuorum(enabled bool) *ConfigBuilder {
	cb.config.Barrier.StopOnQuorum = enabled
	return cb
}

func (cb *ConfigBuilder) WithStrictMembership(strict bool) *ConfigBuilder {
	cb.config.Membership.Strict = strict
	return cb
}

func (cb *ConfigBuilder) WithHealth(addr, service string) *ConfigBuilder {
	cb.config.Health.Addr = addr
	if service != "" {
		cb.config.Health.Service = service
	}
	return cb
}

// WithAddressOverride pins peer to a fixed host:port instead of resolving it.
func (cb *ConfigBuilder) WithAddressOverride(peer, addr string) *ConfigBuilder {
	if cb.config.AddressOverrides == nil {
		cb.config.AddressOverrides = make(map[string]string)
	}
	cb.config.AddressOverrides[peer] = addr
	return cb
}

func (cb *ConfigBuilder) WithLogger(logger *slog.Logger) *ConfigBuilder {
	cb.config.Logger = logger
	return cb
}

func (cb *ConfigBuilder) Build() (*Config, error) {
	if err := cb.config.Validate(); err != nil {
		return nil, domain.NewConfigError("build config", err)
	}
	return cb.config, nil
}
