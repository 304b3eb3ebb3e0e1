package domain

import (
	"fmt"
	"log/slog"
	"time"
)

type Config struct {
	NodeID         string       `json:"node_id" yaml:"node_id"`
	MembershipFile string       `json:"membership_file" yaml:"membership_file"`
	Peers          []string     `json:"peers,omitempty" yaml:"peers,omitempty"`
	Logger         *slog.Logger `json:"-" yaml:"-"`

	Barrier    BarrierConfig    `json:"barrier" yaml:"barrier"`
	Membership MembershipPolicy `json:"membership" yaml:"membership"`
	Health     HealthConfig     `json:"health" yaml:"health"`

	// AddressOverrides maps a peer id to a fixed host:port, bypassing DNS.
	AddressOverrides map[string]string `json:"address_overrides,omitempty" yaml:"address_overrides,omitempty"`
}

type BarrierConfig struct {
	Port          int           `json:"port" yaml:"port"`
	BufferSize    int           `json:"buffer_size" yaml:"buffer_size"`
	MaxAttempts   int           `json:"max_attempts" yaml:"max_attempts"`
	RetryInterval time.Duration `json:"retry_interval" yaml:"retry_interval"`
	Timeout       time.Duration `json:"timeout" yaml:"timeout"`
	BindAddr      string        `json:"bind_addr" yaml:"bind_addr"`
	Network       string        `json:"network" yaml:"network"`
	SendRate      float64       `json:"send_rate" yaml:"send_rate"`
	StopOnQuorum  bool          `json:"stop_on_quorum" yaml:"stop_on_quorum"`
}

type MembershipPolicy struct {
	Strict bool `json:"strict" yaml:"strict"`
}

type HealthConfig struct {
	Addr    string `json:"addr" yaml:"addr"`
	Service string `json:"service" yaml:"service"`
}

func (c *Config) Validate() error {
	if c.NodeID == "" {
		return fmt.Errorf("node_id is required")
	}
	if c.MembershipFile == "" && len(c.Peers) == 0 {
		return fmt.Errorf("membership_file or peers is required")
	}
	if err := c.Barrier.Validate(); err != nil {
		return fmt.Errorf("barrier config: %w", err)
	}
	return nil
}

func (c *BarrierConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535")
	}
	if c.BufferSize < 1 {
		return fmt.Errorf("buffer_size must be positive")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}
	if c.RetryInterval < 0 {
		return fmt.Errorf("retry_interval must not be negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.SendRate < 0 {
		return fmt.Errorf("send_rate must not be negative")
	}
	switch c.Network {
	case "udp", "udp4", "udp6":
	default:
		return fmt.Errorf("network must be one of udp, udp4, udp6, got %q", c.Network)
	}
	return nil
}

// IPNetwork maps the datagram network onto the resolver network name.
func (c *BarrierConfig) IPNetwork() string {
	switch c.Network {
	case "udp4":
		return "ip4"
	case "udp6":
		return "ip6"
	default:
		return "ip"
	}
}
