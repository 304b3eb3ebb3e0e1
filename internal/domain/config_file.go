package domain

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/eleven-am/barrier/internal/xjson"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk form of Config. Durations are integral
// milliseconds so JSON and YAML files read the same way.
type FileConfig struct {
	NodeID           string            `json:"node_id" yaml:"node_id"`
	MembershipFile   string            `json:"membership_file" yaml:"membership_file"`
	Peers            []string          `json:"peers,omitempty" yaml:"peers,omitempty"`
	Port             int               `json:"port" yaml:"port"`
	BufferSize       int               `json:"buffer_size" yaml:"buffer_size"`
	MaxAttempts      int               `json:"max_attempts" yaml:"max_attempts"`
	RetryIntervalMs  int64             `json:"retry_interval_ms" yaml:"retry_interval_ms"`
	OverallTimeoutMs int64             `json:"overall_timeout_ms" yaml:"overall_timeout_ms"`
	BindAddr         string            `json:"bind_addr" yaml:"bind_addr"`
	Network          string            `json:"network" yaml:"network"`
	SendRate         float64           `json:"send_rate" yaml:"send_rate"`
	StopOnQuorum     bool              `json:"stop_on_quorum" yaml:"stop_on_quorum"`
	StrictMembership bool              `json:"strict_membership" yaml:"strict_membership"`
	HealthAddr       string            `json:"health_addr" yaml:"health_addr"`
	HealthService    string            `json:"health_service" yaml:"health_service"`
	AddressOverrides map[string]string `json:"address_overrides,omitempty" yaml:"address_overrides,omitempty"`
}

// Config converts the file form. Unset fields stay zero so the result can be
// layered over defaults with MergeConfig.
func (f *FileConfig) Config() *Config {
	return &Config{
		NodeID:         f.NodeID,
		MembershipFile: f.MembershipFile,
		Peers:          f.Peers,
		Barrier: BarrierConfig{
			Port:          f.Port,
			BufferSize:    f.BufferSize,
			MaxAttempts:   f.MaxAttempts,
			RetryInterval: time.Duration(f.RetryIntervalMs) * time.Millisecond,
			Timeout:       time.Duration(f.OverallTimeoutMs) * time.Millisecond,
			BindAddr:      f.BindAddr,
			Network:       f.Network,
			SendRate:      f.SendRate,
			StopOnQuorum:  f.StopOnQuorum,
		},
		Membership: MembershipPolicy{
			Strict: f.StrictMembership,
		},
		Health: HealthConfig{
			Addr:    f.HealthAddr,
			Service: f.HealthService,
		},
		AddressOverrides: f.AddressOverrides,
	}
}

func LoadConfigFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, NewConfigError("read config file", err)
	}

	fileConfig := &FileConfig{}

	switch {
	case strings.HasSuffix(filename, ".yaml"), strings.HasSuffix(filename, ".yml"):
		if err := yaml.Unmarshal(data, fileConfig); err != nil {
			return nil, NewConfigError("parse yaml config", err)
		}
	case strings.HasSuffix(filename, ".json"):
		if err := xjson.Unmarshal(data, fileConfig); err != nil {
			return nil, NewConfigError("parse json config", err)
		}
	default:
		return nil, NewConfigError("load config file",
			fmt.Errorf("unsupported config file format %q, expected json, yaml or yml", filename))
	}

	return fileConfig.Config(), nil
}
