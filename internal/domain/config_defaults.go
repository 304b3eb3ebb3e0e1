package domain

import "time"

const (
	DefaultPort          = 5000
	DefaultBufferSize    = 1024
	DefaultMaxAttempts   = 5
	DefaultRetryInterval = 1000 * time.Millisecond
	DefaultHealthService = "barrier"
)

func DefaultConfig() *Config {
	return &Config{
		Barrier: DefaultBarrierConfig(),
		Health: HealthConfig{
			Service: DefaultHealthService,
		},
	}
}

func DefaultBarrierConfig() BarrierConfig {
	return BarrierConfig{
		Port:          DefaultPort,
		BufferSize:    DefaultBufferSize,
		MaxAttempts:   DefaultMaxAttempts,
		RetryInterval: DefaultRetryInterval,
		Network:       "udp4",
	}
}
