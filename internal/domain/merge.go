package domain

import (
	"dario.cat/mergo"
)

// MergeConfig layers the non-zero fields of each override onto base and
// returns the result. base is not modified.
func MergeConfig(base *Config, overrides ...*Config) (*Config, error) {
	merged := *base
	logger := merged.Logger
	merged.Logger = nil
	merged.Peers = append([]string(nil), base.Peers...)
	merged.AddressOverrides = copyStringMap(base.AddressOverrides)

	for _, override := range overrides {
		if override == nil {
			continue
		}
		src := *override
		if src.Logger != nil {
			logger = src.Logger
		}
		src.Logger = nil

		if err := mergo.Merge(&merged, src, mergo.WithOverride); err != nil {
			return nil, NewConfigError("merge config", err)
		}
	}

	merged.Logger = logger
	return &merged, nil
}

func copyStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
