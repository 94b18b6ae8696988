package config

import (
	"github.com/shuldan/kevent/pkg/contracts"
	"github.com/shuldan/kevent/pkg/errors"
)

var (
	_ Loader = (*envConfigLoader)(nil)
	_ Loader = (*yamlConfigLoader)(nil)
	_ Loader = (*chainLoader)(nil)
)

func NewEnvConfigLoader(prefix string) Loader {
	return &envConfigLoader{prefix: prefix}
}

func NewYamlConfigLoader(paths ...string) Loader {
	return &yamlConfigLoader{paths: paths}
}

func NewChainLoader(loaders ...Loader) Loader {
	return &chainLoader{loaders: loaders}
}

func NewMapConfig(values map[string]any) contracts.Config {
	if values == nil {
		values = make(map[string]any)
	}
	return &MapConfig{values: values}
}

// Load reads the first existing file of paths, then overlays environment
// variables starting with envPrefix. Having no source at all is not an error.
func Load(envPrefix string, paths ...string) (contracts.Config, error) {
	values, err := NewChainLoader(
		NewYamlConfigLoader(paths...),
		NewEnvConfigLoader(envPrefix),
	).Load()
	if err != nil {
		if errors.Is(err, ErrNoConfigSource) {
			return NewMapConfig(nil), nil
		}
		return nil, err
	}
	return NewMapConfig(values), nil
}
