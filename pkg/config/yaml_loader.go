package config

import (
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/shuldan/kevent/pkg/errors"
)

// yamlConfigLoader reads the first path that exists. JSON files parse too.
type yamlConfigLoader struct {
	paths []string
}

func (l *yamlConfigLoader) Load() (map[string]any, error) {
	for _, path := range l.paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, ErrReadFile.WithDetail("path", path).WithCause(err)
		}

		values := make(map[string]any)
		if err = yaml.UnmarshalWithOptions(data, &values, yaml.UseJSONUnmarshaler()); err != nil {
			return nil, ErrParseYAML.
				WithDetail("path", path).
				WithDetail("reason", err.Error()).
				WithCause(err)
		}
		if values == nil {
			values = make(map[string]any)
		}
		return values, nil
	}

	return nil, ErrNoConfigSource.WithDetail("loader", "yaml")
}
