package config

import "github.com/shuldan/kevent/pkg/errors"

var newConfigCode = errors.WithPrefix("CONFIG")

var (
	ErrNoConfigSource = newConfigCode().New("no configuration source found for {{.loader}} loader")
	ErrParseYAML      = newConfigCode().New("failed to parse YAML file {{.path}}: {{.reason}}")
	ErrReadFile       = newConfigCode().New("failed to read config file {{.path}}")
)
