package config

// Loader reads one configuration source into nested maps. A loader with
// nothing to read returns ErrNoConfigSource.
type Loader interface {
	Load() (map[string]any, error)
}
