package config

import "github.com/shuldan/kevent/pkg/errors"

// chainLoader merges every loader's output in order; later loaders win.
// Loaders without a source are skipped, any other failure aborts the chain.
type chainLoader struct {
	loaders []Loader
}

func (c *chainLoader) Load() (map[string]any, error) {
	final := make(map[string]any)
	var lastErr error

	for _, loader := range c.loaders {
		values, err := loader.Load()
		if err != nil {
			if !errors.Is(err, ErrNoConfigSource) {
				return nil, err
			}
			lastErr = err
			continue
		}
		mergeMaps(final, values)
	}

	if len(final) == 0 {
		return nil, ErrNoConfigSource.WithDetail("loader", "chain").WithCause(lastErr)
	}

	return final, nil
}

func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		if vMap, ok := v.(map[string]any); ok {
			if dstMap, ok := dst[k].(map[string]any); ok {
				mergeMaps(dstMap, vMap)
				continue
			}
		}
		dst[k] = v
	}
}
