package contracts

// Config is a read-only tree of settings addressed by dot paths such as
// "events.recover_panics". Typed getters return the first default (or the
// zero value) when the key is missing or cannot be converted.
type Config interface {
	Has(key string) bool
	Get(key string) any
	GetString(key string, defaultVal ...string) string
	GetInt(key string, defaultVal ...int) int
	GetBool(key string, defaultVal ...bool) bool
	// GetSub returns the section at key, or false when it is absent or not
	// a map.
	GetSub(key string) (Config, bool)
	All() map[string]any
}
