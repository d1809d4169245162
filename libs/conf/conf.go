package conf

import (
	"encoding/json"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

var (
	mu     sync.RWMutex
	config map[string]interface{}
)

// Init loads a TOML file. An empty path leaves the configuration empty, so
// every Get returns nil and callers fall back to their defaults.
func Init(path string) error {
	loaded := make(map[string]interface{})
	if path != "" {
		if _, err := toml.DecodeFile(path, &loaded); err != nil {
			return errors.Wrapf(err, "load config %s", path)
		}
	}
	mu.Lock()
	config = loaded
	mu.Unlock()
	return nil
}

// Get returns the named top-level section encoded as JSON, or nil when the
// section is absent.
func Get(key string) []byte {
	mu.RLock()
	value, exists := config[key]
	mu.RUnlock()
	if !exists {
		return nil
	}
	bytes, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return bytes
}
