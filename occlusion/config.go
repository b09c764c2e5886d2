package occlusion

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// MaxActiveLimit caps both working-set sizes.
const MaxActiveLimit = 64

var ErrInvalidConfig = errors.New("occlusion: invalid config")

// Config bounds the per-frame working sets.
type Config struct {
	MaxActiveSpheres int `json:"max_active_spheres"`
	MaxActivePolys   int `json:"max_active_polys"`
}

func DefaultConfig() Config {
	return Config{
		MaxActiveSpheres: 8,
		MaxActivePolys:   8,
	}
}

// Validate rejects negative capacities and clamps large ones to
// MaxActiveLimit.
func (c *Config) Validate() error {
	if c.MaxActiveSpheres < 0 || c.MaxActivePolys < 0 {
		return fmt.Errorf("%w: negative capacity (spheres %d, polys %d)",
			ErrInvalidConfig, c.MaxActiveSpheres, c.MaxActivePolys)
	}
	c.MaxActiveSpheres = min(c.MaxActiveSpheres, MaxActiveLimit)
	c.MaxActivePolys = min(c.MaxActivePolys, MaxActiveLimit)
	return nil
}

// LoadConfig reads a JSON config file. Keys missing from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w: %w", path, ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// ConfigWatcher re-reads a config file when its modification time changes
// and hands the result to a Culler. The file is checked every N frames.
type ConfigWatcher struct {
	path    string
	every   int
	frame   int
	modTime time.Time
	culler  *Culler
}

// NewConfigWatcher watches path on behalf of c, checking every everyFrames
// calls to Tick. The current modification time is recorded, so the first
// reload happens only after the file changes.
func NewConfigWatcher(path string, everyFrames int, c *Culler) *ConfigWatcher {
	w := &ConfigWatcher{path: path, every: max(everyFrames, 1), culler: c}
	if fi, err := os.Stat(path); err == nil {
		w.modTime = fi.ModTime()
	}
	return w
}

// Tick is called once per frame. It reports whether a new config was
// applied. A failed reload keeps the previous config and returns the error.
func (w *ConfigWatcher) Tick() (bool, error) {
	w.frame++
	if w.frame%w.every != 0 {
		return false, nil
	}
	fi, err := os.Stat(w.path)
	if err != nil {
		return false, nil
	}
	if fi.ModTime().Equal(w.modTime) {
		return false, nil
	}
	w.modTime = fi.ModTime()

	cfg, err := LoadConfig(w.path)
	if err != nil {
		Logger().Warn("occlusion: config reload failed", "path", w.path, "err", err)
		return false, err
	}
	w.culler.SetConfig(cfg)
	Logger().Info("occlusion: config reloaded", "path", w.path,
		"max_active_spheres", cfg.MaxActiveSpheres, "max_active_polys", cfg.MaxActivePolys)
	return true, nil
}
