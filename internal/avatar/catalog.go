package avatar

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Catalog is the in-memory avatar gallery, loaded from a YAML file and kept
// fresh while the process runs.
type Catalog struct {
	mu       sync.RWMutex
	profiles []Profile
	byID     map[string]*Profile

	path    string
	logger  zerolog.Logger
	watcher *fsnotify.Watcher
}

// LoadCatalog reads the avatar catalog file.
func LoadCatalog(path string, logger zerolog.Logger) (*Catalog, error) {
	c := &Catalog{
		path:   path,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
	if err := c.reload(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) reload() error {
	v := viper.New()
	v.SetConfigFile(c.path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read avatar catalog: %w", err)
	}

	var profiles []Profile
	if err := v.UnmarshalKey("avatars", &profiles); err != nil {
		return fmt.Errorf("parse avatar catalog: %w", err)
	}
	if len(profiles) == 0 {
		return fmt.Errorf("avatar catalog %s defines no avatars", c.path)
	}

	byID := make(map[string]*Profile, len(profiles))
	for i := range profiles {
		if profiles[i].ID == "" {
			return fmt.Errorf("avatar catalog entry %d has no id", i)
		}
		byID[profiles[i].ID] = &profiles[i]
	}

	c.mu.Lock()
	c.profiles = profiles
	c.byID = byID
	c.mu.Unlock()

	c.logger.Info().Int("avatars", len(profiles)).Str("file", c.path).Msg("Avatar catalog loaded")
	return nil
}

// Watch reloads the catalog whenever the file changes. Safe to call once;
// stops when Close is called.
func (c *Catalog) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	if err := watcher.Add(c.path); err != nil {
		watcher.Close()
		return fmt.Errorf("watch avatar catalog: %w", err)
	}
	c.watcher = watcher

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
					if err := c.reload(); err != nil {
						c.logger.Warn().Err(err).Msg("Catalog reload failed, keeping previous")
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Warn().Err(err).Msg("Catalog watcher error")
			}
		}
	}()
	return nil
}

// Close stops the file watcher.
func (c *Catalog) Close() error {
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

// Get returns the profile for an avatar id.
func (c *Catalog) Get(id string) (*Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	return p, ok
}

// All returns a copy of every profile in catalog order.
func (c *Catalog) All() []Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Profile, len(c.profiles))
	copy(out, c.profiles)
	return out
}

// Default returns the first profile, for views that need a fallback avatar.
func (c *Catalog) Default() *Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.profiles) == 0 {
		return nil
	}
	return &c.profiles[0]
}
