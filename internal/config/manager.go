package config

import (
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
	logger    *slog.Logger
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	v, err := newViper(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Manager{
		v:         v,
		config:    cfg,
		callbacks: make([]func(*Config), 0),
		logger:    logger,
	}, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// Reload re-reads the config file. An invalid file leaves the current
// configuration in place.
func (cm *Manager) Reload() error {
	if err := cm.v.ReadInConfig(); err != nil {
		return err
	}
	cfg, err := decode(cm.v)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	cm.mu.Lock()
	cm.config = cfg
	callbacks := make([]func(*Config), len(cm.callbacks))
	copy(callbacks, cm.callbacks)
	cm.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
	return nil
}

// WatchConfig enables hot-reloading of configuration. It does nothing when
// no config file was found.
func (cm *Manager) WatchConfig() {
	if cm.v.ConfigFileUsed() == "" {
		cm.logger.Debug("no config file to watch")
		return
	}
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		if err := cm.Reload(); err != nil {
			cm.logger.Warn("ignoring config change", "file", e.Name, "error", err)
			return
		}
		cm.logger.Info("config reloaded", "file", e.Name)
	})
	cm.v.WatchConfig()
}
