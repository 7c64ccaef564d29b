package datapath

import (
	"context"
	"sync"

	"webbpsf/internal/config"
)

// Resolver is a long-lived Resolve whose webbpsf_path and
// strict_environment settings follow the config file.
type Resolver struct {
	mu   sync.RWMutex
	opts Options
}

func NewResolver(opts Options) *Resolver {
	return &Resolver{opts: opts.withDefaults()}
}

// Resolve runs Resolve with the current settings.
func (r *Resolver) Resolve(ctx context.Context) (Result, error) {
	r.mu.RLock()
	opts := r.opts
	r.mu.RUnlock()
	return Resolve(ctx, opts)
}

// Apply takes the path setting and strict flag from cfg.
func (r *Resolver) Apply(cfg config.Config) {
	r.mu.Lock()
	r.opts.Setting = cfg.DataPath
	r.opts.Strict = cfg.StrictEnvironment
	log := r.opts.Logger
	r.mu.Unlock()
	log.Info("config.reload", "webbpsf_path", cfg.DataPath.String(), "strict", cfg.StrictEnvironment)
}

// Follow applies every successful reload of the config at path. A file
// that fails to load keeps the previous settings. notify, if set, runs
// after each applied reload. The returned func stops watching.
func (r *Resolver) Follow(ctx context.Context, path string, notify func()) (func() error, error) {
	return config.Watch(ctx, path, func(cfg config.Config, err error) {
		if err != nil {
			r.mu.RLock()
			log := r.opts.Logger
			r.mu.RUnlock()
			log.Warn("config.reload.failed", "path", path, "err", err)
			return
		}
		r.Apply(cfg)
		if notify != nil {
			notify()
		}
	})
}
