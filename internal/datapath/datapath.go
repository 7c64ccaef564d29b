// Package datapath locates the reference-data directory.
//
// Sources are tried in order: an explicit webbpsf_path setting, the
// WEBBPSF_PATH environment variable, then <home>/data/webbpsf-data. Only
// the last one is ever created: if it is missing it is populated through
// a Fetcher before being returned.
package datapath

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"webbpsf/internal/config"
	"webbpsf/internal/logging"
	"webbpsf/internal/paths"
)

type Source string

const (
	SourceExplicit    Source = "explicit"
	SourceEnvironment Source = "environment"
	SourceDefault     Source = "default"
)

// Fetcher fills an empty directory with the reference data.
type Fetcher interface {
	Populate(ctx context.Context, dir string) error
}

// Advisory is a non-fatal notice raised while resolving.
type Advisory struct {
	Message string
}

func (a Advisory) String() string { return a.Message }

type Options struct {
	Setting   config.PathSetting
	LookupEnv config.LookupFunc
	Home      func() (string, error)
	Fetcher   Fetcher
	Logger    *slog.Logger
	// Strict turns a missing WEBBPSF_PATH into ErrEnvNotSet instead of
	// falling back to the default location.
	Strict bool
}

type Result struct {
	Path         string
	Source       Source
	Bootstrapped bool
	Advisories   []Advisory
}

func (o Options) withDefaults() Options {
	if o.LookupEnv == nil {
		o.LookupEnv = os.LookupEnv
	}
	if o.Home == nil {
		o.Home = paths.UserHome
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// Resolve returns the reference-data directory for opts.
func Resolve(ctx context.Context, opts Options) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts = opts.withDefaults()
	log := opts.Logger

	var res Result
	var candidate string

	if opts.Setting.Kind() == config.Explicit {
		candidate = opts.Setting.Value()
		res.Source = SourceExplicit
		if paths.HasHomePrefix(candidate) {
			home, err := opts.Home()
			if err != nil {
				return Result{}, fmt.Errorf("expand %s: %w", candidate, err)
			}
			candidate = paths.ExpandHome(home, candidate)
		}
	} else if v, ok := opts.LookupEnv(paths.EnvDataPath); ok && v != "" {
		candidate = v
		res.Source = SourceEnvironment
	} else {
		if opts.Strict {
			return Result{}, &ResolutionError{Kind: ErrEnvNotSet}
		}
		home, err := opts.Home()
		if err != nil {
			return Result{}, fmt.Errorf("locate default data directory: %w", err)
		}
		candidate = paths.DefaultDataDir(home)
		res.Source = SourceDefault

		adv := Advisory{Message: fmt.Sprintf(
			"Environment variable $%s is not set!\n  Using fallback location %s", paths.EnvDataPath, candidate)}
		res.Advisories = append(res.Advisories, adv)
		log.Warn("datapath.fallback", "env", paths.EnvDataPath, "dir", candidate)

		booted, err := bootstrap(ctx, candidate, opts)
		if err != nil {
			return Result{}, err
		}
		res.Bootstrapped = booted
	}

	if !isDir(candidate) {
		return Result{}, &ResolutionError{Path: candidate, Kind: ErrInvalidPath}
	}
	res.Path = candidate
	if !filepath.IsAbs(candidate) {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			return Result{}, &ResolutionError{Path: candidate, Kind: ErrInvalidPath, Err: err}
		}
		res.Path = abs
	}
	log.Debug("datapath.resolved", "path", res.Path, "source", string(res.Source), "bootstrapped", res.Bootstrapped)
	return res, nil
}

// bootstrap populates dir on first run. It reports whether this call did
// the population; an existing dir is left alone.
func bootstrap(ctx context.Context, dir string, opts Options) (bool, error) {
	if isDir(dir) {
		return false, nil
	}
	log := opts.Logger
	if opts.Fetcher == nil {
		log.Warn("datapath.bootstrap.skipped", "dir", dir, "reason", "no fetcher")
		return false, nil
	}

	parent := filepath.Dir(dir)
	base := filepath.Base(dir)
	if err := paths.EnsureDir(parent); err != nil {
		return false, &ResolutionError{Path: dir, Kind: ErrBootstrap, Err: err}
	}

	unlock, err := lockFile(filepath.Join(parent, "."+base+".lock"))
	if err != nil {
		return false, &ResolutionError{Path: dir, Kind: ErrBootstrap, Err: err}
	}
	defer unlock()

	// Another process may have finished while we waited for the lock.
	if isDir(dir) {
		return false, nil
	}

	staging, err := os.MkdirTemp(parent, "."+base+"-")
	if err != nil {
		return false, &ResolutionError{Path: dir, Kind: ErrBootstrap, Err: err}
	}
	defer os.RemoveAll(staging)

	log.Info("datapath.bootstrap.start", "dir", dir)
	if err := opts.Fetcher.Populate(ctx, staging); err != nil {
		return false, &ResolutionError{Path: dir, Kind: ErrBootstrap, Err: err}
	}
	entries, err := os.ReadDir(staging)
	if err != nil {
		return false, &ResolutionError{Path: dir, Kind: ErrBootstrap, Err: err}
	}
	if len(entries) == 0 {
		return false, &ResolutionError{Path: dir, Kind: ErrBootstrap, Err: fmt.Errorf("fetcher left %s empty", staging)}
	}
	if err := os.Chmod(staging, 0o755); err != nil {
		return false, &ResolutionError{Path: dir, Kind: ErrBootstrap, Err: err}
	}
	if err := os.Rename(staging, dir); err != nil {
		if isDir(dir) {
			return false, nil
		}
		return false, &ResolutionError{Path: dir, Kind: ErrBootstrap, Err: err}
	}
	log.Info("datapath.bootstrap.done", "dir", dir, "entries", len(entries))
	return true, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
