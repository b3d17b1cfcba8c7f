package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
)

// resolverKey is the context key for Resolver
type resolverKey struct{}

// Resolver provides lazy per-project config resolution with caching.
// The global file is loaded (and created if missing) on first use; each
// project's .branchlet.json is merged on top of it on demand.
type Resolver struct {
	globalPath string

	mu       sync.Mutex
	global   *Config
	cache    map[string]Config // projectPath -> merged config
	warnings []string
}

// NewResolver creates a Resolver backed by the global config file at globalPath.
func NewResolver(globalPath string) *Resolver {
	return &Resolver{
		globalPath: globalPath,
		cache:      make(map[string]Config),
	}
}

// GlobalPath returns the path of the global config file.
func (r *Resolver) GlobalPath() string {
	return r.globalPath
}

// Global returns the global config (without any local overrides).
func (r *Resolver) Global() (Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadGlobalLocked(); err != nil {
		return Default(), err
	}
	return r.global.normalized(), nil
}

// Resolve returns the effective config for projectPath.
//
// Precedence is local file, then global file, then defaults. An empty
// projectPath resolves the global config only. A local file that cannot be
// parsed or fails validation is skipped with a warning. Results are cached
// per project path.
func (r *Resolver) Resolve(projectPath string) (Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadGlobalLocked(); err != nil {
		return Default(), err
	}
	if projectPath == "" {
		return r.global.normalized(), nil
	}

	key := filepath.Clean(projectPath)
	if cached, ok := r.cache[key]; ok {
		return cached.normalized(), nil
	}

	local, err := LoadLocal(key)
	if err != nil {
		r.warnings = append(r.warnings, fmt.Sprintf("ignoring %v", err))
		local = nil
	}

	merged := MergeLocal(*r.global, local)
	r.cache[key] = merged
	return merged.normalized(), nil
}

// Warnings returns the problems encountered while loading config files.
func (r *Resolver) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneSlice(r.warnings)
}

func (r *Resolver) loadGlobalLocked() error {
	if r.global != nil {
		return nil
	}
	cfg, warnings, err := LoadGlobal(r.globalPath)
	if err != nil {
		return err
	}
	r.global = &cfg
	r.warnings = append(r.warnings, warnings...)
	return nil
}

// WithResolver returns a new context with the Resolver stored in it.
func WithResolver(ctx context.Context, r *Resolver) context.Context {
	return context.WithValue(ctx, resolverKey{}, r)
}

// ResolverFromContext returns the Resolver from context.
// Returns nil if no resolver is stored.
func ResolverFromContext(ctx context.Context) *Resolver {
	if r, ok := ctx.Value(resolverKey{}).(*Resolver); ok {
		return r
	}
	return nil
}
