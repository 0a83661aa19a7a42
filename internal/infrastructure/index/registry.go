package index

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/graphragio/gateway/internal/core/domain"
	"github.com/graphragio/gateway/internal/core/ports"
)

// Definition names one configured index and where its artifacts live. Root is
// the GraphRAG project directory (holds settings.yaml); Data optionally
// overrides the parquet directory derived from the project settings.
type Definition struct {
	Name string
	Root string
	Data string
}

// Loader opens one index: reads its settings, loads the parquet tables and
// builds the engine set and reference store over them.
type Loader interface {
	Load(ctx context.Context, def Definition) (ports.EngineSet, ports.ReferenceStore, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(ctx context.Context, def Definition) (ports.EngineSet, ports.ReferenceStore, error)

func (f LoaderFunc) Load(ctx context.Context, def Definition) (ports.EngineSet, ports.ReferenceStore, error) {
	return f(ctx, def)
}

type loadedIndex struct {
	engines    ports.EngineSet
	references ports.ReferenceStore
}

// Registry resolves index names to lazily loaded engine sets. An index is
// loaded on first use and cached for the process lifetime; failed loads are
// not cached, so a later request retries after the artifacts appear.
type Registry struct {
	defs         map[string]Definition
	order        []string
	defaultIndex string
	loader       Loader
	logger       *slog.Logger
	onLoad       func(index string, d time.Duration, err error)

	mu     sync.Mutex
	loaded map[string]*loadedIndex
}

type RegistryOption func(*Registry)

// WithLoadObserver registers a callback invoked after every load attempt,
// used to feed load-duration and failure metrics.
func WithLoadObserver(fn func(index string, d time.Duration, err error)) RegistryOption {
	return func(r *Registry) { r.onLoad = fn }
}

func NewRegistry(defs []Definition, defaultIndex string, loader Loader, logger *slog.Logger, opts ...RegistryOption) (*Registry, error) {
	if len(defs) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "index registry", fmt.Errorf("no indexes configured"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	byName := make(map[string]Definition, len(defs))
	order := make([]string, 0, len(defs))
	for _, def := range defs {
		if def.Name == "" || def.Root == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "index registry", fmt.Errorf("index definition needs a name and a root, got %+v", def))
		}
		if _, dup := byName[def.Name]; dup {
			return nil, domain.WrapError(domain.ErrInvalidInput, "index registry", fmt.Errorf("duplicate index %q", def.Name))
		}
		byName[def.Name] = def
		order = append(order, def.Name)
	}

	if defaultIndex == "" {
		defaultIndex = order[0]
	}
	if _, ok := byName[defaultIndex]; !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "index registry", fmt.Errorf("default index %q is not configured", defaultIndex))
	}

	r := &Registry{
		defs:         byName,
		order:        order,
		defaultIndex: defaultIndex,
		loader:       loader,
		logger:       logger,
		loaded:       make(map[string]*loadedIndex, len(defs)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Registry) IndexNames() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

func (r *Registry) DefaultIndex() string {
	return r.defaultIndex
}

func (r *Registry) Engines(ctx context.Context, index string) (ports.EngineSet, error) {
	loaded, err := r.resolve(ctx, index)
	if err != nil {
		return nil, err
	}
	return loaded.engines, nil
}

func (r *Registry) References(ctx context.Context, index string) (ports.ReferenceStore, error) {
	loaded, err := r.resolve(ctx, index)
	if err != nil {
		return nil, err
	}
	return loaded.references, nil
}

// resolve returns the cached index or loads it. The mutex is held across the
// load so concurrent first requests do not read the same parquet files twice.
func (r *Registry) resolve(ctx context.Context, index string) (*loadedIndex, error) {
	def, ok := r.defs[index]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "resolve index", fmt.Errorf("unknown index %q", index))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.loaded[index]; ok {
		return cached, nil
	}

	start := time.Now()
	engines, references, err := r.loader.Load(ctx, def)
	if r.onLoad != nil {
		r.onLoad(index, time.Since(start), err)
	}
	if err != nil {
		r.logger.Error("index load failed", "index", index, "root", def.Root, "error", err)
		if domain.IsKind(err, domain.ErrIndexNotReady) || domain.IsKind(err, domain.ErrInvalidInput) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrIndexNotReady, "load index", err)
	}

	r.logger.Info("index loaded", "index", index, "root", def.Root, "duration", time.Since(start))
	loaded := &loadedIndex{engines: engines, references: references}
	r.loaded[index] = loaded
	return loaded, nil
}
