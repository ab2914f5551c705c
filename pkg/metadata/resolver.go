package metadata

import (
	"context"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/logging"
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Resolver turns item ids into display names
type Resolver struct {
	cache    *Cache
	remote   Lookup
	refresh  bool
	readOnly bool
	workers  int
	logger   zerolog.Logger
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithRemote enables the network step
func WithRemote(l Lookup) ResolverOption {
	return func(r *Resolver) { r.remote = l }
}

// WithRefresh skips cache reads; results are still written through
func WithRefresh(refresh bool) ResolverOption {
	return func(r *Resolver) { r.refresh = refresh }
}

// WithReadOnly stops results from being written to the cache
func WithReadOnly(readOnly bool) ResolverOption {
	return func(r *Resolver) { r.readOnly = readOnly }
}

// WithWorkers bounds concurrent lookups in ResolveAll
func WithWorkers(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// NewResolver returns a resolver backed by cache
func NewResolver(cache *Cache, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cache:   cache,
		workers: 1,
		logger:  logging.GetLogger("metadata.resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds the display name of item: cache, then manifest, then the
// remote lookup. Failure is reported as ErrNotResolvable.
func (r *Resolver) Resolve(ctx context.Context, item *types.Item) (types.ItemMetadata, error) {
	id := item.ID

	if !r.refresh && r.cache != nil {
		if name, ok := r.cache.Get(id); ok {
			return types.ItemMetadata{ID: id, DisplayName: name, Source: types.SourceCacheHit}, nil
		}
	}

	if name := item.ManifestName(); name != "" {
		r.store(id, name)
		return types.ItemMetadata{ID: id, DisplayName: name, Source: types.SourceLocalManifest}, nil
	}

	if r.remote != nil {
		name, err := r.remote.Lookup(ctx, id)
		if err == nil {
			r.store(id, name)
			return types.ItemMetadata{ID: id, DisplayName: name, Source: types.SourceRemoteLookup}, nil
		}
		r.logger.Debug().Err(err).Str("id", id).Msg("Remote name lookup failed")
		if ctx.Err() != nil {
			return unknown(id), errors.Wrap(ctx.Err(), errors.ErrCanceled, "name resolution canceled")
		}
	}

	return unknown(id), errors.Newf(errors.ErrNotResolvable, "cannot resolve a name for %s", id).
		WithDetail("id", id)
}

// ResolveAll resolves every item, running at most the configured number of
// lookups at once. Results keep the order of items. Unresolvable items get
// the placeholder name; only cancellation returns an error.
func (r *Resolver) ResolveAll(ctx context.Context, items []*types.Item) ([]types.ItemMetadata, error) {
	results := make([]types.ItemMetadata, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, item := range items {
		g.Go(func() error {
			meta, err := r.Resolve(gctx, item)
			if err != nil && errors.IsErrorCode(err, errors.ErrCanceled) {
				return err
			}
			results[i] = meta
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resolved := 0
	for _, m := range results {
		if m.Source != types.SourceUnknown {
			resolved++
		}
	}
	r.logger.Debug().Int("items", len(items)).Int("resolved", resolved).Msg("Names resolved")
	return results, nil
}

func (r *Resolver) store(id, name string) {
	if r.cache == nil || r.readOnly {
		return
	}
	if err := r.cache.Put(id, name); err != nil {
		r.logger.Warn().Err(err).Str("id", id).Msg("Failed to cache name")
	}
}

func unknown(id string) types.ItemMetadata {
	return types.ItemMetadata{ID: id, DisplayName: types.UnknownName(id), Source: types.SourceUnknown}
}
