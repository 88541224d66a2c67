package runtime

import (
	"sort"

	datafetcher "github.com/hanpama/gqlboot/internal/datafetcher"
	resolver "github.com/hanpama/gqlboot/internal/resolver"
)

// Coordinate names a field as "Type.field".
func Coordinate(typeName, field string) string { return typeName + "." + field }

// Registry binds field coordinates to data fetchers and interface names to
// type resolvers. It is filled during bootstrap and read-only afterwards.
type Registry struct {
	fetchers      map[string]datafetcher.DataFetcher
	typeResolvers map[string]resolver.TypeResolver
}

func NewRegistry() *Registry {
	return &Registry{
		fetchers:      make(map[string]datafetcher.DataFetcher),
		typeResolvers: make(map[string]resolver.TypeResolver),
	}
}

// DataFetcher binds f to typeName.field. The first binding wins; false is
// returned when the coordinate was already bound.
func (r *Registry) DataFetcher(typeName, field string, f datafetcher.DataFetcher) bool {
	coord := Coordinate(typeName, field)
	if _, ok := r.fetchers[coord]; ok {
		return false
	}
	r.fetchers[coord] = f
	return true
}

// DataFetcherIfAbsent binds f unless the coordinate is already bound.
func (r *Registry) DataFetcherIfAbsent(typeName, field string, f datafetcher.DataFetcher) {
	r.DataFetcher(typeName, field, f)
}

// HasDataFetcher reports whether typeName.field is bound.
func (r *Registry) HasDataFetcher(typeName, field string) bool {
	_, ok := r.fetchers[Coordinate(typeName, field)]
	return ok
}

// Fetcher returns the fetcher bound to typeName.field, or nil.
func (r *Registry) Fetcher(typeName, field string) datafetcher.DataFetcher {
	return r.fetchers[Coordinate(typeName, field)]
}

// TypeResolver registers the resolver for an interface or union.
func (r *Registry) TypeResolver(abstractType string, tr resolver.TypeResolver) {
	r.typeResolvers[abstractType] = tr
}

// Resolver returns the type resolver registered for abstractType, or nil.
func (r *Registry) Resolver(abstractType string) resolver.TypeResolver {
	return r.typeResolvers[abstractType]
}

// Coordinates lists every bound coordinate in sorted order.
func (r *Registry) Coordinates() []string {
	out := make([]string, 0, len(r.fetchers))
	for c := range r.fetchers {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
