package stream

import (
	"sort"

	"github.com/goliatone/go-activitystream/pkg/types"
)

// ActivityStream is a named set of verbs that filters and hosts can share.
type ActivityStream struct {
	Name  string
	Verbs []string
}

// HasVerb reports whether the stream includes the verb.
func (s ActivityStream) HasVerb(verb string) bool {
	for _, v := range s.Verbs {
		if v == verb {
			return true
		}
	}
	return false
}

// registries holds the pluggable pieces the service resolves by name. They
// are populated during New and never mutated afterwards, so lookups need no
// locking.
type registries struct {
	filters     map[string]types.StreamFilter
	filterOrder []string

	streams map[string]ActivityStream

	linkBuilders       map[string]types.LinkBuilder
	defaultLinkBuilder types.LinkBuilder

	upgraders []types.Upgrader

	verbLabels map[string]string
}

func newRegistries() *registries {
	return &registries{
		filters:      make(map[string]types.StreamFilter),
		streams:      make(map[string]ActivityStream),
		linkBuilders: make(map[string]types.LinkBuilder),
		verbLabels:   make(map[string]string),
	}
}

// registerFilter keeps the last filter registered under an id; re-register
// replaces without disturbing the ingest order of the other filters.
func (r *registries) registerFilter(filter types.StreamFilter) {
	id := filter.ID()
	if _, exists := r.filters[id]; !exists {
		r.filterOrder = append(r.filterOrder, id)
	}
	r.filters[id] = filter
}

func (r *registries) orderedFilters() []types.StreamFilter {
	out := make([]types.StreamFilter, 0, len(r.filterOrder))
	for _, id := range r.filterOrder {
		out = append(out, r.filters[id])
	}
	return out
}

func (r *registries) registerStream(stream ActivityStream) {
	r.streams[stream.Name] = stream
}

// registerLinkBuilder records the builder under its name. When flagged as
// default it becomes the fallback; the most recent default registration wins.
func (r *registries) registerLinkBuilder(name string, builder types.LinkBuilder, isDefault bool) {
	r.linkBuilders[name] = builder
	if isDefault {
		r.defaultLinkBuilder = builder
	}
}

func (r *registries) registerUpgrader(upgrader types.Upgrader) {
	r.upgraders = append(r.upgraders, upgrader)
}

// sortedUpgraders returns the pipeline ordered by Order ascending, stable on
// registration order for equal values.
func (r *registries) sortedUpgraders() []types.Upgrader {
	out := make([]types.Upgrader, len(r.upgraders))
	copy(out, r.upgraders)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order() < out[j].Order()
	})
	return out
}
