package resource

import (
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/graph"
)

// Registry tracks the direction and handle types of every resource seen
// during one generation run. It is not safe for concurrent use.
type Registry struct {
	resolve   *graph.Resolve
	entries   map[graph.TypeID]*Info
	observers []Observer
}

// NewRegistry creates an empty registry over r.
func NewRegistry(r *graph.Resolve) *Registry {
	return &Registry{
		resolve: r,
		entries: make(map[graph.TypeID]*Info),
	}
}

// Subscribe adds an observer for registry events.
func (r *Registry) Subscribe(o Observer) {
	r.observers = append(r.observers, o)
}

// Classify records a sighting of resource id in direction d.
// An Export sighting promotes an Import one; the reverse is a no-op.
func (r *Registry) Classify(id graph.TypeID, d Direction) {
	info, ok := r.entries[id]
	if !ok {
		info = &Info{Direction: d, Docs: r.resolve.Type(id).Docs}
		r.entries[id] = info
		Logger().Debug("resource classified",
			zap.String("resource", r.resolve.Type(id).Name),
			zap.Stringer("direction", d))
		r.notify(Event{Type: EventClassified, Resource: id, Info: *info})
		return
	}
	if d == Export && info.Direction == Import {
		info.Direction = Export
		Logger().Debug("resource promoted to export",
			zap.String("resource", r.resolve.Type(id).Name))
		r.notify(Event{Type: EventPromoted, Resource: id, Info: *info})
	}
}

// Lookup returns the info for a classified resource.
func (r *Registry) Lookup(id graph.TypeID) (Info, error) {
	info, ok := r.entries[id]
	if !ok {
		name := ""
		if int(id) < len(r.resolve.Types) {
			name = r.resolve.Type(id).Name
		}
		return Info{}, errors.New(errors.PhaseGenerate, errors.KindNotInitialized).
			WitType(name).
			Detail("resource %q used before it was classified", name).
			Build()
	}
	return *info, nil
}

// Direction returns the direction of id, or Import if unclassified.
func (r *Registry) Direction(id graph.TypeID) Direction {
	if info, ok := r.entries[id]; ok {
		return info.Direction
	}
	return Import
}

// RegisterOwn records handle as the own<R> companion of resource.
func (r *Registry) RegisterOwn(resource, handle graph.TypeID) error {
	info, ok := r.entries[resource]
	if !ok {
		_, err := r.Lookup(resource)
		return err
	}
	if info.HasOwn {
		return nil
	}
	info.Own, info.HasOwn = handle, true
	r.notify(Event{Type: EventOwnRegistered, Resource: resource, Info: *info})
	return nil
}

// Len returns the number of classified resources.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Exported returns the exported resources in TypeID order.
func (r *Registry) Exported() []graph.TypeID {
	var out []graph.TypeID
	for _, id := range r.sorted() {
		if r.entries[id].Direction == Export {
			out = append(out, id)
		}
	}
	return out
}

func (r *Registry) sorted() []graph.TypeID {
	ids := make([]graph.TypeID, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registry) notify(e Event) {
	for _, o := range r.observers {
		o.OnResourceEvent(e)
	}
}
