package resource

import "github.com/wippyai/witgen/graph"

// Direction tells which side of the boundary implements a resource.
type Direction uint8

const (
	// Import resources are implemented by the host; the guest holds handles.
	Import Direction = iota
	// Export resources are implemented by the guest and kept in a rep table.
	Export
)

func (d Direction) String() string {
	if d == Export {
		return "export"
	}
	return "import"
}

// Info is what the generator knows about one resource.
type Info struct {
	Direction Direction
	// Own is the own<R> handle type, valid when HasOwn is set.
	Own    graph.TypeID
	HasOwn bool
	Docs   string
}

// EventType identifies a registry change.
type EventType uint8

const (
	EventClassified EventType = iota
	EventPromoted
	EventOwnRegistered
)

func (e EventType) String() string {
	switch e {
	case EventClassified:
		return "classified"
	case EventPromoted:
		return "promoted"
	case EventOwnRegistered:
		return "own_registered"
	}
	return "unknown"
}

// Event is delivered to observers after the registry changes.
type Event struct {
	Type     EventType
	Resource graph.TypeID
	Info     Info
}

// Observer receives registry events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }
