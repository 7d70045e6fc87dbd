// Package resource classifies the resources of an interface graph.
//
// Every resource a generation run touches is either imported (implemented by
// the host, reached through handles) or exported (implemented by the guest,
// kept in a representation table). The Registry records that direction the
// first time a resource is seen and promotes it to Export when an export
// context sees it later. It never demotes.
//
//	reg := resource.NewRegistry(r)
//	reg.Classify(file, resource.Import)
//	reg.Classify(file, resource.Export) // promoted
//	info, err := reg.Lookup(file)
//
// The registry also remembers the own<R> handle type of each resource once
// code mentions it, so the assembler knows which owning wrappers to emit.
//
// # Observers
//
// Observers see every classification, promotion and own registration:
//
//	reg.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    log.Printf("%s %d", e.Type, e.Resource)
//	}))
package resource
