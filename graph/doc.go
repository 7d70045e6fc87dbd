// Package graph is the resolved interface graph that bindings are generated from.
//
// Every entity lives in an arena on Resolve and is addressed by an integer ID:
// PackageID, InterfaceID, WorldID and TypeID. A Type is either a Primitive or a
// TypeID, so side tables (resource classification, layout caches, emitted names)
// key on identity without holding pointers into the graph.
//
// Graphs are built with Builder, either directly or through the FromWIT adapter
// that converts go.bytecodealliance.org/wit types:
//
//	b := graph.NewBuilder()
//	pkg := b.Package(graph.PackageName{Namespace: "my", Name: "pkg"})
//	types := b.Interface(pkg, "types")
//	point := b.Record(b.InInterface(types), "point",
//		graph.Field{Name: "x", Type: graph.U32},
//		graph.Field{Name: "y", Type: graph.U32},
//	)
//
// SizeAlign answers canonical ABI size, alignment and field offset queries.
package graph
