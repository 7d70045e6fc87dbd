package resource

import (
	"testing"

	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/graph"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.events = append(o.events, e)
}

func newGraph() (*graph.Resolve, graph.TypeID, graph.TypeID, graph.TypeID) {
	b := graph.NewBuilder()
	iface := b.Interface(graph.NoPackage, "fs")
	owner := b.InInterface(iface)
	file := b.Resource(owner, "file")
	dir := b.Resource(owner, "dir")
	own := b.Own(file)
	return b.Resolve(), file, dir, own
}

func TestRegistry_ClassifyIdempotent(t *testing.T) {
	r, file, _, _ := newGraph()
	reg := NewRegistry(r)

	reg.Classify(file, Import)
	reg.Classify(file, Import)
	if reg.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", reg.Len())
	}
	info, err := reg.Lookup(file)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if info.Direction != Import {
		t.Errorf("Direction = %s, want import", info.Direction)
	}
}

func TestRegistry_PromoteNeverDemote(t *testing.T) {
	tests := []struct {
		name  string
		order []Direction
		want  Direction
	}{
		{"import only", []Direction{Import}, Import},
		{"export only", []Direction{Export}, Export},
		{"import then export", []Direction{Import, Export}, Export},
		{"export then import", []Direction{Export, Import}, Export},
		{"mixed", []Direction{Import, Export, Import}, Export},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, file, _, _ := newGraph()
			reg := NewRegistry(r)
			for _, d := range tt.order {
				reg.Classify(file, d)
			}
			if got := reg.Direction(file); got != tt.want {
				t.Errorf("Direction = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRegistry_LookupUnclassified(t *testing.T) {
	r, file, _, _ := newGraph()
	reg := NewRegistry(r)

	_, err := reg.Lookup(file)
	if err == nil {
		t.Fatal("expected error for unclassified resource")
	}
	e, ok := err.(*errors.Error)
	if !ok || e.Kind != errors.KindNotInitialized {
		t.Errorf("error = %v, want not_initialized", err)
	}
}

func TestRegistry_RegisterOwn(t *testing.T) {
	r, file, _, own := newGraph()
	reg := NewRegistry(r)

	if err := reg.RegisterOwn(file, own); err == nil {
		t.Fatal("RegisterOwn on unclassified resource should fail")
	}

	reg.Classify(file, Export)
	if err := reg.RegisterOwn(file, own); err != nil {
		t.Fatalf("RegisterOwn: %v", err)
	}
	info, _ := reg.Lookup(file)
	if !info.HasOwn || info.Own != own {
		t.Errorf("info = %+v, want own %d", info, own)
	}
}

func TestRegistry_ExportedOrder(t *testing.T) {
	r, file, dir, _ := newGraph()
	reg := NewRegistry(r)

	reg.Classify(dir, Export)
	reg.Classify(file, Export)

	got := reg.Exported()
	if len(got) != 2 || got[0] != file || got[1] != dir {
		t.Errorf("Exported() = %v, want [%d %d]", got, file, dir)
	}
}

func TestRegistry_ExportedSkipsImports(t *testing.T) {
	r, file, dir, _ := newGraph()
	reg := NewRegistry(r)

	reg.Classify(file, Import)
	reg.Classify(dir, Export)

	got := reg.Exported()
	if len(got) != 1 || got[0] != dir {
		t.Errorf("Exported() = %v, want [%d]", got, dir)
	}
}

func TestRegistry_Observer(t *testing.T) {
	r, file, _, own := newGraph()
	reg := NewRegistry(r)
	obs := &testObserver{}
	reg.Subscribe(obs)

	reg.Classify(file, Import)
	reg.Classify(file, Import)
	reg.Classify(file, Export)
	_ = reg.RegisterOwn(file, own)
	_ = reg.RegisterOwn(file, own)

	want := []EventType{EventClassified, EventPromoted, EventOwnRegistered}
	if len(obs.events) != len(want) {
		t.Fatalf("got %d events, want %d", len(obs.events), len(want))
	}
	for i, e := range obs.events {
		if e.Type != want[i] {
			t.Errorf("event %d = %s, want %s", i, e.Type, want[i])
		}
	}
}
