package metadata

import (
	"bytes"
	"fmt"
	"io"

	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/graph"
)

// Encode serializes d. References must point inside d.Types.
func Encode(d *Descriptor) ([]byte, error) {
	if d.Version != Version {
		return nil, errors.New(errors.PhaseEncode, errors.KindUnsupported).
			Value(d.Version).
			Detail("descriptor version %d, encoder writes %d", d.Version, Version).
			Build()
	}
	if err := d.check(errors.PhaseEncode); err != nil {
		return nil, err
	}

	var w bytes.Buffer
	w.WriteByte(d.Version)
	writeName(&w, d.Package)
	writeName(&w, d.World)

	writeU32(&w, uint32(len(d.Types)))
	for _, t := range d.Types {
		w.WriteByte(byte(t.Kind))
		writeName(&w, t.Name)
		writeName(&w, t.Owner)
		writeFields(&w, t.Fields)
		writeRefs(&w, t.Types)
	}
	for _, items := range [][]Item{d.Imports, d.Exports} {
		writeU32(&w, uint32(len(items)))
		for _, item := range items {
			w.WriteByte(byte(item.Kind))
			writeName(&w, item.Name)
			writeRefs(&w, item.Types)
			writeU32(&w, uint32(len(item.Funcs)))
			for _, fn := range item.Funcs {
				writeName(&w, fn.Name)
				writeFields(&w, fn.Params)
				writeFields(&w, fn.Results)
			}
		}
	}
	return w.Bytes(), nil
}

func writeFields(w *bytes.Buffer, fields []Field) {
	writeU32(w, uint32(len(fields)))
	for _, f := range fields {
		writeName(w, f.Name)
		writeS32(w, int32(f.Type))
	}
}

func writeRefs(w *bytes.Buffer, refs []TypeRef) {
	writeU32(w, uint32(len(refs)))
	for _, r := range refs {
		writeS32(w, int32(r))
	}
}

// check validates every reference in d.
func (d *Descriptor) check(phase errors.Phase) error {
	valid := func(r TypeRef) bool {
		if p, ok := r.Primitive(); ok {
			return p >= graph.Bool && p <= graph.String
		}
		return r == NoType || int(r) < len(d.Types)
	}
	bad := func(path string, r TypeRef) error {
		return errors.InvalidData(phase, []string{path}, fmt.Sprintf("type reference %d out of range", r))
	}
	for i, t := range d.Types {
		if !t.Kind.valid() {
			return errors.InvalidData(phase, []string{fmt.Sprintf("types[%d]", i)}, fmt.Sprintf("unknown kind 0x%02x", byte(t.Kind)))
		}
		for _, f := range t.Fields {
			if !valid(f.Type) {
				return bad(fmt.Sprintf("types[%d].%s", i, f.Name), f.Type)
			}
		}
		for _, r := range t.Types {
			if !valid(r) {
				return bad(fmt.Sprintf("types[%d]", i), r)
			}
		}
	}
	for _, items := range [][]Item{d.Imports, d.Exports} {
		for _, item := range items {
			for _, r := range item.Types {
				if !valid(r) {
					return bad(item.Name, r)
				}
			}
			for _, fn := range item.Funcs {
				for _, f := range append(append([]Field{}, fn.Params...), fn.Results...) {
					if !valid(f.Type) {
						return bad(item.Name+"."+fn.Name, f.Type)
					}
				}
			}
		}
	}
	return nil
}

// Decode parses an encoded descriptor.
func Decode(b []byte) (*Descriptor, error) {
	r := bytes.NewReader(b)
	d, err := decode(r)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			return nil, e
		}
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "malformed descriptor")
	}
	if r.Len() != 0 {
		return nil, errors.InvalidData(errors.PhaseDecode, nil, fmt.Sprintf("%d trailing bytes", r.Len()))
	}
	if err := d.check(errors.PhaseDecode); err != nil {
		return nil, err
	}
	return d, nil
}

func decode(r *bytes.Reader) (*Descriptor, error) {
	version, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Value(version).
			Detail("descriptor version %d, decoder reads %d", version, Version).
			Build()
	}
	d := &Descriptor{Version: version}
	if d.Package, err = readName(r); err != nil {
		return nil, err
	}
	if d.World, err = readName(r); err != nil {
		return nil, err
	}

	n, err := readCount(r)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		var t TypeDesc
		kind, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		t.Kind = Kind(kind)
		if t.Name, err = readName(r); err != nil {
			return nil, err
		}
		if t.Owner, err = readName(r); err != nil {
			return nil, err
		}
		if t.Fields, err = readFields(r); err != nil {
			return nil, err
		}
		if t.Types, err = readRefs(r); err != nil {
			return nil, err
		}
		d.Types = append(d.Types, t)
	}

	if d.Imports, err = readItems(r); err != nil {
		return nil, err
	}
	if d.Exports, err = readItems(r); err != nil {
		return nil, err
	}
	return d, nil
}

// readCount reads a length prefix, rejecting counts larger than the
// remaining input since every element takes at least one byte.
func readCount(r *bytes.Reader) (int, error) {
	n, err := readU32(r)
	if err != nil {
		return 0, err
	}
	if int64(n) > int64(r.Len()) {
		return 0, io.ErrUnexpectedEOF
	}
	return int(n), nil
}

func readItems(r *bytes.Reader) ([]Item, error) {
	n, err := readCount(r)
	if err != nil {
		return nil, err
	}
	var items []Item
	for i := 0; i < n; i++ {
		var item Item
		kind, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if kind > byte(ItemType) {
			return nil, errors.InvalidData(errors.PhaseDecode, []string{fmt.Sprintf("items[%d]", i)}, fmt.Sprintf("unknown item kind %d", kind))
		}
		item.Kind = ItemKind(kind)
		if item.Name, err = readName(r); err != nil {
			return nil, err
		}
		if item.Types, err = readRefs(r); err != nil {
			return nil, err
		}
		nf, err := readCount(r)
		if err != nil {
			return nil, err
		}
		for j := 0; j < nf; j++ {
			var fn Func
			if fn.Name, err = readName(r); err != nil {
				return nil, err
			}
			if fn.Params, err = readFields(r); err != nil {
				return nil, err
			}
			if fn.Results, err = readFields(r); err != nil {
				return nil, err
			}
			item.Funcs = append(item.Funcs, fn)
		}
		items = append(items, item)
	}
	return items, nil
}

func readFields(r *bytes.Reader) ([]Field, error) {
	n, err := readCount(r)
	if err != nil {
		return nil, err
	}
	var fields []Field
	for i := 0; i < n; i++ {
		name, err := readName(r)
		if err != nil {
			return nil, err
		}
		ref, err := readS32(r)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: name, Type: TypeRef(ref)})
	}
	return fields, nil
}

func readRefs(r *bytes.Reader) ([]TypeRef, error) {
	n, err := readCount(r)
	if err != nil {
		return nil, err
	}
	var refs []TypeRef
	for i := 0; i < n; i++ {
		ref, err := readS32(r)
		if err != nil {
			return nil, err
		}
		refs = append(refs, TypeRef(ref))
	}
	return refs, nil
}
