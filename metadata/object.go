package metadata

import (
	"bytes"
	"fmt"
	"io"

	"github.com/wippyai/witgen/errors"
)

const (
	magic         = "\x00asm"
	moduleVersion = "\x01\x00\x00\x00"
	customSection = 0
	producers     = "producers"
	processedBy   = "processed-by"
	producerName  = "witgen"
	sectionPrefix = "component-type:"
)

// SectionName returns the custom section name for world.
func SectionName(world string) string {
	return sectionPrefix + world
}

// Object returns a core wasm module with no code whose custom sections are
// the encoded descriptor and a producers section naming witgen at version.
func Object(world string, blob []byte, version string) []byte {
	var w bytes.Buffer
	w.WriteString(magic)
	w.WriteString(moduleVersion)

	writeCustom(&w, SectionName(world), blob)

	var prod bytes.Buffer
	writeU32(&prod, 1)
	writeName(&prod, processedBy)
	writeU32(&prod, 1)
	writeName(&prod, producerName)
	writeName(&prod, version)
	writeCustom(&w, producers, prod.Bytes())

	return w.Bytes()
}

func writeCustom(w *bytes.Buffer, name string, payload []byte) {
	var body bytes.Buffer
	writeName(&body, name)
	body.Write(payload)
	w.WriteByte(customSection)
	writeU32(w, uint32(body.Len()))
	w.Write(body.Bytes())
}

// Extract returns the payload of the component-type section for world.
func Extract(obj []byte, world string) ([]byte, error) {
	if len(obj) < 8 || string(obj[:4]) != magic || string(obj[4:8]) != moduleVersion {
		return nil, errors.InvalidData(errors.PhaseDecode, nil, "not a core wasm module")
	}
	want := SectionName(world)
	r := bytes.NewReader(obj[8:])
	for r.Len() > 0 {
		id, err := r.ReadByte()
		if err != nil {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "section id")
		}
		size, err := readU32(r)
		if err != nil || int64(size) > int64(r.Len()) {
			return nil, errors.InvalidData(errors.PhaseDecode, nil, fmt.Sprintf("truncated section %d", id))
		}
		start := len(obj) - r.Len()
		section := obj[start : start+int(size)]
		if _, err := r.Seek(int64(size), io.SeekCurrent); err != nil {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "skip section")
		}
		if id != customSection {
			continue
		}
		sr := bytes.NewReader(section)
		name, err := readName(sr)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "custom section name")
		}
		if name == want {
			return section[len(section)-sr.Len():], nil
		}
	}
	return nil, errors.NotFound(errors.PhaseDecode, "custom section", want)
}
