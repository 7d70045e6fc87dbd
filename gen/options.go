package gen

import (
	"strings"

	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/resource"
)

// Ownership selects how import parameters are passed.
type Ownership uint8

const (
	// Owning passes every parameter by value.
	Owning Ownership = iota
	// Borrowing passes struct-shaped parameters by pointer and declares
	// parameter-only types in their borrowed shape.
	Borrowing
	// BorrowingDuplicateIfNecessary is Borrowing, but types needed in both
	// shapes are declared twice as XParam and XResult.
	BorrowingDuplicateIfNecessary
)

var ownershipNames = []string{"owning", "borrowing", "borrowing-duplicate-if-necessary"}

func (o Ownership) String() string {
	if int(o) < len(ownershipNames) {
		return ownershipNames[o]
	}
	return "unknown"
}

// ParseOwnership parses an ownership mode name.
func ParseOwnership(s string) (Ownership, error) {
	for i, name := range ownershipNames {
		if strings.EqualFold(s, name) {
			return Ownership(i), nil
		}
	}
	return 0, errors.UnknownMode("ownership", s, ownershipNames...)
}

// Validation selects whether lifted values are checked.
type Validation uint8

const (
	// Checked panics on invalid discriminants, bools, chars and strings.
	Checked Validation = iota
	// Unchecked trusts the other side of the boundary.
	Unchecked
)

var validationNames = []string{"checked", "unchecked"}

func (v Validation) String() string {
	if int(v) < len(validationNames) {
		return validationNames[v]
	}
	return "unknown"
}

// ParseValidation parses a validation mode name.
func ParseValidation(s string) (Validation, error) {
	for i, name := range validationNames {
		if strings.EqualFold(s, name) {
			return Validation(i), nil
		}
	}
	return 0, errors.UnknownMode("validation", s, validationNames...)
}

// Options controls one generation run.
type Options struct {
	Ownership  Ownership
	Validation Validation

	// RawStrings maps string to []byte everywhere.
	RawStrings bool
	// StdFeature moves fmt-dependent methods into a file behind the
	// witgen_std build tag.
	StdFeature bool

	// Skip lists function names that are not generated.
	Skip map[string]bool

	// ExportPrefix is prepended to every export symbol name.
	ExportPrefix string

	// Implementation types, as "import/path.Type" or a bare "Type" declared
	// next to the generated package. World exports are keyed by world name,
	// interface exports by "ns:pkg/iface" or plain name, resource exports by
	// "ns:pkg/iface/resource".
	WorldExports     map[string]string
	InterfaceExports map[string]string
	ResourceExports  map[string]string

	// Stubs generates panicking implementations for exports that have no
	// implementation type.
	Stubs bool

	// PackagePath is the Go import path of the output root.
	PackagePath string

	// Format runs each file through Formatter (gofmt when empty).
	Format    bool
	Formatter string

	// VerifyMetadata compiles the metadata object with wazero.
	VerifyMetadata bool

	// Version is recorded in the producers section of the metadata object.
	Version string

	// Observer, if set, receives the resource classification events of
	// the run.
	Observer resource.Observer
}

// Validate checks the option values that do not depend on the graph.
func (o *Options) Validate() error {
	if o.Ownership > BorrowingDuplicateIfNecessary {
		return errors.UnknownMode("ownership", o.Ownership.String(), ownershipNames...)
	}
	if o.Validation > Unchecked {
		return errors.UnknownMode("validation", o.Validation.String(), validationNames...)
	}
	for _, m := range []map[string]string{o.WorldExports, o.InterfaceExports, o.ResourceExports} {
		for key, impl := range m {
			if _, _, err := parseImplName(impl); err != nil {
				return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
					Path(key).
					Value(impl).
					Detail("malformed implementation name: %v", err).
					Build()
			}
		}
	}
	return nil
}

func (o *Options) skipped(name string) bool {
	return o.Skip != nil && o.Skip[name]
}

func (o *Options) version() string {
	if o.Version == "" {
		return "dev"
	}
	return o.Version
}
