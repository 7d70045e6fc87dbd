package metadata

import (
	"context"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/witgen/errors"
)

// Verify compiles obj with wazero and checks that it carries a decodable
// component-type section for world.
func Verify(ctx context.Context, obj []byte, world string) error {
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCustomSections(true))
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, obj)
	if err != nil {
		return errors.Wrap(errors.PhaseVerify, errors.KindInvalidData, err, "metadata object does not compile")
	}
	defer compiled.Close(ctx)

	want := SectionName(world)
	for _, sec := range compiled.CustomSections() {
		if sec.Name() != want {
			continue
		}
		if _, err := Decode(sec.Data()); err != nil {
			return errors.Wrap(errors.PhaseVerify, errors.KindInvalidData, err, "component-type section does not decode")
		}
		return nil
	}
	return errors.NotFound(errors.PhaseVerify, "custom section", want)
}
