package manifest

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// worldfileSchema constrains a decoded worldfile. TOML decoding already
// checks shapes; the schema checks the values.
const worldfileSchema = `
{
	Project: {
		Name:    string & !=""
		Version: string
	}
	World: {
		Buffers:  [...string & !=""] & [_, ...]
		TickRate: int & >0 & <=240
	}
	Snapshot: {
		Path: string
		Name: string
	}
	...
}
`

// Validate checks a manifest against the worldfile schema.
func Validate(m *Manifest) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(worldfileSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling worldfile schema: %w", err)
	}

	val := ctx.Encode(m)
	if err := val.Err(); err != nil {
		return fmt.Errorf("encoding worldfile: %w", err)
	}

	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s", cueerrors.Details(err, nil))
	}
	return nil
}
