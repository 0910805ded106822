package definition

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Load reads a definition from path. The format is chosen by extension:
// .yaml/.yml, .json or .cue.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return Parse(data)
	case ".json":
		return ParseJSON(data)
	case ".cue":
		return ParseCUE(path, data)
	default:
		return nil, &DefinitionError{
			Code:    ErrCodeParse,
			Field:   "path",
			Message: fmt.Sprintf("unsupported extension %q for %s", ext, path),
		}
	}
}

// Parse decodes a YAML definition. Unknown fields are rejected.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DefinitionError{Code: ErrCodeParse, Message: "empty document"}
		}
		return nil, &DefinitionError{Code: ErrCodeParse, Message: err.Error(), Err: err}
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// ParseJSON decodes a JSON definition. Numbers keep their integer form and
// unknown fields are rejected.
func ParseJSON(data []byte) (*Definition, error) {
	var def Definition
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&def); err != nil {
		return nil, &DefinitionError{Code: ErrCodeParse, Message: err.Error(), Err: err}
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// ParseCUE evaluates a CUE definition against the #Definition schema.
// filename is only used in error positions.
func ParseCUE(filename string, data []byte) (*Definition, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile definition schema: %w", err)
	}

	doc := ctx.CompileBytes(data, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Definition")).Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	// Concrete CUE values export as JSON; decoding through ParseJSON keeps
	// one path for field checks and number handling.
	out, err := unified.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	return ParseJSON(out)
}

// MarshalJSON encodes def in the form ParseJSON reads.
func MarshalJSON(def *Definition) ([]byte, error) {
	return json.Marshal(def)
}
