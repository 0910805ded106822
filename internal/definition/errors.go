package definition

import (
	"errors"
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes for definition problems.
const (
	ErrCodeParse           = "E201" // Document could not be parsed
	ErrCodeMissingField    = "E202" // Required field missing
	ErrCodeInvalidMatch    = "E203" // match is not all/any
	ErrCodeEmptyGroup      = "E204" // where/all/any is empty
	ErrCodeInvalidClause   = "E205" // clause sets zero or several of field/all/any
	ErrCodeInvalidOperator = "E206" // op missing or unknown
	ErrCodeInvalidType     = "E207" // type is not datetime
	ErrCodeConversion      = "E208" // value could not be converted
	ErrCodeComposition     = "E209" // predicates could not be combined
)

// DefinitionError reports a problem with a predicate document.
// Pos is set for CUE documents when the position is known.
type DefinitionError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos
	Err     error
}

func (e *DefinitionError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Code, e.Field, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// Code returns the DefinitionError code in err's chain, or "".
func Code(err error) string {
	var de *DefinitionError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &DefinitionError{Code: ErrCodeParse, Field: "cue", Message: err.Error(), Err: err}
	}

	first := errs[0]
	de := &DefinitionError{Code: ErrCodeParse, Field: "cue", Message: first.Error(), Err: err}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		de.Pos = positions[0]
	}
	return de
}
