package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/token"

	"github.com/roach88/predkit/internal/definition"
)

// Error code constants shared by all commands. Definition problems keep
// their own E2xx codes; composition errors use their symbolic codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No definition files found
	ErrCodeNotFound    = "E005" // Path or catalog entry not found
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeCatalog     = "E008" // Catalog could not be opened or queried
	ErrCodeRecords     = "E009" // Records file unreadable
)

// definitionExts are the file extensions definition.Load understands.
var definitionExts = map[string]bool{".yaml": true, ".yml": true, ".json": true, ".cue": true}

// LoadMode controls how errors are handled during loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the definitions read from a set of paths.
type LoadResult struct {
	Definitions []*definition.Definition
	Files       []string // Files the definitions came from, same order
}

// LoadError represents an error that occurred while loading definitions.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDefinitions reads definition files. Each path is a file or a
// directory searched recursively for .yaml, .yml, .json and .cue files.
func LoadDefinitions(paths []string, mode LoadMode) (*LoadResult, []error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", p)}}
		}
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", p, err)}}
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		found, err := FindDefinitionFiles(p)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
		}
		if len(found) == 0 {
			return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no definition files found in %s", p)}}
		}
		files = append(files, found...)
	}

	var errs []error
	result := &LoadResult{}
	for _, f := range files {
		def, err := definition.Load(f)
		if err != nil {
			errs = append(errs, convertDefinitionError(err, f))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Definitions = append(result.Definitions, def)
		result.Files = append(result.Files, f)
	}
	return result, errs
}

// FindDefinitionFiles walks dir and returns definition file paths in
// lexical order.
func FindDefinitionFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && definitionExts[filepath.Ext(path)] {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertDefinitionError converts a definition error to a LoadError with
// position info.
func convertDefinitionError(err error, path string) *LoadError {
	var defErr *definition.DefinitionError
	if errors.As(err, &defErr) {
		msg := defErr.Message
		if defErr.Field != "" {
			msg = defErr.Field + ": " + msg
		}
		return &LoadError{Code: defErr.Code, Path: path, Message: msg, Pos: defErr.Pos}
	}
	return &LoadError{Code: ErrCodeGeneric, Path: path, Message: err.Error()}
}

// loadErrorCode returns the code of a LoadError, or ErrCodeGeneric.
func loadErrorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}
