// Package manifest loads CUE contract manifests and binds their declared
// implementations, producing the callables that scenarios and the CLI
// invoke.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/mattwparas/Rucket/internal/compiler"
	"github.com/mattwparas/Rucket/internal/ir"
)

// Error code constants shared by every command that loads manifests.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeNoContracts = "E007" // Manifest declares no contracts
)

// LoadMode controls how errors are handled during manifest loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Manifest is a loaded and compiled contract manifest.
type Manifest struct {
	Specs     []ir.ContractSpec
	Value     cue.Value // the raw CUE value for additional processing
	FileCount int
}

// Hash returns the content hash of the compiled specs.
func (m *Manifest) Hash() (string, error) {
	return ir.ManifestHash(m.Specs)
}

// Spec looks up a compiled contract by name.
func (m *Manifest) Spec(name string) (ir.ContractSpec, bool) {
	for _, spec := range m.Specs {
		if spec.Name == name {
			return spec, true
		}
	}
	return ir.ContractSpec{}, false
}

// LoadError represents an error that occurred during manifest loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load loads and compiles a manifest from a directory of CUE files or a
// single .cue file. If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all compile errors.
func Load(path string, mode LoadMode) (*Manifest, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("manifest not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing manifest: %v", err)}}
	}

	dir := path
	var args []string
	fileCount := 1
	if info.IsDir() {
		cueFiles, err := FindCUEFiles(path)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
		}
		if len(cueFiles) == 0 {
			return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}}
		}
		fileCount = len(cueFiles)
		// Manifests carry no package clause, so files are loaded as an
		// explicit file list rather than as the package in ".".
		args = make([]string, 0, len(cueFiles))
		for _, f := range cueFiles {
			args = append(args, filepath.Base(f))
		}
	} else {
		if filepath.Ext(path) != ".cue" {
			return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("not a CUE file: %s", path)}}
		}
		dir, args = filepath.Dir(path), []string{filepath.Base(path)}
	}

	ctx := cuecontext.New()
	instances := load.Instances(args, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	m := &Manifest{Value: value, FileCount: fileCount}
	errs := compileContracts(m, value, mode)

	if len(m.Specs) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoContracts, Message: "no contracts found in manifest"})
	}
	return m, errs
}

// compileContracts compiles each entry under the top-level contract struct.
func compileContracts(m *Manifest, value cue.Value, mode LoadMode) []error {
	var errs []error

	contractsVal := value.LookupPath(cue.ParsePath("contract"))
	if !contractsVal.Exists() {
		return nil
	}

	iter, err := contractsVal.Fields()
	if err != nil {
		return []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating contracts: %v", err)}}
	}
	for iter.Next() {
		spec, err := compiler.CompileContract(iter.Value())
		if err != nil {
			errs = append(errs, convertCompileError(err, "contract."+iter.Selector().Unquoted()))
			if mode == LoadModeFailFast {
				return errs
			}
			continue
		}
		m.Specs = append(m.Specs, *spec)
	}
	return errs
}

// FindCUEFiles returns the .cue files directly inside dir, sorted by
// name. Subdirectories are not searched: CUE loads named files from a
// single directory.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		code := compileErr.Code
		if code == "" {
			code = ErrCodeGeneric
		}
		return &LoadError{
			Code:    code,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}
