package cli

import (
	"errors"
	"fmt"

	"github.com/mattwparas/Rucket/internal/contract"
	"github.com/mattwparas/Rucket/internal/manifest"
	"github.com/mattwparas/Rucket/internal/prelude"
)

// loadManifest loads a manifest and reports load failures through the
// formatter. Compile errors are returned alongside the partial manifest so
// commands can decide whether to continue.
func loadManifest(formatter *OutputFormatter, path string, mode manifest.LoadMode) (*manifest.Manifest, []error, error) {
	m, errs := manifest.Load(path, mode)
	if m == nil {
		if len(errs) == 0 {
			errs = []error{&manifest.LoadError{Code: manifest.ErrCodeLoadFailed, Message: "no manifest loaded"}}
		}
		code, message := parseLoadError(errs[0])
		_ = formatter.Error(code, message, nil)
		return nil, nil, WrapExitError(ExitCommandError, "loading manifest", errs[0])
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", m.FileCount, path)
	return m, errs, nil
}

// compileManifest loads a manifest fail-fast and treats any compile error
// as a command error.
func compileManifest(formatter *OutputFormatter, path string) (*manifest.Manifest, error) {
	m, errs, err := loadManifest(formatter, path, manifest.LoadModeFailFast)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		code, message := parseLoadError(errs[0])
		_ = formatter.Error(code, message, nil)
		return nil, WrapExitError(ExitCommandError, "compiling manifest", errs[0])
	}
	return m, nil
}

// bindManifest binds a compiled manifest with a binder configured from the
// global flags. Extra binder options apply after the defaults.
func bindManifest(opts *RootOptions, formatter *OutputFormatter, m *manifest.Manifest, binderOpts ...contract.Option) (*manifest.Env, error) {
	reg := prelude.NewRegistry()
	binderOpts = append([]contract.Option{
		contract.WithEnabled(opts.ContractsEnabled()),
		contract.WithLogger(opts.Logger()),
	}, binderOpts...)
	binder := contract.NewBinder(binderOpts...)
	reg.Install(binder)

	env, err := manifest.Bind(m.Specs, reg, binder)
	if err != nil {
		_ = formatter.Error(manifest.ErrCodeGeneric, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "binding manifest", err)
	}
	opts.Logger().Debug("manifest bound",
		"contracts", len(m.Specs),
		"bound", len(env.BoundNames()),
		"contracts_enabled", binder.Enabled())
	return env, nil
}

// parseLoadError extracts error code and message from a manifest error.
func parseLoadError(err error) (string, string) {
	var loadErr *manifest.LoadError
	if errors.As(err, &loadErr) {
		if loadErr.Pos.IsValid() {
			return loadErr.Code, fmt.Sprintf("%s:%d:%d: %s",
				loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column(), loadErr.Message)
		}
		return loadErr.Code, loadErr.Message
	}
	return manifest.ErrCodeGeneric, err.Error()
}
