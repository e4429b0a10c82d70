// © Copyright 2026, DataRobot, Inc. and its affiliates.
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// The bridge's own foreign-side helpers, sourced into every session ahead
// of the model author's code: common.gos first, then the score/transform
// entry points.
//
//go:embed scripts/common.gos scripts/score.gos
var scriptFS embed.FS

var supportScripts = []string{"scripts/common.gos", "scripts/score.gos"}

// HookFunc is the signature of every function bound into the session's
// hook registry. A fault is either a returned error or a panic in the
// interpreted body; both are intercepted by the capture wrapper.
type HookFunc func(Args) (Value, error)

// Runtime owns one embedded interpreter session. The session is strictly
// single-threaded and non-reentrant: every call into it is serialized by
// the runtime's mutex, and no call can be cancelled once started.
type Runtime struct {
	mu           sync.Mutex
	interp       *interp.Interpreter
	stderr       bytes.Buffer // the session's diagnostic channel
	hooks        map[string]HookFunc
	imported     map[string]bool // package paths already imported into the session
	intercepting bool
	initialized  bool
	closed       bool
}

// NewRuntime creates a session with the interpreter stdlib and the bridge
// symbols bound. The session is unusable until Initialize has run.
func NewRuntime() (*Runtime, error) {
	r := &Runtime{hooks: make(map[string]HookFunc), imported: make(map[string]bool)}
	r.interp = interp.New(interp.Options{Stdout: os.Stdout, Stderr: &r.stderr})
	if err := r.interp.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("loading interpreter stdlib: %w", err)
	}
	// stdlib.Symbols binds the process's real os.Stderr into the session;
	// rebind it to the diagnostic buffer so script output reaches the
	// fault capture instead of the process's stderr.
	if err := r.interp.Use(interp.Exports{
		"os/os": {"Stderr": reflect.ValueOf(&r.stderr)},
	}); err != nil {
		return nil, fmt.Errorf("binding session stderr: %w", err)
	}
	if err := r.interp.Use(r.exports()); err != nil {
		return nil, fmt.Errorf("binding bridge symbols: %w", err)
	}
	return r, nil
}

// exports is the hookenv package visible to sourced scripts. RegisterHook
// and Call are bound to this session's registry.
func (r *Runtime) exports() interp.Exports {
	return interp.Exports{
		"hookenv/hookenv": {
			"RegisterHook":       reflect.ValueOf(r.registerHook),
			"HasHook":            reflect.ValueOf(r.hasHook),
			"Call":               reflect.ValueOf(r.callHook),
			"Source":             reflect.ValueOf(r.sourceFile),
			"Null":               reflect.ValueOf(Null),
			"Raw":                reflect.ValueOf(Raw),
			"Character":          reflect.ValueOf(Character),
			"CharacterVector":    reflect.ValueOf(CharacterVector),
			"Logical":            reflect.ValueOf(Logical),
			"NumericVector":      reflect.ValueOf(NumericVector),
			"ListValue":          reflect.ValueOf(ListValue),
			"TableValue":         reflect.ValueOf(TableValue),
			"Opaque":             reflect.ValueOf(Opaque),
			"NewNamedList":       reflect.ValueOf(NewNamedList),
			"NewFrameBuilder":    reflect.ValueOf(NewFrameBuilder),
			"ReadTabularPayload": reflect.ValueOf(ReadTabularPayload),
			"Value":              reflect.ValueOf((*Value)(nil)),
			"Args":               reflect.ValueOf((*Args)(nil)),
			"Frame":              reflect.ValueOf((*Frame)(nil)),
			"FrameBuilder":       reflect.ValueOf((*FrameBuilder)(nil)),
			"NamedList":          reflect.ValueOf((*NamedList)(nil)),
			"HookFunc":           reflect.ValueOf((*HookFunc)(nil)),
		},
	}
}

// Initialize sources the two support scripts and invokes the init entry
// point with the model directory and target type. It must be called
// exactly once; a second call fails rather than re-source the session.
func (r *Runtime) Initialize(codeDir, targetType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return newError(KindConfiguration, "runtime is closed")
	}
	if r.initialized {
		return newError(KindConfiguration, "runtime is already initialized")
	}
	for _, name := range supportScripts {
		src, err := scriptFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("reading support script %s: %w", name, err)
		}
		if err := r.sourceLocked(name, string(src)); err != nil {
			return err
		}
	}
	if _, err := r.invokeLocked(HookInit, Args{
		KeyCodeDir:    Character(codeDir),
		KeyTargetType: Character(targetType),
	}); err != nil {
		return err
	}
	r.initialized = true
	return nil
}

// HookExists reports whether a named hook is bound in the session.
func (r *Runtime) HookExists(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasHook(name)
}

// Invoke calls a named hook with keyword arguments already in foreign
// representation. Calls are serialized; a fault inside the session comes
// back as a ForeignExecutionError and leaves the session usable.
func (r *Runtime) Invoke(name string, args Args) (Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Value{}, newError(KindConfiguration, "runtime is closed")
	}
	return r.invokeLocked(name, args)
}

func (r *Runtime) invokeLocked(name string, args Args) (Value, error) {
	fn, ok := r.hooks[name]
	if !ok {
		return Value{}, newError(KindConfiguration, "hook %q is not bound in the session", name)
	}
	c := r.armCapture()
	defer c.disarm()
	return c.call(name, fn, args)
}

func (r *Runtime) sourceLocked(name, src string) error {
	c := r.armCapture()
	defer c.disarm()
	imports, body := splitImports(src)
	if imports = r.filterImports(imports); imports != "" {
		if err := c.eval(name, imports); err != nil {
			return err
		}
	}
	if body == "" {
		return nil
	}
	return c.eval(name, body)
}

// splitImports separates a script's leading import declarations from its
// statement body. Source containing an import declaration is parsed by the
// interpreter in file mode, which rejects top-level statements, so the two
// parts must be evaluated separately. Imported packages stay in scope for
// later evaluations in the same session.
func splitImports(src string) (imports, body string) {
	lines := strings.Split(src, "\n")
	end, seen := 0, false
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "//"):
			// leading trivia belongs to whichever part follows
		case strings.HasPrefix(trimmed, "import"):
			seen = true
			if strings.Contains(trimmed, "(") && !strings.Contains(trimmed, ")") {
				for i < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[i]), ")") {
					i++
				}
			}
			end = i + 1
		default:
			if !seen {
				return "", src
			}
			return strings.Join(lines[:end], "\n"), strings.Join(lines[end:], "\n")
		}
	}
	if seen {
		return src, ""
	}
	return "", src
}

// filterImports drops import specs for packages the session has already
// imported and records the rest as imported. The interpreter rejects a
// repeat import of the same package across evaluations ("redeclared in
// this block"), while packages imported once stay in scope for every
// later evaluation, so a duplicate spec is safe to skip. Returns the
// remaining import declaration, or "" when nothing new is imported.
func (r *Runtime) filterImports(imports string) string {
	var keep []string
	for _, line := range strings.Split(imports, "\n") {
		spec := strings.TrimSpace(line)
		spec = strings.TrimSpace(strings.TrimPrefix(spec, "import"))
		spec = strings.TrimSpace(strings.TrimPrefix(spec, "("))
		spec = strings.TrimSpace(strings.TrimSuffix(spec, ")"))
		start := strings.IndexByte(spec, '"')
		if start < 0 {
			continue
		}
		path := spec[start+1 : strings.LastIndexByte(spec, '"')]
		if r.imported[path] {
			continue
		}
		r.imported[path] = true
		keep = append(keep, spec)
	}
	if len(keep) == 0 {
		return ""
	}
	return "import (\n\t" + strings.Join(keep, "\n\t") + "\n)"
}

// Close tears the session down. Idempotent.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.hooks = nil
	r.interp = nil
	return nil
}

// registerHook binds a hook into the session registry. Re-registration
// replaces the previous binding, so model code can override the defaults
// the support scripts install. Called from inside session evaluation,
// which the invoke mutex already serializes.
func (r *Runtime) registerHook(name string, fn HookFunc) {
	r.hooks[name] = fn
}

// hasHook is the lock-free registry probe used from inside the session.
func (r *Runtime) hasHook(name string) bool {
	_, ok := r.hooks[name]
	return ok
}

// callHook dispatches from one hook to another inside the same session
// call. No new interception scope: the enclosing call's capture already
// owns the fault channel.
func (r *Runtime) callHook(name string, args Args) (Value, error) {
	fn, ok := r.hooks[name]
	if !ok {
		return Value{}, newError(KindConfiguration, "hook %q is not bound in the session", name)
	}
	return fn(args)
}

// sourceFile evaluates a script file into the session. Exposed to the
// support scripts so init can pull in the model author's code. Called
// from inside session evaluation, under the enclosing call's capture.
func (r *Runtime) sourceFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script %s: %w", path, err)
	}
	imports, body := splitImports(string(src))
	if imports = r.filterImports(imports); imports != "" {
		if _, err := r.interp.Eval(imports); err != nil {
			return fmt.Errorf("sourcing %s: %w", path, err)
		}
	}
	if body == "" {
		return nil
	}
	if _, err := r.interp.Eval(body); err != nil {
		return fmt.Errorf("sourcing %s: %w", path, err)
	}
	return nil
}
