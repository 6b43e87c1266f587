// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enjoy

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/open2b/enjoy/ast"
	"github.com/open2b/enjoy/ast/astutil"
	"github.com/open2b/enjoy/internal/compiler"
	"github.com/open2b/enjoy/runtime"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// inlineName is the name of the templates compiled from a string.
const inlineName = "inline"

// Engine compiles, caches and renders templates. An Engine is safe for
// concurrent use by multiple goroutines.
type Engine struct {
	devMode     bool
	escape      runtime.EscapeMode
	undefined   runtime.UndefinedPolicy
	globals     map[string]runtime.Value
	directives  map[string]runtime.Directive
	parsers     map[string]func(*ast.Custom) error
	sources     fs.FS
	watcher     *WatchedDir
	ownWatcher  bool // reports whether the watcher has been created by the engine.
	encoding    encoding.Encoding
	maxIncludes int
	maxCalls    int
	logger      *slog.Logger
	cache       cache

	mu          sync.RWMutex
	shared      map[string]*runtime.Macro // shared macros; replaced, never modified.
	sharedNames []string                  // templates with the shared macros.
}

// New returns a new engine with the given configuration.
func New(config Config) (*Engine, error) {
	e := &Engine{
		devMode:     config.DevMode,
		escape:      config.Escape,
		undefined:   config.Undefined,
		sources:     config.Sources,
		maxIncludes: config.MaxIncludeDepth,
		maxCalls:    config.MaxCallDepth,
		logger:      config.Logger,
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if len(config.Globals) > 0 {
		e.globals = make(map[string]runtime.Value, len(config.Globals))
		for name, v := range config.Globals {
			value, err := runtime.ValueOf(v)
			if err != nil {
				return nil, fmt.Errorf("enjoy: cannot use global %q: %w", name, err)
			}
			e.globals[name] = value
		}
	}
	if len(config.Directives) > 0 {
		e.directives = make(map[string]runtime.Directive, len(config.Directives))
		e.parsers = make(map[string]func(*ast.Custom) error, len(config.Directives))
		for name, d := range config.Directives {
			if !compiler.ValidDirectiveName(name) {
				return nil, fmt.Errorf("enjoy: invalid directive name %q", name)
			}
			if d == nil {
				return nil, fmt.Errorf("enjoy: directive %q is nil", name)
			}
			e.directives[name] = d
			e.parsers[name] = d.Parse
		}
	}
	if config.Encoding != "" {
		enc, err := htmlindex.Get(config.Encoding)
		if err != nil {
			return nil, fmt.Errorf("enjoy: unknown encoding %q", config.Encoding)
		}
		if name, _ := htmlindex.Name(enc); name != "utf-8" {
			e.encoding = enc
		}
	}
	switch sources := config.Sources.(type) {
	case *WatchedDir:
		e.watcher = sources
	case DirFS:
		if config.Watch {
			w, err := NewWatchedDir(string(sources))
			if err != nil {
				return nil, fmt.Errorf("enjoy: cannot watch %s: %w", sources, err)
			}
			e.sources = w
			e.watcher = w
			e.ownWatcher = true
		}
	default:
		if config.Watch {
			return nil, errors.New("enjoy: Watch requires DirFS sources")
		}
	}
	if e.watcher != nil {
		go e.watch()
	}
	return e, nil
}

var (
	defaultEngine *Engine
	defaultMu     sync.Mutex
)

// Use returns the default engine. If SetDefault has not been called, the
// default engine is created on the first call with an empty configuration.
func Use() *Engine {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultEngine == nil {
		defaultEngine, _ = New(Config{})
	}
	return defaultEngine
}

// SetDefault sets the engine returned by Use.
func SetDefault(e *Engine) {
	defaultMu.Lock()
	defaultEngine = e
	defaultMu.Unlock()
}

// Compile compiles the template source src with the given name and returns
// the compiled template. The name is used in error messages and to resolve
// the paths of the included templates. The returned template is not cached.
func (e *Engine) Compile(name string, src []byte) (*Template, error) {
	return e.compile(name, src)
}

// CompileString compiles the template source src. Templates are cached by
// source, unless the engine is in development mode.
func (e *Engine) CompileString(src string) (*Template, error) {
	if e.devMode {
		return e.compile(inlineName, []byte(src))
	}
	key := cacheKey{name: src, inline: true}
	t, ok := e.cache.get(key)
	if ok {
		return t, nil
	}
	defer e.cache.done(key)
	t, err := e.compile(inlineName, []byte(src))
	if err != nil {
		return nil, err
	}
	e.cache.add(key, t)
	return t, nil
}

// Template returns the template with the given name read from the sources.
// Templates are cached by name, unless the engine is in development mode.
//
// If name is not a valid path it returns ErrInvalidPath and if the
// template does not exist it returns ErrNotExist.
func (e *Engine) Template(name string) (*Template, error) {
	name, err := resolvePath("", name)
	if err != nil {
		return nil, err
	}
	if e.sources == nil {
		return nil, ErrNoSources
	}
	if e.devMode {
		return e.load(name)
	}
	key := cacheKey{name: name}
	t, ok := e.cache.get(key)
	if ok {
		return t, nil
	}
	defer e.cache.done(key)
	t, err = e.load(name)
	if err != nil {
		return nil, err
	}
	e.cache.add(key, t)
	return t, nil
}

// Render renders the template with the given name, read from the sources,
// and writes the result to w. vars are the variables of the rendering.
func (e *Engine) Render(w io.Writer, name string, vars map[string]interface{}) error {
	t, err := e.Template(name)
	if err != nil {
		return err
	}
	return t.Render(w, vars)
}

// RenderString compiles the template source src, if it is not cached, and
// returns the result of its rendering. vars are the variables of the
// rendering.
func (e *Engine) RenderString(src string, vars map[string]interface{}) (string, error) {
	t, err := e.CompileString(src)
	if err != nil {
		return "", err
	}
	return t.RenderString(vars)
}

// AddSharedMacros adds the macros defined at the first level of the
// template with the given name to the shared macros. Shared macros can be
// called by every template, a macro defined by the rendered templates
// takes precedence over a shared macro with the same name.
//
// If the sources are watched, the shared macros are reloaded when the
// template changes.
func (e *Engine) AddSharedMacros(name string) error {
	t, err := e.Template(name)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	shared := make(map[string]*runtime.Macro, len(e.shared))
	for n, m := range e.shared {
		shared[n] = m
	}
	macros := runtime.Macros(t.tree)
	for n, m := range macros {
		shared[n] = m
	}
	e.shared = shared
	for _, n := range e.sharedNames {
		if n == t.name {
			return nil
		}
	}
	e.sharedNames = append(e.sharedNames, t.name)
	e.logger.Debug("shared macros added", "template", t.name, "macros", len(macros))
	return nil
}

// reloadSharedMacros reloads the shared macros if the template name is one
// of the templates of the shared macros.
func (e *Engine) reloadSharedMacros(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	found := false
	for _, n := range e.sharedNames {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		return
	}
	shared := map[string]*runtime.Macro{}
	for _, n := range e.sharedNames {
		t, err := e.Template(n)
		if err != nil {
			e.logger.Warn("cannot reload shared macros", "template", n, "err", err)
			return
		}
		for n, m := range runtime.Macros(t.tree) {
			shared[n] = m
		}
	}
	e.shared = shared
	e.logger.Debug("shared macros reloaded", "template", name)
}

// Evict evicts from the cache the template with the given name. It does
// nothing if the template is not cached.
func (e *Engine) Evict(name string) {
	name, err := resolvePath("", name)
	if err != nil {
		return
	}
	if e.cache.evict(cacheKey{name: name}) {
		e.logger.Debug("template evicted", "name", name)
	}
}

// Purge evicts all the templates from the cache.
func (e *Engine) Purge() {
	n := e.cache.purge()
	e.logger.Debug("cache purged", "templates", n)
}

// Close closes the engine, stopping to watch the sources if the watcher
// has been created by the engine. Templates already compiled can still be
// rendered.
func (e *Engine) Close() error {
	e.Purge()
	if e.ownWatcher {
		return e.watcher.Close()
	}
	return nil
}

// watch evicts the changed templates until the watcher is closed.
func (e *Engine) watch() {
	changed, errs := e.watcher.Changed(), e.watcher.Errors()
	for changed != nil || errs != nil {
		select {
		case name, ok := <-changed:
			if !ok {
				changed = nil
				continue
			}
			e.Evict(name)
			e.reloadSharedMacros(name)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			e.logger.Warn("cannot watch the sources", "err", err)
		}
	}
}

// load reads the template with the given name from the sources and
// compiles it.
func (e *Engine) load(name string) (*Template, error) {
	src, err := e.readSource(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		if errors.Is(err, fs.ErrInvalid) {
			return nil, ErrInvalidPath
		}
		return nil, err
	}
	return e.compile(name, src)
}

// readSource reads the source of the template with the given name,
// decoding it from the engine encoding.
func (e *Engine) readSource(name string) ([]byte, error) {
	if e.sources == nil {
		return nil, ErrNoSources
	}
	src, err := fs.ReadFile(e.sources, name)
	if err != nil {
		return nil, err
	}
	if e.encoding != nil {
		src, _, err = transform.Bytes(e.encoding.NewDecoder(), src)
		if err != nil {
			return nil, fmt.Errorf("enjoy: cannot decode %s: %w", name, err)
		}
	}
	return src, nil
}

// compile compiles src.
func (e *Engine) compile(name string, src []byte) (*Template, error) {
	start := time.Now()
	tree, err := compiler.ParseTemplateSource(src, name, compiler.Options{Directives: e.parsers})
	if err != nil {
		if se, ok := err.(*SyntaxError); ok && e.devMode {
			se.Snippet = snippet(src, se.Pos.Line, se.Pos.Column)
		}
		return nil, err
	}
	t := &Template{
		name:       name,
		src:        src,
		compiledAt: start,
		tree:       tree,
		vars:       astutil.Vars(tree),
		engine:     e,
	}
	e.logger.Debug("template compiled", "name", name, "duration", time.Since(start))
	return t, nil
}

// options returns the rendering options.
func (e *Engine) options() runtime.Options {
	e.mu.RLock()
	shared := e.shared
	e.mu.RUnlock()
	return runtime.Options{
		Undefined:       e.undefined,
		Escape:          e.escape,
		Globals:         e.globals,
		Directives:      e.directives,
		Includer:        includer{e},
		Macros:          shared,
		MaxIncludeDepth: e.maxIncludes,
		MaxCallDepth:    e.maxCalls,
	}
}

// includer implements runtime.Includer for an engine.
type includer struct {
	engine *Engine
}

// Include returns the tree of the template name included by the template
// with path from.
func (in includer) Include(from, name string) (*ast.Tree, error) {
	name, err := resolvePath(from, name)
	if err != nil {
		return nil, err
	}
	t, err := in.engine.Template(name)
	if err != nil {
		return nil, err
	}
	return t.tree, nil
}
