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

	"github.com/open2b/enjoy/runtime"

	"gopkg.in/yaml.v3"
)

// Escape modes of the "#(...)" directive.
const (
	EscapeHTML = runtime.EscapeHTML
	EscapeNone = runtime.EscapeNone
)

// Policies for undefined variables and null accesses.
const (
	Lenient = runtime.Lenient
	Strict  = runtime.Strict
)

// Config is the configuration of an engine.
//
// A Config is read by New, changing it after the engine has been created
// has no effect. Values in Globals and Directives must not be changed while
// the engine is in use.
type Config struct {

	// DevMode enables the development mode: templates are not cached, so
	// changes to the sources are visible at the next rendering, and error
	// messages include a snippet of the source.
	DevMode bool

	// Encoding is the encoding of the sources and of the rendered output, as
	// "utf-8" or "iso-8859-1". The names are the ones defined by the WHATWG
	// Encoding Standard. Empty means "utf-8".
	Encoding string

	// Escape is the escaping of the values shown with "#(...)".
	Escape runtime.EscapeMode

	// Undefined is the policy for undefined variables and null accesses.
	Undefined runtime.UndefinedPolicy

	// Globals are the values, converted with runtime.ValueOf, visible in
	// every template. They are shadowed by the rendering variables.
	Globals map[string]interface{}

	// Directives are the custom directives. The names must be valid
	// identifiers and cannot be names of built-in directives.
	Directives map[string]runtime.Directive

	// Sources are the template sources, read by the Template method and by
	// the "#include" directive. Can be nil.
	Sources fs.FS

	// Watch, if Sources is a DirFS, watches the source files and evicts
	// from the cache the templates whose files are changed.
	Watch bool

	// MaxIncludeDepth and MaxCallDepth limit the nesting of includes and
	// macro calls. Zero means the runtime default.
	MaxIncludeDepth int
	MaxCallDepth    int

	// Logger is the logger of the engine. If it is nil, nothing is logged.
	Logger *slog.Logger
}

// fileConfig is the YAML representation of a Config.
type fileConfig struct {
	DevMode         bool                   `yaml:"devMode"`
	Encoding        string                 `yaml:"encoding"`
	Escape          string                 `yaml:"escape"`
	Undefined       string                 `yaml:"undefined"`
	Root            string                 `yaml:"root"`
	Watch           bool                   `yaml:"watch"`
	MaxIncludeDepth int                    `yaml:"maxIncludeDepth"`
	MaxCallDepth    int                    `yaml:"maxCallDepth"`
	Globals         map[string]interface{} `yaml:"globals"`
}

// LoadConfig reads a configuration in YAML format from r. For example
//
//	devMode: true
//	encoding: utf-8
//	escape: html       # or "none"
//	undefined: strict  # or "lenient"
//	root: templates
//	watch: true
//	globals:
//	  site: Example
//
// root is the directory of the sources, it becomes a DirFS. Unknown keys
// are an error.
func LoadConfig(r io.Reader) (Config, error) {
	var fc fileConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&fc)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("enjoy: cannot load configuration: %w", err)
	}
	config := Config{
		DevMode:         fc.DevMode,
		Encoding:        fc.Encoding,
		Globals:         fc.Globals,
		Watch:           fc.Watch,
		MaxIncludeDepth: fc.MaxIncludeDepth,
		MaxCallDepth:    fc.MaxCallDepth,
	}
	switch fc.Escape {
	case "", "html":
		config.Escape = EscapeHTML
	case "none":
		config.Escape = EscapeNone
	default:
		return Config{}, fmt.Errorf("enjoy: invalid escape %q, expecting \"html\" or \"none\"", fc.Escape)
	}
	switch fc.Undefined {
	case "", "lenient":
		config.Undefined = Lenient
	case "strict":
		config.Undefined = Strict
	default:
		return Config{}, fmt.Errorf("enjoy: invalid undefined policy %q, expecting \"lenient\" or \"strict\"", fc.Undefined)
	}
	if fc.Root != "" {
		config.Sources = DirFS(fc.Root)
	}
	return config, nil
}
