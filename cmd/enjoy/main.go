// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Enjoy is a tool to render and check templates.
//
// Usage:
//
//	enjoy <command> [arguments]
//
// Run 'enjoy help' for the list of commands.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"github.com/open2b/enjoy"
	"github.com/open2b/enjoy/ast/astutil"
	"github.com/open2b/enjoy/builtin"

	"gopkg.in/yaml.v3"
)

// version is the version of the tool.
const version = "v0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// command is a command of the tool.
type command struct {
	usage string
	help  string
	run   func(cmd *command, args []string, stdout, stderr io.Writer) int
}

// commands maps a command name to the command. Commands are called by
// command-line using:
//
//	enjoy command [arguments]
var commands map[string]*command

func init() {
	commands = map[string]*command{
		"render":  {usage: usageRender, help: helpRender, run: runRender},
		"check":   {usage: usageCheck, help: helpCheck, run: runCheck},
		"dump":    {usage: usageDump, help: helpDump, run: runDump},
		"version": {usage: usageVersion, help: helpVersion, run: runVersion},
		"help":    {usage: usageHelp, help: helpHelp, run: runHelp},
	}
}

// run runs the tool with the given arguments and returns the exit status.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, helpEnjoy)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "enjoy %s: unknown command\nRun 'enjoy help' for usage.\n", args[0])
		return 2
	}
	return cmd.run(cmd, args[1:], stdout, stderr)
}

// flagSet returns a flag set for the command name.
func flagSet(name string, cmd *command, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s\nRun 'enjoy help %s' for details.\n", cmd.usage, name)
	}
	return fs
}

// exitError prints the error on stderr, prefixed with "enjoy: ", and returns
// the exit status 1.
func exitError(stderr io.Writer, format string, a ...interface{}) int {
	msg := strings.TrimPrefix(fmt.Sprintf(format, a...), "enjoy: ")
	fmt.Fprintf(stderr, "enjoy: %s\n", msg)
	return 1
}

// engineFlags are the flags of the commands that create an engine.
type engineFlags struct {
	config  string
	root    string
	strict  bool
	dev     bool
	verbose bool
}

func (ef *engineFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&ef.config, "config", "", "read the configuration from a YAML `file`")
	fs.StringVar(&ef.root, "root", "", "root `directory` of the templates")
	fs.BoolVar(&ef.strict, "strict", false, "fail on undefined variables and null accesses")
	fs.BoolVar(&ef.dev, "dev", false, "development mode, include source snippets in errors")
	fs.BoolVar(&ef.verbose, "v", false, "log the engine activity on stderr")
}

// newEngine returns an engine for the template file, with the builtin
// globals and directives, and the name of the template in its sources.
func (ef *engineFlags) newEngine(file string, stderr io.Writer) (*enjoy.Engine, string, error) {
	var config enjoy.Config
	if ef.config != "" {
		f, err := os.Open(ef.config)
		if err != nil {
			return nil, "", err
		}
		config, err = enjoy.LoadConfig(f)
		f.Close()
		if err != nil {
			return nil, "", err
		}
	}
	if ef.strict {
		config.Undefined = enjoy.Strict
	}
	if ef.dev {
		config.DevMode = true
	}
	if ef.verbose {
		config.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	root := ef.root
	if root == "" {
		if dir, ok := config.Sources.(enjoy.DirFS); ok {
			root = string(dir)
		} else {
			root = filepath.Dir(file)
		}
	}
	name, err := filepath.Rel(root, file)
	if err != nil {
		return nil, "", err
	}
	name = filepath.ToSlash(name)
	config.Sources = enjoy.DirFS(root)
	config.Watch = false
	globals := builtin.Globals()
	for n, v := range config.Globals {
		globals[n] = v
	}
	config.Globals = globals
	config.Directives = builtin.Directives()
	engine, err := enjoy.New(config)
	if err != nil {
		return nil, "", err
	}
	return engine, name, nil
}

// runRender executes the command:
//
//	enjoy render [-data file] [-o file] [flags] file
func runRender(cmd *command, args []string, stdout, stderr io.Writer) int {
	fs := flagSet("render", cmd, stderr)
	var ef engineFlags
	ef.register(fs)
	data := fs.String("data", "", "read the variables from a YAML or JSON `file`")
	output := fs.String("o", "", "write the output to `file` instead of stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	file := fs.Arg(0)
	var vars map[string]interface{}
	if *data != "" {
		src, err := os.ReadFile(*data)
		if err != nil {
			return exitError(stderr, "%s", err)
		}
		if err := yaml.Unmarshal(src, &vars); err != nil {
			return exitError(stderr, "cannot read data %s: %s", *data, err)
		}
	}
	engine, name, err := ef.newEngine(file, stderr)
	if err != nil {
		return exitError(stderr, "%s", err)
	}
	defer engine.Close()
	out := stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return exitError(stderr, "%s", err)
		}
		defer f.Close()
		out = f
	}
	err = engine.Render(out, name, vars)
	if err != nil {
		if errors.Is(err, enjoy.ErrNotExist) {
			return exitError(stderr, "template %s does not exist", file)
		}
		return exitError(stderr, "%s", err)
	}
	return 0
}

// runCheck executes the command:
//
//	enjoy check [flags] file...
func runCheck(cmd *command, args []string, stdout, stderr io.Writer) int {
	fs := flagSet("check", cmd, stderr)
	var ef engineFlags
	ef.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	status := 0
	for _, file := range fs.Args() {
		engine, name, err := ef.newEngine(file, stderr)
		if err == nil {
			_, err = engine.Template(name)
			engine.Close()
		}
		if err != nil {
			if errors.Is(err, enjoy.ErrNotExist) {
				err = fmt.Errorf("template %s does not exist", file)
			}
			fmt.Fprintln(stderr, err)
			status = 1
		}
	}
	return status
}

// runDump executes the command:
//
//	enjoy dump [flags] file
func runDump(cmd *command, args []string, stdout, stderr io.Writer) int {
	fs := flagSet("dump", cmd, stderr)
	var ef engineFlags
	ef.register(fs)
	vars := fs.Bool("vars", false, "print only the variables used by the template")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	engine, name, err := ef.newEngine(fs.Arg(0), stderr)
	if err != nil {
		return exitError(stderr, "%s", err)
	}
	defer engine.Close()
	t, err := engine.Template(name)
	if err != nil {
		return exitError(stderr, "%s", err)
	}
	if *vars {
		for _, v := range t.Vars() {
			fmt.Fprintln(stdout, v)
		}
		return 0
	}
	if err := astutil.Dump(stdout, t.Tree()); err != nil {
		return exitError(stderr, "%s", err)
	}
	return 0
}

// runVersion executes the command:
//
//	enjoy version
func runVersion(cmd *command, args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(stderr, "usage: %s\n", cmd.usage)
		return 2
	}
	fmt.Fprintf(stdout, "enjoy %s %s/%s %s\n", version, goruntime.GOOS, goruntime.GOARCH, goruntime.Version())
	return 0
}

// runHelp executes the command:
//
//	enjoy help [command]
func runHelp(cmd *command, args []string, stdout, stderr io.Writer) int {
	switch len(args) {
	case 0:
		fmt.Fprint(stdout, helpEnjoy)
		return 0
	case 1:
		c, ok := commands[args[0]]
		if !ok {
			fmt.Fprintf(stderr, "enjoy help %s: unknown help topic. Run 'enjoy help'.\n", args[0])
			return 2
		}
		fmt.Fprintf(stdout, "usage: %s\n%s", c.usage, c.help)
		return 0
	}
	fmt.Fprintf(stderr, "usage: %s\n", cmd.usage)
	return 2
}
