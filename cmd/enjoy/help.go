// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

const helpEnjoy = `Enjoy is a tool to render and check templates.

Usage:

	enjoy <command> [arguments]

The commands are:

	render      render a template
	check       check the syntax of templates
	dump        print the tree of a template
	version     print the version
	help        print the help of a command

Use "enjoy help <command>" for more information about a command.
`

const (
	usageRender  = "enjoy render [-data file] [-o file] [-config file] [-root dir] [-strict] [-dev] [-v] file"
	usageCheck   = "enjoy check [-config file] [-root dir] [-v] file..."
	usageDump    = "enjoy dump [-vars] [-config file] [-root dir] file"
	usageVersion = "enjoy version"
	usageHelp    = "enjoy help [command]"
)

const helpRender = `
Render renders the template file and writes the result to the standard output.

The builtin globals and directives are available to the template. Included
files are resolved in the root directory, that is the directory of the file
if the -root flag is not given and the configuration has no root.

The -data flag reads the variables of the template from a YAML or JSON file.

The -o flag writes the result to the named file.

The -config flag reads the configuration from a YAML file.

The -strict flag fails on undefined variables and on accesses to null.

The -dev flag enables the development mode, errors include a snippet of the
source.

The -v flag logs the activity of the engine on the standard error.
`

const helpCheck = `
Check parses the template files and reports the syntax errors. The exit
status is 1 if a file has an error.

The flags are the same as for the render command.
`

const helpDump = `
Dump parses the template file and prints its tree.

The -vars flag prints only the names of the variables the template reads,
one per line.

The other flags are the same as for the render command.
`

const helpVersion = `
Version prints the version of the tool, the platform and the version of Go.
`

const helpHelp = `
Help prints the help of a command.
`
