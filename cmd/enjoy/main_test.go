// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"enjoy": func() int { return run(os.Args[1:], os.Stdout, os.Stderr) },
	}))
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{Dir: filepath.Join("testdata", "script")})
}

func TestUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if status := run([]string{"build"}, &stdout, &stderr); status != 2 {
		t.Fatalf("unexpected status %d, expecting 2", status)
	}
	expected := "enjoy build: unknown command\nRun 'enjoy help' for usage.\n"
	if stderr.String() != expected {
		t.Errorf("unexpected %q, expecting %q", stderr.String(), expected)
	}
}

func TestHelp(t *testing.T) {
	for name, cmd := range commands {
		var stdout, stderr bytes.Buffer
		if status := run([]string{"help", name}, &stdout, &stderr); status != 0 {
			t.Fatalf("help %s: unexpected status %d", name, status)
		}
		if !strings.HasPrefix(stdout.String(), "usage: "+cmd.usage+"\n") {
			t.Errorf("help %s: unexpected output %q", name, stdout.String())
		}
	}
}
