// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package astutil

import (
	"sort"

	"github.com/open2b/enjoy/ast"
)

// Vars returns the sorted names of the variables read by tree that are not
// bound by the tree itself. Loop variables, macro parameters and variables
// set before being read are bound. Included templates are not considered.
func Vars(tree *ast.Tree) []string {
	f := freeVars{free: map[string]bool{}}
	f.push()
	f.nodes(tree.Nodes)
	names := make([]string, 0, len(f.free))
	for name := range f.free {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// freeVars collects the free variables of a tree.
type freeVars struct {
	scopes []map[string]bool
	free   map[string]bool
}

func (f *freeVars) push(names ...string) {
	scope := map[string]bool{}
	for _, name := range names {
		scope[name] = true
	}
	f.scopes = append(f.scopes, scope)
}

func (f *freeVars) pop() {
	f.scopes = f.scopes[:len(f.scopes)-1]
}

func (f *freeVars) bind(name string) {
	f.scopes[len(f.scopes)-1][name] = true
}

func (f *freeVars) bound(name string) bool {
	for i := len(f.scopes) - 1; i >= 0; i-- {
		if f.scopes[i][name] {
			return true
		}
	}
	return false
}

func (f *freeVars) expr(expr ast.Expression) {
	Inspect(expr, func(node ast.Node) bool {
		if id, ok := node.(*ast.Identifier); ok && !f.bound(id.Name) {
			f.free[id.Name] = true
		}
		return true
	})
}

func (f *freeVars) nodes(nodes []ast.Node) {
	for _, node := range nodes {
		switch n := node.(type) {
		case *ast.Show:
			f.expr(n.Expr)
		case *ast.If:
			for _, branch := range n.Branches {
				f.expr(branch.Cond)
				f.nodes(branch.Body)
			}
			f.nodes(n.Else)
		case *ast.For:
			f.expr(n.Expr)
			names := []string{"for", n.Ident.Name}
			if n.Second != nil {
				names = append(names, n.Second.Name)
			}
			f.push(names...)
			f.nodes(n.Body)
			f.pop()
			f.nodes(n.Else)
		case *ast.Switch:
			f.expr(n.Expr)
			for _, c := range n.Cases {
				for _, expr := range c.Expressions {
					f.expr(expr)
				}
				f.nodes(c.Body)
			}
			f.nodes(n.Default)
		case *ast.Define:
			// A macro body does not see the variables of the template.
			scopes := f.scopes
			f.scopes = nil
			names := make([]string, len(n.Parameters))
			for i, p := range n.Parameters {
				names[i] = p.Name
			}
			f.push(names...)
			f.nodes(n.Body)
			f.scopes = scopes
		case *ast.ShowMacro:
			for _, arg := range n.Args {
				f.expr(arg)
			}
		case *ast.Include:
			f.expr(n.Path)
		case *ast.Set:
			for _, a := range n.Assignments {
				f.expr(a.Expr)
				f.bind(a.Ident.Name)
			}
		case *ast.Custom:
			for _, arg := range n.Args {
				f.expr(arg)
			}
			f.push()
			f.nodes(n.Body)
			f.pop()
		}
	}
}
