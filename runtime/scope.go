// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

// Indexes of the frames that are always present in a scope chain.
const (
	globalsFrame  = 0 // global values of the engine.
	contextFrame  = 1 // values passed to the rendering.
	templateFrame = 2 // values set by the rendered template.
)

// frame is a frame of a scope chain.
type frame struct {
	vars   map[string]Value
	parent int // index of the enclosing frame, -1 for the globals frame.
}

// scopes is a scope chain. The frames are kept in a stack and each frame
// refers to its enclosing frame by index. The enclosing frame is not always
// the previous frame in the stack, a macro body frame, for example, is
// enclosed by the context frame.
type scopes struct {
	frames []frame
}

// newScopes returns a new scope chain with the globals, context and
// template frames.
func newScopes(globals, context map[string]Value) *scopes {
	s := &scopes{frames: make([]frame, 3, 8)}
	s.frames[globalsFrame] = frame{vars: globals, parent: -1}
	s.frames[contextFrame] = frame{vars: context, parent: globalsFrame}
	s.frames[templateFrame] = frame{parent: contextFrame}
	return s
}

// push pushes a new frame enclosed by the frame with index parent.
func (s *scopes) push(parent int) {
	s.frames = append(s.frames, frame{parent: parent})
}

// pushChild pushes a new frame enclosed by the current frame.
func (s *scopes) pushChild() {
	s.push(len(s.frames) - 1)
}

// pop pops the current frame.
func (s *scopes) pop() {
	last := len(s.frames) - 1
	s.frames[last] = frame{}
	s.frames = s.frames[:last]
}

// lookup looks up a variable starting from the current frame and following
// the enclosing frames.
func (s *scopes) lookup(name string) (Value, bool) {
	for i := len(s.frames) - 1; i >= 0; i = s.frames[i].parent {
		if v, ok := s.frames[i].vars[name]; ok {
			return v, true
		}
	}
	return Null, false
}

// define binds a variable in the current frame.
func (s *scopes) define(name string, v Value) {
	f := &s.frames[len(s.frames)-1]
	if f.vars == nil {
		f.vars = map[string]Value{}
	}
	f.vars[name] = v
}

// set assigns a variable. The variable is assigned in the innermost frame,
// following the enclosing frames, that already binds it; if no frame binds
// it, it is bound in the current frame. The globals and context frames are
// never modified.
func (s *scopes) set(name string, v Value) {
	for i := len(s.frames) - 1; i > contextFrame; i = s.frames[i].parent {
		if _, ok := s.frames[i].vars[name]; ok {
			s.frames[i].vars[name] = v
			return
		}
	}
	s.define(name, v)
}
