// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enjoy

import (
	"sync"
)

// cache implements the compiled templates cache of an engine.
//
// A template is compiled at most once: the first caller of get for a
// missing key compiles the template, the other callers wait until it calls
// done.
type cache struct {
	templates map[cacheKey]*Template
	waits     map[cacheKey]*sync.WaitGroup
	sync.Mutex
}

// cacheKey is a key of the cache. name is the name of a template read from
// the sources or, if inline is true, the source of a template compiled
// from a string.
type cacheKey struct {
	name   string
	inline bool
}

// get returns a template and true if the template exists in cache.
//
// If the template does not exist it returns false and in this case a call
// to done must be made.
func (c *cache) get(key cacheKey) (*Template, bool) {
	c.Lock()
	t, ok := c.templates[key]
	if !ok {
		var wait *sync.WaitGroup
		if wait, ok = c.waits[key]; ok {
			c.Unlock()
			wait.Wait()
			return c.get(key)
		}
		wait = &sync.WaitGroup{}
		wait.Add(1)
		if c.waits == nil {
			c.waits = map[cacheKey]*sync.WaitGroup{key: wait}
		} else {
			c.waits[key] = wait
		}
	}
	c.Unlock()
	return t, ok
}

// add adds a template to the cache.
//
// Can be called only after a previous call to get has returned false.
func (c *cache) add(key cacheKey, t *Template) {
	c.Lock()
	if c.templates == nil {
		c.templates = map[cacheKey]*Template{key: t}
	} else {
		c.templates[key] = t
	}
	c.Unlock()
}

// done must be called only and only if a previous call to get has returned
// false.
func (c *cache) done(key cacheKey) {
	c.Lock()
	c.waits[key].Done()
	delete(c.waits, key)
	c.Unlock()
}

// evict removes the template with the given key from the cache and
// reports whether it was present. A compilation in progress is not
// affected.
func (c *cache) evict(key cacheKey) bool {
	c.Lock()
	_, ok := c.templates[key]
	delete(c.templates, key)
	c.Unlock()
	return ok
}

// purge removes all the templates from the cache and returns their number.
func (c *cache) purge() int {
	c.Lock()
	n := len(c.templates)
	c.templates = nil
	c.Unlock()
	return n
}

// len returns the number of cached templates.
func (c *cache) len() int {
	c.Lock()
	n := len(c.templates)
	c.Unlock()
	return n
}
