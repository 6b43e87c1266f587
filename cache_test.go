// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enjoy

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCache(t *testing.T) {

	key := cacheKey{name: "index.html"}
	tmpl := &Template{name: "index.html"}

	c := cache{}

	// tests one goroutine

	tr, ok := c.get(key)
	if tr != nil || ok {
		t.Errorf("get not existent template, unexpected (%v, %t), expecting (nil, false)\n", tr, ok)
	}
	c.done(key)

	tr, ok = c.get(key)
	if tr != nil || ok {
		t.Errorf("get not existent template, unexpected (%v, %t), expecting (nil, false)\n", tr, ok)
	}
	c.add(key, tmpl)
	c.done(key)

	tr, ok = c.get(key)
	if tr != tmpl || !ok {
		t.Errorf("get template, unexpected (%v, %t), expecting (%v, true)\n", tr, ok, tmpl)
	}

	inline := cacheKey{name: "index.html", inline: true}
	tr, ok = c.get(inline)
	if tr != nil || ok {
		t.Errorf("get inline template, unexpected (%v, %t), expecting (nil, false)\n", tr, ok)
	}
	c.done(inline)

	if n := c.len(); n != 1 {
		t.Errorf("unexpected length %d, expecting 1", n)
	}
	if !c.evict(key) {
		t.Error("evict, unexpected false, expecting true")
	}
	if c.evict(key) {
		t.Error("evict again, unexpected true, expecting false")
	}
	c.add(key, tmpl)
	c.add(cacheKey{name: "other.html"}, tmpl)
	if n := c.purge(); n != 2 {
		t.Errorf("purge, unexpected %d, expecting 2", n)
	}
	if n := c.len(); n != 0 {
		t.Errorf("unexpected length %d after purge, expecting 0", n)
	}

	// tests more goroutines

	c = cache{}
	var compilations int32
	var wg sync.WaitGroup
	results := make([]*Template, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr, ok := c.get(key)
			if !ok {
				atomic.AddInt32(&compilations, 1)
				time.Sleep(10 * time.Millisecond)
				tr = &Template{name: "index.html"}
				c.add(key, tr)
				c.done(key)
			}
			results[i] = tr
		}(i)
	}
	wg.Wait()
	if compilations != 1 {
		t.Fatalf("unexpected %d compilations, expecting 1", compilations)
	}
	for i, tr := range results {
		if tr != results[0] {
			t.Errorf("goroutine %d, unexpected template %p, expecting %p", i, tr, results[0])
		}
	}
}
