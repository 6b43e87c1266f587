// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enjoy

import (
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DirFS implements a file system with the files in an OS directory. The
// Watch option of Config requires a DirFS.
type DirFS string

// Open implements the fs.FS interface.
func (dir DirFS) Open(name string) (fs.File, error) {
	return os.DirFS(string(dir)).Open(name)
}

// ReadFile implements the fs.ReadFileFS interface.
func (dir DirFS) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(os.DirFS(string(dir)), name)
}

// MapFS implements a file system that read the files from a map. The keys
// are the file names.
type MapFS map[string]string

// Open implements the fs.FS interface.
func (fsys MapFS) Open(name string) (fs.File, error) {
	if fs.ValidPath(name) {
		if name == "." {
			return &mapDir{mapFile: mapFile{name: name, mode: fs.ModeDir}, fsys: fsys}, nil
		}
		if data, ok := fsys[name]; ok {
			return &mapFile{name: name, data: data}, nil
		}
		prefix := name + "/"
		for n := range fsys {
			if strings.HasPrefix(n, prefix) {
				return &mapDir{mapFile: mapFile{name: name, mode: fs.ModeDir}, fsys: fsys}, nil
			}
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// ReadFile implements the fs.ReadFileFS interface.
func (fsys MapFS) ReadFile(name string) ([]byte, error) {
	if fs.ValidPath(name) {
		if data, ok := fsys[name]; ok {
			return []byte(data), nil
		}
	}
	return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
}

type mapFile struct {
	name   string
	data   string
	mode   fs.FileMode
	offset int
}

func (f *mapFile) Stat() (fs.FileInfo, error) {
	return (*mapFileInfo)(f), nil
}

func (f *mapFile) Read(p []byte) (int, error) {
	if f.offset < 0 {
		return 0, &fs.PathError{Op: "read", Path: f.name, Err: fs.ErrClosed}
	}
	if f.mode.IsDir() {
		return 0, &fs.PathError{Op: "read", Path: f.name, Err: fs.ErrInvalid}
	}
	if f.offset == len(f.data) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.offset:])
	f.offset += n
	return n, nil
}

func (f *mapFile) Close() error {
	f.offset = -1
	return nil
}

type mapFileInfo mapFile

func (i *mapFileInfo) Name() string               { return path.Base(i.name) }
func (i *mapFileInfo) Size() int64                { return int64(len(i.data)) }
func (i *mapFileInfo) Mode() fs.FileMode          { return i.mode }
func (i *mapFileInfo) ModTime() time.Time         { return time.Time{} }
func (i *mapFileInfo) IsDir() bool                { return i.mode.IsDir() }
func (i *mapFileInfo) Sys() interface{}           { return nil }
func (i *mapFileInfo) Info() (fs.FileInfo, error) { return i, nil }
func (i *mapFileInfo) Type() fs.FileMode          { return i.mode.Type() }

// mapDir is a directory of a MapFS.
type mapDir struct {
	mapFile
	fsys MapFS
	n    int
}

func (d *mapDir) ReadDir(n int) ([]fs.DirEntry, error) {
	var dir string
	if d.name != "." {
		dir = d.name + "/"
	}
	var names []string
	hasDir := map[string]bool{}
	for name := range d.fsys {
		if !strings.HasPrefix(name, dir) {
			continue
		}
		if i := strings.IndexByte(name[len(dir):], '/'); i > 0 {
			name = name[:len(dir)+i]
			if hasDir[name] {
				continue
			}
			hasDir[name] = true
		}
		names = append(names, name)
	}
	sort.Strings(names)
	names = names[d.n:]
	if n > 0 {
		if len(names) == 0 {
			return nil, io.EOF
		}
		if len(names) > n {
			names = names[:n]
		}
	}
	d.n += len(names)
	entries := make([]fs.DirEntry, len(names))
	for i, name := range names {
		if hasDir[name] {
			entries[i] = &mapFileInfo{name: name, mode: fs.ModeDir}
		} else {
			entries[i] = &mapFileInfo{name: name, data: d.fsys[name]}
		}
	}
	return entries, nil
}

// WatchedDir implements a file system with the files in an OS directory,
// watching the opened files for changes.
//
// An engine whose sources are a WatchedDir evicts from its cache the
// templates whose files are changed.
type WatchedDir struct {
	root    string
	fsys    fs.FS
	watcher *fsnotify.Watcher
	changed chan string
	errors  chan error

	sync.Mutex
	watched map[string]bool
}

// NewWatchedDir returns a new WatchedDir for the directory root. The
// returned WatchedDir must be closed when no longer used.
func NewWatchedDir(root string) (*WatchedDir, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := &WatchedDir{
		root:    root,
		fsys:    os.DirFS(root),
		watcher: watcher,
		changed: make(chan string),
		errors:  make(chan error),
		watched: map[string]bool{},
	}
	go dir.run()
	return dir, nil
}

// run forwards the events of the watcher until it is closed.
func (d *WatchedDir) run() {
	defer close(d.changed)
	defer close(d.errors)
	events, errs := d.watcher.Events, d.watcher.Errors
	for events != nil || errs != nil {
		select {
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Rel(d.root, event.Name)
			if err != nil {
				continue
			}
			name = filepath.ToSlash(name)
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				d.Lock()
				delete(d.watched, name)
				d.Unlock()
			}
			d.changed <- name
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			d.errors <- err
		}
	}
}

// Changed returns a channel that receives the names of the changed files.
// It is closed when d is closed.
func (d *WatchedDir) Changed() <-chan string {
	return d.changed
}

// Errors returns a channel that receives the errors of the watcher. It is
// closed when d is closed.
func (d *WatchedDir) Errors() <-chan error {
	return d.errors
}

// Close stops watching the files.
func (d *WatchedDir) Close() error {
	return d.watcher.Close()
}

// Open implements the fs.FS interface.
func (d *WatchedDir) Open(name string) (fs.File, error) {
	err := d.watch(name)
	if err != nil {
		return nil, err
	}
	return d.fsys.Open(name)
}

// ReadFile implements the fs.ReadFileFS interface.
func (d *WatchedDir) ReadFile(name string) ([]byte, error) {
	err := d.watch(name)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(d.fsys, name)
}

// watch starts watching the file name, if it is not already watched.
func (d *WatchedDir) watch(name string) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	d.Lock()
	defer d.Unlock()
	if !d.watched[name] {
		err := d.watcher.Add(filepath.Join(d.root, filepath.FromSlash(name)))
		if err != nil {
			if os.IsNotExist(err) {
				return &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
			}
			return err
		}
		d.watched[name] = true
	}
	return nil
}
