// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: storage/dir.go
// Summary: Disk-backed adapter rooted at one directory, with optional
// fsnotify watching for external changes.
// Usage: The default backend for local workspaces.

package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Dir is an Adapter mapping workspace paths onto a directory tree.
type Dir struct {
	root string

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	onChange func(path string)
	done     chan struct{}
}

// NewDir opens (creating if needed) a directory-backed store.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, wrapOSError(root, err)
	}
	return &Dir{root: root}, nil
}

// Root returns the backing directory.
func (d *Dir) Root() string { return d.root }

// abs maps a workspace path to its on-disk location.
func (d *Dir) abs(path string) string {
	if path == "" {
		return d.root
	}
	return filepath.Join(d.root, filepath.FromSlash(path))
}

// rel maps an on-disk location back to a workspace path.
func (d *Dir) rel(absPath string) string {
	r, err := filepath.Rel(d.root, absPath)
	if err != nil || r == "." {
		return ""
	}
	return filepath.ToSlash(r)
}

func (d *Dir) ListRoot() (*Entry, error) {
	root := &Entry{IsDir: true}
	if err := d.fill(root); err != nil {
		return nil, err
	}
	return root, nil
}

func (d *Dir) fill(e *Entry) error {
	entries, err := os.ReadDir(d.abs(e.Path))
	if err != nil {
		return wrapOSError(e.Path, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, de := range entries {
		if Hidden(de.Name()) {
			continue
		}
		child := Entry{Name: de.Name(), Path: Join(e.Path, de.Name()), IsDir: de.IsDir()}
		if child.IsDir {
			if err := d.fill(&child); err != nil {
				return err
			}
		}
		e.Children = append(e.Children, child)
	}
	return nil
}

func (d *Dir) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(d.abs(path))
	if err != nil {
		return nil, wrapOSError(path, err)
	}
	return data, nil
}

func (d *Dir) WriteFile(path string, data []byte) error {
	abs := d.abs(path)
	if _, err := os.Stat(abs); err != nil {
		return wrapOSError(path, err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return wrapOSError(path, err)
	}
	return nil
}

func (d *Dir) CreateFile(parentPath, name string) (string, error) {
	if !ValidSegment(name) {
		return "", Unknown(fmt.Errorf("invalid name %q", name))
	}
	path := Join(parentPath, name)
	f, err := os.OpenFile(d.abs(path), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", wrapOSError(path, err)
	}
	f.Close()
	return path, nil
}

func (d *Dir) CreateFolder(parentPath, name string) (string, error) {
	if !ValidSegment(name) {
		return "", Unknown(fmt.Errorf("invalid name %q", name))
	}
	path := Join(parentPath, name)
	if err := os.Mkdir(d.abs(path), 0o755); err != nil {
		return "", wrapOSError(path, err)
	}
	return path, nil
}

func (d *Dir) Rename(parentPath, oldName, newName string, isDir bool) error {
	if !ValidSegment(newName) {
		return Unknown(fmt.Errorf("invalid name %q", newName))
	}
	oldPath := Join(parentPath, oldName)
	newPath := Join(parentPath, newName)
	if _, err := os.Stat(d.abs(newPath)); err == nil {
		return AlreadyExists(newPath)
	}
	if err := os.Rename(d.abs(oldPath), d.abs(newPath)); err != nil {
		return wrapOSError(oldPath, err)
	}
	return nil
}

func (d *Dir) Move(sourcePath, targetFolderPath string, isDir bool) error {
	_, name := Split(sourcePath)
	newPath := Join(targetFolderPath, name)
	if isDir && (newPath == sourcePath || strings.HasPrefix(newPath, sourcePath+"/")) {
		return Unknown(fmt.Errorf("cannot move %q into itself", sourcePath))
	}
	if _, err := os.Stat(d.abs(newPath)); err == nil {
		return AlreadyExists(newPath)
	}
	if err := os.Rename(d.abs(sourcePath), d.abs(newPath)); err != nil {
		return wrapOSError(sourcePath, err)
	}
	return nil
}

func (d *Dir) Delete(parentPath, name string, isDir bool) error {
	path := Join(parentPath, name)
	abs := d.abs(path)
	if _, err := os.Stat(abs); err != nil {
		return wrapOSError(path, err)
	}
	var err error
	if isDir {
		err = os.RemoveAll(abs)
	} else {
		err = os.Remove(abs)
	}
	if err != nil {
		return wrapOSError(path, err)
	}
	return nil
}

// Watch starts reporting external changes under the root to onChange,
// passing workspace paths. Hidden names are filtered. Watching an
// already-watched store replaces the callback.
func (d *Dir) Watch(onChange func(path string)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onChange = onChange
	if d.watcher != nil {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return Unknown(err)
	}
	if err := w.Add(d.root); err != nil {
		w.Close()
		return Unknown(err)
	}
	// Watch existing subdirectories; new ones are added as create
	// events arrive.
	filepath.WalkDir(d.root, func(p string, de fs.DirEntry, err error) error {
		if err == nil && de.IsDir() && p != d.root && !Hidden(de.Name()) {
			w.Add(p)
		}
		return nil
	})
	d.watcher = w
	d.done = make(chan struct{})
	go d.watchLoop(w, d.done)
	return nil
}

func (d *Dir) watchLoop(w *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			name := filepath.Base(ev.Name)
			if Hidden(name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					w.Add(ev.Name)
				}
			}
			d.mu.Lock()
			cb := d.onChange
			d.mu.Unlock()
			if cb != nil {
				cb(d.rel(ev.Name))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("Storage: Watch error: %v", err)
		}
	}
}

// Close stops the watcher, if any.
func (d *Dir) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.watcher == nil {
		return nil
	}
	close(d.done)
	err := d.watcher.Close()
	d.watcher = nil
	return err
}

// wrapOSError maps an os error into the adapter taxonomy.
func wrapOSError(path string, err error) *Error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NotFound(path)
	case errors.Is(err, fs.ErrExist):
		return AlreadyExists(path)
	case errors.Is(err, fs.ErrPermission):
		return PermissionDenied(path, err)
	}
	return Unknown(err)
}

var _ Adapter = (*Dir)(nil)
