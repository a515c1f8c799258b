// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: System configuration store for sketchdock.
// Usage: Loaded once at startup; Watch re-reads the file when it
// changes on disk.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const configName = "sketchdock.json"

// Config holds the engine settings a host may override.
type Config struct {
	// HistoryMaxSize bounds each panel's undo stack.
	HistoryMaxSize int `json:"historyMaxSize"`
	// AutosaveDebounceMs coalesces save requests per panel.
	AutosaveDebounceMs int `json:"autosaveDebounceMs"`
	// Keybindings maps command names to chord strings such as
	// "ctrl+shift+z"; entries override the built-in defaults.
	Keybindings map[string]string `json:"keybindings,omitempty"`
	// WorkspaceDir overrides where the directory backend roots itself.
	WorkspaceDir string `json:"workspaceDir,omitempty"`
}

// Defaults returns the stock configuration.
func Defaults() Config {
	return Config{
		HistoryMaxSize:     50,
		AutosaveDebounceMs: 750,
	}
}

// Store owns one loaded configuration and its change callbacks.
type Store struct {
	mu        sync.RWMutex
	path      string
	cfg       Config
	callbacks []func(Config)
	watcher   *fsnotify.Watcher
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "sketchdock", configName), nil
}

// Load reads the config at path, merging the file over the defaults.
// A missing file is not an error; it yields the defaults.
func Load(path string) (*Store, error) {
	s := &Store{path: path, cfg: Defaults()}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	cfg := Defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", s.path, err)
	}
	if cfg.HistoryMaxSize <= 0 {
		cfg.HistoryMaxSize = Defaults().HistoryMaxSize
	}
	if cfg.AutosaveDebounceMs < 0 {
		cfg.AutosaveDebounceMs = Defaults().AutosaveDebounceMs
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// Current returns the loaded configuration by value.
func (s *Store) Current() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Save writes the configuration back to disk, creating the directory.
func (s *Store) Save(cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// OnChange registers a callback invoked after every successful reload.
func (s *Store) OnChange(cb func(Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, cb)
}

// Watch re-reads the file whenever it changes on disk and notifies the
// registered callbacks.
func (s *Store) Watch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start config watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}
	s.watcher = w
	go s.watchLoop(w)
	return nil
}

func (s *Store) watchLoop(w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != configName {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := s.reload(); err != nil {
				log.Printf("Config: Failed to reload: %v", err)
				continue
			}
			s.mu.RLock()
			cbs := make([]func(Config), len(s.callbacks))
			copy(cbs, s.callbacks)
			cfg := s.cfg
			s.mu.RUnlock()
			for _, cb := range cbs {
				cb(cfg)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("Config: Watch error: %v", err)
		}
	}
}

// Close stops the watcher, if any.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	return err
}

// ParseChord turns a "ctrl+shift+z" style string into its parts. It
// feeds keybinding overrides into the hotkey dispatcher.
func ParseChord(chord string) (key string, ctrl, shift, alt, meta bool, err error) {
	parts := strings.Split(chord, "+")
	if parts[len(parts)-1] == "" {
		return "", false, false, false, false, fmt.Errorf("empty chord %q", chord)
	}
	key = parts[len(parts)-1]
	for _, mod := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(mod)) {
		case "ctrl", "control":
			ctrl = true
		case "shift":
			shift = true
		case "alt", "option":
			alt = true
		case "meta", "cmd", "super":
			meta = true
		default:
			return "", false, false, false, false, fmt.Errorf("unknown modifier %q in %q", mod, chord)
		}
	}
	return key, ctrl, shift, alt, meta, nil
}
