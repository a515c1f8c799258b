// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/sketchdock/main.go
// Summary: Implements main capabilities for the workspace CLI harness.
// Usage: Executed by users to open a dockable drawing workspace over a
// directory or a single database file.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/framegrace/sketchdock/config"
	"github.com/framegrace/sketchdock/desk"
	"github.com/framegrace/sketchdock/storage"
	"github.com/framegrace/sketchdock/tui"
)

func main() {
	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)

	workspace := flag.String("workspace", "", "Workspace directory (defaults to the configured one, then ~/sketchdock)")
	dbPath := flag.String("db", "", "Use a single SQLite workspace file instead of a directory")
	configPath := flag.String("config", "", "Config file path (defaults to the user config dir)")
	logPath := flag.String("log", "", "Optional log file; stderr is unusable once the screen starts")
	flag.Parse()

	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(os.Stderr)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "sketchdock needs an interactive terminal")
		os.Exit(1)
	}

	if err := run(*workspace, *dbPath, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "sketchdock: %v\n", err)
		os.Exit(1)
	}
}

func run(workspace, dbPath, configPath string) error {
	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		configPath = p
	}
	cfgStore, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfgStore.Watch(); err != nil {
		log.Printf("Main: Config watch unavailable: %v", err)
	}
	defer cfgStore.Close()
	cfg := cfgStore.Current()

	var store storage.Adapter
	var dirStore *storage.Dir
	switch {
	case dbPath != "":
		db, err := storage.NewSQLite(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
	default:
		if workspace == "" {
			workspace = cfg.WorkspaceDir
		}
		if workspace == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			workspace = filepath.Join(home, "sketchdock")
		}
		dirStore, err = storage.NewDir(workspace)
		if err != nil {
			return err
		}
		defer dirStore.Close()
		store = dirStore
	}

	d, err := desk.New(cfg, store)
	if err != nil {
		return err
	}
	if err := d.RestoreLayout(); err != nil {
		log.Printf("Main: Layout restore failed: %v", err)
	}
	if dirStore != nil {
		if err := dirStore.Watch(d.HandleExternalChange); err != nil {
			log.Printf("Main: Workspace watch unavailable: %v", err)
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	screen.EnableMouse()
	defer screen.Fini()

	host := tui.NewHost(d, screen, cfg)
	runErr := host.Run()

	if err := d.SaveLayout(); err != nil {
		log.Printf("Main: Layout save failed: %v", err)
	}
	return runErr
}
