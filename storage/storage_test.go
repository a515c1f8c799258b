// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: storage/storage_test.go
// Summary: Exercises every adapter backend against one contract suite.
// Usage: Executed during `go test` to guard against regressions.

package storage

import (
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]Adapter {
	t.Helper()
	dir, err := NewDir(filepath.Join(t.TempDir(), "ws"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { dir.Close() })

	db, err := NewSQLite(filepath.Join(t.TempDir(), "ws.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	return map[string]Adapter{
		"memory": NewMemory(),
		"dir":    dir,
		"sqlite": db,
	}
}

func TestAdapterContract(t *testing.T) {
	for name, a := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := a.CreateFolder("", "drawings"); err != nil {
				t.Fatal(err)
			}
			path, err := a.CreateFile("drawings", "cat.draw")
			if err != nil {
				t.Fatal(err)
			}
			if path != "drawings/cat.draw" {
				t.Fatalf("handle path %q", path)
			}

			// Duplicate creation is alreadyExists.
			if _, err := a.CreateFile("drawings", "cat.draw"); KindOf(err) != KindAlreadyExists {
				t.Fatalf("duplicate create: %v", err)
			}
			// Creating under a missing parent is notFound.
			if _, err := a.CreateFile("nowhere", "x.draw"); KindOf(err) != KindNotFound {
				t.Fatalf("orphan create: %v", err)
			}

			payload := []byte(`{"strokes":[]}`)
			if err := a.WriteFile(path, payload); err != nil {
				t.Fatal(err)
			}
			got, err := a.ReadFile(path)
			if err != nil || string(got) != string(payload) {
				t.Fatalf("read back: %q %v", got, err)
			}
			if _, err := a.ReadFile("drawings/dog.draw"); KindOf(err) != KindNotFound {
				t.Fatalf("missing read: %v", err)
			}
			if err := a.WriteFile("drawings/dog.draw", payload); KindOf(err) != KindNotFound {
				t.Fatalf("missing write: %v", err)
			}

			// Rename, clash included.
			if _, err := a.CreateFile("drawings", "dog.draw"); err != nil {
				t.Fatal(err)
			}
			if err := a.Rename("drawings", "dog.draw", "cat.draw", false); KindOf(err) != KindAlreadyExists {
				t.Fatalf("rename clash: %v", err)
			}
			if err := a.Rename("drawings", "dog.draw", "pup.draw", false); err != nil {
				t.Fatal(err)
			}

			// Move into a sibling folder.
			if _, err := a.CreateFolder("", "archive"); err != nil {
				t.Fatal(err)
			}
			if err := a.Move("drawings/pup.draw", "archive", false); err != nil {
				t.Fatal(err)
			}
			if _, err := a.ReadFile("archive/pup.draw"); err != nil {
				t.Fatalf("moved file unreadable: %v", err)
			}

			// Moving a folder into itself is rejected.
			if err := a.Move("drawings", "drawings", true); err == nil {
				t.Fatalf("self move accepted")
			}

			// Folder move carries content along.
			if err := a.Move("archive", "drawings", true); err != nil {
				t.Fatal(err)
			}
			if _, err := a.ReadFile("drawings/archive/pup.draw"); err != nil {
				t.Fatalf("folder move lost content: %v", err)
			}

			// Delete a subtree.
			if err := a.Delete("drawings", "archive", true); err != nil {
				t.Fatal(err)
			}
			if _, err := a.ReadFile("drawings/archive/pup.draw"); KindOf(err) != KindNotFound {
				t.Fatalf("deleted subtree readable: %v", err)
			}
			if err := a.Delete("drawings", "archive", true); KindOf(err) != KindNotFound {
				t.Fatalf("double delete: %v", err)
			}
		})
	}
}

func TestListingFiltersHidden(t *testing.T) {
	for name, a := range backends(t) {
		t.Run(name, func(t *testing.T) {
			mustFile := func(parent, name string) {
				t.Helper()
				if _, err := a.CreateFile(parent, name); err != nil {
					t.Fatal(err)
				}
			}
			mustFile("", "visible.draw")
			mustFile("", ".hidden")
			mustFile("", "notes.db")
			mustFile("", "notes.db-journal")
			mustFile("", "notes.db-wal")
			mustFile("", "duckdb_tmp")
			if _, err := a.CreateFolder("", ".git"); err != nil {
				t.Fatal(err)
			}

			root, err := a.ListRoot()
			if err != nil {
				t.Fatal(err)
			}
			if len(root.Children) != 1 || root.Children[0].Name != "visible.draw" {
				t.Fatalf("listing: %+v", root.Children)
			}
		})
	}
}

func TestHiddenNames(t *testing.T) {
	hidden := []string{".git", ".DS_Store", "duckdb", "duckdb_cache", "a.db", "a.DB", "a.db-journal", "a.db-wal"}
	for _, name := range hidden {
		if !Hidden(name) {
			t.Errorf("%q should be hidden", name)
		}
	}
	visible := []string{"cat.draw", "db", "database.txt", "mydb.draw", "readme"}
	for _, name := range visible {
		if Hidden(name) {
			t.Errorf("%q should be visible", name)
		}
	}
}

func TestErrorTaxonomy(t *testing.T) {
	if KindOf(NotFound("x")) != KindNotFound ||
		KindOf(AlreadyExists("x")) != KindAlreadyExists ||
		KindOf(NotSupported()) != KindNotSupported {
		t.Fatalf("kind extraction broken")
	}
	err := NotFound("drawings/cat.draw")
	if err.Error() == "" || KindOf(nil) != "" {
		t.Fatalf("error formatting broken")
	}
}

func TestPathHelpers(t *testing.T) {
	if Join("", "a") != "a" || Join("a", "b") != "a/b" {
		t.Fatalf("join broken")
	}
	if p, n := Split("a/b/c"); p != "a/b" || n != "c" {
		t.Fatalf("split broken: %q %q", p, n)
	}
	if p, n := Split("root.draw"); p != "" || n != "root.draw" {
		t.Fatalf("root split broken: %q %q", p, n)
	}
	if ValidSegment("a/b") || ValidSegment("") || !ValidSegment("ok name") {
		t.Fatalf("segment validation broken")
	}
}
