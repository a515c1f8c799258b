// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: storage/sqlite.go
// Summary: SQLite-backed adapter storing workspace files as rows.
// Usage: Single-file workspaces; the journal artefacts it creates are
// hidden from listings by the name filter.

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is an Adapter persisting the workspace into one database file.
type SQLite struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS entries (
	path   TEXT PRIMARY KEY,
	is_dir INTEGER NOT NULL,
	data   BLOB,
	mtime  INTEGER NOT NULL
);
`

// NewSQLite opens (creating if needed) a database-backed store.
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, Unknown(err)
	}
	// The adapter is driven from a single-threaded core; one connection
	// keeps sqlite locking simple.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, Unknown(err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) ListRoot() (*Entry, error) {
	rows, err := s.db.Query(`SELECT path, is_dir FROM entries ORDER BY path`)
	if err != nil {
		return nil, Unknown(err)
	}
	defer rows.Close()

	children := make(map[string][]Entry)
	for rows.Next() {
		var path string
		var isDir bool
		if err := rows.Scan(&path, &isDir); err != nil {
			return nil, Unknown(err)
		}
		parent, name := Split(path)
		if Hidden(name) {
			continue
		}
		children[parent] = append(children[parent], Entry{Name: name, Path: path, IsDir: isDir})
	}
	if err := rows.Err(); err != nil {
		return nil, Unknown(err)
	}

	var build func(e *Entry)
	build = func(e *Entry) {
		kids := children[e.Path]
		sort.Slice(kids, func(i, j int) bool { return kids[i].Name < kids[j].Name })
		for i := range kids {
			if kids[i].IsDir {
				build(&kids[i])
			}
		}
		e.Children = kids
	}
	root := &Entry{IsDir: true}
	build(root)
	return root, nil
}

func (s *SQLite) ReadFile(path string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM entries WHERE path = ? AND is_dir = 0`, path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound(path)
	}
	if err != nil {
		return nil, Unknown(err)
	}
	return data, nil
}

func (s *SQLite) WriteFile(path string, data []byte) error {
	res, err := s.db.Exec(`UPDATE entries SET data = ?, mtime = ? WHERE path = ? AND is_dir = 0`,
		data, time.Now().UnixMilli(), path)
	if err != nil {
		return Unknown(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFound(path)
	}
	return nil
}

func (s *SQLite) CreateFile(parentPath, name string) (string, error) {
	return s.create(parentPath, name, false)
}

func (s *SQLite) CreateFolder(parentPath, name string) (string, error) {
	return s.create(parentPath, name, true)
}

func (s *SQLite) create(parentPath, name string, isDir bool) (string, error) {
	if !ValidSegment(name) {
		return "", Unknown(fmt.Errorf("invalid name %q", name))
	}
	if parentPath != "" {
		if ok, err := s.exists(parentPath, true); err != nil {
			return "", err
		} else if !ok {
			return "", NotFound(parentPath)
		}
	}
	path := Join(parentPath, name)
	if ok, err := s.existsAny(path); err != nil {
		return "", err
	} else if ok {
		return "", AlreadyExists(path)
	}
	_, err := s.db.Exec(`INSERT INTO entries (path, is_dir, data, mtime) VALUES (?, ?, ?, ?)`,
		path, isDir, []byte{}, time.Now().UnixMilli())
	if err != nil {
		return "", Unknown(err)
	}
	return path, nil
}

func (s *SQLite) Rename(parentPath, oldName, newName string, isDir bool) error {
	if !ValidSegment(newName) {
		return Unknown(fmt.Errorf("invalid name %q", newName))
	}
	return s.relocate(Join(parentPath, oldName), Join(parentPath, newName), isDir)
}

func (s *SQLite) Move(sourcePath, targetFolderPath string, isDir bool) error {
	_, name := Split(sourcePath)
	newPath := Join(targetFolderPath, name)
	if isDir && (newPath == sourcePath || strings.HasPrefix(newPath, sourcePath+"/")) {
		return Unknown(fmt.Errorf("cannot move %q into itself", sourcePath))
	}
	if targetFolderPath != "" {
		if ok, err := s.exists(targetFolderPath, true); err != nil {
			return err
		} else if !ok {
			return NotFound(targetFolderPath)
		}
	}
	return s.relocate(sourcePath, newPath, isDir)
}

func (s *SQLite) relocate(oldPath, newPath string, isDir bool) error {
	if ok, err := s.existsAny(oldPath); err != nil {
		return err
	} else if !ok {
		return NotFound(oldPath)
	}
	if ok, err := s.existsAny(newPath); err != nil {
		return err
	} else if ok {
		return AlreadyExists(newPath)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Unknown(err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE entries SET path = ? WHERE path = ?`, newPath, oldPath); err != nil {
		return Unknown(err)
	}
	if isDir {
		prefix := oldPath + "/"
		if _, err := tx.Exec(
			`UPDATE entries SET path = ? || substr(path, ?) WHERE path LIKE ? ESCAPE '\'`,
			newPath, len([]rune(oldPath))+1, likePrefix(prefix)); err != nil {
			return Unknown(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Unknown(err)
	}
	return nil
}

func (s *SQLite) Delete(parentPath, name string, isDir bool) error {
	path := Join(parentPath, name)
	if ok, err := s.existsAny(path); err != nil {
		return err
	} else if !ok {
		return NotFound(path)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return Unknown(err)
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM entries WHERE path = ?`, path); err != nil {
		return Unknown(err)
	}
	if isDir {
		if _, err := tx.Exec(`DELETE FROM entries WHERE path LIKE ? ESCAPE '\'`,
			likePrefix(path+"/")); err != nil {
			return Unknown(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Unknown(err)
	}
	return nil
}

func (s *SQLite) exists(path string, isDir bool) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM entries WHERE path = ? AND is_dir = ?`, path, isDir).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, Unknown(err)
	}
	return true, nil
}

func (s *SQLite) existsAny(path string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM entries WHERE path = ?`, path).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, Unknown(err)
	}
	return true, nil
}

// likePrefix escapes a literal prefix for a LIKE pattern.
func likePrefix(prefix string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	return escaped + "%"
}

var _ Adapter = (*SQLite)(nil)
