package migrations

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
)

type registry struct {
	mu    sync.RWMutex
	trees []fs.FS
}

var defaultRegistry registry

// Register adds a filesystem holding activity migrations. Hosts feed every
// registered tree to their migration runner, or pull the scripts directly
// with UpMigrations.
func Register(fsys fs.FS) {
	defaultRegistry.add(fsys)
}

// Filesystems returns the registered migration trees in registration order.
func Filesystems() []fs.FS {
	return defaultRegistry.list()
}

func (r *registry) add(fsys fs.FS) {
	if fsys == nil {
		return
	}
	r.mu.Lock()
	r.trees = append(r.trees, fsys)
	r.mu.Unlock()
}

func (r *registry) list() []fs.FS {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]fs.FS(nil), r.trees...)
}

// Script is one migration file loaded from a registered tree.
type Script struct {
	Path string
	SQL  string
}

// UpMigrations collects the up migration scripts for a dialect across every
// registered tree. Within a tree, scripts sort by path so the numeric
// prefixes apply in order.
func UpMigrations(dialect string) ([]Script, error) {
	pattern, err := upPattern(dialect)
	if err != nil {
		return nil, err
	}
	var scripts []Script
	for _, fsys := range Filesystems() {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		for _, path := range matches {
			contents, err := fs.ReadFile(fsys, path)
			if err != nil {
				return nil, err
			}
			scripts = append(scripts, Script{Path: path, SQL: string(contents)})
		}
	}
	return scripts, nil
}

// PostgreSQL scripts sit at the tree root, sqlite overrides in a
// subdirectory.
func upPattern(dialect string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "data/sql/migrations/*.up.sql", nil
	case "sqlite", "sqlite3":
		return "data/sql/migrations/sqlite/*.up.sql", nil
	}
	return "", fmt.Errorf("migrations: unsupported dialect %q", dialect)
}
