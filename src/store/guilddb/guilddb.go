// Package guilddb keeps the per-guild colour tables as constant databases.
//
// A table is never modified in place. Every write builds a complete new database next to the
// live one and renames it over the old file, so readers see either the old snapshot or the new
// one. Callers must not run two rebuilds of the same table at once.
package guilddb

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/colinmarc/cdb"
	"github.com/dpatterbee/hue/src/store"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DefaultRoot is where guild directories live unless configured otherwise.
const DefaultRoot = "./data"

// DB is the root of all guild directories.
type DB struct {
	root string
}

// New returns a DB rooted at dir. Nothing is created until the first write.
func New(dir string) *DB {
	if dir == "" {
		dir = DefaultRoot
	}
	return &DB{root: dir}
}

// Guild returns the record for guildID. The ID is used as a directory name, so it must be a
// single path element.
func (d *DB) Guild(guildID string) (*Guild, error) {
	if guildID == "" || guildID == "." || guildID == ".." ||
		strings.ContainsAny(guildID, `/\`) || filepath.Base(guildID) != guildID {
		return nil, store.E(store.MalformedInput, "guild", guildID,
			errors.New("not usable as a directory name"))
	}
	return &Guild{id: guildID, dir: filepath.Join(d.root, guildID)}, nil
}

// Guild is one guild's directory of tables.
type Guild struct {
	id  string
	dir string
}

// Dir returns the guild's directory.
func (g *Guild) Dir() string { return g.dir }

// EnsureDir creates the guild directory and any missing parents.
func (g *Guild) EnsureDir() error {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return store.E(store.IoFailure, "can't create directory", g.dir, err)
	}
	return nil
}

// Open opens table t for reading. It returns a nil *Snapshot and a nil error when the table
// has never been written; a nil *Snapshot reads as an empty table.
func (g *Guild) Open(t Table) (*Snapshot, error) {
	path := t.path(g.dir)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, store.E(store.IoFailure, "stat "+t.String()+" db", path, err)
	}

	db, err := cdb.Open(path)
	if err != nil {
		var pe *os.PathError
		if errors.As(err, &pe) {
			return nil, store.E(store.IoFailure, "open "+t.String()+" db", path, err)
		}
		return nil, store.E(store.FormatFailure, "open "+t.String()+" db", path, err)
	}

	return &Snapshot{table: t, path: path, db: db}, nil
}

// DiscardTemp removes a temporary file left behind by an interrupted rebuild of t.
func (g *Guild) DiscardTemp(t Table) error {
	tmp := t.tmpPath(g.dir)
	err := os.Remove(tmp)
	if err == nil {
		log.Debug().Str("guild", g.id).Str("table", t.String()).Msg("Removed stale temporary db")
		return nil
	}
	if os.IsNotExist(err) {
		return nil
	}
	return store.E(store.IoFailure, "couldn't remove old tmp "+t.String()+" db", tmp, err)
}

// Rebuild writes a complete new snapshot of t and atomically replaces the current one.
//
// build receives an empty Builder and must add every entry the new snapshot should hold.
// If build or the write fails, the temporary file is left for DiscardTemp and the current
// snapshot is untouched. If the rename fails the current snapshot is also untouched.
func (g *Guild) Rebuild(t Table, build func(b *Builder) error) error {
	if err := g.EnsureDir(); err != nil {
		return err
	}

	tmp := t.tmpPath(g.dir)
	w, err := cdb.Create(tmp)
	if err != nil {
		return store.E(store.IoFailure, "error creating "+t.String()+" db", tmp, err)
	}

	b := &Builder{w: w, seen: make(map[string]struct{})}
	buildErr := build(b)
	closeErr := w.Close()
	if buildErr != nil {
		if store.KindOf(buildErr) != store.Unknown {
			return buildErr
		}
		return store.E(store.IoFailure, "error creating "+t.String()+" db", tmp, buildErr)
	}
	if closeErr != nil {
		return store.E(store.IoFailure, "error creating "+t.String()+" db", tmp, closeErr)
	}

	path := t.path(g.dir)
	if err := os.Rename(tmp, path); err != nil {
		return store.E(store.IoFailure, "couldn't replace old "+t.String()+" db", path, err)
	}

	log.Debug().
		Str("guild", g.id).
		Str("table", t.String()).
		Int("entries", b.n).
		Msg("Rebuilt db")
	return nil
}

// Builder is the write target handed to a Rebuild callback.
type Builder struct {
	w    *cdb.Writer
	seen map[string]struct{}
	n    int
}

// Add appends an entry to the snapshot being built. Keys must be unique within a snapshot.
func (b *Builder) Add(key, value []byte) error {
	if _, ok := b.seen[string(key)]; ok {
		return store.E(store.MalformedInput, "add", "", errors.Errorf("duplicate key %q", key))
	}
	if err := b.w.Put(key, value); err != nil {
		return store.E(store.IoFailure, "add", "", err)
	}
	b.seen[string(key)] = struct{}{}
	b.n++
	return nil
}

// AddString is Add for string keys and values.
func (b *Builder) AddString(key, value string) error {
	return b.Add([]byte(key), []byte(value))
}

// Len returns the number of entries added so far.
func (b *Builder) Len() int { return b.n }
