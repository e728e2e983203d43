package guilddb

import (
	"github.com/colinmarc/cdb"
	"github.com/dpatterbee/hue/src/store"
)

// Entry is a single key/value pair of a table.
type Entry struct {
	Key   []byte
	Value []byte
}

// Snapshot is a read handle on one table as it was when opened. Later rebuilds of the same
// table are not visible through it.
//
// The nil *Snapshot is valid and reads as an empty table; Guild.Open returns it for tables
// that have never been written.
type Snapshot struct {
	table Table
	path  string
	db    *cdb.CDB
}

// Get returns the value stored under key and whether it was present.
func (s *Snapshot) Get(key []byte) ([]byte, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	v, err := s.db.Get(key)
	if err != nil {
		return nil, false, store.E(store.IoFailure, "find in "+s.table.String()+" db", s.path, err)
	}
	if v == nil {
		return nil, false, nil
	}
	return v, true, nil
}

// GetString is Get for string keys and values.
func (s *Snapshot) GetString(key string) (string, bool, error) {
	v, ok, err := s.Get([]byte(key))
	return string(v), ok, err
}

// Iter returns an iterator over every entry in file order.
func (s *Snapshot) Iter() *Iterator {
	if s == nil {
		return &Iterator{}
	}
	return &Iterator{it: s.db.Iter(), s: s}
}

// Entries reads the whole table into memory.
func (s *Snapshot) Entries() ([]Entry, error) {
	var out []Entry
	it := s.Iter()
	for it.Next() {
		out = append(out, Entry{
			Key:   append([]byte(nil), it.Key()...),
			Value: append([]byte(nil), it.Value()...),
		})
	}
	return out, it.Err()
}

// Close releases the underlying file.
func (s *Snapshot) Close() error {
	if s == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return store.E(store.IoFailure, "close "+s.table.String()+" db", s.path, err)
	}
	return nil
}

// Iterator walks a Snapshot. It cannot be rewound; call Snapshot.Iter again for a new pass.
type Iterator struct {
	it *cdb.Iterator
	s  *Snapshot
}

// Next advances to the next entry, returning false at the end or on error.
func (i *Iterator) Next() bool {
	if i.it == nil {
		return false
	}
	return i.it.Next()
}

// Key returns the current key. It is only valid until the next call to Next.
func (i *Iterator) Key() []byte {
	if i.it == nil {
		return nil
	}
	return i.it.Key()
}

// Value returns the current value. It is only valid until the next call to Next.
func (i *Iterator) Value() []byte {
	if i.it == nil {
		return nil
	}
	return i.it.Value()
}

// Err returns the error that stopped iteration, if any.
func (i *Iterator) Err() error {
	if i.it == nil || i.it.Err() == nil {
		return nil
	}
	return store.E(store.FormatFailure, "read "+i.s.table.String()+" db", i.s.path, i.it.Err())
}
