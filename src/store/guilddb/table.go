package guilddb

import "path/filepath"

// Table names one of the two databases kept per guild.
type Table uint8

const (
	Colors Table = iota
	Users
)

// Tables lists every table a guild can hold.
var Tables = []Table{Colors, Users}

func (t Table) String() string {
	switch t {
	case Colors:
		return "colors"
	case Users:
		return "users"
	}
	return "unknown"
}

func (t Table) path(dir string) string {
	return filepath.Join(dir, t.String()+".cdb")
}

func (t Table) tmpPath(dir string) string {
	return filepath.Join(dir, t.String()+".cdb.tmp")
}
