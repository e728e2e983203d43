package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"github.com/dpatterbee/hue/src/store"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	_ "github.com/mattn/go-sqlite3"
)

type db struct {
	ctx  *sql.DB
	path string
	sync.RWMutex
}

// New opens the settings database at path, creating it and its directory if needed.
func New(path string) (store.Settings, error) {
	dbDir := filepath.Dir(path)
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		err := os.MkdirAll(dbDir, os.ModePerm)
		if err != nil {
			return nil, store.E(store.IoFailure, "can't create directory", dbDir, err)
		}
	}

	ctx, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, store.E(store.IoFailure, "open settings db", path, err)
	}
	_, err = ctx.Exec(
		`create table if not exists servers(
    				guildID text,
    				name text,
    				prefix text,
    			constraint server_pk
                    primary key (guildID)
                );`,
	)
	if err != nil {
		_ = ctx.Close()
		return nil, store.E(store.FormatFailure, "create servers table", path, err)
	}

	log.Debug().Str("path", path).Msg("Opened settings db")

	return &db{
		ctx:  ctx,
		path: path,
	}, nil
}

func (d *db) serverCreate(guildID string) error {
	_, err := d.ctx.Exec("INSERT OR IGNORE INTO servers (guildID) VALUES (?)", guildID)
	return err
}

func (d *db) set(column, guildID, value string) error {
	d.Lock()
	defer d.Unlock()

	if err := d.serverCreate(guildID); err != nil {
		return store.E(store.IoFailure, "create server "+guildID, d.path, err)
	}
	// column is one of the fixed names used by this file, never user input.
	_, err := d.ctx.Exec("UPDATE servers SET "+column+" = ? WHERE guildID = ?", value, guildID)
	if err != nil {
		return store.E(store.IoFailure, "set "+column, d.path, err)
	}
	return nil
}

func (d *db) get(column, guildID string) (string, error) {
	d.RLock()
	defer d.RUnlock()

	stmt, err := d.ctx.Prepare("SELECT " + column + " FROM servers WHERE guildID = ?")
	if err != nil {
		return "", store.E(store.IoFailure, "get "+column, d.path, err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmt)

	var v sql.NullString
	err = stmt.QueryRow(guildID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) || err == nil && !v.Valid {
		return "", store.E(store.NotFound, "get "+column, guildID, nil)
	}
	if err != nil {
		return "", store.E(store.IoFailure, "get "+column, d.path, err)
	}

	return v.String, nil
}

func (d *db) SetPrefix(guildID, prefix string) error {
	return d.set("prefix", guildID, prefix)
}

func (d *db) GetPrefix(guildID string) (string, error) {
	return d.get("prefix", guildID)
}

func (d *db) SetName(guildID, name string) error {
	return d.set("name", guildID, name)
}

func (d *db) GetName(guildID string) (string, error) {
	return d.get("name", guildID)
}

func (d *db) Close() error {
	d.Lock()
	defer d.Unlock()
	return d.ctx.Close()
}
