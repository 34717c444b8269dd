/*
 * tablinum: content-addressed document archive engine
 * Copyright © 2026 The Tablinum Authors
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

// Package index backs the reserved "index" role. It opens and
// migrates the [core] db SQLite database so the role's on-disk
// footprint exists; no query surface is implemented over it.
package index

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// pragmas: foreign keys on, WAL journal mode, NORMAL synchronous.
const pragmas = "?_foreign_keys=ON&_journal_mode=WAL&_synchronous=NORMAL"

// Open opens the SQLite database at dbPath. The caller is responsible
// for Close.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s%s", dbPath, pragmas))
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", dbPath, err)
	}
	return db, nil
}

// Migrate runs every pending goose migration embedded under
// migrations/ against db.
func Migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("index: prepare migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("index: set up goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("index: migrate: %w", err)
	}
	return nil
}
