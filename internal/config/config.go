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

// Package config loads the engine's [core]/[http]/[ingest]
// configuration. Locating the file (explicit --config flag, or the
// XDG default) is delegated to github.com/adrg/xdg; the INI body
// itself is parsed with internal/ini rather than viper, since viper's
// lenient section/key merging can't reject unknown sections and keys
// the way this document requires.
package config

import (
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/tablinum/tablinum/internal/ini"
	"github.com/tablinum/tablinum/internal/safeio"
	"github.com/tablinum/tablinum/internal/tblerr"
	"github.com/tablinum/tablinum/internal/tpath"
)

// Core mirrors the [core] section.
type Core struct {
	Root  string
	Spool string
	Repo  string
	DB    string
}

// HTTP mirrors the [http] section. Listen is consumed only by the
// reserved serve stub role.
type HTTP struct {
	Listen string
}

// Ingest mirrors the [ingest] section.
type Ingest struct {
	PollSeconds uint32
	Once        bool
	MaxJobs     uint32
}

// Config is the fully resolved configuration: relative core paths
// have already been joined against Core.Root.
type Config struct {
	Core   Core
	HTTP   HTTP
	Ingest Ingest
}

var knownSections = map[string]map[string]bool{
	"core":   {"root": true, "spool": true, "repo": true, "db": true},
	"http":   {"listen": true},
	"ingest": {"poll_seconds": true, "once": true, "max_jobs": true},
}

// DefaultPath returns the XDG default config file location,
// $XDG_CONFIG_HOME/tablinum/config.ini.
func DefaultPath() (string, error) {
	p, err := xdg.ConfigFile(filepath.Join("tablinum", "config.ini"))
	if err != nil {
		return "", tblerr.Wrap(tblerr.IO, err, "resolve default config path")
	}
	return p, nil
}

// Load parses path as a strict [core]/[http]/[ingest] INI document.
// Unknown sections or keys, a section header appearing with no name,
// and out-of-range numeric values are all schema errors. Relative
// core paths (spool, repo, db) are joined against root.
func Load(path string) (Config, error) {
	cfg := Config{
		Ingest: Ingest{PollSeconds: 5, MaxJobs: 0},
	}
	seenSection := map[string]bool{}

	err := ini.ParseFile(path, func(section, key, value string, lineNo int) error {
		if section == "" {
			return tblerr.New(tblerr.Schema, "key %q outside any section (line %d)", key, lineNo)
		}
		keys, ok := knownSections[section]
		if !ok {
			return tblerr.New(tblerr.Schema, "unknown section %q (line %d)", section, lineNo)
		}
		if !keys[key] {
			return tblerr.New(tblerr.Schema, "unknown key %q in [%s] (line %d)", key, section, lineNo)
		}
		seenSection[section] = true

		var err error
		switch section {
		case "core":
			err = applyCore(&cfg.Core, key, value)
		case "http":
			cfg.HTTP.Listen = value
		case "ingest":
			err = applyIngest(&cfg.Ingest, key, value, lineNo)
		}
		return err
	})
	if err != nil {
		if te, ok := err.(*tblerr.Error); ok {
			return Config{}, te
		}
		return Config{}, tblerr.Wrap(tblerr.Schema, err, "parse config %s", path)
	}

	if cfg.Core.Root != "" {
		cfg.Core.Spool = resolvePath(cfg.Core.Root, cfg.Core.Spool)
		cfg.Core.Repo = resolvePath(cfg.Core.Root, cfg.Core.Repo)
		cfg.Core.DB = resolvePath(cfg.Core.Root, cfg.Core.DB)
	}
	if cfg.Ingest.PollSeconds == 0 {
		return Config{}, tblerr.New(tblerr.Schema, "ingest.poll_seconds must be > 0")
	}

	return cfg, nil
}

func applyCore(c *Core, key, value string) error {
	switch key {
	case "root":
		c.Root = value
	case "spool":
		c.Spool = value
	case "repo":
		c.Repo = value
	case "db":
		c.DB = value
	}
	return nil
}

func applyIngest(ig *Ingest, key, value string, lineNo int) error {
	switch key {
	case "poll_seconds":
		v, err := safeio.ParseU32(value)
		if err != nil || v == 0 {
			return tblerr.New(tblerr.Schema, "ingest.poll_seconds must be a positive integer (line %d)", lineNo)
		}
		ig.PollSeconds = v
	case "once":
		switch value {
		case "0":
			ig.Once = false
		case "1":
			ig.Once = true
		default:
			return tblerr.New(tblerr.Schema, "ingest.once must be 0 or 1 (line %d)", lineNo)
		}
	case "max_jobs":
		v, err := safeio.ParseU32(value)
		if err != nil {
			return tblerr.New(tblerr.Schema, "ingest.max_jobs must be a non-negative integer (line %d)", lineNo)
		}
		ig.MaxJobs = v
	}
	return nil
}

func resolvePath(root, p string) string {
	if p == "" || tpath.IsAbs(p) {
		return p
	}
	joined, err := tpath.Join(root, p, 0)
	if err != nil {
		return filepath.Join(root, p)
	}
	return joined
}
