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

// Package cmd implements the CLI: one subcommand per engine role,
// built with github.com/spf13/cobra. Every subcommand is a thin
// adapter — it loads configuration, builds a *slog.Logger, and calls
// straight into the internal package that implements the operation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tablinum/tablinum/internal/config"
	"github.com/tablinum/tablinum/internal/logging"
	"github.com/tablinum/tablinum/internal/tblerr"
	"github.com/tablinum/tablinum/internal/version"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command when tablinum is invoked with no args.
var rootCmd = &cobra.Command{
	Use:           "tablinum",
	Short:         "tablinum: content-addressed document archive engine",
	Long:          `Tablinum ingests opaque payloads into a content-addressed store, keeps durable per-job metadata, and produces deterministic OAIS-light archival/submission packages.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs rootCmd; each subcommand file adds its command to
// rootCmd in its own init. Called once by main.main. Exit codes follow the tblerr.Kind taxonomy, not
// cobra's default.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		kind := tblerr.As(err)
		fmt.Fprintln(os.Stderr, "tablinum:", err)
		os.Exit(kind.ExitCode())
	}
}

func init() {
	cobra.OnInitialize(func() {})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $XDG_CONFIG_HOME/tablinum/config.ini)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose (debug-level) logging")
}

// loadConfig locates the config file: viper.SetConfigFile when
// --config is explicit, viper's own search path otherwise. Viper only
// locates and confirms readability of the file here; the
// authoritative parse of its body is always the strict INI loader in
// internal/config, since viper's lenient section/key merging can't
// treat an unknown key as an error.
func loadConfig() (config.Config, error) {
	v := viper.New()
	v.SetConfigType("ini")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, tblerr.Wrap(tblerr.IO, err, "resolve default config path")
		}
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Dir(defaultPath))
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return config.Config{}, tblerr.Wrap(tblerr.IO, err, "read config %s", cfgFile)
		}
		return config.Config{}, tblerr.New(tblerr.Usage, "no --config given and no config found: %v", err)
	}

	return config.Load(v.ConfigFileUsed())
}

// newLogger builds the logger a subcommand threads through its call
// graph, honoring --verbose.
func newLogger() *slog.Logger {
	return logging.New(verbose)
}
