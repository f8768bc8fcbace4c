// Package cli is the cadence command tree.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/llehouerou/cadence/internal/config"
	"github.com/llehouerou/cadence/internal/errmsg"
	"github.com/llehouerou/cadence/internal/logging"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	cfgFile  string
	database string
	jsonOut  bool
	verbose  bool
}

// env carries what every command needs once the root pre-run has loaded
// the configuration.
type env struct {
	flags  globalFlags
	cfg    *config.Config
	logger zerolog.Logger

	// shared is set while a long-running command owns the queue, so
	// subcommands run against it instead of opening their own.
	shared *session
}

// NewRootCmd builds the command tree. Log output goes to logOut.
func NewRootCmd(logOut io.Writer) *cobra.Command {
	e := &env{logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "cadence",
		Short: "Playback queue and state engine for a local music library",
		Long: `Cadence keeps a persistent playing queue over a local music library:
shuffle and repeat modes, undo and redo, favorites, backups and desktop
media controls.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.init(logOut)
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&e.flags.cfgFile, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/cadence/config.toml)")
	pf.StringVar(&e.flags.database, "database", "", "database file (default: $XDG_DATA_HOME/cadence/cadence.db)")
	pf.BoolVarP(&e.flags.jsonOut, "json", "j", false, "output as JSON")
	pf.BoolVarP(&e.flags.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newQueueCmd(e),
		newLibraryCmd(e),
		newFavoritesCmd(e),
		newFilterCmd(e),
		newBackupCmd(e),
		newDaemonCmd(e),
	)
	return root
}

func (e *env) init(logOut io.Writer) error {
	var err error
	if e.flags.cfgFile != "" {
		e.cfg, err = config.LoadFrom(e.flags.cfgFile)
	} else {
		e.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", errmsg.OpConfigLoad, err)
	}

	e.logger, err = logging.New(logOut, logging.Options{
		Level:   e.cfg.Log.Level,
		Format:  e.cfg.Log.Format,
		Verbose: e.flags.verbose,
	})
	if err != nil {
		return fmt.Errorf("invalid log config: %w", err)
	}
	return nil
}

// databasePath returns the --database flag, then the configured path.
// Empty means the default location.
func (e *env) databasePath() string {
	if e.flags.database != "" {
		return e.flags.database
	}
	return e.cfg.Database
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd(os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
