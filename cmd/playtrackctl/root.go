package main

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"playtrack/internal/catalog"
	"playtrack/internal/config"
	"playtrack/internal/database"
	"playtrack/internal/logging"
	"playtrack/internal/repository"
	"playtrack/internal/service"
	"playtrack/internal/utils"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "playtrackctl",
	Short: "Operator tool for the PlayTrack database.",
	Long: `playtrackctl exports and imports PlayTrack data and checks that every stored
category record agrees with its play data.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.playtrack.yaml)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// configPath resolves the config file, falling back to $HOME/.playtrack.yaml
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".playtrack.yaml"), nil
}

// app is the wiring shared by the subcommands
type app struct {
	cfg      *config.Config
	db       *database.DB
	children *repository.ChildRepository
	records  *repository.RecordRepository
	settings *repository.SettingsRepository
	progress *service.ProgressService
	lock     *utils.DBLock
}

// openApp loads configuration, connects to the database and applies migrations.
// With exclusive set, a SQLite database is also locked against other writers.
func openApp(cmd *cobra.Command, exclusive bool) (*app, error) {
	levelString, _ := cmd.Flags().GetString("loglevel")
	if err := logging.SetLevel(levelString); err != nil {
		return nil, err
	}

	path, err := configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}

	fileLocked, err := usesFileLock(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	if exclusive && fileLocked {
		lock, err := utils.NewDBLock(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		if err := lock.Lock(); err != nil {
			return nil, err
		}
		a.lock = lock
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cat, err := catalog.Default()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.children = repository.NewChildRepository(db)
	a.records = repository.NewRecordRepository(db)
	a.settings = repository.NewSettingsRepository(db)
	a.progress = service.NewProgressService(a.children, a.records, cat)
	return a, nil
}

// usesFileLock reports whether cfg selects a SQLite file, which concurrent
// playtrackctl runs coordinate on through a lock file next to it
func usesFileLock(cfg *config.Config) (bool, error) {
	dialect, _, err := database.DialectFor(cfg)
	if err != nil {
		return false, err
	}
	_, ok := dialect.(*database.SQLiteDialect)
	return ok, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.lock != nil {
		if err := a.lock.Unlock(); err != nil {
			logging.Log.WithError(err).Warn("Failed to release database lock")
		}
	}
}
