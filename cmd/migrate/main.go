package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"blog-content-api/internal/config"
	"blog-content-api/internal/database"
)

var (
	dbPath  string
	verbose bool

	logger = logrus.New()
	conn   *database.ConnectionManager
)

var rootCmd = &cobra.Command{
	Use:          "migrate <command>",
	Short:        "Manage the SQLite item store schema",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}

		absDBPath, err := filepath.Abs(dbPath)
		if err != nil {
			return fmt.Errorf("failed to get absolute database path: %w", err)
		}

		cfg := database.DefaultConnectionConfig()
		cfg.DatabasePath = absDBPath
		cfg.AutoMigrate = false
		cfg.Logger = logger

		conn = database.NewConnectionManager(cfg)
		if err := conn.Connect(); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if conn != nil {
			conn.Close()
		}
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return manager().RunMigrations()
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return manager().RollbackMigration()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := manager().GetMigrationStatus()
		if err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Migration Status:\n")
		fmt.Fprintf(out, "  Version: %d\n", status.Version)
		fmt.Fprintf(out, "  Applied: %t\n", status.Applied)
		fmt.Fprintf(out, "  Dirty: %t\n", status.Dirty)
		return nil
	},
}

func manager() *database.MigrationManager {
	return database.NewMigrationManager(conn.GetDB(), logger)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.GetEnv("SQLITE_PATH", "./data/blog.db"), "database file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(upCmd, downCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
