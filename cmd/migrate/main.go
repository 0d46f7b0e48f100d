package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"

	migrateV4 "github.com/golang-migrate/migrate/v4"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/yourusername/question-bank/internal/config"
	"github.com/yourusername/question-bank/pkg/database"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// migrator - подмножество *migrate.Migrate, которым пользуются команды
type migrator interface {
	Up() error
	Steps(n int) error
	Force(version int) error
	Version() (uint, bool, error)
}

// openMigrator открывает подключение и migrate; close освобождает оба
type openMigrator func(cmd *cobra.Command) (migrator, func(), error)

func newRootCmd() *cobra.Command {
	return newRootCmdWith(openPostgresMigrator)
}

func newRootCmdWith(open openMigrator) *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage question-bank database schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "config/config.yaml", "path to config file")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, closeFn, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := m.Up(); err != nil && !errors.Is(err, migrateV4.ErrNoChange) {
				return fmt.Errorf("migrate up: %w", err)
			}
			return printVersion(cmd, m)
		},
	})

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (one step by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			if steps < 1 {
				return fmt.Errorf("steps must be positive, got %d", steps)
			}

			m, closeFn, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := m.Steps(-steps); err != nil && !errors.Is(err, migrateV4.ErrNoChange) {
				return fmt.Errorf("migrate down: %w", err)
			}
			return printVersion(cmd, m)
		},
	}
	downCmd.Flags().Int("steps", 1, "number of migrations to roll back")
	root.AddCommand(downCmd)

	root.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Set schema version without running migrations (clears dirty state)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := parseVersion(args[0])
			if err != nil {
				return err
			}

			m, closeFn, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := m.Force(version); err != nil {
				return fmt.Errorf("migrate force %d: %w", version, err)
			}
			return printVersion(cmd, m)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, closeFn, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()
			return printVersion(cmd, m)
		},
	})

	return root
}

// parseVersion принимает неотрицательный номер версии или -1 (пустая схема)
func parseVersion(raw string) (int, error) {
	version, err := strconv.Atoi(raw)
	if err != nil || version < -1 {
		return 0, fmt.Errorf("invalid version %q", raw)
	}
	return version, nil
}

func printVersion(cmd *cobra.Command, m migrator) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrateV4.ErrNilVersion) {
		fmt.Fprintln(cmd.OutOrStdout(), "version: none")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version: %d dirty: %t\n", version, dirty)
	return nil
}

func openPostgresMigrator(cmd *cobra.Command) (migrator, func(), error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return nil, nil, fmt.Errorf("migrations are managed only for the postgres driver, got %q", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	m, err := database.NewMigrator(db, cfg.Database.MigrationsPath)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	// m.Close закрывает и драйвер, и *sql.DB
	return m, func() { m.Close() }, nil
}
