// Command migrate applies and authors the storefront's PostgreSQL schema
// migrations.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/pattycroche/storefront/internal/infrastructure/config"
	"github.com/pattycroche/storefront/internal/infrastructure/logger"
	"github.com/pattycroche/storefront/internal/infrastructure/migration"
	"go.uber.org/zap"
)

const usage = `Storefront database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  version               Show current migration version
  force <version>       Force set migration version after a failed run
  create <name> [desc]  Create the next numbered migration file pair
  list                  List available migrations

Flags:
  -path string          Path to migrations directory (default: ./migrations)
  -log-level string     Log level: debug, info, warn, error (default: info)

Database settings come from config.toml and STORE_DATABASE_* variables.`

var errUsage = errors.New("invalid arguments")

// env is what a command runs against. m is nil for file-only commands.
type env struct {
	dir  string
	args []string
	log  *zap.Logger
	m    *migration.Migrator
}

type command struct {
	database bool
	run      func(e env) error
}

var commands = map[string]command{
	"up":   {database: true, run: func(e env) error { _, err := e.m.Up(); return err }},
	"down": {database: true, run: func(e env) error { _, err := e.m.Down(); return err }},
	"step": {database: true, run: func(e env) error {
		n, err := intArg(e.args, 0)
		if err != nil {
			return err
		}
		_, err = e.m.Steps(n)
		return err
	}},
	"force": {database: true, run: func(e env) error {
		v, err := intArg(e.args, 0)
		if err != nil {
			return err
		}
		return e.m.Force(v)
	}},
	"version": {database: true, run: func(e env) error {
		st, err := e.m.Status()
		if err != nil {
			return err
		}
		e.log.Info("Current migration version", zap.Uint("version", st.Version), zap.Bool("dirty", st.Dirty))
		return nil
	}},
	"create": {run: func(e env) error {
		if len(e.args) == 0 {
			return errUsage
		}
		var description string
		if len(e.args) > 1 {
			description = e.args[1]
		}
		s, err := migration.NewScript(e.dir, e.args[0], description, time.Now())
		if err != nil {
			return err
		}
		e.log.Info("Migration created",
			zap.Uint("version", s.Version),
			zap.String("up_file", s.Up),
			zap.String("down_file", s.Down),
		)
		return nil
	}},
	"list": {run: func(e env) error {
		scripts, err := migration.Scripts(e.dir)
		if err != nil {
			return err
		}
		for _, s := range scripts {
			down := "down"
			if s.Down == "" {
				down = "no down"
			}
			fmt.Printf("%06d  %-40s %s\n", s.Version, s.Name, down)
		}
		return nil
	}},
}

func intArg(args []string, i int) (int, error) {
	if i >= len(args) {
		return 0, errUsage
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", errUsage, args[i])
	}
	return n, nil
}

func main() {
	dir := flag.String("path", "migrations", "Path to migrations directory")
	level := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(logger.Config{Level: *level, Format: "console", TimeLayout: time.DateTime})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	abs, err := filepath.Abs(*dir)
	if err != nil {
		log.Fatal("Failed to resolve migrations path", zap.Error(err))
	}
	e := env{dir: abs, args: args[1:], log: log}

	if cmd.database {
		m, closeDB, err := openMigrator(abs, log)
		if err != nil {
			log.Fatal("Failed to prepare migrator", zap.Error(err))
		}
		defer closeDB()
		e.m = m
	}

	if err := cmd.run(e); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "%s: %v\n\n", name, err)
			flag.Usage()
			os.Exit(2)
		}
		log.Fatal("Migration command failed", zap.String("command", name), zap.Error(err))
	}
}

func openMigrator(dir string, log *zap.Logger) (*migration.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return nil, nil, fmt.Errorf("SQL migrations target PostgreSQL only, got driver %q", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	m, err := migration.New(db, dir, log)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return m, func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}, nil
}
