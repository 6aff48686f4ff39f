package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/taskplanner/internal/app"
	"github.com/nhle/taskplanner/internal/bucket"
	"github.com/nhle/taskplanner/internal/handler"
	"github.com/nhle/taskplanner/internal/model"
	"github.com/nhle/taskplanner/internal/query"
	"github.com/nhle/taskplanner/internal/store"
	appsync "github.com/nhle/taskplanner/internal/sync"
)

var Version = "dev"

// flags shared by every subcommand.
var (
	configPath string
	dbPath     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "taskplanner",
		Short:         "Plan tasks by due date and project",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite database (overrides the config file)")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(doneCmd())
	rootCmd.AddCommand(removeCmd())
	rootCmd.AddCommand(projectCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is everything a command needs, opened from the config file.
type env struct {
	cfg      *model.AppConfig
	store    *store.SQLiteStore
	handlers *handler.Handlers
}

func (e *env) Close() error {
	return e.store.Close()
}

func openEnv() (*env, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	if cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	var cacheOpts []query.Option
	if cfg.Cache.MaxEntries > 0 {
		backend, err := query.NewLRUBackend(cfg.Cache.MaxEntries)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("creating cache: %w", err)
		}
		cacheOpts = append(cacheOpts, query.WithBackend(backend))
	}

	// Validate already rejected a bad weekday.
	weekStart, _ := model.ParseWeekday(cfg.Display.WeekStart)
	h := handler.New(query.New(cacheOpts...), s,
		handler.WithLayout(bucket.Layout(cfg.Display.Grouping), weekStart),
		handler.WithRollback(cfg.Cache.RollbackOnError),
	)

	return &env{cfg: cfg, store: s, handlers: h}, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if e.cfg.Log.File != "" {
		f, err := tea.LogToFile(e.cfg.Log.File, "taskplanner")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	w := appsync.New(e.handlers.Cache())
	defer w.Stop()

	m := app.New(e.handlers, w, app.WithShowCompleted(e.cfg.Display.ShowCompleted))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}
