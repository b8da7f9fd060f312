package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nathoo/questvars/cli"
	"github.com/nathoo/questvars/config"
	"github.com/nathoo/questvars/engine"
	"github.com/nathoo/questvars/engine/save"
	"github.com/nathoo/questvars/loader"
	"github.com/nathoo/questvars/tui"
)

// settings maps config keys to the flags that override them.
var settings = map[string]string{
	"content_dir":  "content-dir",
	"save_dir":     "save-dir",
	"save_backend": "save-backend",
	"sqlite_path":  "sqlite-path",
	"log_level":    "log-level",
	"plain":        "plain",
	"trace":        "trace",
}

func newRootCmd() *cobra.Command {
	var scriptFile string

	root := &cobra.Command{
		Use:   "questvars [content_dir]",
		Short: "Play quest dialogue content",
		Long: `Loads the Lua content in content_dir and plays it, in a terminal UI or,
with --plain or when output is not a terminal, as a line-based prompt.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.ContentDir = args[0]
			}
			return play(cmd, cfg, scriptFile)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "questvars.yaml", "config file")
	pf.String("content-dir", "", "directory of .lua content files")
	pf.String("save-dir", "", "directory for save files")
	pf.String("save-backend", "", "save backend: file or sqlite")
	pf.String("sqlite-path", "", "SQLite database for the sqlite backend")
	pf.String("log-level", "", "log level: debug, info, warn, error")

	root.Flags().Bool("plain", false, "use the plain line-based interface")
	root.Flags().Bool("trace", false, "show operations applied each turn")
	root.Flags().StringVar(&scriptFile, "script", "", "play commands from a file (implies --plain)")

	root.AddCommand(newValidateCmd(), newMigrateCmd(), newVersionCmd())
	return root
}

// loadConfig reads the YAML config file, then applies QUESTVARS_* environment
// variables and flags on top, and installs the default logger.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	v := viper.New()
	v.SetEnvPrefix("QUESTVARS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("content_dir", cfg.ContentDir)
	v.SetDefault("save_dir", cfg.SaveDir)
	v.SetDefault("save_backend", cfg.SaveBackend)
	v.SetDefault("sqlite_path", cfg.SQLitePath)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("plain", cfg.Plain)
	v.SetDefault("trace", cfg.Trace)

	for key, flag := range settings {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return cfg, fmt.Errorf("binding --%s: %w", flag, err)
			}
		}
	}

	cfg.ContentDir = v.GetString("content_dir")
	cfg.SaveDir = v.GetString("save_dir")
	cfg.SaveBackend = v.GetString("save_backend")
	cfg.SQLitePath = v.GetString("sqlite_path")
	cfg.LogLevel = v.GetString("log_level")
	cfg.Plain = v.GetBool("plain")
	cfg.Trace = v.GetBool("trace")

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return cfg, nil
}

// openStore opens the configured save backend. The returned close function
// is never nil.
func openStore(cfg config.Config) (save.Store, func() error, error) {
	if cfg.SaveBackend == config.BackendSQLite {
		path := cfg.DatabasePath()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating save dir: %w", err)
		}
		st, err := save.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	}
	return save.NewFileStore(cfg.SaveDir), func() error { return nil }, nil
}

func play(cmd *cobra.Command, cfg config.Config, scriptFile string) error {
	if cfg.ContentDir == "" {
		return fmt.Errorf("no content directory given (pass it as an argument or set content_dir)")
	}

	defs, err := loader.Load(cfg.ContentDir)
	if err != nil {
		return fmt.Errorf("loading game: %w", err)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	eng := engine.New(defs)
	eng.State.SetLogger(slog.Default().With("game", defs.Game.Title))

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		printHeader(cmd, defs)
		c := cli.New(eng, store)
		c.In = f
		c.Out = out
		c.EchoInput = true
		c.SetTrace(cfg.Trace)
		c.Run(ctx)
		return nil
	}

	// Use plain CLI if --plain or stdout is not a terminal.
	if cfg.Plain || !isTerminal() {
		printHeader(cmd, defs)
		c := cli.New(eng, store)
		c.In = cmd.InOrStdin()
		c.Out = out
		c.SetTrace(cfg.Trace)
		c.Run(ctx)
		return nil
	}

	return tui.Run(ctx, eng, store, cfg.Trace)
}

func printHeader(cmd *cobra.Command, defs *engine.Defs) {
	header := defs.Game.Title
	if defs.Game.Version != "" {
		header += " v" + defs.Game.Version
	}
	if defs.Game.Author != "" {
		header += " by " + defs.Game.Author
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", header)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
